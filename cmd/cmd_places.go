// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/mattn/go-isatty"
	"github.com/nahuelc/geolink/ge0"
	"github.com/nahuelc/geolink/gpx"
	"github.com/nahuelc/geolink/places"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var placesOptions = struct {
	dbPath       string
	emoji        string
	name         string
	zoom         int
	visibility   string
	dedupeRadius float64
	output       string
}{}

var placesCmd = &cobra.Command{
	Use:   "places",
	Short: "Manage the local database of collected places",
}

func openPlaces() (*sql.DB, places.Repository, error) {
	if err := os.MkdirAll(placesOptions.dbPath, 0o750); err != nil {
		return nil, nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("duckdb", filepath.Join(placesOptions.dbPath, "geolink.duckdb"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := places.NewRepository(db)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating schema: %w", err)
	}

	return db, repo, nil
}

var placesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collected places",
	RunE: func(_ *cobra.Command, _ []string) error {
		db, repo, err := openPlaces()
		if err != nil {
			return err
		}
		defer db.Close()

		placeList, err := repo.List(nil, nil, 1000, 0)
		if err != nil {
			return err
		}

		for _, p := range placeList {
			fmt.Printf("%4d  %-2s %-40s %10.5f %11.5f  %s\n",
				p.ID, p.Emoji, p.Name, p.Point.Lat, p.Point.Lng, p.Visibility)
		}

		return nil
	},
}

var placesAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Decode a GE0 link and save it as a place",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		loc, err := ge0.Decode(args[0])
		if err != nil {
			return err
		}

		db, repo, err := openPlaces()
		if err != nil {
			return err
		}
		defer db.Close()

		name := placesOptions.name
		if name == "" {
			name = loc.Name
		}

		if name == "" {
			return errors.New("the link carries no name, use --name")
		}

		place := &places.Place{
			Emoji:      placesOptions.emoji,
			Name:       name,
			Point:      &loc.Point,
			Visibility: placesOptions.visibility,
		}

		if err := repo.Save(place); err != nil {
			return err
		}

		fmt.Printf("saved place %d: %s\n", place.ID, place.Name)

		return nil
	},
}

var placesRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a place",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("parsing id: %w", err)
		}

		db, repo, err := openPlaces()
		if err != nil {
			return err
		}
		defer db.Close()

		return repo.Delete(id)
	},
}

var placesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export collected places as GPX waypoints",
	RunE: func(_ *cobra.Command, _ []string) error {
		db, repo, err := openPlaces()
		if err != nil {
			return err
		}
		defer db.Close()

		placeList, err := repo.List(nil, nil, 100000, 0)
		if err != nil {
			return err
		}

		out := os.Stdout

		if placesOptions.output != "" {
			out, err = os.Create(placesOptions.output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", placesOptions.output, err)
			}
			defer out.Close()
		}

		return gpx.ExportPlaces(placeList, out)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import shared texts or links, one per line, as places",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		f, err := os.Open(args[0]) // #nosec G304 - path is provided by the user
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer f.Close()

		db, repo, err := openPlaces()
		if err != nil {
			return err
		}
		defer db.Close()

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(-1,
				progressbar.OptionSetDescription("Importing "+filepath.Base(args[0])),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		var saved, skipped, dupes int

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			if bar != nil {
				_ = bar.Add(1)
			}

			line := scanner.Text()

			shared := ge0.ParseSharedText(line)
			if shared == nil {
				skipped++

				continue
			}

			if existing, err := repo.NearestWithin(&shared.Point, placesOptions.dedupeRadius); err != nil {
				return err
			} else if existing != nil {
				dupes++

				continue
			}

			name := shared.Name
			if name == "" {
				name = shared.URL
			}

			place := &places.Place{
				Emoji:      placesOptions.emoji,
				Name:       name,
				Point:      &shared.Point,
				Notes:      joinNonEmpty(shared.Address, shared.Phone),
				Visibility: placesOptions.visibility,
			}

			if err := repo.Save(place); err != nil {
				return err
			}

			saved++
		}

		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		if bar != nil {
			_ = bar.Finish()
		}

		log.Printf("Import done - %d saved, %d duplicates, %d lines without a location", saved, dupes, skipped)

		return nil
	},
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " · " + b
	}
}

func init() {
	rootCmd.AddCommand(placesCmd)
	rootCmd.AddCommand(importCmd)
	placesCmd.AddCommand(placesListCmd)
	placesCmd.AddCommand(placesAddCmd)
	placesCmd.AddCommand(placesRmCmd)
	placesCmd.AddCommand(placesExportCmd)

	for _, c := range []*cobra.Command{placesCmd, importCmd, serveCmd} {
		c.PersistentFlags().StringVar(
			&placesOptions.dbPath,
			"db-path",
			"db",
			"Base directory where the place database lives",
		)
	}

	placesAddCmd.Flags().StringVar(&placesOptions.emoji, "emoji", "📍", "Emoji shown next to the place")
	placesAddCmd.Flags().StringVar(&placesOptions.name, "name", "", "Override the name carried by the link")
	placesAddCmd.Flags().StringVar(&placesOptions.visibility, "visibility", places.VisibilityPrivate, "Visibility policy: private, friends or public")

	importCmd.Flags().StringVar(&placesOptions.emoji, "emoji", "📍", "Emoji shown next to imported places")
	importCmd.Flags().StringVar(&placesOptions.visibility, "visibility", places.VisibilityPrivate, "Visibility policy for imported places")
	importCmd.Flags().Float64Var(
		&placesOptions.dedupeRadius,
		"dedupe-radius",
		25,
		"Skip imports that land within this many meters of an existing place",
	)

	placesExportCmd.Flags().StringVarP(&placesOptions.output, "output", "o", "", "Output file (default: stdout)")
}
