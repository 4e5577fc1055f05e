// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nahuelc/geolink/ge0"
	"github.com/nahuelc/geolink/utils/htmlutils"
	"github.com/spf13/cobra"
)

var linkOptions = struct {
	asJSON bool
	zoom   int
	name   string
	html   bool
}{}

var decodeCmd = &cobra.Command{
	Use:   "decode <url>",
	Short: "Decode a GE0 link into coordinates, zoom and name",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		loc, err := ge0.Decode(args[0])
		if err != nil {
			return err
		}

		if linkOptions.asJSON {
			return printJSON(loc)
		}

		fmt.Printf("latitude:  %.5f\n", loc.Point.Lat)
		fmt.Printf("longitude: %.5f\n", loc.Point.Lng)
		fmt.Printf("zoom:      %d\n", loc.Zoom)

		if loc.Name != "" {
			fmt.Printf("name:      %s\n", loc.Name)
		}

		return nil
	},
}

var encodeCmd = &cobra.Command{
	Use:   "encode <lat> <lng>",
	Short: "Produce a GE0 link for a coordinate",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		lat, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("parsing latitude: %w", err)
		}

		lng, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("parsing longitude: %w", err)
		}

		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return errors.New("coordinates out of range")
		}

		fmt.Println(ge0.Encode(lat, lng, linkOptions.zoom, linkOptions.name))

		return nil
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Scan shared text for a GE0 link, reading stdin by default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		text, err := readInput(args)
		if err != nil {
			return err
		}

		if linkOptions.html {
			text, err = htmlutils.Text(strings.NewReader(text))
			if err != nil {
				return err
			}
		}

		shared := ge0.ParseSharedText(text)
		if shared == nil {
			return errors.New("no location found")
		}

		if linkOptions.asJSON {
			return printJSON(shared)
		}

		fmt.Printf("url:       %s\n", shared.URL)
		fmt.Printf("latitude:  %.5f\n", shared.Point.Lat)
		fmt.Printf("longitude: %.5f\n", shared.Point.Lng)
		fmt.Printf("zoom:      %d\n", shared.Zoom)

		for _, field := range []struct{ label, value string }{
			{"name", shared.Name},
			{"address", shared.Address},
			{"phone", shared.Phone},
		} {
			if field.value != "" {
				fmt.Printf("%-10s %s\n", field.label+":", field.value)
			}
		}

		return nil
	},
}

func readInput(args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}

		return string(data), nil
	}

	data, err := os.ReadFile(args[0]) // #nosec G304 - path is provided by the user
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}

	return string(data), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(parseCmd)

	decodeCmd.Flags().BoolVar(&linkOptions.asJSON, "json", false, "Print the result as JSON")
	parseCmd.Flags().BoolVar(&linkOptions.asJSON, "json", false, "Print the result as JSON")
	parseCmd.Flags().BoolVar(&linkOptions.html, "html", false, "Strip HTML markup before scanning")
	encodeCmd.Flags().IntVar(&linkOptions.zoom, "zoom", 17, "Display zoom level to embed")
	encodeCmd.Flags().StringVar(&linkOptions.name, "name", "", "Place name to append to the link")
}
