// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/nahuelc/geolink/gpx"
	"github.com/spf13/cobra"
)

var gpxOutput string

var gpxCmd = &cobra.Command{
	Use:   "gpx",
	Short: "GPX file utilities",
}

var gpxConvertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert GPX track points to waypoints",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		in, err := os.Open(args[0]) // #nosec G304 - path is provided by the user
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer in.Close()

		output := gpxOutput
		if output == "" {
			output = strings.TrimSuffix(args[0], ".gpx") + "_waypoints.gpx"
		}

		out, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer out.Close()

		count, err := gpx.ConvertTracksToWaypoints(in, out)
		if err != nil {
			return err
		}

		log.Printf("Converted %d track points to waypoints into %s", count, output)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(gpxCmd)
	gpxCmd.AddCommand(gpxConvertCmd)
	gpxConvertCmd.Flags().StringVarP(&gpxOutput, "output", "o", "", "Output GPX file (default: <input>_waypoints.gpx)")
}
