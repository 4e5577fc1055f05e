// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/nahuelc/geolink/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the codec and the place database over HTTP",
	RunE: func(_ *cobra.Command, _ []string) error {
		db, repo, err := openPlaces()
		if err != nil {
			return err
		}
		defer db.Close()

		return server.New(repo, userAgent()).Run(serveAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8080", "Address to listen on")
}
