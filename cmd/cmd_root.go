// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "geolink",
	Short: "decode, share and collect GE0 map links",
	Long: `
geolink works with the GE0 link format used by comaps.at, ge0.me and
omaps.app to share pinned map locations. It decodes and produces
links, scans shared text for them, and keeps a local database of
collected places.
`,
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func userAgent() string {
	return fmt.Sprintf("geolink/%s (+https://github.com/nahuelc/geolink)", Version)
}
