// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/nahuelc/geolink/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
