// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// yxctl - YX5300 Serial MP3 Player Tool
//
// A CLI tool for controlling YX5300 modules and decoding their UART
// responses in human-readable format.

package main

import (
	"os"

	"github.com/Thermoquad/yxctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
