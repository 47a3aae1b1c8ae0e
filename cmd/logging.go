// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// logger is the diagnostics logger. User-facing output goes to stdout.
var logger = zerolog.Nop()

func initLogger(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.TimeOnly,
	}
	logger = zerolog.New(output).Level(lvl).With().Timestamp().Str("app", "yxctl").Logger()
	log.Logger = logger
	return nil
}

// silenceForTUI stops console logging while a full-screen UI owns the terminal
func silenceForTUI() {
	logger = zerolog.Nop()
	log.Logger = logger
}
