// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Protocol flags
	responseTimeout time.Duration
	strictVersion   bool
	requestAcks     bool

	// Ambient flags
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "yxctl",
	Short: "YX5300 serial MP3 player control tool",
	Long: `yxctl - A CLI tool for driving YX5300 / Catalex serial MP3 modules.

Sends playback commands, runs queries, and decodes the module's replies and
unsolicited events (card inserted/removed, track finished, ...).

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 9600]
  WebSocket: --url ws://host/path [--username user]

Defaults for every persistent flag can be set in a TOML file given with
--config (default: $XDG_CONFIG_HOME/yxctl/config.toml). Flags on the command
line win over the file.

For WebSocket authentication, the password is read from the YXCTL_PASSWORD
environment variable, or prompted interactively if not set.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", defaultBaudRate, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL of a serial bridge (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Protocol flags
	rootCmd.PersistentFlags().DurationVarP(&responseTimeout, "timeout", "t", defaultResponseTimeout, "Time to wait for a reply")
	rootCmd.PersistentFlags().BoolVar(&strictVersion, "strict", false, "Reject replies whose version byte is not 0xFF")
	rootCmd.PersistentFlags().BoolVar(&requestAcks, "ack", false, "Request feedback and wait for STS_ACK_OK on every command")

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (TOML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}

// setup loads the config file and initializes logging before any command runs
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(resolveConfigPath(configPath))
	if err != nil {
		return err
	}
	applyConfig(cmd, cfg)
	return initLogger(logLevel)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
