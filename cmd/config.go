// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

const (
	defaultBaudRate        = 9600
	defaultResponseTimeout = 500 * time.Millisecond
)

// Config holds the settings a config file may provide
type Config struct {
	Port          string
	Baud          int
	URL           string
	Username      string
	NoSSLVerify   bool
	Timeout       time.Duration
	StrictVersion bool
	Acks          bool
	LogLevel      string
	Device        string
}

// fileConfig is the config.toml key mapping
type fileConfig struct {
	Port          string `toml:"port"`
	Baud          int    `toml:"baud"`
	URL           string `toml:"url"`
	Username      string `toml:"username"`
	NoSSLVerify   bool   `toml:"no_ssl_verify"`
	TimeoutMs     int    `toml:"timeout_ms"`
	StrictVersion bool   `toml:"strict_version"`
	Acks          bool   `toml:"acks"`
	LogLevel      string `toml:"log_level"`
	Device        string `toml:"device"`
}

// DefaultConfig returns the built-in settings
func DefaultConfig() Config {
	return Config{
		Baud:     defaultBaudRate,
		Timeout:  defaultResponseTimeout,
		LogLevel: "warn",
		Device:   "tf",
	}
}

// resolveConfigPath returns the explicit path, or the default path if a file
// exists there, or "".
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, "yxctl", "config.toml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// loadConfig reads path over DefaultConfig. An empty path yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config file %s not found", path)
		}
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("port") {
		cfg.Port = strings.TrimSpace(raw.Port)
	}
	if meta.IsDefined("baud") {
		cfg.Baud = raw.Baud
	}
	if meta.IsDefined("url") {
		cfg.URL = strings.TrimSpace(raw.URL)
	}
	if meta.IsDefined("username") {
		cfg.Username = strings.TrimSpace(raw.Username)
	}
	if meta.IsDefined("no_ssl_verify") {
		cfg.NoSSLVerify = raw.NoSSLVerify
	}
	if meta.IsDefined("timeout_ms") {
		cfg.Timeout = time.Duration(raw.TimeoutMs) * time.Millisecond
	}
	if meta.IsDefined("strict_version") {
		cfg.StrictVersion = raw.StrictVersion
	}
	if meta.IsDefined("acks") {
		cfg.Acks = raw.Acks
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	}
	if meta.IsDefined("device") {
		cfg.Device = strings.ToLower(strings.TrimSpace(raw.Device))
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	if cfg.Baud <= 0 {
		return fmt.Errorf("invalid config: baud must be positive, got %d", cfg.Baud)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("invalid config: timeout_ms must be positive")
	}
	if cfg.Port != "" && cfg.URL != "" {
		return fmt.Errorf("invalid config: port and url are mutually exclusive")
	}
	if _, err := parseDevice(cfg.Device); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// applyConfig copies config values into flags the user did not set
func applyConfig(cmd *cobra.Command, cfg Config) {
	flags := cmd.Flags()
	if !flags.Changed("port") {
		portName = cfg.Port
	}
	if !flags.Changed("baud") {
		baudRate = cfg.Baud
	}
	if !flags.Changed("url") {
		wsURL = cfg.URL
	}
	if !flags.Changed("username") {
		wsUsername = cfg.Username
	}
	if !flags.Changed("no-ssl-verify") {
		wsNoSSLVerify = cfg.NoSSLVerify
	}
	if !flags.Changed("timeout") {
		responseTimeout = cfg.Timeout
	}
	if !flags.Changed("strict") {
		strictVersion = cfg.StrictVersion
	}
	if !flags.Changed("ack") {
		requestAcks = cfg.Acks
	}
	if !flags.Changed("log-level") {
		logLevel = cfg.LogLevel
	}
	defaultDevice = cfg.Device
}
