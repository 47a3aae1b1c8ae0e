// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Thermoquad/yxctl/pkg/yx5300"
	"github.com/spf13/cobra"
)

// defaultDevice is the storage device used when `device` gets no argument
var defaultDevice = "tf"

// simpleCommands are playback commands that take no arguments
var simpleCommands = []struct {
	use   string
	short string
	build func() yx5300.Command
}{
	{"pause", "Pause playback", yx5300.NewPause},
	{"resume", "Resume paused playback", yx5300.NewPlay},
	{"stop", "Stop playback", yx5300.NewStop},
	{"next", "Skip to the next track", yx5300.NewNextSong},
	{"prev", "Go back to the previous track", yx5300.NewPrevSong},
	{"sleep", "Put the module into sleep mode", yx5300.NewSleep},
	{"wake", "Wake the module from sleep mode", yx5300.NewWakeUp},
	{"reset", "Reset the module", yx5300.NewReset},
}

var playCmd = &cobra.Command{
	Use:   "play [TRACK | FOLDER FILE]",
	Short: "Start playback",
	Long: `Start playback on the module.

With no arguments the current track resumes. One argument plays the track
with that global index (1-based). Two arguments play FILE (1-255) from
folder FOLDER (1-99), matching the 01/001xxx.mp3 naming scheme.

With --volume the volume is set in the same command. This only works with a
single TRACK argument of at most 255.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runPlay,
}

var volumeCmd = &cobra.Command{
	Use:   "volume [N | up | down]",
	Short: "Query or set the volume (0-30)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runVolume,
}

var equalizerCmd = &cobra.Command{
	Use:   "eq [MODE]",
	Short: "Query or set the equalizer (normal, pop, rock, jazz, classic, bass)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEqualizer,
}

var deviceCmd = &cobra.Command{
	Use:   "device [tf | udisk | flash]",
	Short: "Select the storage device",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDevice,
}

var playVolume int

func init() {
	playCmd.Flags().IntVar(&playVolume, "volume", -1, "Set the volume (0-30) while starting TRACK")
	for _, sc := range simpleCommands {
		build := sc.build
		rootCmd.AddCommand(&cobra.Command{
			Use:   sc.use,
			Short: sc.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runOnPlayer(func(ctx context.Context, p *yx5300.Player) error {
					return p.Exec(ctx, build())
				})
			},
		})
	}
	rootCmd.AddCommand(playCmd, volumeCmd, equalizerCmd, deviceCmd)
}

// runOnPlayer opens a session, runs fn, prints any events the module
// reported meanwhile, and exits with the error's exit code on failure
func runOnPlayer(fn func(ctx context.Context, p *yx5300.Player) error) error {
	s := mustOpenSession(yx5300.WithEventHandler(printEvent))
	defer s.Close()

	ctx := context.Background()
	err := fn(ctx, s.player)
	if err == nil {
		drainCtx, cancel := context.WithTimeout(ctx, responseTimeout)
		_, err = s.player.Drain(drainCtx)
		cancel()
	}
	if err != nil {
		s.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
	return nil
}

// exitCode maps an error to the process exit status
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, yx5300.ErrClosed), errors.Is(err, ErrConnectionClosed):
		return exitConnection
	default:
		return exitProtocol
	}
}

func printEvent(r *yx5300.Response) {
	fmt.Printf("Event: %s", yx5300.FormatResponse(r))
}

func runPlay(cmd *cobra.Command, args []string) error {
	command, err := playCommand(args, playVolume)
	if err != nil {
		return err
	}
	return runOnPlayer(func(ctx context.Context, p *yx5300.Player) error {
		return p.Exec(ctx, command)
	})
}

// playCommand builds the play command for args. A negative volume means no
// volume was given.
func playCommand(args []string, volume int) (yx5300.Command, error) {
	if volume >= 0 {
		if len(args) != 1 {
			return yx5300.Command{}, fmt.Errorf("--volume needs exactly one TRACK argument")
		}
		if volume > yx5300.MaxVolume {
			return yx5300.Command{}, fmt.Errorf("volume: %d out of range [0, %d]", volume, yx5300.MaxVolume)
		}
		index, err := parseUint(args[0], 1, 0xFF)
		if err != nil {
			return yx5300.Command{}, fmt.Errorf("track: %w", err)
		}
		return yx5300.NewPlayWithVolume(uint8(volume), uint8(index)), nil
	}

	switch len(args) {
	case 0:
		return yx5300.NewPlay(), nil
	case 1:
		index, err := parseUint(args[0], 1, 0xFFFF)
		if err != nil {
			return yx5300.Command{}, fmt.Errorf("track: %w", err)
		}
		return yx5300.NewPlayTrack(uint16(index)), nil
	default:
		folder, err := parseUint(args[0], 1, yx5300.MaxFolder)
		if err != nil {
			return yx5300.Command{}, fmt.Errorf("folder: %w", err)
		}
		file, err := parseUint(args[1], 1, yx5300.MaxFolderFile)
		if err != nil {
			return yx5300.Command{}, fmt.Errorf("file: %w", err)
		}
		return yx5300.NewPlayFolderFile(uint8(folder), uint8(file)), nil
	}
}

func runVolume(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return runOnPlayer(func(ctx context.Context, p *yx5300.Player) error {
			v, err := p.QueryVolume(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Volume: %d/%d\n", v, yx5300.MaxVolume)
			return nil
		})
	}

	var command yx5300.Command
	switch strings.ToLower(args[0]) {
	case "up", "+":
		command = yx5300.NewVolumeUp()
	case "down", "-":
		command = yx5300.NewVolumeDown()
	default:
		v, err := parseUint(args[0], 0, yx5300.MaxVolume)
		if err != nil {
			return fmt.Errorf("volume: %w", err)
		}
		command = yx5300.NewSetVolume(uint8(v))
	}
	return runOnPlayer(func(ctx context.Context, p *yx5300.Player) error {
		return p.Exec(ctx, command)
	})
}

func runEqualizer(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return runOnPlayer(func(ctx context.Context, p *yx5300.Player) error {
			mode, err := p.QueryEqualizer(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Equalizer: %s\n", yx5300.FormatEqualizer(mode))
			return nil
		})
	}

	mode, err := parseEqualizer(args[0])
	if err != nil {
		return err
	}
	return runOnPlayer(func(ctx context.Context, p *yx5300.Player) error {
		return p.SetEqualizer(ctx, mode)
	})
}

func runDevice(cmd *cobra.Command, args []string) error {
	name := defaultDevice
	if len(args) == 1 {
		name = args[0]
	}
	dev, err := parseDevice(name)
	if err != nil {
		return err
	}
	return runOnPlayer(func(ctx context.Context, p *yx5300.Player) error {
		return p.SelectDevice(ctx, dev)
	})
}

// parseUint parses a decimal or 0x-prefixed value within [min, max]
func parseUint(s string, min, max uint64) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%d out of range [%d, %d]", v, min, max)
	}
	return v, nil
}

// parseDevice maps a device name to its selector value
func parseDevice(name string) (yx5300.Device, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "tf", "sd", "card":
		return yx5300.DeviceTF, nil
	case "udisk", "usb":
		return yx5300.DeviceUDisk, nil
	case "flash":
		return yx5300.DeviceFlash, nil
	}
	return 0, fmt.Errorf("unknown device %q (use tf, udisk or flash)", name)
}

var equalizerNames = []string{"normal", "pop", "rock", "jazz", "classic", "bass"}

// parseEqualizer accepts a mode name or number
func parseEqualizer(s string) (uint8, error) {
	lower := strings.ToLower(s)
	for i, name := range equalizerNames {
		if lower == name {
			return uint8(i), nil
		}
	}
	v, err := parseUint(s, 0, yx5300.MaxEqualizer)
	if err != nil {
		return 0, fmt.Errorf("equalizer: %w", err)
	}
	return uint8(v), nil
}

// parseOnOff accepts on/off and the usual boolean spellings
func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}
