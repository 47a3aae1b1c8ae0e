// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"

	"github.com/Thermoquad/yxctl/pkg/yx5300"
	"github.com/spf13/cobra"
)

var repeatCmd = &cobra.Command{
	Use:   "repeat on|off|TRACK",
	Short: "Repeat the current file or loop a track",
	Long: `Control single-file repeat.

"on" and "off" switch repeat of the file currently playing. A number starts
the track with that global index (1-based) and loops it.`,
	Args: cobra.ExactArgs(1),
	RunE: runModeCommand(repeatCommand),
}

var loopCmd = &cobra.Command{
	Use:   "loop FOLDER",
	Short: "Loop every file in a folder",
	Args:  cobra.ExactArgs(1),
	RunE:  runModeCommand(loopCommand),
}

var shuffleCmd = &cobra.Command{
	Use:   "shuffle [FOLDER]",
	Short: "Play all tracks, or the tracks of one folder, in random order",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runModeCommand(shuffleCommand),
}

var dacCmd = &cobra.Command{
	Use:   "dac on|off",
	Short: "Switch the audio DAC output on or off",
	Args:  cobra.ExactArgs(1),
	RunE:  runModeCommand(dacCommand),
}

func init() {
	rootCmd.AddCommand(repeatCmd, loopCmd, shuffleCmd, dacCmd)
}

// runModeCommand builds a command from args and executes it
func runModeCommand(build func(args []string) (yx5300.Command, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		command, err := build(args)
		if err != nil {
			return err
		}
		return runOnPlayer(func(ctx context.Context, p *yx5300.Player) error {
			return p.Exec(ctx, command)
		})
	}
}

func repeatCommand(args []string) (yx5300.Command, error) {
	if on, err := parseOnOff(args[0]); err == nil {
		return yx5300.NewSetRepeat(on), nil
	}
	index, err := parseUint(args[0], 1, 0xFFFF)
	if err != nil {
		return yx5300.Command{}, fmt.Errorf("repeat: expected on, off or a track number: %w", err)
	}
	return yx5300.NewRepeatTrack(uint16(index)), nil
}

func loopCommand(args []string) (yx5300.Command, error) {
	folder, err := parseUint(args[0], 1, yx5300.MaxFolder)
	if err != nil {
		return yx5300.Command{}, fmt.Errorf("folder: %w", err)
	}
	return yx5300.NewFolderCycle(uint8(folder)), nil
}

func shuffleCommand(args []string) (yx5300.Command, error) {
	if len(args) == 0 {
		return yx5300.NewShuffle(), nil
	}
	folder, err := parseUint(args[0], 1, yx5300.MaxFolder)
	if err != nil {
		return yx5300.Command{}, fmt.Errorf("folder: %w", err)
	}
	return yx5300.NewShuffleFolder(uint8(folder)), nil
}

func dacCommand(args []string) (yx5300.Command, error) {
	on, err := parseOnOff(args[0])
	if err != nil {
		return yx5300.Command{}, fmt.Errorf("dac: %w", err)
	}
	return yx5300.NewSetDAC(on), nil
}
