// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Thermoquad/yxctl/pkg/yx5300"
	"github.com/spf13/cobra"
)

var infoFolders bool

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Query the module's playback state and media",
	Long: `Run every status query and print a summary of the module.

Queries status, volume, equalizer, total file count, current file and folder
count. With --folders the file count of each folder is listed as well.

Queries that time out are reported but do not stop the remaining queries.

Exit codes:
  0 - All queries answered
  1 - One or more queries failed or timed out
  2 - Connection error`,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().BoolVar(&infoFolders, "folders", false, "List the file count of every folder")
}

// moduleInfo is the result of a full query round
type moduleInfo struct {
	status      yx5300.PlaybackStatus
	volume      uint8
	equalizer   uint8
	totalFiles  uint16
	currentFile uint16
	folders     uint16
	folderFiles map[uint8]uint16
	failures    []error
}

// queryInfo runs every query against p, collecting failures instead of
// stopping at the first one
func queryInfo(ctx context.Context, p *yx5300.Player, withFolders bool) *moduleInfo {
	info := &moduleInfo{folderFiles: map[uint8]uint16{}}
	record := func(err error) {
		if err != nil {
			info.failures = append(info.failures, err)
		}
	}

	var err error
	info.status, err = p.QueryStatus(ctx)
	record(err)
	info.volume, err = p.QueryVolume(ctx)
	record(err)
	info.equalizer, err = p.QueryEqualizer(ctx)
	record(err)
	info.totalFiles, err = p.QueryTotalFiles(ctx)
	record(err)
	info.currentFile, err = p.QueryCurrentFile(ctx)
	record(err)
	info.folders, err = p.QueryFolderCount(ctx)
	record(err)

	if withFolders && err == nil {
		for f := uint16(1); f <= info.folders && f <= yx5300.MaxFolder; f++ {
			n, err := p.QueryFolderFiles(ctx, uint8(f))
			if err != nil {
				record(fmt.Errorf("folder %02d: %w", f, err))
				continue
			}
			info.folderFiles[uint8(f)] = n
		}
	}
	return info
}

func runInfo(cmd *cobra.Command, args []string) error {
	s := mustOpenSession(yx5300.WithEventHandler(printEvent))
	defer s.Close()

	fmt.Printf("yxctl - Module Info\n")
	fmt.Printf("Connection: %s\n", s.info)
	fmt.Printf("Timeout: %v per query\n\n", responseTimeout)

	info := queryInfo(context.Background(), s.player, infoFolders)

	fmt.Printf("Device:       %s\n", yx5300.FormatDevice(info.status.Device))
	fmt.Printf("State:        %s\n", yx5300.FormatPlayState(info.status.State))
	fmt.Printf("Volume:       %d/%d\n", info.volume, yx5300.MaxVolume)
	fmt.Printf("Equalizer:    %s\n", yx5300.FormatEqualizer(info.equalizer))
	fmt.Printf("Total files:  %d\n", info.totalFiles)
	fmt.Printf("Current file: %d\n", info.currentFile)
	fmt.Printf("Folders:      %d\n", info.folders)
	for f := uint8(1); f <= yx5300.MaxFolder; f++ {
		if n, ok := info.folderFiles[f]; ok {
			fmt.Printf("  %02d: %d files\n", f, n)
		}
	}

	if len(info.failures) > 0 {
		fmt.Printf("\n--- %d queries failed ---\n", len(info.failures))
		for _, err := range info.failures {
			fmt.Printf("  %v\n", err)
		}
		s.Close()
		os.Exit(exitCode(errors.Join(info.failures...)))
	}
	return nil
}
