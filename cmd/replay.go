// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Thermoquad/yxctl/pkg/yx5300"
	"github.com/spf13/cobra"
)

var (
	replayRealtime bool
	replayStats    bool
)

var replayCmd = &cobra.Command{
	Use:   "replay FILE",
	Short: "Replay a capture recorded with raw_log --capture",
	Long: `Re-decode and display the frames of a CBOR capture file.

Every record's raw bytes are parsed again, so a capture taken with an older
build is shown with the current status table. Records that failed to decode
when captured are shown with their stored error and raw bytes.

With --realtime the original spacing between frames is kept. With --stats the
frames are validated and a statistics summary is printed at the end.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().BoolVar(&replayRealtime, "realtime", false, "Keep the original timing between frames")
	replayCmd.Flags().BoolVar(&replayStats, "stats", false, "Validate frames and print statistics")
}

func runReplay(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open capture: %w", err)
	}
	defer f.Close()

	stats, err := replayCapture(f, os.Stdout, replayRealtime)
	if err != nil {
		return err
	}
	if replayStats {
		fmt.Println()
		fmt.Print(stats.String())
	}
	return nil
}

// replayCapture prints every record of r to w and returns statistics over
// the replayed frames
func replayCapture(r io.Reader, w io.Writer, realtime bool) (*yx5300.Statistics, error) {
	reader := yx5300.NewCaptureReader(r)
	stats := yx5300.NewStatistics()
	var last time.Time

	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, err
		}

		if realtime && !last.IsZero() {
			if gap := rec.Time.Sub(last); gap > 0 {
				time.Sleep(gap)
			}
		}
		last = rec.Time

		resp, decodeErr := rec.Response()
		if decodeErr != nil {
			stats.Update(nil, decodeErr, nil)
			stored := rec.Error
			if stored == "" {
				stored = decodeErr.Error()
			}
			fmt.Fprintf(w, "[%s] [ERROR] %s\n  Raw: %s\n", rec.Time.Format("15:04:05.000"), stored, yx5300.FormatHex(rec.Raw))
			continue
		}

		stats.Update(resp, nil, yx5300.ValidateResponse(resp))
		fmt.Fprint(w, yx5300.FormatResponse(resp))
	}

	stats.CalculateRates()
	return stats, nil
}
