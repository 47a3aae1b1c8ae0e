// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Thermoquad/yxctl/pkg/yx5300"
	"github.com/spf13/cobra"
)

var (
	frameTestWait  time.Duration
	frameTestProbe bool
)

var frameTestCmd = &cobra.Command{
	Use:   "frame_test",
	Short: "Test the link by waiting for a valid response frame",
	Long: `Wait for a valid YX5300 response frame on the connection until timeout.

Bytes before the start marker are skipped and malformed frames are ignored;
the command succeeds on the first frame with a correct start and end byte.

The module sends STS_INIT after power-up and events on card insertion, so
plugging the module in while this runs is enough. With --probe a status
query is sent first to provoke a reply.

Exit codes:
  0 - Frame received before timeout
  1 - Timeout reached without receiving a valid frame
  2 - Connection error`,
	RunE: runFrameTest,
}

func init() {
	rootCmd.AddCommand(frameTestCmd)
	frameTestCmd.Flags().DurationVar(&frameTestWait, "wait", 10*time.Second, "How long to wait for a frame")
	frameTestCmd.Flags().BoolVar(&frameTestProbe, "probe", false, "Send CMD_QUERY_STATUS before waiting")
}

func runFrameTest(cmd *cobra.Command, args []string) error {
	s, dec := openListener()
	defer s.Close()

	fmt.Printf("yxctl - Frame Test\n")
	fmt.Printf("Connection: %s\n", s.info)
	fmt.Printf("Timeout: %v\n", frameTestWait)

	if frameTestProbe {
		if err := s.player.Send(yx5300.NewQueryStatus()); err != nil {
			fmt.Fprintf(os.Stderr, "Write error: %v\n", err)
			s.Close()
			os.Exit(exitConnection)
		}
	}
	fmt.Printf("Waiting for valid response frame...\n\n")

	ctx, cancel := context.WithTimeout(context.Background(), frameTestWait)
	defer cancel()

	var got *yx5300.Response
	rejected := 0
	err := listen(ctx, s, dec, func(fr frameResult) bool {
		if fr.err != nil {
			rejected++
			return true
		}
		got = fr.resp
		return false
	})

	if got != nil {
		if skipped := s.stats.SkippedBytes; skipped > 0 || rejected > 0 {
			fmt.Printf("(skipped %d bytes and %d malformed frames before sync)\n", skipped, rejected)
		}
		fmt.Printf("SUCCESS: Received valid frame\n")
		fmt.Printf("  Status: %s (0x%02X)\n", got.Status().Name(), uint8(got.Status()))
		fmt.Printf("  Kind: %s\n", got.Kind())
		fmt.Printf("  Data: %d (0x%04X)\n", got.Data(), got.Data())
		fmt.Printf("  Version: 0x%02X\n", got.Version())
		fmt.Printf("  Checksum: 0x%04X (not verified)\n", got.Checksum())
		fmt.Printf("  Raw: %s\n", yx5300.FormatHex(got.Raw()))
		return nil
	}

	s.Close()
	if errors.Is(err, yx5300.ErrTimeout) {
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid frame received within %v\n", frameTestWait)
		os.Exit(exitProtocol)
	}
	fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
	os.Exit(exitConnection)
	return nil
}
