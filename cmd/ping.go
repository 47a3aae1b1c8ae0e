// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Thermoquad/yxctl/pkg/yx5300"
	"github.com/spf13/cobra"
)

var (
	pingCount    int
	pingInterval time.Duration
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test the link by sending status queries",
	Long: `Send CMD_QUERY_STATUS repeatedly and wait for STS_STATUS replies.

This checks the whole path to the module in both directions: the serial port
or WebSocket bridge, the baud rate, and that the module has booted. Each
reply's round trip time is printed.

Exit codes:
  0 - All pings answered
  1 - One or more pings failed or timed out
  2 - Connection error`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().IntVarP(&pingCount, "count", "n", 3, "Number of pings to send")
	pingCmd.Flags().DurationVar(&pingInterval, "interval", 100*time.Millisecond, "Delay between pings")
}

func runPing(cmd *cobra.Command, args []string) error {
	s := mustOpenSession(yx5300.WithEventHandler(printEvent))
	defer s.Close()

	fmt.Printf("yxctl - Ping Test\n")
	fmt.Printf("Connection: %s\n", s.info)
	fmt.Printf("Timeout: %v per ping\n", responseTimeout)
	fmt.Printf("Count: %d pings\n\n", pingCount)

	ctx := context.Background()
	successCount := 0
	var lastErr error
	var totalRTT time.Duration

	for i := 1; i <= pingCount; i++ {
		fmt.Printf("Ping %d/%d: ", i, pingCount)

		start := time.Now()
		status, err := s.player.QueryStatus(ctx)
		rtt := time.Since(start)
		if err != nil {
			fmt.Printf("FAILED: %v\n", err)
			lastErr = err
		} else {
			fmt.Printf("%s, %s, rtt=%v\n",
				yx5300.FormatDevice(status.Device), yx5300.FormatPlayState(status.State), rtt.Round(time.Millisecond))
			successCount++
			totalRTT += rtt
		}

		if i < pingCount {
			time.Sleep(pingInterval)
		}
	}

	failCount := pingCount - successCount
	fmt.Printf("\n--- Ping statistics ---\n")
	loss := 0.0
	if pingCount > 0 {
		loss = float64(failCount) / float64(pingCount) * 100
	}
	fmt.Printf("%d pings sent, %d replies received, %.0f%% loss\n", pingCount, successCount, loss)
	if successCount > 0 {
		fmt.Printf("average rtt=%v\n", (totalRTT / time.Duration(successCount)).Round(time.Millisecond))
	}
	if s.stats.SkippedBytes > 0 || s.stats.MalformedFrames > 0 {
		fmt.Printf("%d bytes skipped, %d malformed frames\n", s.stats.SkippedBytes, s.stats.MalformedFrames)
	}

	if failCount > 0 {
		s.Close()
		os.Exit(exitCode(lastErr))
	}
	return nil
}
