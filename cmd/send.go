// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"

	"github.com/Thermoquad/yxctl/pkg/yx5300"
	"github.com/spf13/cobra"
)

var (
	sendFeedback bool
	sendDryRun   bool
)

var sendCmd = &cobra.Command{
	Use:   "send OPCODE [ARG1 [ARG2]]",
	Short: "Send a raw command frame",
	Long: `Encode and send an arbitrary command frame.

OPCODE and the arguments accept decimal or 0x-prefixed hex. The encoded frame
is printed before it is sent. With --feedback the frame requests an
acknowledgement and the command waits for STS_ACK_OK. Any replies that arrive
within --timeout are decoded and printed.

Examples:
  # Set volume to 20
  yxctl send 0x06 0 20 --port /dev/ttyUSB0

  # Only print the frame
  yxctl send 0x0F 0x01 0x03 --dry-run`,
	Args: cobra.RangeArgs(1, 3),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().BoolVar(&sendFeedback, "feedback", false, "Request an acknowledgement")
	sendCmd.Flags().BoolVar(&sendDryRun, "dry-run", false, "Print the frame without opening a connection")
}

// parseRawCommand builds a Command from CLI arguments
func parseRawCommand(args []string) (yx5300.Command, error) {
	var b [3]byte
	for i, a := range args {
		v, err := parseUint(a, 0, 0xFF)
		if err != nil {
			return yx5300.Command{}, fmt.Errorf("argument %d: %w", i+1, err)
		}
		b[i] = byte(v)
	}
	return yx5300.NewCommand(b[0], b[1], b[2]), nil
}

func runSend(cmd *cobra.Command, args []string) error {
	command, err := parseRawCommand(args)
	if err != nil {
		return err
	}
	if sendFeedback {
		command = command.WithFeedback()
	}

	fmt.Printf("%s\n", command)
	fmt.Printf("Frame: %s\n", yx5300.FormatHex(command.Bytes()))
	if sendDryRun {
		return nil
	}

	return runOnPlayer(func(ctx context.Context, p *yx5300.Player) error {
		if reply, ok := yx5300.QueryReply(command.Opcode); ok {
			r, err := p.Query(ctx, command, reply)
			if err != nil {
				return err
			}
			fmt.Print(yx5300.FormatResponse(r))
			return nil
		}
		return p.Exec(ctx, command)
	})
}
