// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/Thermoquad/yxctl/pkg/yx5300"
	"github.com/spf13/cobra"
)

var rawLogCapture string

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Display every frame from the module in human-readable format",
	Long: `Continuously decode and display YX5300 response frames as they arrive.

Each frame is shown with its timestamp, status name, kind and decoded data.
Malformed frames are printed with their raw bytes. The module only talks
when spoken to or when something happens (card inserted, track finished), so
this is mostly useful alongside another controller on the same line.

With --capture every decode result is also appended to a CBOR capture file
that can be played back with the replay command.

Supports both serial and WebSocket connections.`,
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
	rawLogCmd.Flags().StringVar(&rawLogCapture, "capture", "", "Append decoded frames to a CBOR capture file")
}

// frameResult is one decode attempt seen by a listener
type frameResult struct {
	resp    *yx5300.Response
	err     error
	raw     []byte
	skipped int // garbage bytes discarded since the previous result
}

// listen decodes frames from s until ctx ends, the link fails, or fn
// returns false. Malformed frames are passed to fn rather than stopping it.
func listen(ctx context.Context, s *session, dec *yx5300.Decoder, fn func(frameResult) bool) error {
	reported := dec.Skipped()
	for {
		r, err := s.player.Next(ctx)
		skipped := dec.Skipped() - reported
		switch {
		case err != nil && (errors.Is(err, yx5300.ErrMalformedFrame) || errors.Is(err, yx5300.ErrVersionMismatch)):
			reported += skipped
			raw := append([]byte(nil), dec.GetRawBytes()...)
			if !fn(frameResult{err: err, raw: raw, skipped: skipped}) {
				return nil
			}
			continue
		case err != nil:
			return err
		case r != nil:
			reported += skipped
			if !fn(frameResult{resp: r, raw: r.Raw(), skipped: skipped}) {
				return nil
			}
			continue
		}

		if err := s.stream.WaitBuffered(ctx, dec.Need()); err != nil {
			return err
		}
	}
}

// openListener opens a session for passive decoding. The degraded link check
// is disabled so a noisy line keeps being logged.
func openListener() (*session, *yx5300.Decoder) {
	dec := newDecoder()
	s := mustOpenSession(yx5300.WithDecoder(dec), yx5300.WithMaxMalformed(0))
	return s, dec
}

func runRawLog(cmd *cobra.Command, args []string) error {
	var capture *yx5300.CaptureWriter
	if rawLogCapture != "" {
		f, err := os.OpenFile(rawLogCapture, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open capture file: %w", err)
		}
		defer f.Close()
		capture, err = yx5300.NewCaptureWriter(f)
		if err != nil {
			return err
		}
	}

	s, dec := openListener()
	defer s.Close()

	fmt.Printf("yxctl - Raw Frame Log\n")
	fmt.Printf("Connection: %s\n", s.info)
	if capture != nil {
		fmt.Printf("Capture: %s\n", rawLogCapture)
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := listen(ctx, s, dec, func(fr frameResult) bool {
		if fr.err != nil {
			fmt.Printf("[ERROR] %v\n", fr.err)
		} else {
			fmt.Print(yx5300.FormatResponse(fr.resp))
		}
		if capture != nil {
			if err := capture.Write(yx5300.NewCaptureRecord(fr.resp, fr.err, fr.raw)); err != nil {
				logger.Error().Err(err).Msg("capture write failed")
			}
		}
		return true
	})

	if ctx.Err() != nil {
		return nil
	}
	if errors.Is(err, ErrConnectionClosed) {
		logger.Info().Msg("connection closed")
		return nil
	}
	return err
}
