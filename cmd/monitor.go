// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/Thermoquad/yxctl/pkg/yx5300"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	showAll       bool
	statsInterval int
	useTUI        bool
	pollInterval  time.Duration
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Validate frames and track link statistics",
	Long: `Track malformed frames, unknown status codes and out-of-range values.

This command validates each response frame and detects:
  - Malformed frames (missing end byte) and bytes skipped while resyncing
  - Version and length bytes that differ from 0xFF / 0x06
  - Unknown status codes
  - Out-of-range values (volume > 30, equalizer > 5, unknown device or state)

By default only problems and events are displayed. Use --show-all to display
every frame. With --poll a status query is sent at that interval so the link
is exercised even while the module is idle.

Statistics are printed every --stats-interval seconds in text mode and shown
live in the terminal UI (--tui).`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all frames (not just problems)")
	monitorCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval (seconds)")
	monitorCmd.Flags().BoolVar(&useTUI, "tui", false, "Use terminal UI")
	monitorCmd.Flags().DurationVar(&pollInterval, "poll", 0, "Send CMD_QUERY_STATUS at this interval (0 disables)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	if statsInterval <= 0 {
		return fmt.Errorf("--stats-interval must be positive, got %d", statsInterval)
	}
	if useTUI {
		silenceForTUI()
	}
	dec := newDecoder()
	// Statistics are kept by the consumer so the TUI owns its counters
	s := mustOpenSession(yx5300.WithDecoder(dec), yx5300.WithMaxMalformed(0), yx5300.WithStatistics(nil))
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if pollInterval > 0 {
		go pollStatus(ctx, s.stream, pollInterval)
	}

	if useTUI {
		return runTUIMode(ctx, s, dec)
	}
	return runTextMode(ctx, s, dec)
}

// pollStatus writes status queries until ctx ends. It bypasses the Player,
// which belongs to the listening goroutine.
func pollStatus(ctx context.Context, w *yx5300.Stream, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	frame := yx5300.NewQueryStatus().Bytes()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Write(frame); err != nil {
				logger.Warn().Err(err).Msg("status poll failed")
				return
			}
		}
	}
}

// describeDecodeError returns a label and message for a failed decode
func describeDecodeError(err error) (string, string) {
	a, ok := yx5300.ValidateDecodeError(err)
	if !ok {
		return "DECODE ERROR", err.Error()
	}
	switch a.Type {
	case yx5300.AnomalyVersion:
		return "VERSION ERROR", a.Message
	case yx5300.AnomalyTimeout:
		return "TIMEOUT", a.Message
	default:
		return "MALFORMED FRAME", a.Message
	}
}

// printDecodeError prints a rejected frame in highlighted format
func printDecodeError(err error, raw []byte) {
	timestamp := time.Now().Format("15:04:05.000")
	label, msg := describeDecodeError(err)
	fmt.Printf("[%s] \033[1;31m%s:\033[0m %s\n", timestamp, label, msg)
	fmt.Printf("  Raw: %s\n", yx5300.FormatHex(raw))
	fmt.Printf("  >>> FRAME REJECTED <<<\n\n")
}

// printEventFrame prints an unsolicited event
func printEventFrame(r *yx5300.Response) {
	timestamp := r.Timestamp().Format("15:04:05.000")
	fmt.Printf("[%s] \033[1;32mEVENT:\033[0m %s", timestamp, r.Status().Description())
	if detail := yx5300.FormatData(r.Status(), r.Data()); detail != "" {
		fmt.Printf(" (%s)", detail)
	}
	fmt.Printf("\n\n")
}

// printValidationErrors prints the anomalies found in a frame
func printValidationErrors(r *yx5300.Response, errs []yx5300.ValidationError) {
	timestamp := r.Timestamp().Format("15:04:05.000")
	fmt.Printf("[%s] \033[1;33mVALIDATION ERROR:\033[0m %s (0x%02X)\n", timestamp, r.Status().Name(), uint8(r.Status()))
	fmt.Printf("  Frame: \033[1;32mOK\033[0m %s\n", yx5300.FormatHex(r.Raw()))

	for i, err := range errs {
		switch err.Type {
		case yx5300.AnomalyVersion, yx5300.AnomalyLength:
			fmt.Printf("  Issue %d: \033[1;31m%s\033[0m\n", i+1, err.Message)
		case yx5300.AnomalyUnknownStatus:
			fmt.Printf("  Issue %d: \033[1;33m%s\033[0m\n", i+1, err.Message)
			fmt.Printf("    data=%d (0x%04X)\n", r.Data(), r.Data())
		case yx5300.AnomalyInvalidValue:
			fmt.Printf("  Issue %d: \033[1;33m%s\033[0m\n", i+1, err.Message)
		default:
			fmt.Printf("  Issue %d: %s\n", i+1, err.Message)
		}
	}
	fmt.Printf("\n")
}

// runTUIMode runs the monitor in the Bubble Tea UI
func runTUIMode(ctx context.Context, s *session, dec *yx5300.Decoder) error {
	m := initialModel(s.info, statsInterval, showAll)
	p := tea.NewProgram(m, tea.WithContext(ctx))

	go func() {
		err := listen(ctx, s, dec, func(fr frameResult) bool {
			msg := frameMsg{
				resp:      fr.resp,
				decodeErr: fr.err,
				raw:       fr.raw,
				skipped:   fr.skipped,
			}
			if fr.resp != nil {
				msg.validationErrors = yx5300.ValidateResponse(fr.resp)
			}
			p.Send(msg)
			return true
		})
		if err != nil && ctx.Err() == nil {
			p.Send(linkErrorMsg{err: err})
		}
	}()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// runTextMode runs the monitor with plain output
func runTextMode(ctx context.Context, s *session, dec *yx5300.Decoder) error {
	fmt.Printf("yxctl - Monitor\n")
	fmt.Printf("Connection: %s\n", s.info)
	fmt.Printf("Statistics interval: %d seconds\n", statsInterval)
	if showAll {
		fmt.Printf("Mode: All frames\n")
	} else {
		fmt.Printf("Mode: Problems and events\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	stats := yx5300.NewStatistics()
	results := make(chan frameResult, 16)
	linkErr := make(chan error, 1)

	go func() {
		linkErr <- listen(ctx, s, dec, func(fr frameResult) bool {
			results <- fr
			return true
		})
	}()

	statsTicker := time.NewTicker(time.Duration(statsInterval) * time.Second)
	defer statsTicker.Stop()

	// Rejected frames before the first good one are line noise, not errors
	synchronized := false
	skippedBeforeSync := 0

	for {
		select {
		case fr := <-results:
			stats.AddSkipped(fr.skipped)
			if fr.err != nil {
				if !synchronized {
					skippedBeforeSync += fr.skipped + len(fr.raw)
					continue
				}
				stats.Update(nil, fr.err, nil)
				printDecodeError(fr.err, fr.raw)
				continue
			}

			if !synchronized {
				synchronized = true
				skippedBeforeSync += fr.skipped
				if skippedBeforeSync > 0 {
					fmt.Printf("[SYNC] Synchronized after skipping %d invalid bytes\n\n", skippedBeforeSync)
				} else {
					fmt.Printf("[SYNC] Synchronized\n\n")
				}
			}

			validationErrors := yx5300.ValidateResponse(fr.resp)
			stats.Update(fr.resp, nil, validationErrors)

			switch {
			case len(validationErrors) > 0:
				printValidationErrors(fr.resp, validationErrors)
			case fr.resp.IsEvent():
				printEventFrame(fr.resp)
			case showAll:
				fmt.Print(yx5300.FormatResponse(fr.resp))
			}

		case <-statsTicker.C:
			stats.CalculateRates()
			fmt.Println()
			fmt.Print(stats.String())
			fmt.Println()

		case err := <-linkErr:
			stats.CalculateRates()
			fmt.Println()
			fmt.Print(stats.String())
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}
