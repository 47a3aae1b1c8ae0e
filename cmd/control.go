// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Thermoquad/yxctl/pkg/yx5300"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Interactive TUI for controlling the module",
	Long: `Control a YX5300 module via an interactive terminal UI.

The left panel lists actions (play, pause, volume, equalizer, storage device,
folder/file selection, ...). Actions that take an argument show an input
field. The right side shows what the module last reported, link statistics
and an event log with card and track events.

Features:
  - All playback commands with argument entry
  - Periodic status refresh (volume, equalizer, files, folders)
  - Event logging (card inserted/removed, track finished, file missing)
  - Statistics tracking
  - Automatic reconnection on connection loss

Tab switches between the action list and the argument field. Enter runs the
selected action, 'r' refreshes the status.

Supports both serial and WebSocket connections.`,
	RunE: runControl,
}

func init() {
	rootCmd.AddCommand(controlCmd)
}

const (
	drainInterval   = 50 * time.Millisecond
	refreshInterval = 5 * time.Second
)

// controlRequest is work for the goroutine that owns the Player. The
// returned message is delivered to the TUI.
type controlRequest struct {
	label string
	run   func(ctx context.Context, p *yx5300.Player) tea.Msg
}

// connectionManager owns the session and serializes all player access on
// one goroutine, reconnecting when the link fails
type connectionManager struct {
	sess     *session
	p        *tea.Program
	requests chan controlRequest
	done     chan struct{}
	stopped  chan struct{}
}

func newConnectionManager() *connectionManager {
	return &connectionManager{
		requests: make(chan controlRequest, 8),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// open starts a session whose events are forwarded to the TUI. Handlers only
// run on the worker goroutine, after the program is set.
func (cm *connectionManager) open() (*session, error) {
	return openSession(yx5300.WithEventHandler(func(r *yx5300.Response) {
		cm.p.Send(controlEventMsg{resp: r})
	}))
}

// submit queues a request without blocking the UI. Returns false when the
// queue is full.
func (cm *connectionManager) submit(req controlRequest) bool {
	select {
	case cm.requests <- req:
		return true
	default:
		return false
	}
}

func runControl(cmd *cobra.Command, args []string) error {
	silenceForTUI()
	cm := newConnectionManager()
	sess, err := cm.open()
	if err != nil {
		return err
	}
	cm.sess = sess
	m := initialControlModel(cm, sess.info)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	cm.p = p

	go cm.workerLoop()
	cm.submit(refreshRequest())

	_, err = p.Run()
	close(cm.done)
	<-cm.stopped
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// workerLoop runs requests and drains unsolicited frames until shutdown
func (cm *connectionManager) workerLoop() {
	defer close(cm.stopped)
	defer func() { cm.sess.Close() }()

	ticker := time.NewTicker(drainInterval)
	defer ticker.Stop()

	for {
		var err error
		select {
		case <-cm.done:
			return

		case req := <-cm.requests:
			ctx := context.Background()
			msg := req.run(ctx, cm.sess.player)
			cm.p.Send(msg)
			if res, ok := msg.(actionResultMsg); ok {
				err = res.err
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), responseTimeout)
			_, err = cm.sess.player.Drain(ctx)
			cancel()
		}

		cm.p.Send(controlStatsMsg(*cm.sess.stats))

		if cm.linkLost(err) {
			cm.p.Send(connectionLostMsg{err: err})
			if !cm.reconnect() {
				return
			}
		}
	}
}

// linkLost reports whether the session must be replaced
func (cm *connectionManager) linkLost(err error) bool {
	if cm.sess.stream.Err() != nil {
		return true
	}
	return err != nil && (errors.Is(err, yx5300.ErrClosed) || errors.Is(err, yx5300.ErrDegradedLink))
}

// reconnect attempts to reconnect with exponential backoff
// Returns false if shutdown was requested during reconnection
func (cm *connectionManager) reconnect() bool {
	cm.sess.Close()

	backoff := 1 * time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-cm.done:
			return false
		case <-time.After(backoff):
		}

		sess, err := cm.open()
		if err == nil {
			cm.sess = sess
			cm.p.Send(reconnectedMsg{connInfo: sess.info})
			cm.submit(refreshRequest())
			return true
		}
		logger.Debug().Err(err).Dur("backoff", backoff).Msg("reconnect failed")

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// refreshRequest queries everything the info command shows
func refreshRequest() controlRequest {
	return controlRequest{
		label: "refresh",
		run: func(ctx context.Context, p *yx5300.Player) tea.Msg {
			return controlInfoMsg{info: queryInfo(ctx, p, false)}
		},
	}
}

// actionRequest wraps a player call whose result is only success or failure
func actionRequest(label string, fn func(ctx context.Context, p *yx5300.Player) error) controlRequest {
	return controlRequest{
		label: label,
		run: func(ctx context.Context, p *yx5300.Player) tea.Msg {
			return actionResultMsg{label: label, err: fn(ctx, p)}
		},
	}
}
