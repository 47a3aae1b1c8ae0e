// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package yx5300

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultResponseTimeout = 500 * time.Millisecond
	defaultMaxMalformed    = 8
	pollInterval           = 5 * time.Millisecond
)

// EventHandler receives unsolicited frames seen while waiting for replies
type EventHandler func(r *Response)

// Player drives a module over a Transport. The protocol has no request
// identifiers, so a Player sends one command and drains its replies before
// the next. A Player is not safe for concurrent use.
type Player struct {
	t       Transport
	dec     *Decoder
	log     zerolog.Logger
	stats   *Statistics
	onEvent EventHandler

	timeout      time.Duration
	acks         bool
	maxMalformed int
	malformed    int
}

// PlayerOption configures a Player
type PlayerOption func(*Player)

// WithLogger sets the logger used for resyncs, malformed frames and unknown codes
func WithLogger(log zerolog.Logger) PlayerOption {
	return func(p *Player) {
		p.log = log
	}
}

// WithResponseTimeout bounds how long queries wait for their reply
func WithResponseTimeout(d time.Duration) PlayerOption {
	return func(p *Player) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithEventHandler sets the handler for unsolicited events
func WithEventHandler(h EventHandler) PlayerOption {
	return func(p *Player) {
		p.onEvent = h
	}
}

// WithStatistics records every decode attempt into s
func WithStatistics(s *Statistics) PlayerOption {
	return func(p *Player) {
		p.stats = s
	}
}

// WithAcks requests feedback on every command and waits for STS_ACK_OK
func WithAcks() PlayerOption {
	return func(p *Player) {
		p.acks = true
	}
}

// WithMaxMalformed sets how many consecutive malformed frames are tolerated
// before ErrDegradedLink. Zero disables the check.
func WithMaxMalformed(n int) PlayerOption {
	return func(p *Player) {
		p.maxMalformed = n
	}
}

// WithDecoder replaces the default decoder
func WithDecoder(d *Decoder) PlayerOption {
	return func(p *Player) {
		p.dec = d
	}
}

// NewPlayer creates a player on t
func NewPlayer(t Transport, opts ...PlayerOption) *Player {
	p := &Player{
		t:            t,
		dec:          NewDecoder(),
		log:          zerolog.Nop(),
		timeout:      defaultResponseTimeout,
		maxMalformed: defaultMaxMalformed,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Send encodes and writes cmd without waiting for anything
func (p *Player) Send(cmd Command) error {
	frame := cmd.Bytes()
	p.log.Debug().Str("cmd", cmd.String()).Str("frame", FormatHex(frame)).Msg("send")
	if _, err := p.t.Write(frame); err != nil {
		return fmt.Errorf("write %s: %w", FormatOpcode(cmd.Opcode), err)
	}
	return nil
}

// Next decodes one buffered frame, or returns (nil, nil) if none is buffered.
// Malformed frames are returned as errors and counted toward ErrDegradedLink.
func (p *Player) Next(ctx context.Context) (*Response, error) {
	before := p.dec.Skipped()
	r, err := p.dec.TryDecodeOne(ctx, p.t)
	if skipped := p.dec.Skipped() - before; skipped > 0 {
		p.log.Debug().Int("bytes", skipped).Msg("resynchronized")
		if p.stats != nil {
			p.stats.AddSkipped(skipped)
		}
	}

	if err != nil {
		if errors.Is(err, ErrMalformedFrame) || errors.Is(err, ErrVersionMismatch) {
			if p.stats != nil {
				p.stats.Update(nil, err, nil)
			}
			p.malformed++
			p.log.Warn().Err(err).Str("raw", FormatHex(p.dec.GetRawBytes())).Msg("frame rejected")
			if p.maxMalformed > 0 && p.malformed >= p.maxMalformed {
				return nil, fmt.Errorf("%d consecutive bad frames: %w", p.malformed, ErrDegradedLink)
			}
		}
		return nil, err
	}
	if r == nil {
		return nil, nil
	}

	p.malformed = 0
	if p.stats != nil {
		p.stats.Update(r, nil, ValidateResponse(r))
	}
	if r.Kind() == KindUnknown {
		p.log.Warn().Uint8("status", uint8(r.status)).Uint16("data", r.data).Msg("unknown status code")
	}
	return r, nil
}

// Drain decodes every frame currently buffered. Events are also passed to
// the event handler. Malformed frames are skipped; transport errors and
// ErrDegradedLink stop the drain.
func (p *Player) Drain(ctx context.Context) ([]*Response, error) {
	var out []*Response
	for {
		r, err := p.Next(ctx)
		if err != nil {
			if isFrameError(err) {
				continue
			}
			return out, err
		}
		if r == nil {
			return out, nil
		}
		if r.IsEvent() {
			p.dispatch(r)
		}
		out = append(out, r)
	}
}

// Exec sends cmd. When feedback is requested, by the command or WithAcks,
// it waits for STS_ACK_OK.
func (p *Player) Exec(ctx context.Context, cmd Command) error {
	if p.acks {
		cmd = cmd.WithFeedback()
	}
	if !cmd.Feedback {
		return p.Send(cmd)
	}
	_, err := p.Query(ctx, cmd, StsAckOK)
	return err
}

// Query sends cmd and waits for a reply with status want. Events arriving
// first go to the event handler; STS_ERR_FILE ends the query with a
// DeviceError.
func (p *Player) Query(ctx context.Context, cmd Command, want Status) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.flush(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", FormatOpcode(cmd.Opcode), err)
	}
	if err := p.Send(cmd); err != nil {
		return nil, err
	}

	for {
		r, err := p.wait(ctx)
		if err != nil {
			if errors.Is(err, ErrTimeout) && p.stats != nil {
				p.stats.Update(nil, ErrTimeout, nil)
			}
			return nil, fmt.Errorf("%s: %w", FormatOpcode(cmd.Opcode), err)
		}

		switch {
		case r.status == want:
			return r, nil
		case r.status == StsErrFile:
			p.dispatch(r)
			return nil, &DeviceError{Opcode: cmd.Opcode, Status: r.status, Data: r.data}
		case r.IsEvent():
			p.dispatch(r)
		default:
			p.log.Debug().Str("status", r.status.String()).Uint16("data", r.data).Msg("ignored reply")
		}
	}
}

// flush drains frames left over from earlier commands so they are not taken
// as the reply to the next one. Events still reach the event handler.
func (p *Player) flush(ctx context.Context) error {
	stale, err := p.Drain(ctx)
	for _, r := range stale {
		if !r.IsEvent() {
			p.log.Debug().Str("status", r.status.String()).Uint16("data", r.data).Msg("discarded stale reply")
		}
	}
	return err
}

// wait blocks until a well-formed frame arrives or ctx ends
func (p *Player) wait(ctx context.Context) (*Response, error) {
	for {
		r, err := p.Next(ctx)
		if err != nil {
			if isFrameError(err) {
				continue
			}
			return nil, err
		}
		if r != nil {
			return r, nil
		}
		if err := p.waitBuffered(ctx); err != nil {
			return nil, err
		}
	}
}

func (p *Player) waitBuffered(ctx context.Context) error {
	if w, ok := p.t.(Waiter); ok {
		return w.WaitBuffered(ctx, p.dec.Need())
	}
	select {
	case <-ctx.Done():
		return contextError(ctx)
	case <-time.After(pollInterval):
		return nil
	}
}

func (p *Player) dispatch(r *Response) {
	p.log.Debug().Str("event", r.status.Name()).Uint16("data", r.data).Msg("event")
	if p.onEvent != nil {
		p.onEvent(r)
	}
}

// isFrameError reports a recoverable frame rejection (not a degraded link)
func isFrameError(err error) bool {
	if errors.Is(err, ErrDegradedLink) {
		return false
	}
	return errors.Is(err, ErrMalformedFrame) || errors.Is(err, ErrVersionMismatch)
}

// Playback

// Play resumes playback
func (p *Player) Play(ctx context.Context) error {
	return p.Exec(ctx, NewPlay())
}

// Pause pauses playback
func (p *Player) Pause(ctx context.Context) error {
	return p.Exec(ctx, NewPause())
}

// Stop stops playback
func (p *Player) Stop(ctx context.Context) error {
	return p.Exec(ctx, NewStop())
}

// NextTrack skips to the next track
func (p *Player) NextTrack(ctx context.Context) error {
	return p.Exec(ctx, NewNextSong())
}

// PreviousTrack returns to the previous track
func (p *Player) PreviousTrack(ctx context.Context) error {
	return p.Exec(ctx, NewPrevSong())
}

// SetVolume sets the volume, clamped to MaxVolume
func (p *Player) SetVolume(ctx context.Context, volume uint8) error {
	return p.Exec(ctx, NewSetVolume(volume))
}

// SetEqualizer selects an equalizer preset
func (p *Player) SetEqualizer(ctx context.Context, mode uint8) error {
	return p.Exec(ctx, NewSetEqualizer(mode))
}

// SelectDevice selects the storage device
func (p *Player) SelectDevice(ctx context.Context, dev Device) error {
	return p.Exec(ctx, NewSelectDevice(dev))
}

// PlayFolderFile plays file in folder
func (p *Player) PlayFolderFile(ctx context.Context, folder, file uint8) error {
	return p.Exec(ctx, NewPlayFolderFile(folder, file))
}

// PlayTrack plays the file with the given index
func (p *Player) PlayTrack(ctx context.Context, index uint16) error {
	return p.Exec(ctx, NewPlayTrack(index))
}

// Reset resets the module
func (p *Player) Reset(ctx context.Context) error {
	return p.Exec(ctx, NewReset())
}

// Queries

// QueryStatus returns the active device and play state
func (p *Player) QueryStatus(ctx context.Context) (PlaybackStatus, error) {
	r, err := p.Query(ctx, NewQueryStatus(), StsStatus)
	if err != nil {
		return PlaybackStatus{}, err
	}
	return ParsePlaybackStatus(r.data), nil
}

// QueryVolume returns the current volume
func (p *Player) QueryVolume(ctx context.Context) (uint8, error) {
	r, err := p.Query(ctx, NewQueryVolume(), StsVolume)
	if err != nil {
		return 0, err
	}
	return uint8(r.data), nil
}

// QueryEqualizer returns the current equalizer preset
func (p *Player) QueryEqualizer(ctx context.Context) (uint8, error) {
	r, err := p.Query(ctx, NewQueryEqualizer(), StsEqualizer)
	if err != nil {
		return 0, err
	}
	return uint8(r.data), nil
}

// QueryTotalFiles returns the number of files on the card
func (p *Player) QueryTotalFiles(ctx context.Context) (uint16, error) {
	return p.queryValue(ctx, NewQueryTotalFiles(), StsTotalFiles)
}

// QueryCurrentFile returns the index of the file playing
func (p *Player) QueryCurrentFile(ctx context.Context) (uint16, error) {
	return p.queryValue(ctx, NewQueryPlaying(), StsPlaying)
}

// QueryFolderFiles returns the number of files in folder
func (p *Player) QueryFolderFiles(ctx context.Context, folder uint8) (uint16, error) {
	return p.queryValue(ctx, NewQueryFolderFiles(folder), StsFolderFiles)
}

// QueryFolderCount returns the number of folders on the card
func (p *Player) QueryFolderCount(ctx context.Context) (uint16, error) {
	return p.queryValue(ctx, NewQueryFolderCount(), StsTotalFolder)
}

func (p *Player) queryValue(ctx context.Context, cmd Command, want Status) (uint16, error) {
	r, err := p.Query(ctx, cmd, want)
	if err != nil {
		return 0, err
	}
	return r.data, nil
}
