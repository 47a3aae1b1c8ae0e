// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package yx5300

import (
	"bytes"
	"context"
	"fmt"
	"time"
)

// Decoder pulls response frames out of a Transport. Every call restarts at
// the delimiter search.
type Decoder struct {
	minBuffered   int
	strictVersion bool

	skipped int    // Bytes discarded while searching for StartByte
	raw     []byte // Bytes of the last frame attempt
	carry   []byte // Tail of a rejected frame, searched before the transport
}

// DecoderOption configures a Decoder
type DecoderOption func(*Decoder)

// WithStrictVersion makes the decoder reject frames whose version byte is not 0xFF
func WithStrictVersion() DecoderOption {
	return func(d *Decoder) {
		d.strictVersion = true
	}
}

// WithMinBuffered sets how many bytes must be buffered before the decoder
// consumes anything. Values below MinBuffered are raised to MinBuffered.
func WithMinBuffered(n int) DecoderOption {
	return func(d *Decoder) {
		if n < MinBuffered {
			n = MinBuffered
		}
		d.minBuffered = n
	}
}

// NewDecoder creates a new response decoder
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		minBuffered: ResponseFrameSize,
		raw:         make([]byte, 0, ResponseFrameSize),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Skipped returns the number of bytes discarded so far during resynchronization
func (d *Decoder) Skipped() int {
	return d.skipped
}

// Need returns how many bytes the transport must buffer before
// TryDecodeOne can make progress
func (d *Decoder) Need() int {
	if n := d.minBuffered - len(d.carry); n > 1 {
		return n
	}
	return 1
}

// GetRawBytes returns the bytes of the last frame attempt
func (d *Decoder) GetRawBytes() []byte {
	return d.raw
}

// TryDecodeOne decodes the next frame from t.
// Returns (nil, nil) when no complete frame is buffered yet; nothing is
// consumed in that case unless leading garbage was discarded.
// Returns an error wrapping ErrMalformedFrame, ErrVersionMismatch or
// ErrTimeout when a frame could not be decoded.
//
// A frame with a bad end byte is discarded, but if its body holds another
// StartByte the search resumes there, so a stray 0x7E in line noise does
// not swallow the real frame that follows it.
func (d *Decoder) TryDecodeOne(ctx context.Context, t Transport) (*Response, error) {
	one := make([]byte, 1)
	for {
		if len(d.carry)+t.Buffered() < d.minBuffered {
			return nil, nil
		}
		if err := d.read(ctx, t, one); err != nil {
			return nil, fmt.Errorf("read start byte: %w", err)
		}
		if one[0] == StartByte {
			break
		}
		d.skipped++
	}

	frame := make([]byte, ResponseFrameSize)
	frame[0] = StartByte
	if err := d.read(ctx, t, frame[1:]); err != nil {
		d.raw = append(d.raw[:0], StartByte)
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	d.raw = append(d.raw[:0], frame...)

	r, err := d.parse(frame)
	if err != nil && frame[9] != EndByte {
		if i := bytes.IndexByte(frame[1:], StartByte); i >= 0 {
			d.carry = append(append([]byte(nil), frame[1+i:]...), d.carry...)
		}
	}
	return r, err
}

// read fills p from the carried bytes first, then from t. Carried bytes
// are only consumed when p is filled.
func (d *Decoder) read(ctx context.Context, t Transport, p []byte) error {
	n := copy(p, d.carry)
	if n < len(p) {
		if err := t.ReadFull(ctx, p[n:]); err != nil {
			return err
		}
	}
	d.carry = d.carry[n:]
	return nil
}

// ParseResponse decodes a complete in-memory response frame.
// The version byte is recorded but not checked.
func ParseResponse(frame []byte) (*Response, error) {
	return (&Decoder{}).parse(frame)
}

// ParseResponseStrict is ParseResponse with the version byte checked
func ParseResponseStrict(frame []byte) (*Response, error) {
	return (&Decoder{strictVersion: true}).parse(frame)
}

// parse validates structure only. Frame layout:
//
//	[SOM][VER][LEN][STATUS][FB][DATA_H][DATA_L][CHK_H][CHK_L][EOM]
func (d *Decoder) parse(frame []byte) (*Response, error) {
	if len(frame) < ResponseFrameSize {
		return nil, fmt.Errorf("%w: got %d bytes, need %d", ErrIncomplete, len(frame), ResponseFrameSize)
	}
	frame = frame[:ResponseFrameSize]

	raw := append([]byte(nil), frame...)

	if frame[0] != StartByte {
		return nil, &FrameError{
			Err: ErrMalformedFrame,
			Raw: raw,
			Msg: fmt.Sprintf("start byte 0x%02X, expected 0x%02X", frame[0], StartByte),
		}
	}

	if frame[9] != EndByte {
		return nil, &FrameError{
			Err: ErrMalformedFrame,
			Raw: raw,
			Msg: fmt.Sprintf("end byte 0x%02X, expected 0x%02X", frame[9], EndByte),
		}
	}

	if d.strictVersion && frame[1] != Version {
		return nil, &FrameError{
			Err: ErrVersionMismatch,
			Raw: raw,
			Msg: fmt.Sprintf("version 0x%02X, expected 0x%02X", frame[1], Version),
		}
	}

	return &Response{
		version:   frame[1],
		length:    frame[2],
		status:    Status(frame[3]),
		feedback:  frame[4],
		data:      uint16(frame[5])<<8 | uint16(frame[6]),
		checksum:  uint16(frame[7])<<8 | uint16(frame[8]),
		raw:       raw,
		timestamp: time.Now(),
	}, nil
}
