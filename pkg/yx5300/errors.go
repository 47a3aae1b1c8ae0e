// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package yx5300

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrIncomplete is returned when fewer bytes than a full frame are given
	ErrIncomplete = errors.New("incomplete frame")

	// ErrMalformedFrame is returned when the end delimiter is missing or misplaced
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrVersionMismatch is returned by strict decoders for version != 0xFF
	ErrVersionMismatch = errors.New("version mismatch")

	// ErrTimeout is returned when no response arrives before the deadline
	ErrTimeout = errors.New("response timeout")

	// ErrDegradedLink is returned by Player after too many consecutive malformed frames
	ErrDegradedLink = errors.New("degraded link")
)

// contextError maps an ended context to ErrTimeout when its deadline passed.
// Cancellation is returned as is.
func contextError(ctx context.Context) error {
	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}

// FrameError describes a frame rejected by the decoder
type FrameError struct {
	Err error  // ErrMalformedFrame or ErrVersionMismatch
	Raw []byte // Frame bytes including the start delimiter
	Msg string
}

// Error implements the error interface
func (e *FrameError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Msg)
}

// Unwrap returns the sentinel error
func (e *FrameError) Unwrap() error {
	return e.Err
}

// DeviceError is a reply that ended a request unsuccessfully, e.g. STS_ERR_FILE
type DeviceError struct {
	Opcode byte
	Status Status
	Data   uint16
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s failed: %s, data=%d", FormatOpcode(e.Opcode), e.Status.Description(), e.Data)
}

// IsDeviceError returns true if the error is or wraps a DeviceError
func IsDeviceError(err error) bool {
	var de *DeviceError
	return errors.As(err, &de)
}
