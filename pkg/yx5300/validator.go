// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package yx5300

import (
	"errors"
	"fmt"
)

// AnomalyType represents different types of response anomalies
type AnomalyType int

const (
	AnomalyVersion AnomalyType = iota
	AnomalyLength
	AnomalyUnknownStatus
	AnomalyInvalidValue
	AnomalyMalformed
	AnomalyTimeout
)

// ValidationError represents a response validation failure
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidateDecodeError describes a failed decode attempt as an anomaly.
// Returns false for errors that are neither frame rejections nor timeouts.
func ValidateDecodeError(err error) (ValidationError, bool) {
	var v ValidationError
	switch {
	case errors.Is(err, ErrVersionMismatch):
		v.Type = AnomalyVersion
	case errors.Is(err, ErrMalformedFrame):
		v.Type = AnomalyMalformed
	case errors.Is(err, ErrTimeout):
		v.Type = AnomalyTimeout
	default:
		return ValidationError{}, false
	}

	v.Message = err.Error()
	var fe *FrameError
	if errors.As(err, &fe) {
		v.Message = fe.Msg
		v.Details = map[string]interface{}{"raw": FormatHex(fe.Raw)}
	}
	return v, true
}

// ValidateResponse checks the fields the decoder does not enforce and the
// data ranges of known replies. Returns an empty slice for a clean frame.
func ValidateResponse(r *Response) []ValidationError {
	errors := []ValidationError{}

	if r.version != Version {
		errors = append(errors, ValidationError{
			Type:    AnomalyVersion,
			Message: fmt.Sprintf("Unexpected version 0x%02X (expected 0x%02X)", r.version, Version),
			Details: map[string]interface{}{"version": r.version, "expected": Version},
		})
	}

	if r.length != BodyLen {
		errors = append(errors, ValidationError{
			Type:    AnomalyLength,
			Message: fmt.Sprintf("Unexpected body length %d (expected %d)", r.length, BodyLen),
			Details: map[string]interface{}{"length": r.length, "expected": BodyLen},
		})
	}

	if !r.status.Known() {
		errors = append(errors, ValidationError{
			Type:    AnomalyUnknownStatus,
			Message: fmt.Sprintf("Unknown status code 0x%02X", uint8(r.status)),
			Details: map[string]interface{}{"status": uint8(r.status), "data": r.data},
		})
		return errors
	}

	switch r.status {
	case StsVolume:
		errors = append(errors, validateRange("volume", r.data, MaxVolume)...)
	case StsEqualizer:
		errors = append(errors, validateRange("equalizer", r.data, MaxEqualizer)...)
	case StsStatus:
		errors = append(errors, validatePlaybackStatus(r.data)...)
	}

	return errors
}

func validateRange(field string, value uint16, max uint16) []ValidationError {
	if value <= max {
		return nil
	}
	return []ValidationError{{
		Type:    AnomalyInvalidValue,
		Message: fmt.Sprintf("Invalid %s=%d (max %d)", field, value, max),
		Details: map[string]interface{}{field: value, "max": max},
	}}
}

func validatePlaybackStatus(data uint16) []ValidationError {
	errors := []ValidationError{}
	ps := ParsePlaybackStatus(data)

	if ps.State > PlayStatePaused {
		errors = append(errors, ValidationError{
			Type:    AnomalyInvalidValue,
			Message: fmt.Sprintf("Invalid play state=%d (max %d)", ps.State, PlayStatePaused),
			Details: map[string]interface{}{"state": ps.State, "max": PlayStatePaused},
		})
	}

	switch ps.Device {
	case 0, DeviceUDisk, DeviceTF, DeviceFlash:
	default:
		errors = append(errors, ValidationError{
			Type:    AnomalyInvalidValue,
			Message: fmt.Sprintf("Invalid storage device 0x%02X", uint8(ps.Device)),
			Details: map[string]interface{}{"device": ps.Device},
		})
	}

	return errors
}
