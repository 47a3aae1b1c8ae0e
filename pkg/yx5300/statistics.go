// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package yx5300

import (
	"errors"
	"fmt"
	"time"
)

// Statistics tracks frame counts and link error rates
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalFrames     uint64
	ValidFrames     uint64
	Acks            uint64
	QueryResults    uint64
	Events          uint64
	UnknownCodes    uint64
	MalformedFrames uint64
	VersionErrors   uint64
	Timeouts        uint64
	Anomalies       uint64
	SkippedBytes    uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update records one decode attempt: either a response with its
// validation errors, or a decode error.
func (s *Statistics) Update(r *Response, decodeErr error, validationErrors []ValidationError) {
	s.TotalFrames++
	s.LastUpdateTime = time.Now()

	if decodeErr != nil {
		switch {
		case errors.Is(decodeErr, ErrTimeout):
			s.Timeouts++
		case errors.Is(decodeErr, ErrVersionMismatch):
			s.VersionErrors++
		default:
			s.MalformedFrames++
		}
		return
	}

	switch r.Kind() {
	case KindAck:
		s.Acks++
	case KindQueryResult:
		s.QueryResults++
	case KindEvent:
		s.Events++
	case KindUnknown:
		s.UnknownCodes++
	}

	if len(validationErrors) > 0 {
		s.Anomalies++
	} else {
		s.ValidFrames++
	}
}

// AddSkipped records bytes discarded during resynchronization
func (s *Statistics) AddSkipped(n int) {
	if n > 0 {
		s.SkippedBytes += uint64(n)
	}
}

// Errors returns the number of failed or anomalous frames
func (s *Statistics) Errors() uint64 {
	return s.MalformedFrames + s.VersionErrors + s.Timeouts + s.Anomalies
}

// CalculateRates calculates frame and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.TotalFrames) / elapsed
		s.ErrorRate = float64(s.Errors()) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	percent := func(n uint64) float64 {
		if s.TotalFrames == 0 {
			return 0
		}
		return float64(n) * 100.0 / float64(s.TotalFrames)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Frames:    %8d\n", s.TotalFrames)
	result += fmt.Sprintf("Valid Frames:    %8d (%.1f%%)\n", s.ValidFrames, percent(s.ValidFrames))
	result += fmt.Sprintf("  Acks:             %5d\n", s.Acks)
	result += fmt.Sprintf("  Query Results:    %5d\n", s.QueryResults)
	result += fmt.Sprintf("  Events:           %5d\n", s.Events)

	if s.UnknownCodes > 0 {
		result += fmt.Sprintf("Unknown Codes:   %8d (%.1f%%)\n", s.UnknownCodes, percent(s.UnknownCodes))
	}
	if s.MalformedFrames > 0 {
		result += fmt.Sprintf("Malformed:       %8d (%.1f%%)\n", s.MalformedFrames, percent(s.MalformedFrames))
	}
	if s.VersionErrors > 0 {
		result += fmt.Sprintf("Version Errors:  %8d (%.1f%%)\n", s.VersionErrors, percent(s.VersionErrors))
	}
	if s.Timeouts > 0 {
		result += fmt.Sprintf("Timeouts:        %8d\n", s.Timeouts)
	}
	if s.Anomalies > 0 {
		result += fmt.Sprintf("Anomalies:       %8d (%.1f%%)\n", s.Anomalies, percent(s.Anomalies))
	}
	if s.SkippedBytes > 0 {
		result += fmt.Sprintf("Skipped Bytes:   %8d\n", s.SkippedBytes)
	}

	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
