// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package yx5300

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// CaptureRecord is one entry of a capture file. Records are written as a
// CBOR sequence using integer keys.
type CaptureRecord struct {
	Time   time.Time `cbor:"0,keyasint"`
	Raw    []byte    `cbor:"1,keyasint"`
	Status uint8     `cbor:"2,keyasint"`
	Data   uint16    `cbor:"3,keyasint"`
	Error  string    `cbor:"4,keyasint,omitempty"`
}

// NewCaptureRecord builds a record from a decode result
func NewCaptureRecord(r *Response, decodeErr error, raw []byte) CaptureRecord {
	rec := CaptureRecord{Time: time.Now()}
	if r != nil {
		rec.Time = r.timestamp
		rec.Raw = append([]byte(nil), r.raw...)
		rec.Status = uint8(r.status)
		rec.Data = r.data
	} else {
		rec.Raw = append([]byte(nil), raw...)
	}
	if decodeErr != nil {
		rec.Error = decodeErr.Error()
	}
	return rec
}

// Response re-decodes the raw frame of the record
func (c CaptureRecord) Response() (*Response, error) {
	r, err := ParseResponse(c.Raw)
	if err != nil {
		return nil, err
	}
	r.timestamp = c.Time
	return r, nil
}

// CaptureWriter appends records to w
type CaptureWriter struct {
	enc *cbor.Encoder
}

// NewCaptureWriter creates a capture writer
func NewCaptureWriter(w io.Writer) (*CaptureWriter, error) {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		return nil, fmt.Errorf("capture encoder: %w", err)
	}
	return &CaptureWriter{enc: em.NewEncoder(w)}, nil
}

// Write appends one record
func (c *CaptureWriter) Write(rec CaptureRecord) error {
	if err := c.enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to encode capture record: %w", err)
	}
	return nil
}

// CaptureReader reads records written by CaptureWriter
type CaptureReader struct {
	dec *cbor.Decoder
}

// NewCaptureReader creates a capture reader
func NewCaptureReader(r io.Reader) *CaptureReader {
	return &CaptureReader{dec: cbor.NewDecoder(r)}
}

// Next returns the next record, or io.EOF at the end of the capture
func (c *CaptureReader) Next() (CaptureRecord, error) {
	var rec CaptureRecord
	if err := c.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return CaptureRecord{}, io.EOF
		}
		return CaptureRecord{}, fmt.Errorf("failed to decode capture record: %w", err)
	}
	return rec, nil
}

// ReadCapture reads every record from r
func ReadCapture(r io.Reader) ([]CaptureRecord, error) {
	cr := NewCaptureReader(r)
	var out []CaptureRecord
	for {
		rec, err := cr.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}
