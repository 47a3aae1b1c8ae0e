// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package yx5300

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestCapture_WriteRead(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewCaptureWriter(&buf)
	if err != nil {
		t.Fatalf("NewCaptureWriter: %v", err)
	}

	good, err := ParseResponse(buildResponse(0x43, 17))
	if err != nil {
		t.Fatal(err)
	}
	bad := buildResponse(0x41, 0)
	bad[9] = 0x00
	_, badErr := ParseResponse(bad)

	if err := w.Write(NewCaptureRecord(good, nil, nil)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Write(NewCaptureRecord(nil, badErr, bad)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	records, err := ReadCapture(&buf)
	if err != nil {
		t.Fatalf("ReadCapture: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	r, err := records[0].Response()
	if err != nil {
		t.Fatalf("replay good record: %v", err)
	}
	if r.Status() != StsVolume || r.Data() != 17 {
		t.Errorf("replayed %v data=%d", r.Status(), r.Data())
	}
	if !r.Timestamp().Equal(good.Timestamp()) {
		t.Errorf("timestamp %v, want %v", r.Timestamp(), good.Timestamp())
	}

	if records[1].Error == "" {
		t.Error("error record lost its message")
	}
	if _, err := records[1].Response(); !errors.Is(err, ErrMalformedFrame) {
		t.Errorf("replay bad record: err = %v, want ErrMalformedFrame", err)
	}
}

func TestCaptureReader_EOF(t *testing.T) {
	cr := NewCaptureReader(bytes.NewReader(nil))
	if _, err := cr.Next(); err != io.EOF {
		t.Errorf("Next() on empty capture = %v, want io.EOF", err)
	}
}
