// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package yx5300

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// ============================================================
// Test Helpers
// ============================================================

// buildResponse creates a well-formed response frame
func buildResponse(status uint8, data uint16) []byte {
	return []byte{StartByte, Version, BodyLen, status, 0x00, byte(data >> 8), byte(data), 0xFE, 0x00, EndByte}
}

// ============================================================
// Encoder Tests
// ============================================================

func TestEncode_SelectDevice(t *testing.T) {
	got := Encode(CmdSelectDevice, 0, 2)
	want := []byte{0x7E, 0xFF, 0x06, 0x09, 0x01, 0x00, 0x02, 0xEF}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode(CMD_SEL_DEV, 0, 2) = % X, want % X", got, want)
	}
}

func TestEncode_PlayFolderFile(t *testing.T) {
	got := Encode(CmdPlayFolderFile, 1, 1)
	want := []byte{0x7E, 0xFF, 0x06, 0x0F, 0x01, 0x01, 0x01, 0xEF}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode(CMD_PLAY_FOLDER_FILE, 1, 1) = % X, want % X", got, want)
	}
}

func TestEncode_FrameLayoutAllInputs(t *testing.T) {
	for op := 0; op < 256; op += 7 {
		for a1 := 0; a1 < 256; a1 += 51 {
			for a2 := 0; a2 < 256; a2 += 85 {
				frame := Encode(byte(op), byte(a1), byte(a2))
				if len(frame) != CommandFrameSize {
					t.Fatalf("len = %d, want %d", len(frame), CommandFrameSize)
				}
				if frame[0] != StartByte || frame[7] != EndByte {
					t.Fatalf("bad delimiters: % X", frame)
				}
				if frame[1] != Version || frame[2] != BodyLen {
					t.Fatalf("bad header: % X", frame)
				}
				if frame[3] != byte(op) || frame[5] != byte(a1) || frame[6] != byte(a2) {
					t.Fatalf("fields not preserved: % X", frame)
				}
				if frame[4] != FeedbackOff {
					t.Fatalf("feedback byte = 0x%02X, want 0x%02X", frame[4], FeedbackOff)
				}
			}
		}
	}
}

func TestCommand_WithFeedback(t *testing.T) {
	cmd := NewPlay().WithFeedback()
	frame := cmd.Bytes()
	if frame[4] != FeedbackOn {
		t.Errorf("feedback byte = 0x%02X, want 0x%02X", frame[4], FeedbackOn)
	}
	if NewPlay().Feedback {
		t.Error("WithFeedback must not modify the original command")
	}
}

// ============================================================
// Decoder Tests
// ============================================================

func TestTryDecodeOne_Ack(t *testing.T) {
	buf := NewBuffer(buildResponse(0x41, 0))
	r, err := NewDecoder().TryDecodeOne(context.Background(), buf)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if r == nil {
		t.Fatal("expected a response")
	}
	if r.Status() != StsAckOK {
		t.Errorf("Status() = %v, want STS_ACK_OK", r.Status())
	}
	if r.Data() != 0 {
		t.Errorf("Data() = %d, want 0", r.Data())
	}
	if r.Kind() != KindAck {
		t.Errorf("Kind() = %v, want ACK", r.Kind())
	}
	if buf.Buffered() != 0 {
		t.Errorf("Buffered() = %d after decode, want 0", buf.Buffered())
	}
}

func TestTryDecodeOne_DataValue(t *testing.T) {
	buf := NewBuffer(buildResponse(0x48, 0x0102))
	r, err := NewDecoder().TryDecodeOne(context.Background(), buf)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if r.Data() != 0x0102 {
		t.Errorf("Data() = 0x%04X, want 0x0102", r.Data())
	}
	if r.Checksum() != 0xFE00 {
		t.Errorf("Checksum() = 0x%04X, want 0xFE00", r.Checksum())
	}
}

func TestTryDecodeOne_Resynchronizes(t *testing.T) {
	garbage := []byte{0x00, 0x13, 0xEF, 0xFF, 0x42}
	buf := NewBuffer(append(garbage, buildResponse(0x3D, 7)...))
	dec := NewDecoder()

	r, err := dec.TryDecodeOne(context.Background(), buf)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if r == nil {
		t.Fatal("expected a response after garbage")
	}
	if r.Status() != StsFileEnd || r.Data() != 7 {
		t.Errorf("got %v data=%d, want STS_FILE_END data=7", r.Status(), r.Data())
	}
	if dec.Skipped() != len(garbage) {
		t.Errorf("Skipped() = %d, want %d", dec.Skipped(), len(garbage))
	}
}

func TestTryDecodeOne_CorruptEndByte(t *testing.T) {
	frame := buildResponse(0x43, 20)
	frame[9] = 0xFF
	r, err := NewDecoder().TryDecodeOne(context.Background(), NewBuffer(frame))
	if r != nil {
		t.Errorf("expected no response, got %v", r.Status())
	}
	if !errors.Is(err, ErrMalformedFrame) {
		t.Fatalf("err = %v, want ErrMalformedFrame", err)
	}
	var fe *FrameError
	if !errors.As(err, &fe) {
		t.Fatal("expected *FrameError")
	}
	if !bytes.Equal(fe.Raw, frame) {
		t.Errorf("FrameError.Raw = % X, want % X", fe.Raw, frame)
	}
}

func TestTryDecodeOne_ShortBufferConsumesNothing(t *testing.T) {
	for n := 0; n < MinBuffered; n++ {
		data := buildResponse(0x41, 0)[:n]
		buf := NewBuffer(data)
		r, err := NewDecoder().TryDecodeOne(context.Background(), buf)
		if r != nil || err != nil {
			t.Fatalf("n=%d: got (%v, %v), want (nil, nil)", n, r, err)
		}
		if buf.Buffered() != n {
			t.Fatalf("n=%d: Buffered() = %d, bytes were consumed", n, buf.Buffered())
		}
	}
}

func TestTryDecodeOne_PartialFrameWaits(t *testing.T) {
	frame := buildResponse(0x4C, 3)
	buf := NewBuffer(frame[:9])
	dec := NewDecoder()

	r, err := dec.TryDecodeOne(context.Background(), buf)
	if r != nil || err != nil {
		t.Fatalf("got (%v, %v), want (nil, nil)", r, err)
	}
	if buf.Buffered() != 9 {
		t.Fatalf("Buffered() = %d, want 9", buf.Buffered())
	}

	buf.Feed(frame[9])
	r, err = dec.TryDecodeOne(context.Background(), buf)
	if err != nil || r == nil {
		t.Fatalf("got (%v, %v) after completing the frame", r, err)
	}
	if r.Status() != StsPlaying || r.Data() != 3 {
		t.Errorf("got %v data=%d", r.Status(), r.Data())
	}
}

func TestTryDecodeOne_MultipleFrames(t *testing.T) {
	var stream []byte
	stream = append(stream, buildResponse(0x41, 0)...)
	stream = append(stream, buildResponse(0x43, 15)...)
	stream = append(stream, buildResponse(0x3A, 2)...)
	buf := NewBuffer(stream)
	dec := NewDecoder()

	want := []Status{StsAckOK, StsVolume, StsTFInsert}
	for i, w := range want {
		r, err := dec.TryDecodeOne(context.Background(), buf)
		if err != nil || r == nil {
			t.Fatalf("frame %d: got (%v, %v)", i, r, err)
		}
		if r.Status() != w {
			t.Errorf("frame %d: Status() = %v, want %v", i, r.Status(), w)
		}
	}

	r, err := dec.TryDecodeOne(context.Background(), buf)
	if r != nil || err != nil {
		t.Errorf("drained stream: got (%v, %v), want (nil, nil)", r, err)
	}
}

func TestTryDecodeOne_RecoversAfterMalformed(t *testing.T) {
	bad := buildResponse(0x43, 1)
	bad[9] = 0x00
	buf := NewBuffer(append(bad, buildResponse(0x41, 0)...))
	dec := NewDecoder()

	if _, err := dec.TryDecodeOne(context.Background(), buf); !errors.Is(err, ErrMalformedFrame) {
		t.Fatalf("first decode: err = %v, want ErrMalformedFrame", err)
	}
	r, err := dec.TryDecodeOne(context.Background(), buf)
	if err != nil || r == nil {
		t.Fatalf("second decode: got (%v, %v)", r, err)
	}
	if r.Status() != StsAckOK {
		t.Errorf("Status() = %v, want STS_ACK_OK", r.Status())
	}
}

func TestTryDecodeOne_StrictVersion(t *testing.T) {
	frame := buildResponse(0x41, 0)
	frame[1] = 0xFE

	if _, err := NewDecoder().TryDecodeOne(context.Background(), NewBuffer(frame)); err != nil {
		t.Errorf("lenient decoder rejected version 0xFE: %v", err)
	}

	_, err := NewDecoder(WithStrictVersion()).TryDecodeOne(context.Background(), NewBuffer(frame))
	if !errors.Is(err, ErrVersionMismatch) {
		t.Errorf("err = %v, want ErrVersionMismatch", err)
	}
}

func TestTryDecodeOne_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDecoder().TryDecodeOne(ctx, NewBuffer(buildResponse(0x41, 0)))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrTimeout) {
		t.Errorf("cancellation reported as ErrTimeout: %v", err)
	}
}

func TestTryDecodeOne_ExpiredContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()
	_, err := NewDecoder().TryDecodeOne(ctx, NewBuffer(buildResponse(0x41, 0)))
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}

func TestTryDecodeOne_FalseStartInNoise(t *testing.T) {
	// A stray 0x7E right before a real frame
	stream := append([]byte{0x7E, 0x01}, buildResponse(0x41, 0)...)
	buf := NewBuffer(stream)
	dec := NewDecoder()

	_, err := dec.TryDecodeOne(context.Background(), buf)
	if !errors.Is(err, ErrMalformedFrame) {
		t.Fatalf("first decode: err = %v, want ErrMalformedFrame", err)
	}
	if dec.Need() != 2 {
		t.Errorf("Need() = %d, want 2", dec.Need())
	}

	r, err := dec.TryDecodeOne(context.Background(), buf)
	if err != nil || r == nil {
		t.Fatalf("second decode: got (%v, %v), want the ACK frame", r, err)
	}
	if r.Status() != StsAckOK {
		t.Errorf("Status() = %v, want STS_ACK_OK", r.Status())
	}
	if buf.Buffered() != 0 || dec.Need() != ResponseFrameSize {
		t.Errorf("Buffered() = %d, Need() = %d after decode", buf.Buffered(), dec.Need())
	}
}

func TestTryDecodeOne_FalseStartWaitsForRest(t *testing.T) {
	frame := buildResponse(0x43, 9)
	buf := NewBuffer(append([]byte{0x7E, 0x00}, frame[:8]...))
	dec := NewDecoder()

	if _, err := dec.TryDecodeOne(context.Background(), buf); !errors.Is(err, ErrMalformedFrame) {
		t.Fatalf("first decode: err = %v, want ErrMalformedFrame", err)
	}
	r, err := dec.TryDecodeOne(context.Background(), buf)
	if r != nil || err != nil {
		t.Fatalf("partial frame: got (%v, %v), want (nil, nil)", r, err)
	}

	buf.Feed(frame[8:]...)
	r, err = dec.TryDecodeOne(context.Background(), buf)
	if err != nil || r == nil {
		t.Fatalf("completed frame: got (%v, %v)", r, err)
	}
	if r.Status() != StsVolume || r.Data() != 9 {
		t.Errorf("got %v data=%d", r.Status(), r.Data())
	}
}

func TestWithMinBuffered_Floor(t *testing.T) {
	d := NewDecoder(WithMinBuffered(2))
	if d.minBuffered != MinBuffered {
		t.Errorf("minBuffered = %d, want %d", d.minBuffered, MinBuffered)
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		frame   []byte
		wantErr error
	}{
		{"valid", buildResponse(0x42, 0x0201), nil},
		{"short", buildResponse(0x42, 0)[:6], ErrIncomplete},
		{"bad start", append([]byte{0x00}, buildResponse(0x42, 0)[1:]...), ErrMalformedFrame},
		{"bad end", append(buildResponse(0x42, 0)[:9], 0x7E), ErrMalformedFrame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseResponse(tt.frame)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Status() != StsStatus || r.Data() != 0x0201 {
				t.Errorf("got %v data=0x%04X", r.Status(), r.Data())
			}
		})
	}
}

// ============================================================
// Classifier Tests
// ============================================================

func TestClassify(t *testing.T) {
	tests := []struct {
		code uint8
		want Kind
		name string
	}{
		{0x00, KindOK, "STS_OK"},
		{0x01, KindTimeout, "STS_TIMEOUT"},
		{0x02, KindVersionMismatch, "STS_VERSION"},
		{0x03, KindChecksumError, "STS_CHECKSUM"},
		{0x3A, KindEvent, "STS_TF_INSERT"},
		{0x3B, KindEvent, "STS_TF_REMOVE"},
		{0x3D, KindEvent, "STS_FILE_END"},
		{0x3F, KindEvent, "STS_INIT"},
		{0x40, KindEvent, "STS_ERR_FILE"},
		{0x41, KindAck, "STS_ACK_OK"},
		{0x42, KindQueryResult, "STS_STATUS"},
		{0x43, KindQueryResult, "STS_VOLUME"},
		{0x44, KindQueryResult, "STS_EQUALIZER"},
		{0x48, KindQueryResult, "STS_TOT_FILES"},
		{0x4C, KindQueryResult, "STS_PLAYING"},
		{0x4E, KindQueryResult, "STS_FLDR_FILES"},
		{0x4F, KindQueryResult, "STS_TOT_FLDR"},
		{0x99, KindUnknown, "UNKNOWN STS"},
		{0x3C, KindUnknown, "UNKNOWN STS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.code); got != tt.want {
				t.Errorf("Classify(0x%02X) = %v, want %v", tt.code, got, tt.want)
			}
			if got := Status(tt.code).Name(); got != tt.name {
				t.Errorf("Name() = %q, want %q", got, tt.name)
			}
		})
	}
}

func TestStatusDescriptions(t *testing.T) {
	if got := StsAckOK.Description(); got != "message acknowledged" {
		t.Errorf("STS_ACK_OK description = %q", got)
	}
	if got := StsFileEnd.Description(); got != "track ended" {
		t.Errorf("STS_FILE_END description = %q", got)
	}
	if got := Status(0x99).Description(); !strings.Contains(got, "0x99") {
		t.Errorf("unknown description %q should carry the raw code", got)
	}
}

func TestQueryReply(t *testing.T) {
	for _, op := range []byte{CmdQueryStatus, CmdQueryVolume, CmdQueryEqualizer, CmdQueryTotalFiles, CmdQueryPlaying, CmdQueryFolderFile, CmdQueryTotalFolds} {
		sts, ok := QueryReply(op)
		if !ok {
			t.Errorf("QueryReply(0x%02X) not found", op)
			continue
		}
		if uint8(sts) != op {
			t.Errorf("QueryReply(0x%02X) = %v", op, sts)
		}
		if sts.Kind() != KindQueryResult {
			t.Errorf("QueryReply(0x%02X) kind = %v", op, sts.Kind())
		}
	}
	if _, ok := QueryReply(CmdPlay); ok {
		t.Error("CMD_PLAY is not a query")
	}
}

// ============================================================
// Payload Tests
// ============================================================

func TestParsePlaybackStatus(t *testing.T) {
	ps := ParsePlaybackStatus(0x0201)
	if ps.Device != DeviceTF {
		t.Errorf("Device = %v, want TF", ps.Device)
	}
	if ps.State != PlayStatePlaying {
		t.Errorf("State = %v, want playing", ps.State)
	}
}

func TestDevices(t *testing.T) {
	devs := Devices(0x06)
	if len(devs) != 2 || devs[0] != DeviceTF || devs[1] != DeviceFlash {
		t.Errorf("Devices(0x06) = %v", devs)
	}
	if len(Devices(0)) != 0 {
		t.Error("Devices(0) should be empty")
	}
}

// ============================================================
// Formatter Tests
// ============================================================

func TestFormatHex(t *testing.T) {
	got := FormatHex(Encode(CmdSelectDevice, 0, 2))
	want := "7E FF 06 09 01 00 02 EF"
	if got != want {
		t.Errorf("FormatHex() = %q, want %q", got, want)
	}
}

func TestFormatResponse(t *testing.T) {
	r, err := ParseResponse(buildResponse(0x42, 0x0202))
	if err != nil {
		t.Fatal(err)
	}
	out := FormatResponse(r)
	for _, want := range []string{"STS_STATUS", "QUERY_RESULT", "TF", "PAUSED"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatResponse() = %q, missing %q", out, want)
		}
	}
}

func TestFormatOpcode(t *testing.T) {
	if FormatOpcode(CmdPlayFolderFile) != "CMD_PLAY_FOLDER_FILE" {
		t.Errorf("FormatOpcode(0x0F) = %q", FormatOpcode(CmdPlayFolderFile))
	}
	if FormatOpcode(0x99) != "UNKNOWN" {
		t.Errorf("FormatOpcode(0x99) = %q", FormatOpcode(0x99))
	}
}
