// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package yx5300

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"
)

// pipeDevice is an io.ReadWriteCloser whose read side is fed by reply
type pipeDevice struct {
	r *io.PipeReader
	w *io.PipeWriter

	mu      sync.Mutex
	written bytes.Buffer
	answers [][]byte // Sent back one per write
}

func newPipeDevice() *pipeDevice {
	r, w := io.Pipe()
	return &pipeDevice{r: r, w: w}
}

func (d *pipeDevice) Read(p []byte) (int, error) { return d.r.Read(p) }

func (d *pipeDevice) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.answers) > 0 {
		go d.reply(d.answers[0])
		d.answers = d.answers[1:]
	}
	return d.written.Write(p)
}

// answer queues a frame to be sent back after the next write
func (d *pipeDevice) answer(frame []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.answers = append(d.answers, frame)
}

func (d *pipeDevice) Close() error {
	d.w.Close()
	return d.r.Close()
}

func (d *pipeDevice) reply(frame []byte) {
	d.w.Write(frame)
}

func TestStream_BufferedAndReadFull(t *testing.T) {
	dev := newPipeDevice()
	s := NewStream(dev)
	defer s.Close()

	go dev.reply(buildResponse(0x41, 0))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.WaitBuffered(ctx, ResponseFrameSize); err != nil {
		t.Fatalf("WaitBuffered: %v", err)
	}
	if s.Buffered() != ResponseFrameSize {
		t.Fatalf("Buffered() = %d, want %d", s.Buffered(), ResponseFrameSize)
	}

	head := make([]byte, 4)
	if err := s.ReadFull(ctx, head); err != nil {
		t.Fatalf("ReadFull: %v", err)
	}
	if !bytes.Equal(head, []byte{StartByte, Version, BodyLen, 0x41}) {
		t.Errorf("ReadFull = % X", head)
	}
	if s.Buffered() != ResponseFrameSize-4 {
		t.Errorf("Buffered() = %d after read", s.Buffered())
	}
}

func TestStream_ReadFullTimeout(t *testing.T) {
	dev := newPipeDevice()
	s := NewStream(dev)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := s.ReadFull(ctx, make([]byte, 1))
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}

func TestStream_WaitBufferedCancelled(t *testing.T) {
	dev := newPipeDevice()
	s := NewStream(dev)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := s.WaitBuffered(ctx, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrTimeout) {
		t.Errorf("cancellation reported as ErrTimeout")
	}
}

func TestBuffer_ReadFullCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewBuffer([]byte{1}).ReadFull(ctx, make([]byte, 1))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestStream_EOF(t *testing.T) {
	s := NewStream(&readWriter{r: bytes.NewReader([]byte{0x7E, 0xFF})})
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.ReadFull(ctx, make([]byte, 3))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("err = %v, want io.ErrUnexpectedEOF", err)
	}
	if !errors.Is(s.Err(), io.EOF) {
		t.Errorf("Err() = %v, want io.EOF", s.Err())
	}
}

func TestStream_CloseFailsPendingReads(t *testing.T) {
	dev := newPipeDevice()
	s := NewStream(dev)

	errc := make(chan error, 1)
	go func() {
		errc <- s.ReadFull(context.Background(), make([]byte, 1))
	}()

	time.Sleep(10 * time.Millisecond)
	s.Close()

	select {
	case err := <-errc:
		if err == nil {
			t.Error("ReadFull succeeded after Close")
		}
	case <-time.After(time.Second):
		t.Fatal("ReadFull did not return after Close")
	}
}

func TestStream_WritePassesThrough(t *testing.T) {
	dev := newPipeDevice()
	s := NewStream(dev)
	defer s.Close()

	frame := NewQueryStatus().Bytes()
	if _, err := s.Write(frame); err != nil {
		t.Fatalf("Write: %v", err)
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if !bytes.Equal(dev.written.Bytes(), frame) {
		t.Errorf("written = % X, want % X", dev.written.Bytes(), frame)
	}
}

func TestBuffer_ReadFullShort(t *testing.T) {
	b := NewBuffer([]byte{1, 2})
	err := b.ReadFull(context.Background(), make([]byte, 3))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("err = %v, want io.ErrUnexpectedEOF", err)
	}
	if b.Buffered() != 2 {
		t.Errorf("Buffered() = %d, short read consumed bytes", b.Buffered())
	}
}

type readWriter struct {
	r io.Reader
	w bytes.Buffer
}

func (rw *readWriter) Read(p []byte) (int, error) { return rw.r.Read(p) }

func (rw *readWriter) Write(p []byte) (int, error) { return rw.w.Write(p) }
