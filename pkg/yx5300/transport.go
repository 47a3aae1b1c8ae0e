// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package yx5300

import (
	"context"
	"errors"
	"io"
	"sync"
)

// Transport is the byte link to the module. It is owned by a single caller.
type Transport interface {
	// Buffered returns how many bytes can be read without blocking
	Buffered() int

	// ReadFull reads exactly len(p) bytes, blocking until they arrive,
	// the context ends or the link fails. A passed deadline is reported as
	// ErrTimeout, cancellation as the context's error.
	ReadFull(ctx context.Context, p []byte) error

	// Write sends p to the module
	Write(p []byte) (int, error)
}

// Waiter is implemented by transports that can block until n bytes are buffered
type Waiter interface {
	WaitBuffered(ctx context.Context, n int) error
}

// ErrClosed is returned by Stream after Close
var ErrClosed = errors.New("transport closed")

// Stream adapts an io.ReadWriter (serial port, WebSocket bridge) to
// Transport. A pump goroutine copies everything read into an internal
// buffer so Buffered never blocks.
type Stream struct {
	rw io.ReadWriter

	mu     sync.Mutex
	buf    []byte
	err    error
	notify chan struct{} // closed and replaced whenever buf or err changes

	done chan struct{}
	once sync.Once
}

// NewStream starts pumping rw into a buffer
func NewStream(rw io.ReadWriter) *Stream {
	s := &Stream{
		rw:     rw,
		buf:    make([]byte, 0, 256),
		notify: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.pump()
	return s
}

func (s *Stream) pump() {
	buf := make([]byte, 128)
	for {
		n, err := s.rw.Read(buf)

		s.mu.Lock()
		if n > 0 {
			s.buf = append(s.buf, buf[:n]...)
		}
		if err != nil && s.err == nil {
			s.err = err
		}
		failed := s.err != nil
		if n > 0 || failed {
			close(s.notify)
			s.notify = make(chan struct{})
		}
		s.mu.Unlock()

		if failed {
			return
		}
		select {
		case <-s.done:
			return
		default:
		}
	}
}

// Buffered returns the number of bytes waiting in the buffer
func (s *Stream) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf)
}

// WaitBuffered blocks until at least n bytes are buffered
func (s *Stream) WaitBuffered(ctx context.Context, n int) error {
	for {
		s.mu.Lock()
		have, err, notify := len(s.buf), s.err, s.notify
		s.mu.Unlock()

		if have >= n {
			return nil
		}
		if err != nil {
			return err
		}

		select {
		case <-notify:
		case <-s.done:
			return ErrClosed
		case <-ctx.Done():
			return contextError(ctx)
		}
	}
}

// ReadFull consumes exactly len(p) bytes from the buffer
func (s *Stream) ReadFull(ctx context.Context, p []byte) error {
	if err := s.WaitBuffered(ctx, len(p)); err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	copy(p, s.buf)
	s.buf = append(s.buf[:0], s.buf[len(p):]...)
	return nil
}

// Write sends p to the underlying connection
func (s *Stream) Write(p []byte) (int, error) {
	return s.rw.Write(p)
}

// Err returns the error that stopped the pump, if any
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the stream. Pending and later reads return ErrClosed.
// The underlying connection is closed when it implements io.Closer.
func (s *Stream) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		if c, ok := s.rw.(io.Closer); ok {
			err = c.Close()
		}
	})
	return err
}

// Buffer is an in-memory Transport. Bytes fed to it are read back in order;
// bytes written to it are collected in Written.
type Buffer struct {
	in  []byte
	out []byte
}

// NewBuffer creates a buffer transport preloaded with data
func NewBuffer(data []byte) *Buffer {
	return &Buffer{in: append([]byte(nil), data...)}
}

// Feed appends bytes as if they arrived from the module
func (b *Buffer) Feed(data ...byte) {
	b.in = append(b.in, data...)
}

// Buffered returns the number of unread bytes
func (b *Buffer) Buffered() int {
	return len(b.in)
}

// ReadFull reads len(p) bytes or fails with io.ErrUnexpectedEOF without
// consuming anything.
func (b *Buffer) ReadFull(ctx context.Context, p []byte) error {
	if ctx.Err() != nil {
		return contextError(ctx)
	}
	if len(b.in) < len(p) {
		return io.ErrUnexpectedEOF
	}
	copy(p, b.in)
	b.in = b.in[len(p):]
	return nil
}

// Write records p
func (b *Buffer) Write(p []byte) (int, error) {
	b.out = append(b.out, p...)
	return len(p), nil
}

// Written returns everything written so far
func (b *Buffer) Written() []byte {
	return b.out
}
