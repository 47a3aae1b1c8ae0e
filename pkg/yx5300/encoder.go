// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package yx5300

import "fmt"

// Command is a single command frame. The zero Feedback value leaves
// command feedback off.
type Command struct {
	Opcode   byte
	Feedback bool
	Arg1     byte
	Arg2     byte
}

// NewCommand creates a command with feedback off
func NewCommand(opcode, arg1, arg2 byte) Command {
	return Command{Opcode: opcode, Arg1: arg1, Arg2: arg2}
}

// WithFeedback returns a copy of the command with feedback requested.
// The module then acknowledges it with STS_ACK_OK.
func (c Command) WithFeedback() Command {
	c.Feedback = true
	return c
}

// Arg returns the two argument bytes as a big-endian 16-bit value
func (c Command) Arg() uint16 {
	return uint16(c.Arg1)<<8 | uint16(c.Arg2)
}

// Bytes encodes the command to its 8-byte wire format
func (c Command) Bytes() []byte {
	fb := byte(FeedbackOff)
	if c.Feedback {
		fb = FeedbackOn
	}
	return []byte{StartByte, Version, BodyLen, c.Opcode, fb, c.Arg1, c.Arg2, EndByte}
}

// String returns the opcode name and arguments
func (c Command) String() string {
	return fmt.Sprintf("%s(0x%02X, 0x%02X)", FormatOpcode(c.Opcode), c.Arg1, c.Arg2)
}

// Encode builds the wire frame for opcode with feedback off.
// Opcodes are not range checked.
func Encode(opcode, arg1, arg2 byte) []byte {
	return NewCommand(opcode, arg1, arg2).Bytes()
}
