// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package yx5300

import "time"

// Response represents a decoded response frame
type Response struct {
	version   uint8
	length    uint8
	status    Status
	feedback  uint8
	data      uint16
	checksum  uint16
	raw       []byte
	timestamp time.Time
}

// NewResponse creates a response with the given status and data value.
// Version and length are set to the protocol constants.
func NewResponse(status Status, data uint16) *Response {
	return &Response{
		version:   Version,
		length:    BodyLen,
		status:    status,
		data:      data,
		timestamp: time.Now(),
	}
}

// Status returns the response's status code
func (r *Response) Status() Status {
	return r.status
}

// Kind returns the classification of the status code
func (r *Response) Kind() Kind {
	return r.status.Kind()
}

// Data returns the 16-bit data value (high byte << 8 | low byte)
func (r *Response) Data() uint16 {
	return r.data
}

// Version returns the version byte as received
func (r *Response) Version() uint8 {
	return r.version
}

// Length returns the body length byte as received
func (r *Response) Length() uint8 {
	return r.length
}

// Feedback returns the feedback byte as received
func (r *Response) Feedback() uint8 {
	return r.feedback
}

// Checksum returns the checksum field. It is recorded, not verified.
func (r *Response) Checksum() uint16 {
	return r.checksum
}

// Raw returns the frame bytes including delimiters
func (r *Response) Raw() []byte {
	return r.raw
}

// Timestamp returns the decode timestamp
func (r *Response) Timestamp() time.Time {
	return r.timestamp
}

// IsEvent returns true for unsolicited notifications
func (r *Response) IsEvent() bool {
	return r.status.IsEvent()
}

// PlaybackStatus is the decoded data value of a STS_STATUS reply
type PlaybackStatus struct {
	Device Device
	State  PlayState
}

// ParsePlaybackStatus splits STS_STATUS data: the high byte is the active
// storage device, the low byte the play state.
func ParsePlaybackStatus(data uint16) PlaybackStatus {
	return PlaybackStatus{
		Device: Device(data >> 8),
		State:  PlayState(data & 0xFF),
	}
}

// Devices lists the storage devices set in a STS_INIT data bitmask
func Devices(mask uint16) []Device {
	var devs []Device
	for _, d := range []Device{DeviceUDisk, DeviceTF, DeviceFlash} {
		if mask&uint16(d) != 0 {
			devs = append(devs, d)
		}
	}
	return devs
}
