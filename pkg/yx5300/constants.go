// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package yx5300 implements the serial protocol spoken by YX5300 / Catalex
// UART MP3 player modules.
//
// Commands are fixed 8-byte frames; the module answers with fixed 10-byte
// frames that are either replies to the last command or unsolicited events
// (card inserted, track finished, ...). The package provides the frame
// encoder, a resynchronizing decoder, the status classifier and a Player
// that applies the request-then-drain discipline the protocol needs.
package yx5300

// Protocol framing bytes
const (
	StartByte = 0x7E // Start of message
	EndByte   = 0xEF // End of message
	Version   = 0xFF
	BodyLen   = 0x06 // Body length excluding SOM/EOM
)

// Feedback flag values
const (
	FeedbackOn  = 0x00
	FeedbackOff = 0x01
)

// Frame sizes
const (
	CommandFrameSize  = 8
	ResponseFrameSize = 10

	// MinBuffered is the smallest threshold a decoder accepts before it
	// starts consuming bytes.
	MinBuffered = 8
)

// Command opcodes
const (
	CmdNone            = 0x00
	CmdNextSong        = 0x01
	CmdPrevSong        = 0x02
	CmdPlayWithIndex   = 0x03
	CmdVolumeUp        = 0x04
	CmdVolumeDown      = 0x05
	CmdSetVolume       = 0x06
	CmdSetEqualizer    = 0x07
	CmdSingleCyclePlay = 0x08
	CmdSelectDevice    = 0x09
	CmdSleepMode       = 0x0A
	CmdWakeUp          = 0x0B
	CmdReset           = 0x0C
	CmdPlay            = 0x0D
	CmdPause           = 0x0E
	CmdPlayFolderFile  = 0x0F
	CmdStopPlay        = 0x16
	CmdFolderCycle     = 0x17
	CmdShufflePlay     = 0x18
	CmdSetSingleCycle  = 0x19
	CmdSetDAC          = 0x1A
	CmdPlayWithVolume  = 0x22
	CmdShuffleFolder   = 0x28
	CmdQueryStatus     = 0x42
	CmdQueryVolume     = 0x43
	CmdQueryEqualizer  = 0x44
	CmdQueryTotalFiles = 0x48
	CmdQueryPlaying    = 0x4C
	CmdQueryFolderFile = 0x4E
	CmdQueryTotalFolds = 0x4F
)

// Command options
const (
	OptOn  = 0x00
	OptOff = 0x01
)

// Device is a storage device selector used by CMD_SEL_DEV
type Device uint8

// Storage devices
const (
	DeviceUDisk Device = 0x01 // not fitted on most boards
	DeviceTF    Device = 0x02
	DeviceFlash Device = 0x04 // not fitted on most boards
)

// Device limits
const (
	MaxVolume     = 30
	MaxEqualizer  = 5
	MaxFolder     = 99
	MaxFolderFile = 255
)

// Equalizer presets for CMD_SET_EQUALIZER
const (
	EqualizerNormal = iota
	EqualizerPop
	EqualizerRock
	EqualizerJazz
	EqualizerClassic
	EqualizerBass
)

// PlayState is the low byte of a STS_STATUS reply
type PlayState uint8

// Play state values
const (
	PlayStateStopped PlayState = 0x00
	PlayStatePlaying PlayState = 0x01
	PlayStatePaused  PlayState = 0x02
)
