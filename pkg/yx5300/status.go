// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package yx5300

import "fmt"

// Status is the status code carried in byte 3 of a response frame
type Status uint8

// Status codes. The first four are generated locally, never by the module.
const (
	StsOK          Status = 0x00 // No error
	StsTimeout     Status = 0x01 // No response within the deadline
	StsVersion     Status = 0x02 // Wrong version in reply
	StsChecksum    Status = 0x03 // Device checksum invalid
	StsTFInsert    Status = 0x3A // TF card inserted (unsolicited)
	StsTFRemove    Status = 0x3B // TF card removed (unsolicited)
	StsFileEnd     Status = 0x3D // Track finished (unsolicited)
	StsInit        Status = 0x3F // Initialization complete (unsolicited)
	StsErrFile     Status = 0x40 // File not found
	StsAckOK       Status = 0x41 // Message acknowledged
	StsStatus      Status = 0x42 // Current status
	StsVolume      Status = 0x43 // Current volume
	StsEqualizer   Status = 0x44 // Equalizer mode
	StsTotalFiles  Status = 0x48 // Total file count
	StsPlaying     Status = 0x4C // Current file index
	StsFolderFiles Status = 0x4E // Files in folder
	StsTotalFolder Status = 0x4F // Folder count
)

// Kind is the semantic class of a status code
type Kind int

// Status kinds
const (
	KindUnknown Kind = iota
	KindOK
	KindTimeout
	KindVersionMismatch
	KindChecksumError
	KindAck
	KindQueryResult
	KindEvent
)

var kindNames = [...]string{
	KindUnknown:         "UNKNOWN",
	KindOK:              "OK",
	KindTimeout:         "TIMEOUT",
	KindVersionMismatch: "VERSION_MISMATCH",
	KindChecksumError:   "CHECKSUM_ERROR",
	KindAck:             "ACK",
	KindQueryResult:     "QUERY_RESULT",
	KindEvent:           "EVENT",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

type statusInfo struct {
	name        string
	kind        Kind
	description string
}

// statusTable must never be written after init.
var statusTable = map[Status]statusInfo{
	StsOK:          {"STS_OK", KindOK, "no error"},
	StsTimeout:     {"STS_TIMEOUT", KindTimeout, "response timeout"},
	StsVersion:     {"STS_VERSION", KindVersionMismatch, "wrong version"},
	StsChecksum:    {"STS_CHECKSUM", KindChecksumError, "checksum invalid"},
	StsTFInsert:    {"STS_TF_INSERT", KindEvent, "card inserted"},
	StsTFRemove:    {"STS_TF_REMOVE", KindEvent, "card removed"},
	StsFileEnd:     {"STS_FILE_END", KindEvent, "track ended"},
	StsInit:        {"STS_INIT", KindEvent, "device initialized"},
	StsErrFile:     {"STS_ERR_FILE", KindEvent, "file not found"},
	StsAckOK:       {"STS_ACK_OK", KindAck, "message acknowledged"},
	StsStatus:      {"STS_STATUS", KindQueryResult, "current status"},
	StsVolume:      {"STS_VOLUME", KindQueryResult, "current volume"},
	StsEqualizer:   {"STS_EQUALIZER", KindQueryResult, "equalizer mode"},
	StsTotalFiles:  {"STS_TOT_FILES", KindQueryResult, "total file count"},
	StsPlaying:     {"STS_PLAYING", KindQueryResult, "current file"},
	StsFolderFiles: {"STS_FLDR_FILES", KindQueryResult, "files in folder"},
	StsTotalFolder: {"STS_TOT_FLDR", KindQueryResult, "folder count"},
}

// Classify maps a raw status byte to its kind. Codes outside the table are
// KindUnknown.
func Classify(code byte) Kind {
	return Status(code).Kind()
}

// Kind returns the semantic class of the status code
func (s Status) Kind() Kind {
	if info, ok := statusTable[s]; ok {
		return info.kind
	}
	return KindUnknown
}

// Known reports whether the code is in the status table
func (s Status) Known() bool {
	_, ok := statusTable[s]
	return ok
}

// Name returns the protocol name, e.g. "STS_ACK_OK", or "UNKNOWN STS"
func (s Status) Name() string {
	if info, ok := statusTable[s]; ok {
		return info.name
	}
	return "UNKNOWN STS"
}

// Description returns what the code means, e.g. "track ended"
func (s Status) Description() string {
	if info, ok := statusTable[s]; ok {
		return info.description
	}
	return fmt.Sprintf("unknown status 0x%02X", uint8(s))
}

// IsEvent reports whether the code is an unsolicited notification
func (s Status) IsEvent() bool {
	return s.Kind() == KindEvent
}

func (s Status) String() string {
	return fmt.Sprintf("%s (0x%02X)", s.Name(), uint8(s))
}

// QueryReply returns the status code a query opcode is answered with.
func QueryReply(opcode byte) (Status, bool) {
	switch opcode {
	case CmdQueryStatus:
		return StsStatus, true
	case CmdQueryVolume:
		return StsVolume, true
	case CmdQueryEqualizer:
		return StsEqualizer, true
	case CmdQueryTotalFiles:
		return StsTotalFiles, true
	case CmdQueryPlaying:
		return StsPlaying, true
	case CmdQueryFolderFile:
		return StsFolderFiles, true
	case CmdQueryTotalFolds:
		return StsTotalFolder, true
	}
	return 0, false
}
