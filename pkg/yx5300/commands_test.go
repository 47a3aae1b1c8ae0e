// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package yx5300

import "testing"

func TestCommandBuilders(t *testing.T) {
	tests := []struct {
		name   string
		cmd    Command
		opcode byte
		arg1   byte
		arg2   byte
	}{
		{"next song", NewNextSong(), 0x01, 0x00, 0x00},
		{"previous song", NewPrevSong(), 0x02, 0x00, 0x00},
		{"play track 1", NewPlayTrack(1), 0x03, 0x00, 0x01},
		{"play track big endian", NewPlayTrack(0x0102), 0x03, 0x01, 0x02},
		{"play track max", NewPlayTrack(0xFFFF), 0x03, 0xFF, 0xFF},
		{"volume up", NewVolumeUp(), 0x04, 0x00, 0x00},
		{"volume down", NewVolumeDown(), 0x05, 0x00, 0x00},
		{"set volume", NewSetVolume(15), 0x06, 0x00, 15},
		{"set volume max", NewSetVolume(MaxVolume), 0x06, 0x00, 30},
		{"set volume clamped", NewSetVolume(200), 0x06, 0x00, 30},
		{"set equalizer", NewSetEqualizer(EqualizerJazz), 0x07, 0x00, 0x03},
		{"set equalizer clamped", NewSetEqualizer(9), 0x07, 0x00, 0x05},
		{"repeat track", NewRepeatTrack(0x0A0B), 0x08, 0x0A, 0x0B},
		{"select tf", NewSelectDevice(DeviceTF), 0x09, 0x00, 0x02},
		{"select udisk", NewSelectDevice(DeviceUDisk), 0x09, 0x00, 0x01},
		{"select flash", NewSelectDevice(DeviceFlash), 0x09, 0x00, 0x04},
		{"sleep", NewSleep(), 0x0A, 0x00, 0x00},
		{"wake up", NewWakeUp(), 0x0B, 0x00, 0x00},
		{"reset", NewReset(), 0x0C, 0x00, 0x00},
		{"play", NewPlay(), 0x0D, 0x00, 0x00},
		{"pause", NewPause(), 0x0E, 0x00, 0x00},
		{"play folder file", NewPlayFolderFile(1, 2), 0x0F, 0x01, 0x02},
		{"play folder file max", NewPlayFolderFile(MaxFolder, MaxFolderFile), 0x0F, 99, 255},
		{"play folder clamped", NewPlayFolderFile(150, 7), 0x0F, 99, 7},
		{"stop", NewStop(), 0x16, 0x00, 0x00},
		{"folder cycle", NewFolderCycle(3), 0x17, 0x03, 0x00},
		{"folder cycle clamped", NewFolderCycle(255), 0x17, 99, 0x00},
		{"shuffle", NewShuffle(), 0x18, 0x00, 0x00},
		{"repeat on", NewSetRepeat(true), 0x19, 0x00, OptOn},
		{"repeat off", NewSetRepeat(false), 0x19, 0x00, OptOff},
		{"dac on", NewSetDAC(true), 0x1A, 0x00, OptOn},
		{"dac off", NewSetDAC(false), 0x1A, 0x00, OptOff},
		{"play with volume", NewPlayWithVolume(20, 5), 0x22, 20, 5},
		{"play with volume clamped", NewPlayWithVolume(31, 5), 0x22, 30, 5},
		{"shuffle folder", NewShuffleFolder(12), 0x28, 12, 0x00},
		{"shuffle folder clamped", NewShuffleFolder(100), 0x28, 99, 0x00},
		{"query status", NewQueryStatus(), 0x42, 0x00, 0x00},
		{"query volume", NewQueryVolume(), 0x43, 0x00, 0x00},
		{"query equalizer", NewQueryEqualizer(), 0x44, 0x00, 0x00},
		{"query total files", NewQueryTotalFiles(), 0x48, 0x00, 0x00},
		{"query playing", NewQueryPlaying(), 0x4C, 0x00, 0x00},
		{"query folder files", NewQueryFolderFiles(4), 0x4E, 0x00, 0x04},
		{"query folder files clamped", NewQueryFolderFiles(120), 0x4E, 0x00, 99},
		{"query folder count", NewQueryFolderCount(), 0x4F, 0x00, 0x00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cmd.Opcode != tt.opcode {
				t.Errorf("Opcode = 0x%02X, want 0x%02X", tt.cmd.Opcode, tt.opcode)
			}
			if tt.cmd.Arg1 != tt.arg1 || tt.cmd.Arg2 != tt.arg2 {
				t.Errorf("args = 0x%02X 0x%02X, want 0x%02X 0x%02X", tt.cmd.Arg1, tt.cmd.Arg2, tt.arg1, tt.arg2)
			}
			if tt.cmd.Feedback {
				t.Error("builder requested feedback")
			}

			frame := tt.cmd.Bytes()
			want := []byte{StartByte, Version, BodyLen, tt.opcode, FeedbackOff, tt.arg1, tt.arg2, EndByte}
			if string(frame) != string(want) {
				t.Errorf("Bytes() = % X, want % X", frame, want)
			}
		})
	}
}

func TestCommandArg(t *testing.T) {
	if got := NewPlayTrack(300).Arg(); got != 300 {
		t.Errorf("NewPlayTrack(300).Arg() = %d", got)
	}
	if got := NewRepeatTrack(0xBEEF).Arg(); got != 0xBEEF {
		t.Errorf("NewRepeatTrack(0xBEEF).Arg() = 0x%04X", got)
	}
}
