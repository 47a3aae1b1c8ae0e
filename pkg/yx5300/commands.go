// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package yx5300

// Command builder functions create Command values ready for encoding.
// Arguments outside the ranges the module accepts are clamped.

func split16(v uint16) (byte, byte) {
	return byte(v >> 8), byte(v)
}

func clamp(v, max uint8) uint8 {
	if v > max {
		return max
	}
	return v
}

// NewNextSong creates a CMD_NEXT_SONG command (0x01)
func NewNextSong() Command {
	return NewCommand(CmdNextSong, 0, 0)
}

// NewPrevSong creates a CMD_PREV_SONG command (0x02)
func NewPrevSong() Command {
	return NewCommand(CmdPrevSong, 0, 0)
}

// NewPlayTrack creates a CMD_PLAY_WITH_INDEX command (0x03).
// Index is the file number on the card, starting at 1.
func NewPlayTrack(index uint16) Command {
	hi, lo := split16(index)
	return NewCommand(CmdPlayWithIndex, hi, lo)
}

// NewVolumeUp creates a CMD_VOLUME_UP command (0x04)
func NewVolumeUp() Command {
	return NewCommand(CmdVolumeUp, 0, 0)
}

// NewVolumeDown creates a CMD_VOLUME_DOWN command (0x05)
func NewVolumeDown() Command {
	return NewCommand(CmdVolumeDown, 0, 0)
}

// NewSetVolume creates a CMD_SET_VOLUME command (0x06).
// Volume is clamped to [0, MaxVolume].
func NewSetVolume(volume uint8) Command {
	return NewCommand(CmdSetVolume, 0, clamp(volume, MaxVolume))
}

// NewSetEqualizer creates a CMD_SET_EQUALIZER command (0x07).
// Mode is clamped to [0, MaxEqualizer].
func NewSetEqualizer(mode uint8) Command {
	return NewCommand(CmdSetEqualizer, 0, clamp(mode, MaxEqualizer))
}

// NewRepeatTrack creates a CMD_SNG_CYCL_PLAY command (0x08)
// looping the track with the given index.
func NewRepeatTrack(index uint16) Command {
	hi, lo := split16(index)
	return NewCommand(CmdSingleCyclePlay, hi, lo)
}

// NewSelectDevice creates a CMD_SEL_DEV command (0x09).
// Selecting DeviceTF is required once after power up.
func NewSelectDevice(dev Device) Command {
	return NewCommand(CmdSelectDevice, 0, byte(dev))
}

// NewSleep creates a CMD_SLEEP_MODE command (0x0A)
func NewSleep() Command {
	return NewCommand(CmdSleepMode, 0, 0)
}

// NewWakeUp creates a CMD_WAKE_UP command (0x0B)
func NewWakeUp() Command {
	return NewCommand(CmdWakeUp, 0, 0)
}

// NewReset creates a CMD_RESET command (0x0C).
// The module answers with STS_INIT once it is ready again.
func NewReset() Command {
	return NewCommand(CmdReset, 0, 0)
}

// NewPlay creates a CMD_PLAY command (0x0D) resuming playback
func NewPlay() Command {
	return NewCommand(CmdPlay, 0, 0)
}

// NewPause creates a CMD_PAUSE command (0x0E)
func NewPause() Command {
	return NewCommand(CmdPause, 0, 0)
}

// NewPlayFolderFile creates a CMD_PLAY_FOLDER_FILE command (0x0F).
// Folders are named 01..99 and files 001..255 on the card.
func NewPlayFolderFile(folder, file uint8) Command {
	return NewCommand(CmdPlayFolderFile, clamp(folder, MaxFolder), file)
}

// NewStop creates a CMD_STOP_PLAY command (0x16)
func NewStop() Command {
	return NewCommand(CmdStopPlay, 0, 0)
}

// NewFolderCycle creates a CMD_FOLDER_CYCLE command (0x17)
// looping every file in the folder.
func NewFolderCycle(folder uint8) Command {
	return NewCommand(CmdFolderCycle, clamp(folder, MaxFolder), 0)
}

// NewShuffle creates a CMD_SHUFFLE_PLAY command (0x18)
func NewShuffle() Command {
	return NewCommand(CmdShufflePlay, 0, 0)
}

// NewSetRepeat creates a CMD_SET_SNGL_CYCL command (0x19) switching
// repeat of the current file on or off.
func NewSetRepeat(on bool) Command {
	return NewCommand(CmdSetSingleCycle, 0, onOff(on))
}

// NewSetDAC creates a CMD_SET_DAC command (0x1A)
func NewSetDAC(on bool) Command {
	return NewCommand(CmdSetDAC, 0, onOff(on))
}

// NewPlayWithVolume creates a CMD_PLAY_W_VOL command (0x22)
func NewPlayWithVolume(volume, index uint8) Command {
	return NewCommand(CmdPlayWithVolume, clamp(volume, MaxVolume), index)
}

// NewShuffleFolder creates a CMD_SHUFFLE_FOLDER command (0x28)
func NewShuffleFolder(folder uint8) Command {
	return NewCommand(CmdShuffleFolder, clamp(folder, MaxFolder), 0)
}

// NewQueryStatus creates a CMD_QUERY_STATUS command (0x42)
func NewQueryStatus() Command {
	return NewCommand(CmdQueryStatus, 0, 0)
}

// NewQueryVolume creates a CMD_QUERY_VOLUME command (0x43)
func NewQueryVolume() Command {
	return NewCommand(CmdQueryVolume, 0, 0)
}

// NewQueryEqualizer creates a CMD_QUERY_EQUALIZER command (0x44)
func NewQueryEqualizer() Command {
	return NewCommand(CmdQueryEqualizer, 0, 0)
}

// NewQueryTotalFiles creates a CMD_QUERY_TOT_FILES command (0x48)
func NewQueryTotalFiles() Command {
	return NewCommand(CmdQueryTotalFiles, 0, 0)
}

// NewQueryPlaying creates a CMD_QUERY_PLAYING command (0x4C)
func NewQueryPlaying() Command {
	return NewCommand(CmdQueryPlaying, 0, 0)
}

// NewQueryFolderFiles creates a CMD_QUERY_FLDR_FILES command (0x4E)
func NewQueryFolderFiles(folder uint8) Command {
	return NewCommand(CmdQueryFolderFile, 0, clamp(folder, MaxFolder))
}

// NewQueryFolderCount creates a CMD_QUERY_TOT_FLDR command (0x4F)
func NewQueryFolderCount() Command {
	return NewCommand(CmdQueryTotalFolds, 0, 0)
}

func onOff(on bool) byte {
	if on {
		return OptOn
	}
	return OptOff
}
