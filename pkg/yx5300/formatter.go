// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package yx5300

import (
	"fmt"
	"strings"
)

// FormatResponse formats a response into a human-readable line
func FormatResponse(r *Response) string {
	timestamp := r.timestamp.Format("15:04:05.000")
	result := fmt.Sprintf("[%s] %s (0x%02X) %s data=%d\n", timestamp, r.status.Name(), uint8(r.status), r.Kind(), r.data)

	if detail := FormatData(r.status, r.data); detail != "" {
		result += "  " + detail + "\n"
	}
	return result
}

// FormatData describes the data value of a known status code.
// Returns "" when there is nothing to add beyond the raw value.
func FormatData(status Status, data uint16) string {
	switch status {
	case StsStatus:
		ps := ParsePlaybackStatus(data)
		return fmt.Sprintf("Device: %s, State: %s", FormatDevice(ps.Device), FormatPlayState(ps.State))
	case StsVolume:
		return fmt.Sprintf("Volume: %d/%d", data, MaxVolume)
	case StsEqualizer:
		return fmt.Sprintf("Equalizer: %s", FormatEqualizer(uint8(data)))
	case StsTotalFiles:
		return fmt.Sprintf("Total files: %d", data)
	case StsPlaying:
		return fmt.Sprintf("Current file: %d", data)
	case StsFolderFiles:
		return fmt.Sprintf("Files in folder: %d", data)
	case StsTotalFolder:
		return fmt.Sprintf("Folders: %d", data)
	case StsFileEnd:
		return fmt.Sprintf("Finished file: %d", data)
	case StsErrFile:
		return fmt.Sprintf("Missing file: %d", data)
	case StsInit:
		names := []string{}
		for _, d := range Devices(data) {
			names = append(names, FormatDevice(d))
		}
		if len(names) == 0 {
			return "Devices: none"
		}
		return "Devices: " + strings.Join(names, ", ")
	}
	return ""
}

// FormatOpcode returns the protocol name of a command opcode
func FormatOpcode(opcode byte) string {
	switch opcode {
	case CmdNone:
		return "CMD_NUL"
	case CmdNextSong:
		return "CMD_NEXT_SONG"
	case CmdPrevSong:
		return "CMD_PREV_SONG"
	case CmdPlayWithIndex:
		return "CMD_PLAY_WITH_INDEX"
	case CmdVolumeUp:
		return "CMD_VOLUME_UP"
	case CmdVolumeDown:
		return "CMD_VOLUME_DOWN"
	case CmdSetVolume:
		return "CMD_SET_VOLUME"
	case CmdSetEqualizer:
		return "CMD_SET_EQUALIZER"
	case CmdSingleCyclePlay:
		return "CMD_SNG_CYCL_PLAY"
	case CmdSelectDevice:
		return "CMD_SEL_DEV"
	case CmdSleepMode:
		return "CMD_SLEEP_MODE"
	case CmdWakeUp:
		return "CMD_WAKE_UP"
	case CmdReset:
		return "CMD_RESET"
	case CmdPlay:
		return "CMD_PLAY"
	case CmdPause:
		return "CMD_PAUSE"
	case CmdPlayFolderFile:
		return "CMD_PLAY_FOLDER_FILE"
	case CmdStopPlay:
		return "CMD_STOP_PLAY"
	case CmdFolderCycle:
		return "CMD_FOLDER_CYCLE"
	case CmdShufflePlay:
		return "CMD_SHUFFLE_PLAY"
	case CmdSetSingleCycle:
		return "CMD_SET_SNGL_CYCL"
	case CmdSetDAC:
		return "CMD_SET_DAC"
	case CmdPlayWithVolume:
		return "CMD_PLAY_W_VOL"
	case CmdShuffleFolder:
		return "CMD_SHUFFLE_FOLDER"
	case CmdQueryStatus:
		return "CMD_QUERY_STATUS"
	case CmdQueryVolume:
		return "CMD_QUERY_VOLUME"
	case CmdQueryEqualizer:
		return "CMD_QUERY_EQUALIZER"
	case CmdQueryTotalFiles:
		return "CMD_QUERY_TOT_FILES"
	case CmdQueryPlaying:
		return "CMD_QUERY_PLAYING"
	case CmdQueryFolderFile:
		return "CMD_QUERY_FLDR_FILES"
	case CmdQueryTotalFolds:
		return "CMD_QUERY_TOT_FLDR"
	default:
		return "UNKNOWN"
	}
}

// FormatDevice returns the name of a storage device
func FormatDevice(d Device) string {
	switch d {
	case DeviceUDisk:
		return "UDISK"
	case DeviceTF:
		return "TF"
	case DeviceFlash:
		return "FLASH"
	default:
		return fmt.Sprintf("DEVICE_0x%02X", uint8(d))
	}
}

// FormatPlayState returns the name of a play state
func FormatPlayState(s PlayState) string {
	switch s {
	case PlayStateStopped:
		return "STOPPED"
	case PlayStatePlaying:
		return "PLAYING"
	case PlayStatePaused:
		return "PAUSED"
	default:
		return "UNKNOWN"
	}
}

// FormatEqualizer returns the name of an equalizer preset
func FormatEqualizer(mode uint8) string {
	names := []string{"NORMAL", "POP", "ROCK", "JAZZ", "CLASSIC", "BASS"}
	if int(mode) < len(names) {
		return names[mode]
	}
	return "UNKNOWN"
}

// FormatHex formats bytes as space-separated upper-case hex
func FormatHex(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}
