// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"testing"

	"github.com/Thermoquad/yxctl/pkg/yx5300"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeCommands(t *testing.T) {
	tests := []struct {
		name  string
		build func([]string) (yx5300.Command, error)
		args  []string
		want  yx5300.Command
	}{
		{"repeat on", repeatCommand, []string{"on"}, yx5300.NewSetRepeat(true)},
		{"repeat off", repeatCommand, []string{"OFF"}, yx5300.NewSetRepeat(false)},
		{"repeat track", repeatCommand, []string{"12"}, yx5300.NewRepeatTrack(12)},
		{"repeat numeric one is a track", repeatCommand, []string{"1"}, yx5300.NewRepeatTrack(1)},
		{"loop folder", loopCommand, []string{"3"}, yx5300.NewFolderCycle(3)},
		{"shuffle all", shuffleCommand, nil, yx5300.NewShuffle()},
		{"shuffle folder", shuffleCommand, []string{"7"}, yx5300.NewShuffleFolder(7)},
		{"dac on", dacCommand, []string{"on"}, yx5300.NewSetDAC(true)},
		{"dac off", dacCommand, []string{"no"}, yx5300.NewSetDAC(false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.build(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModeCommands_Invalid(t *testing.T) {
	_, err := repeatCommand([]string{"forever"})
	assert.ErrorContains(t, err, "repeat")

	_, err = repeatCommand([]string{"0"})
	assert.Error(t, err)

	_, err = loopCommand([]string{"100"})
	assert.ErrorContains(t, err, "folder")

	_, err = shuffleCommand([]string{"0"})
	assert.ErrorContains(t, err, "folder")

	_, err = dacCommand([]string{"maybe"})
	assert.ErrorContains(t, err, "expected on or off")
}

func TestPlayCommand(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		volume int
		want   yx5300.Command
	}{
		{"resume", nil, -1, yx5300.NewPlay()},
		{"track", []string{"300"}, -1, yx5300.NewPlayTrack(300)},
		{"folder file", []string{"2", "15"}, -1, yx5300.NewPlayFolderFile(2, 15)},
		{"track with volume", []string{"5"}, 20, yx5300.NewPlayWithVolume(20, 5)},
		{"track with volume zero", []string{"1"}, 0, yx5300.NewPlayWithVolume(0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := playCommand(tt.args, tt.volume)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlayCommand_Invalid(t *testing.T) {
	_, err := playCommand(nil, 10)
	assert.ErrorContains(t, err, "exactly one TRACK")

	_, err = playCommand([]string{"1", "2"}, 10)
	assert.ErrorContains(t, err, "exactly one TRACK")

	_, err = playCommand([]string{"256"}, 10)
	assert.ErrorContains(t, err, "track")

	_, err = playCommand([]string{"5"}, 31)
	assert.ErrorContains(t, err, "volume")

	_, err = playCommand([]string{"0"}, -1)
	assert.ErrorContains(t, err, "track")
}

func TestParseOnOff(t *testing.T) {
	for _, s := range []string{"on", "ON", "true", "yes"} {
		v, err := parseOnOff(s)
		require.NoError(t, err, s)
		assert.True(t, v, s)
	}
	for _, s := range []string{"off", "false", "No"} {
		v, err := parseOnOff(s)
		require.NoError(t, err, s)
		assert.False(t, v, s)
	}
	_, err := parseOnOff("1")
	assert.Error(t, err)
}
