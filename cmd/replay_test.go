// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Thermoquad/yxctl/pkg/yx5300"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayCapture(t *testing.T) {
	var capture bytes.Buffer
	w, err := yx5300.NewCaptureWriter(&capture)
	require.NoError(t, err)

	good, err := yx5300.ParseResponse(reply(yx5300.StsVolume, 12))
	require.NoError(t, err)
	require.NoError(t, w.Write(yx5300.NewCaptureRecord(good, nil, nil)))

	event, err := yx5300.ParseResponse(reply(yx5300.StsTFInsert, 2))
	require.NoError(t, err)
	require.NoError(t, w.Write(yx5300.NewCaptureRecord(event, nil, nil)))

	bad := reply(yx5300.StsVolume, 12)
	bad[9] = 0x00
	_, decodeErr := yx5300.ParseResponse(bad)
	require.Error(t, decodeErr)
	require.NoError(t, w.Write(yx5300.NewCaptureRecord(nil, decodeErr, bad)))

	var out bytes.Buffer
	stats, err := replayCapture(&capture, &out, false)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "STS_VOLUME (0x43)")
	assert.Contains(t, text, "Volume: 12/30")
	assert.Contains(t, text, "[ERROR] "+decodeErr.Error())
	assert.Contains(t, text, "Raw: "+yx5300.FormatHex(bad))
	assert.Equal(t, 1, strings.Count(text, "[ERROR]"))

	assert.Equal(t, uint64(3), stats.TotalFrames)
	assert.Equal(t, uint64(2), stats.ValidFrames)
	assert.Equal(t, uint64(1), stats.QueryResults)
	assert.Equal(t, uint64(1), stats.Events)
	assert.Equal(t, uint64(1), stats.MalformedFrames)
}

func TestReplayCapture_Empty(t *testing.T) {
	var out bytes.Buffer
	stats, err := replayCapture(bytes.NewReader(nil), &out, false)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalFrames)
	assert.Empty(t, out.String())
}

func TestReplayCapture_Corrupt(t *testing.T) {
	var out bytes.Buffer
	_, err := replayCapture(bytes.NewReader([]byte{0xFF, 0xFF}), &out, false)
	assert.ErrorContains(t, err, "failed to decode capture record")
}
