// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/yxctl/pkg/yx5300"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Event log entry
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for info
}

// moduleState is what the frames seen so far say about the module
type moduleState struct {
	updated     time.Time
	status      *yx5300.PlaybackStatus
	volume      *uint8
	equalizer   *uint8
	currentFile *uint16
	lastEvent   *yx5300.Response
}

// Monitor TUI model
type monitorModel struct {
	connInfo      string
	statsInterval int
	showAll       bool
	stats         *yx5300.Statistics
	eventLog      []eventLogEntry
	maxLogEntries int
	synchronized  bool
	invalidBytes  int
	width         int
	height        int
	quitting      bool
	state         moduleState
	linkErr       error
}

// Messages
type tickMsg time.Time
type frameMsg struct {
	resp             *yx5300.Response
	decodeErr        error
	raw              []byte
	skipped          int
	validationErrors []yx5300.ValidationError
}
type linkErrorMsg struct {
	err error
}

func initialModel(connInfo string, statsInterval int, showAll bool) monitorModel {
	return monitorModel{
		connInfo:      connInfo,
		statsInterval: statsInterval,
		showAll:       showAll,
		stats:         yx5300.NewStatistics(),
		eventLog:      make([]eventLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		tea.EnterAltScreen,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.stats.Reset()
			m.addLogEntry("Statistics reset", false)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.stats.CalculateRates()
		return m, tickCmd()

	case linkErrorMsg:
		m.linkErr = msg.err
		m.addLogEntry(fmt.Sprintf("LINK ERROR: %v", msg.err), true)

	case frameMsg:
		m.handleFrame(msg)
	}

	return m, nil
}

func (m *monitorModel) handleFrame(msg frameMsg) {
	m.stats.AddSkipped(msg.skipped)

	if msg.decodeErr != nil {
		if !m.synchronized {
			m.invalidBytes += msg.skipped + len(msg.raw)
			return
		}
		m.stats.Update(nil, msg.decodeErr, nil)
		label, text := describeDecodeError(msg.decodeErr)
		m.addLogEntry(fmt.Sprintf("%s: %s [%s]", label, text, yx5300.FormatHex(msg.raw)), true)
		return
	}

	if !m.synchronized {
		m.synchronized = true
		m.invalidBytes += msg.skipped
		if m.invalidBytes > 0 {
			m.addLogEntry(fmt.Sprintf("Synchronized after skipping %d invalid bytes", m.invalidBytes), false)
		} else {
			m.addLogEntry("Synchronized", false)
		}
	}

	r := msg.resp
	m.stats.Update(r, nil, msg.validationErrors)
	m.state.apply(r)

	switch {
	case len(msg.validationErrors) > 0:
		for _, err := range msg.validationErrors {
			m.addLogEntry(fmt.Sprintf("%s: %s", r.Status().Name(), err.Message), true)
		}
	case r.IsEvent():
		m.addLogEntry(fmt.Sprintf("%s: %s", r.Status().Name(), r.Status().Description()), r.Status() == yx5300.StsErrFile)
	case m.showAll:
		m.addLogEntry(fmt.Sprintf("%s data=%d (valid)", r.Status().Name(), r.Data()), false)
	}
}

// apply records what a frame says about the module
func (s *moduleState) apply(r *yx5300.Response) {
	s.updated = r.Timestamp()
	switch r.Status() {
	case yx5300.StsStatus:
		ps := yx5300.ParsePlaybackStatus(r.Data())
		s.status = &ps
	case yx5300.StsVolume:
		v := uint8(r.Data())
		s.volume = &v
	case yx5300.StsEqualizer:
		e := uint8(r.Data())
		s.equalizer = &e
	case yx5300.StsPlaying:
		f := r.Data()
		s.currentFile = &f
	}
	if r.IsEvent() {
		s.lastEvent = r
	}
}

func (m *monitorModel) addLogEntry(message string, isError bool) {
	entry := eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.eventLog = append(m.eventLog, entry)

	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("YXCTL - MONITOR"))
	s.WriteString("\n")
	mode := "Problems and events"
	if m.showAll {
		mode = "All frames"
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Mode: %s | 'r' reset stats, 'q' quit", m.connInfo, mode)))
	s.WriteString("\n\n")

	switch {
	case m.linkErr != nil:
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Link down: %v", m.linkErr)))
	case !m.synchronized:
		s.WriteString(warningStyle.Render("⏳ Waiting for synchronization..."))
	default:
		s.WriteString(statsValueStyle.Render("✓ Synchronized"))
		if m.invalidBytes > 0 {
			s.WriteString(headerStyle.Render(fmt.Sprintf(" (skipped %d invalid bytes)", m.invalidBytes)))
		}
	}
	s.WriteString("\n\n")

	// Statistics
	var validPercent, errorPercent float64
	errCount := m.stats.Errors()
	if m.stats.TotalFrames > 0 {
		validPercent = float64(m.stats.ValidFrames) * 100.0 / float64(m.stats.TotalFrames)
		errorPercent = float64(errCount) * 100.0 / float64(m.stats.TotalFrames)
	}

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("Total:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.TotalFrames)),
		statsLabelStyle.Render("Valid:"), statsValueStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.ValidFrames, validPercent)),
		statsLabelStyle.Render("Errors:"), errorStyle.Render(fmt.Sprintf("%d (%.1f%%)", errCount, errorPercent)),
	))
	statsContent.WriteString(fmt.Sprintf("%s %d   %s %d   %s %d\n",
		statsLabelStyle.Render("Acks:"), m.stats.Acks,
		statsLabelStyle.Render("Replies:"), m.stats.QueryResults,
		statsLabelStyle.Render("Events:"), m.stats.Events,
	))

	if m.stats.MalformedFrames > 0 || m.stats.VersionErrors > 0 || m.stats.SkippedBytes > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
			statsLabelStyle.Render("Malformed:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.MalformedFrames)),
			statsLabelStyle.Render("Version:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.VersionErrors)),
			statsLabelStyle.Render("Skipped:"), warningStyle.Render(fmt.Sprintf("%d bytes", m.stats.SkippedBytes)),
		))
	}

	if m.stats.Anomalies > 0 || m.stats.UnknownCodes > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			statsLabelStyle.Render("Anomalous:"), warningStyle.Render(fmt.Sprintf("%d", m.stats.Anomalies)),
			statsLabelStyle.Render("Unknown codes:"), warningStyle.Render(fmt.Sprintf("%d", m.stats.UnknownCodes)),
		))
	}

	errRate := statsValueStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
	if m.stats.ErrorRate > 0 {
		errRate = errorStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
	}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		statsLabelStyle.Render("Frame Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f frames/s", m.stats.FrameRate)),
		statsLabelStyle.Render("Error Rate:"), errRate,
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Module state, once anything is known
	if !m.state.updated.IsZero() {
		s.WriteString(statsLabelStyle.Render("Module:"))
		s.WriteString("\n")

		stateContent := strings.Builder{}
		if m.state.status != nil {
			stateContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
				statsLabelStyle.Render("Device:"), statsValueStyle.Render(yx5300.FormatDevice(m.state.status.Device)),
				statsLabelStyle.Render("State:"), statsValueStyle.Render(yx5300.FormatPlayState(m.state.status.State)),
			))
		}
		if m.state.volume != nil {
			stateContent.WriteString(fmt.Sprintf("%s %s\n",
				statsLabelStyle.Render("Volume:"), statsValueStyle.Render(fmt.Sprintf("%d/%d", *m.state.volume, yx5300.MaxVolume))))
		}
		if m.state.equalizer != nil {
			stateContent.WriteString(fmt.Sprintf("%s %s\n",
				statsLabelStyle.Render("Equalizer:"), statsValueStyle.Render(yx5300.FormatEqualizer(*m.state.equalizer))))
		}
		if m.state.currentFile != nil {
			stateContent.WriteString(fmt.Sprintf("%s %s\n",
				statsLabelStyle.Render("File:"), statsValueStyle.Render(fmt.Sprintf("%d", *m.state.currentFile))))
		}
		if ev := m.state.lastEvent; ev != nil {
			stateContent.WriteString(fmt.Sprintf("%s %s %s\n",
				statsLabelStyle.Render("Last event:"), statsValueStyle.Render(ev.Status().Description()),
				headerStyle.Render(ev.Timestamp().Format("15:04:05")),
			))
		}
		stateContent.WriteString(headerStyle.Render(fmt.Sprintf("updated %s", m.state.updated.Format("15:04:05.000"))))

		s.WriteString(boxStyle.Render(stateContent.String()))
		s.WriteString("\n\n")
	}

	// Event log
	s.WriteString(statsLabelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	logHeight := m.height - 17
	if logHeight < 5 {
		logHeight = 5
	}

	logContent := strings.Builder{}
	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.eventLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}
