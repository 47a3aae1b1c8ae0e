// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/yxctl/pkg/yx5300"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

// Focus states
const (
	focusActionList = iota
	focusArgInput
	focusButton
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// controlAction is one entry of the action list
type controlAction struct {
	name        string
	desc        string
	placeholder string // non-empty when the action takes an argument
	build       func(arg string) (controlRequest, error)
}

// Implement list.Item interface
func (a controlAction) Title() string       { return a.name }
func (a controlAction) Description() string { return a.desc }
func (a controlAction) FilterValue() string { return a.name }

func (a controlAction) takesArg() bool { return a.placeholder != "" }

// simpleAction builds an action from a Player method that takes no argument
func simpleAction(name, desc string, method func(*yx5300.Player, context.Context) error) controlAction {
	return controlAction{
		name: name,
		desc: desc,
		build: func(string) (controlRequest, error) {
			return actionRequest(name, func(ctx context.Context, p *yx5300.Player) error {
				return method(p, ctx)
			}), nil
		},
	}
}

// execAction builds an action that sends a fixed command
func execAction(name, desc string, build func() yx5300.Command) controlAction {
	return simpleAction(name, desc, func(p *yx5300.Player, ctx context.Context) error {
		return p.Exec(ctx, build())
	})
}

// controlActions returns the actions offered by the control panel
func controlActions() []controlAction {
	return []controlAction{
		simpleAction("Play", "Resume the current track", (*yx5300.Player).Play),
		simpleAction("Pause", "Pause playback", (*yx5300.Player).Pause),
		simpleAction("Stop", "Stop playback", (*yx5300.Player).Stop),
		simpleAction("Next", "Next track", (*yx5300.Player).NextTrack),
		simpleAction("Previous", "Previous track", (*yx5300.Player).PreviousTrack),
		{
			name: "Volume", desc: "Set volume (0-30)", placeholder: "20",
			build: func(arg string) (controlRequest, error) {
				v, err := parseUint(arg, 0, yx5300.MaxVolume)
				if err != nil {
					return controlRequest{}, fmt.Errorf("volume: %w", err)
				}
				return actionRequest(fmt.Sprintf("Volume %d", v), func(ctx context.Context, p *yx5300.Player) error {
					return p.SetVolume(ctx, uint8(v))
				}), nil
			},
		},
		execAction("Volume +", "Volume up one step", yx5300.NewVolumeUp),
		execAction("Volume -", "Volume down one step", yx5300.NewVolumeDown),
		{
			name: "Equalizer", desc: "normal, pop, rock, jazz, classic, bass", placeholder: "normal",
			build: func(arg string) (controlRequest, error) {
				mode, err := parseEqualizer(arg)
				if err != nil {
					return controlRequest{}, err
				}
				return actionRequest("Equalizer "+yx5300.FormatEqualizer(mode), func(ctx context.Context, p *yx5300.Player) error {
					return p.SetEqualizer(ctx, mode)
				}), nil
			},
		},
		{
			name: "Device", desc: "Select storage (tf, udisk, flash)", placeholder: defaultDevice,
			build: func(arg string) (controlRequest, error) {
				dev, err := parseDevice(arg)
				if err != nil {
					return controlRequest{}, err
				}
				return actionRequest("Device "+yx5300.FormatDevice(dev), func(ctx context.Context, p *yx5300.Player) error {
					return p.SelectDevice(ctx, dev)
				}), nil
			},
		},
		{
			name: "Folder/File", desc: "Play FOLDER/FILE (1-99/1-255)", placeholder: "1/1",
			build: func(arg string) (controlRequest, error) {
				folder, file, err := parseFolderFile(arg)
				if err != nil {
					return controlRequest{}, err
				}
				return actionRequest(fmt.Sprintf("Play %02d/%03d", folder, file), func(ctx context.Context, p *yx5300.Player) error {
					return p.PlayFolderFile(ctx, folder, file)
				}), nil
			},
		},
		{
			name: "Track", desc: "Play track by global index", placeholder: "1",
			build: func(arg string) (controlRequest, error) {
				index, err := parseUint(arg, 1, 0xFFFF)
				if err != nil {
					return controlRequest{}, fmt.Errorf("track: %w", err)
				}
				return actionRequest(fmt.Sprintf("Track %d", index), func(ctx context.Context, p *yx5300.Player) error {
					return p.PlayTrack(ctx, uint16(index))
				}), nil
			},
		},
		execAction("Shuffle", "Play all tracks in random order", yx5300.NewShuffle),
		execAction("Sleep", "Enter sleep mode", yx5300.NewSleep),
		execAction("Wake", "Leave sleep mode", yx5300.NewWakeUp),
		simpleAction("Reset", "Reset the module", (*yx5300.Player).Reset),
		{
			name: "Refresh", desc: "Query status now",
			build: func(string) (controlRequest, error) {
				return refreshRequest(), nil
			},
		},
	}
}

// parseFolderFile parses "FOLDER/FILE" or "FOLDER FILE"
func parseFolderFile(s string) (uint8, uint8, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == ' ' })
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("expected FOLDER/FILE, got %q", s)
	}
	folder, err := parseUint(fields[0], 1, yx5300.MaxFolder)
	if err != nil {
		return 0, 0, fmt.Errorf("folder: %w", err)
	}
	file, err := parseUint(fields[1], 1, yx5300.MaxFolderFile)
	if err != nil {
		return 0, 0, fmt.Errorf("file: %w", err)
	}
	return uint8(folder), uint8(file), nil
}

// controlModel is the Bubble Tea model for the control TUI
type controlModel struct {
	connMgr  *connectionManager
	connInfo string

	actions    []controlAction
	actionList list.Model
	argInput   textinput.Model

	focusedField int

	stats         yx5300.Statistics
	eventLog      []eventLogEntry
	maxLogEntries int
	info          *moduleInfo
	lastEvent     *yx5300.Response

	pending     int
	lastRefresh time.Time

	width          int
	height         int
	quitting       bool
	connectionLost bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type controlTickMsg time.Time

type controlEventMsg struct {
	resp *yx5300.Response
}

type controlStatsMsg yx5300.Statistics

type controlInfoMsg struct {
	info *moduleInfo
}

type actionResultMsg struct {
	label string
	err   error
}

type connectionLostMsg struct {
	err error
}

type reconnectedMsg struct {
	connInfo string
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialControlModel(connMgr *connectionManager, connInfo string) controlModel {
	ti := textinput.New()
	ti.CharLimit = 8
	ti.Width = 10

	actions := controlActions()
	items := make([]list.Item, len(actions))
	for i, a := range actions {
		items[i] = a
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	actionList := list.New(items, delegate, 30, 10)
	actionList.Title = "Actions"
	actionList.SetShowStatusBar(false)
	actionList.SetShowHelp(false)
	actionList.SetFilteringEnabled(false)

	m := controlModel{
		connMgr:       connMgr,
		connInfo:      connInfo,
		actions:       actions,
		actionList:    actionList,
		argInput:      ti,
		focusedField:  focusActionList,
		eventLog:      make([]eventLogEntry, 0),
		maxLogEntries: 100,
		pending:       1, // initial refresh
		lastRefresh:   time.Now(),
		width:         80,
		height:        24,
	}
	m.syncArgInput()
	return m
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m controlModel) Init() tea.Cmd {
	return controlTickCmd()
}

func controlTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return controlTickMsg(t)
	})
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.actionList, cmd = m.actionList.Update(msg)
		m.syncArgInput()
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateListSize()

	case controlTickMsg:
		if !m.connectionLost && m.pending == 0 && time.Since(m.lastRefresh) >= refreshInterval {
			m.submit(refreshRequest())
		}
		return m, controlTickCmd()

	case controlEventMsg:
		m.handleEvent(msg.resp)

	case controlStatsMsg:
		m.stats = yx5300.Statistics(msg)
		m.stats.CalculateRates()

	case controlInfoMsg:
		m.pending--
		m.lastRefresh = time.Now()
		m.info = msg.info
		if len(msg.info.failures) > 0 {
			m.addLogEntry(fmt.Sprintf("Refresh: %d queries failed (%v)", len(msg.info.failures), msg.info.failures[0]), true)
		}

	case actionResultMsg:
		m.pending--
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("%s failed: %v", msg.label, msg.err), true)
		} else {
			m.addLogEntry(fmt.Sprintf("%s: done", msg.label), false)
			// Reflect the change right away
			m.submit(refreshRequest())
		}

	case connectionLostMsg:
		m.connectionLost = true
		m.pending = 0
		m.addLogEntry(fmt.Sprintf("Connection lost (%v) - reconnecting...", msg.err), true)

	case reconnectedMsg:
		m.connectionLost = false
		m.connInfo = msg.connInfo
		m.pending = 1 // reconnect queues a refresh
		m.addLogEntry("Reconnected", false)
	}

	var cmd tea.Cmd
	if m.focusedField == focusArgInput {
		m.argInput, cmd = m.argInput.Update(msg)
	}
	return m, cmd
}

func (m *controlModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.focusedField != focusArgInput || msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case "tab":
		return m.cycleFocus(1), nil

	case "shift+tab":
		return m.cycleFocus(-1), nil

	case "enter":
		return m.handleEnter()

	case "r":
		if m.focusedField != focusArgInput {
			m.submit(refreshRequest())
			return m, nil
		}

	case "up", "k", "down", "j":
		if m.focusedField == focusActionList {
			var cmd tea.Cmd
			m.actionList, cmd = m.actionList.Update(msg)
			m.syncArgInput()
			return m, cmd
		}
	}

	if m.focusedField == focusArgInput {
		var cmd tea.Cmd
		m.argInput, cmd = m.argInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *controlModel) cycleFocus(delta int) *controlModel {
	maxFocus := focusButton
	m.focusedField = (m.focusedField + delta + maxFocus + 1) % (maxFocus + 1)

	// Skip the argument field if the action has none
	if a := m.selectedAction(); m.focusedField == focusArgInput && (a == nil || !a.takesArg()) {
		m.focusedField = (m.focusedField + delta + maxFocus + 1) % (maxFocus + 1)
	}

	if m.focusedField == focusArgInput {
		m.argInput.Focus()
	} else {
		m.argInput.Blur()
	}
	return m
}

func (m *controlModel) handleEnter() (tea.Model, tea.Cmd) {
	if m.connectionLost {
		m.addLogEntry("Cannot send command: connection lost", true)
		return m, nil
	}

	a := m.selectedAction()
	if a == nil {
		return m, nil
	}

	arg := strings.TrimSpace(m.argInput.Value())
	if arg == "" {
		arg = a.placeholder
	}
	req, err := a.build(arg)
	if err != nil {
		m.addLogEntry(err.Error(), true)
		return m, nil
	}
	m.submit(req)
	return m, nil
}

// submit hands a request to the worker
func (m *controlModel) submit(req controlRequest) {
	if !m.connMgr.submit(req) {
		m.addLogEntry(fmt.Sprintf("Busy: %s dropped", req.label), true)
		return
	}
	m.pending++
	if req.label == "refresh" {
		m.lastRefresh = time.Now()
	}
}

func (m *controlModel) handleEvent(r *yx5300.Response) {
	m.lastEvent = r
	msg := fmt.Sprintf("%s: %s", r.Status().Name(), r.Status().Description())
	if detail := yx5300.FormatData(r.Status(), r.Data()); detail != "" {
		msg += " (" + detail + ")"
	}
	m.addLogEntry(msg, r.Status() == yx5300.StsErrFile)

	switch r.Status() {
	case yx5300.StsTFInsert, yx5300.StsInit, yx5300.StsFileEnd:
		m.submit(refreshRequest())
	}
}

func (m controlModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

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

	focusedBoxStyle := boxStyle.
		BorderForeground(lipgloss.Color("12"))

	buttonStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("12")).
		Padding(0, 2)

	focusedButtonStyle := buttonStyle.
		Background(lipgloss.Color("10"))

	// Header
	s.WriteString(titleStyle.Render("YXCTL CONTROL"))
	s.WriteString(" ")
	connStatus := m.connInfo
	if m.connectionLost {
		connStatus = warningStyle.Render("RECONNECTING...")
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | q=quit Tab=switch r=refresh", connStatus)))
	if m.pending > 0 {
		s.WriteString(" ")
		s.WriteString(warningStyle.Render("…"))
	}
	s.WriteString("\n\n")

	// Layout: left panel (actions) | right panel (control + module)
	leftWidth := 30
	rightWidth := m.width - leftWidth - 6

	listStyle := boxStyle.Width(leftWidth)
	if m.focusedField == focusActionList {
		listStyle = focusedBoxStyle.Width(leftWidth)
	}
	actionPanel := listStyle.Render(m.actionList.View())

	right := m.renderControlPanel(statsLabelStyle, headerStyle, buttonStyle, focusedButtonStyle) +
		"\n\n" + m.renderModule(statsLabelStyle, statsValueStyle, headerStyle)
	controlPanel := boxStyle.Width(rightWidth).Render(right)

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, actionPanel, " ", controlPanel))
	s.WriteString("\n\n")

	s.WriteString(m.renderStatisticsBar(statsLabelStyle, statsValueStyle, errorStyle, boxStyle))
	s.WriteString("\n\n")

	s.WriteString(m.renderEventLog(statsLabelStyle, warningStyle, boxStyle))

	return s.String()
}

//////////////////////////////////////////////////////////////
// View Helpers
//////////////////////////////////////////////////////////////

func (m controlModel) renderControlPanel(statsLabelStyle, headerStyle, buttonStyle, focusedButtonStyle lipgloss.Style) string {
	var s strings.Builder

	a := m.selectedAction()
	if a == nil {
		s.WriteString(headerStyle.Render("No action selected"))
		return s.String()
	}

	s.WriteString(fmt.Sprintf("%s %s\n", statsLabelStyle.Render("Action:"), a.name))
	s.WriteString(headerStyle.Render(a.desc))
	s.WriteString("\n\n")

	if a.takesArg() {
		s.WriteString(statsLabelStyle.Render("Value: "))
		if m.focusedField == focusArgInput {
			s.WriteString(m.argInput.View())
		} else {
			val := m.argInput.Value()
			if val == "" {
				val = a.placeholder
			}
			s.WriteString(fmt.Sprintf("[%s]", val))
		}
		s.WriteString("\n\n")
	}

	btnText := "[ Run ]"
	if m.focusedField == focusButton {
		s.WriteString(focusedButtonStyle.Render(btnText))
	} else {
		s.WriteString(buttonStyle.Render(btnText))
	}
	return s.String()
}

func (m controlModel) renderModule(statsLabelStyle, statsValueStyle, headerStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(statsLabelStyle.Render("MODULE"))
	s.WriteString("\n")

	if m.info == nil {
		s.WriteString(headerStyle.Render("Waiting for status..."))
		return s.String()
	}

	info := m.info
	s.WriteString(fmt.Sprintf("%s %s   %s %s\n",
		statsLabelStyle.Render("Device:"), statsValueStyle.Render(yx5300.FormatDevice(info.status.Device)),
		statsLabelStyle.Render("State:"), statsValueStyle.Render(yx5300.FormatPlayState(info.status.State)),
	))
	s.WriteString(fmt.Sprintf("%s %s   %s %s\n",
		statsLabelStyle.Render("Volume:"), statsValueStyle.Render(fmt.Sprintf("%d/%d", info.volume, yx5300.MaxVolume)),
		statsLabelStyle.Render("EQ:"), statsValueStyle.Render(yx5300.FormatEqualizer(info.equalizer)),
	))
	s.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s",
		statsLabelStyle.Render("File:"), statsValueStyle.Render(fmt.Sprintf("%d", info.currentFile)),
		statsLabelStyle.Render("Files:"), statsValueStyle.Render(fmt.Sprintf("%d", info.totalFiles)),
		statsLabelStyle.Render("Folders:"), statsValueStyle.Render(fmt.Sprintf("%d", info.folders)),
	))
	if m.lastEvent != nil {
		s.WriteString(fmt.Sprintf("\n%s %s %s",
			statsLabelStyle.Render("Last event:"), statsValueStyle.Render(m.lastEvent.Status().Description()),
			headerStyle.Render(m.lastEvent.Timestamp().Format("15:04:05"))))
	}
	return s.String()
}

func (m controlModel) renderStatisticsBar(statsLabelStyle, statsValueStyle, errorStyle, boxStyle lipgloss.Style) string {
	var validPercent, errorPercent float64
	if m.stats.TotalFrames > 0 {
		validPercent = float64(m.stats.ValidFrames) * 100.0 / float64(m.stats.TotalFrames)
		errorPercent = float64(m.stats.Errors()) * 100.0 / float64(m.stats.TotalFrames)
	}

	errText := statsValueStyle.Render("0.0%")
	if errorPercent > 0 {
		errText = errorStyle.Render(fmt.Sprintf("%.1f%%", errorPercent))
	}
	content := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s  %s %s",
		statsLabelStyle.Render("Frames:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.TotalFrames)),
		statsLabelStyle.Render("Valid:"), statsValueStyle.Render(fmt.Sprintf("%.1f%%", validPercent)),
		statsLabelStyle.Render("Errors:"), errText,
		statsLabelStyle.Render("Timeouts:"), statsValueStyle.Render(fmt.Sprintf("%d", m.stats.Timeouts)),
		statsLabelStyle.Render("Skipped:"), statsValueStyle.Render(fmt.Sprintf("%d B", m.stats.SkippedBytes)),
	)

	return boxStyle.Width(m.width - 4).Render(content)
}

func (m controlModel) renderEventLog(statsLabelStyle, warningStyle, boxStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(statsLabelStyle.Render("EVENTS"))
	s.WriteString("\n")

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyleLocal := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	logHeight := 8
	if len(m.eventLog) < logHeight {
		logHeight = len(m.eventLog)
	}
	startIdx := len(m.eventLog) - logHeight

	if len(m.eventLog) == 0 {
		s.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			icon := "i"
			style := warningStyle
			if entry.isError {
				icon = "x"
				style = errorStyleLocal
			}
			s.WriteString(fmt.Sprintf("%s %s %s\n",
				headerStyle.Render(timestamp),
				style.Render(icon),
				entry.message))
		}
	}

	return boxStyle.Width(m.width - 4).Render(s.String())
}

//////////////////////////////////////////////////////////////
// Helpers
//////////////////////////////////////////////////////////////

func (m *controlModel) addLogEntry(message string, isError bool) {
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

func (m *controlModel) selectedAction() *controlAction {
	idx := m.actionList.Index()
	if idx < 0 || idx >= len(m.actions) {
		return nil
	}
	return &m.actions[idx]
}

// syncArgInput resets the argument field for the selected action
func (m *controlModel) syncArgInput() {
	a := m.selectedAction()
	if a == nil {
		return
	}
	if m.argInput.Placeholder != a.placeholder {
		m.argInput.SetValue("")
		m.argInput.Placeholder = a.placeholder
	}
}

func (m *controlModel) updateListSize() {
	listHeight := m.height / 2
	if listHeight < 8 {
		listHeight = 8
	}
	m.actionList.SetSize(28, listHeight)
}
