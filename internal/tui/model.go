package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/autoreflex/autoreflex/internal/session"
)

// Model is the root Bubbletea model for the dashboard.
type Model struct {
	sess *session.Session

	// UI state
	leftTab       int     // 0=Mission, 1=History
	focusedPanel  int     // 0=left, 1=right
	activeOverlay int     // overlayNone, overlayHelp
	splitRatio    float64 // Default 0.45
	width         int
	height        int
	confirmMode   int

	// Status display
	err    error
	notice string

	// Child components
	mission   *MissionPanel
	history   *HistoryList
	logViewer *LogViewer

	// Program reference for goroutine Send()
	program *programRef

	spinning bool
}

// NewModel creates the dashboard model around sess.
func NewModel(sess *session.Session, program *programRef) Model {
	return Model{
		sess:       sess,
		splitRatio: 0.45,
		mission:    NewMissionPanel(),
		history:    NewHistoryList(),
		logViewer:  NewLogViewer(),
		program:    program,
	}
}

// Init starts the session.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.sess.Start(), clockTick())
}

// Update processes messages and returns an updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	// ── Window resize ──────────────────────────────────────────────
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateDimensions()
		return m, nil

	// ── Key events ─────────────────────────────────────────────────
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))
		cmds = append(cmds, m.ensureSpinner())
		return m, tea.Batch(cmds...)

	// ── Status bar ─────────────────────────────────────────────────
	case session.ErrorMsg:
		m.setError(msg.Err)
		return m, clearErrorAfter(errorDisplayTime)

	case session.NoticeMsg:
		m.notice = msg.Text
		return m, clearNoticeAfter(noticeDisplayTime)

	case ClearErrorMsg:
		m.err = nil
		return m, nil

	case ClearNoticeMsg:
		m.notice = ""
		return m, nil

	case clockTickMsg:
		return m, clockTick()

	case spinner.TickMsg:
		if !m.needsSpinner() {
			m.spinning = false
			return m, nil
		}
		return m, m.mission.UpdateSpinner(msg)
	}

	// ── Session completions and push events ────────────────────────
	cmds = append(cmds, m.sess.Update(msg))
	m.syncViews()
	cmds = append(cmds, m.ensureSpinner())
	return m, tea.Batch(cmds...)
}

func (m *Model) syncViews() {
	m.logViewer.Sync(m.sess.Logs)
	m.history.SetRecords(m.sess.History.Records(), m.sess.History.Loaded())
}

func (m *Model) needsSpinner() bool {
	return m.sess.Tasks.Busy()
}

// ensureSpinner starts the spinner tick loop when a request is in flight.
func (m *Model) ensureSpinner() tea.Cmd {
	if m.spinning || !m.needsSpinner() {
		return nil
	}
	m.spinning = true
	return m.mission.Tick()
}

func (m *Model) setError(err error) {
	m.err = err
}

// ── Key handling ─────────────────────────────────────────────────

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.confirmMode != confirmNone {
		return m.handleConfirmKey(msg)
	}

	if m.activeOverlay == overlayHelp {
		if msg.Type == tea.KeyEscape || key.Matches(msg, globalKeys.Help) {
			m.activeOverlay = overlayNone
		}
		return nil
	}

	switch {
	case key.Matches(msg, globalKeys.Quit), msg.Type == tea.KeyCtrlC:
		if m.sess.Status.Current().IsRunning() {
			m.confirmMode = confirmQuit
			return nil
		}
		return m.doQuit()

	case key.Matches(msg, globalKeys.Help):
		m.activeOverlay = overlayHelp
		return nil
	}

	// The editor swallows everything else while it has focus.
	if m.mission.Editing() {
		return m.handleEditorKey(msg)
	}

	switch {
	case key.Matches(msg, globalKeys.Tab):
		m.focusedPanel = 1 - m.focusedPanel
		return nil
	case key.Matches(msg, tabSwitchKeys.Tab1):
		m.leftTab = 0
		return nil
	case key.Matches(msg, tabSwitchKeys.Tab2):
		m.leftTab = 1
		return nil
	}

	if m.focusedPanel == 1 {
		return m.handleLogKey(msg)
	}
	if m.leftTab == 1 {
		return m.handleHistoryKey(msg)
	}
	return m.handleMissionKey(msg)
}

func (m *Model) handleEditorKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, editorKeys.Cancel):
		m.mission.StopEditing()
		return nil
	case key.Matches(msg, editorKeys.Submit):
		cmd, err := m.sess.Submit(m.mission.Description())
		if err != nil {
			m.setError(err)
			return clearErrorAfter(errorDisplayTime)
		}
		m.mission.StopEditing()
		return cmd
	}
	return m.mission.UpdateInput(msg)
}

func (m *Model) handleMissionKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, missionKeys.Write):
		if m.sess.Tasks.Busy() || m.sess.Tasks.Phase() == session.PhaseRunning {
			return nil
		}
		return m.mission.StartEditing()

	case key.Matches(msg, missionKeys.Execute):
		cmd := m.sess.Execute()
		if cmd == nil {
			if err := m.sess.Tasks.LastError(); err != nil {
				m.setError(err)
				return clearErrorAfter(errorDisplayTime)
			}
		}
		return cmd

	case key.Matches(msg, missionKeys.Stop):
		if m.sess.Status.Current().IsRunning() {
			m.confirmMode = confirmStop
		}
		return nil

	case key.Matches(msg, missionKeys.New):
		if m.sess.Tasks.Busy() {
			return nil
		}
		m.sess.Tasks.Reset()
		m.mission.Clear()
		return m.mission.StartEditing()

	case key.Matches(msg, missionKeys.Up):
		m.mission.ScrollUp()
	case key.Matches(msg, missionKeys.Down):
		m.mission.ScrollDown()
	}
	return nil
}

func (m *Model) handleHistoryKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, historyKeys.Up):
		m.history.MoveUp()
	case key.Matches(msg, historyKeys.Down):
		m.history.MoveDown()
	case key.Matches(msg, historyKeys.Refresh):
		return m.sess.RefreshHistory()
	}
	return nil
}

func (m *Model) handleLogKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, logKeys.Up):
		m.logViewer.ScrollUp(1)
	case key.Matches(msg, logKeys.Down):
		m.logViewer.ScrollDown(1)
	case key.Matches(msg, logKeys.PgUp):
		m.logViewer.PageUp()
	case key.Matches(msg, logKeys.PgDown):
		m.logViewer.PageDown()
	case key.Matches(msg, logKeys.Follow):
		m.logViewer.Follow()
	}
	return nil
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, confirmKeys.Yes):
		mode := m.confirmMode
		m.confirmMode = confirmNone
		switch mode {
		case confirmQuit:
			return m.doQuit()
		case confirmStop:
			return m.sess.Abort()
		}
	case key.Matches(msg, confirmKeys.No), key.Matches(msg, confirmKeys.Cancel):
		m.confirmMode = confirmNone
	}
	return nil
}

// doQuit performs clean shutdown: clear program ref, close the session, quit.
func (m *Model) doQuit() tea.Cmd {
	m.program.Clear()
	m.sess.Close()
	return tea.Quit
}

func (m *Model) updateDimensions() {
	layout := computeLayout(m.width, m.height, m.splitRatio)
	innerHeight := layout.contentHeight - 2
	leftInner := layout.leftWidth - 2
	rightInner := layout.rightWidth - 2

	if innerHeight < 1 {
		innerHeight = 1
	}
	if leftInner < 1 {
		leftInner = 1
	}
	if rightInner < 1 {
		rightInner = 1
	}

	m.mission.SetSize(leftInner, innerHeight)
	m.history.SetHeight(innerHeight)
	m.logViewer.SetSize(rightInner, innerHeight)
}

// ── View ─────────────────────────────────────────────────────────

// View renders the dashboard.
func (m Model) View() string {
	if m.width < minWidth || m.height < minHeight {
		sizeStr := fmt.Sprintf("%dx%d", m.width, m.height)
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(colorYellow).
			Render(lipgloss.JoinVertical(lipgloss.Center,
				"Terminal too small",
				lipgloss.NewStyle().Foreground(colorDim).Render(
					fmt.Sprintf("Need %dx%d, have ", minWidth, minHeight)+lipgloss.NewStyle().Bold(true).Render(sizeStr),
				),
			))
	}

	layout := computeLayout(m.width, m.height, m.splitRatio)

	header := renderHeader(m.leftTab, m.sess.Status.Current(), m.sess.Tasks.Phase(), m.width)
	left := panel{
		title:   leftTabNames[m.leftTab],
		body:    m.renderLeftPanel(layout.leftWidth - 2),
		focused: m.focusedPanel == 0,
	}
	right := panel{
		title:   "Live Logs",
		body:    m.logViewer.View(),
		focused: m.focusedPanel == 1,
	}
	panels := renderPanels(left, right, layout)
	statusBar := renderStatusBar(&m, m.width)

	view := lipgloss.JoinVertical(lipgloss.Left, header, panels, statusBar)

	if m.activeOverlay == overlayHelp {
		view = renderOverlay(view, renderHelp(m.width), m.width, m.height)
	}
	return view
}

func (m Model) renderLeftPanel(width int) string {
	if m.leftTab == 1 {
		return m.history.View(width, m.sess.History.RefreshedAt())
	}
	return m.mission.View(m.sess.Tasks)
}

// Minimum terminal size.
const (
	minWidth  = 80
	minHeight = 24
)

// errorText unwraps session and transport wrappers for the status bar.
func errorText(err error) string {
	var cv *session.ContractViolation
	if errors.As(err, &cv) {
		return cv.Err.Error()
	}
	return err.Error()
}
