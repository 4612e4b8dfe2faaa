package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/autoreflex/autoreflex/internal/client"
	"github.com/autoreflex/autoreflex/internal/session"
)

// confirmMode values.
const (
	confirmNone = 0
	confirmQuit = 1
	confirmStop = 2
)

func renderStatusBar(m *Model, width int) string {
	if m.confirmMode == confirmQuit {
		return renderConfirmBar("Agent running. Quit? (y/n)", width)
	}
	if m.confirmMode == confirmStop {
		return renderConfirmBar("Stop agent? (y/n)", width)
	}

	if m.err != nil {
		return renderErrorBar(errorText(m.err), width)
	}

	if m.notice != "" {
		return renderNoticeBar(m.notice, width)
	}

	left := " " + getKeyHints(m)

	state, _ := m.sess.ConnState()
	right := renderConnState(state) + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func renderConnState(state client.ConnState) string {
	switch state {
	case client.Open:
		return lipgloss.NewStyle().Foreground(colorGreen).Render("Live")
	case client.Connecting:
		return lipgloss.NewStyle().Foreground(colorDim).Render("Connecting...")
	default:
		return lipgloss.NewStyle().Foreground(colorYellow).Bold(true).Render("⚠ Disconnected")
	}
}

func getKeyHints(m *Model) string {
	base := keyHint("Ctrl+q", "quit") + "  " + keyHint("Ctrl+h", "help") + "  " + keyHint("Tab", "switch")

	if m.focusedPanel == 1 {
		return base + "  " + keyHint("j/k", "scroll") + "  " + keyHint("f", "follow")
	}

	if m.leftTab == 1 {
		return base + "  " + keyHint("j/k", "navigate") + "  " + keyHint("r", "refresh")
	}

	if m.mission.Editing() {
		return keyHint("Ctrl+s", "optimize") + "  " + keyHint("Esc", "leave editor")
	}

	hints := base
	switch m.sess.Tasks.Phase() {
	case session.PhaseIdle:
		hints += "  " + keyHint("i", "write mission")
	case session.PhaseReady:
		hints += "  " + keyHint("x", "execute") + "  " + keyHint("i", "revise") + "  " + keyHint("n", "new")
	case session.PhaseRunning:
		hints += "  " + keyHint("n", "new")
	}
	if m.sess.Status.Current().IsRunning() {
		hints += "  " + keyHint("S", "stop")
	}
	return hints
}

func keyHint(k, desc string) string {
	if k == "" {
		return hintStyle.Render(desc)
	}
	return keyStyle.Render(k) + " " + hintStyle.Render(desc)
}

func renderConfirmBar(msg string, width int) string {
	return statusBarStyle.
		Background(colorYellow).
		Foreground(lipgloss.AdaptiveColor{Light: "0", Dark: "0"}).
		Width(width).
		Render(" " + msg)
}

func renderErrorBar(msg string, width int) string {
	return statusBarStyle.
		Background(colorRed).
		Width(width).
		Render(" " + msg)
}

func renderNoticeBar(msg string, width int) string {
	return statusBarStyle.
		Width(width).
		Render(" " + lipgloss.NewStyle().Foreground(colorGreen).Render(msg))
}
