package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// How long transient status bar messages stay up.
const (
	errorDisplayTime  = 5 * time.Second
	noticeDisplayTime = 3 * time.Second
	clockInterval     = 30 * time.Second
)

func clearErrorAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return ClearErrorMsg{}
	})
}

func clearNoticeAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(_ time.Time) tea.Msg {
		return ClearNoticeMsg{}
	})
}

func clockTick() tea.Cmd {
	return tea.Tick(clockInterval, func(_ time.Time) tea.Msg {
		return clockTickMsg{}
	})
}
