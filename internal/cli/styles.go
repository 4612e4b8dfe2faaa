package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/autoreflex/autoreflex/internal/models"
	"github.com/autoreflex/autoreflex/internal/session"
)

// Adaptive colors matching the TUI palette.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

// Semantic styles for CLI output.
var (
	styleBrand   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleVersion = lipgloss.NewStyle().Foreground(colorGreen)
	styleLabel   = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	styleHint    = lipgloss.NewStyle().Foreground(colorDim)
	styleCommand = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
)

// Agent status badge styles.
var (
	badgeIdle    = lipgloss.NewStyle().Foreground(colorDim)
	badgeRunning = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	badgeError   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
)

func statusBadge(status models.AgentStatus) string {
	switch {
	case status.IsRunning():
		return badgeRunning.Render(status.String())
	case status == models.StatusError:
		return badgeError.Render(status.String())
	}
	return badgeIdle.Render(status.String())
}

func toneStyle(t session.Tone) lipgloss.Style {
	switch t {
	case session.ToneError:
		return styleError
	case session.ToneWarn:
		return styleWarning
	case session.ToneSuccess:
		return styleSuccess
	}
	return styleValue
}
