package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/autoreflex/autoreflex/internal/models"
	"github.com/autoreflex/autoreflex/internal/session"
)

// leftTabNames are the left panel tabs, selected with 1 and 2.
var leftTabNames = []string{"Mission", "History"}

func renderHeader(leftTab int, status models.AgentStatus, phase session.Phase, width int) string {
	dot := lipgloss.NewStyle().Foreground(colorCyan).Render("●")
	name := lipgloss.NewStyle().Bold(true).Render("AutoReflex")

	leftTabs := renderTabs(leftTabNames, leftTab)
	rightTabs := renderTabs([]string{"Live Logs"}, 0)

	left := fmt.Sprintf(" %s %s  %s", dot, name, leftTabs)
	right := fmt.Sprintf("%s  %s  %s ", rightTabs, renderPhase(phase), renderStatusBadge(status))

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return headerStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func renderTabs(tabs []string, active int) string {
	var parts []string
	for i, tab := range tabs {
		if i == active {
			parts = append(parts, activeTabStyle.Render(tab))
		} else {
			parts = append(parts, inactiveTabStyle.Render(tab))
		}
	}
	return strings.Join(parts, tabSepStyle.Render(" | "))
}

// renderStatusBadge shows the agent status as the backend reports it.
func renderStatusBadge(status models.AgentStatus) string {
	label := "● " + strings.ToUpper(status.String())
	switch {
	case status.IsRunning():
		return badgeRunningStyle.Render(label)
	case status == models.StatusError:
		return badgeErrorStyle.Render(label)
	default:
		return badgeIdleStyle.Render(label)
	}
}

func renderPhase(phase session.Phase) string {
	return hintStyle.Render(phase.String())
}
