package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// panelLayout holds computed dimensions for the two-panel layout.
// Widths and height include the panel borders.
type panelLayout struct {
	leftWidth     int
	rightWidth    int
	contentHeight int
}

// computeLayout splits the area between the header and the status bar.
// The gap column between panels is 1 wide.
func computeLayout(width, height int, splitRatio float64) panelLayout {
	contentHeight := max(height-2, 3)

	usable := width - 1
	leftWidth := max(int(float64(usable)*splitRatio), 10)
	rightWidth := max(usable-leftWidth, 10)

	return panelLayout{
		leftWidth:     leftWidth,
		rightWidth:    rightWidth,
		contentHeight: contentHeight,
	}
}

// panel is a bordered box with its title set into the top border.
type panel struct {
	title   string
	body    string
	focused bool
}

func (p panel) render(width, height int) string {
	style := unfocusedBorderStyle
	if p.focused {
		style = focusedBorderStyle
	}
	innerW := max(width-2, 1)
	innerH := max(height-2, 1)

	body := style.
		BorderTop(false).
		Width(innerW).
		Height(innerH).
		Render(fitContent(p.body, innerW, innerH))

	return p.topBorder(width, style) + "\n" + body
}

// topBorder draws "╭─ Title ───╮", cutting the title when the panel is narrow.
func (p panel) topBorder(width int, style lipgloss.Style) string {
	b := lipgloss.RoundedBorder()
	edge := lipgloss.NewStyle().Foreground(style.GetBorderTopForeground())

	title := ""
	if p.title != "" {
		title = " " + ansi.Truncate(p.title, max(width-6, 0), "…") + " "
	}
	fill := max(width-3-lipgloss.Width(title), 0)

	label := panelTitleStyle
	if !p.focused {
		label = label.Foreground(colorDim)
	}
	return edge.Render(b.TopLeft+b.Top) + label.Render(title) + edge.Render(strings.Repeat(b.Top, fill)+b.TopRight)
}

func renderPanels(left, right panel, layout panelLayout) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		left.render(layout.leftWidth, layout.contentHeight),
		" ",
		right.render(layout.rightWidth, layout.contentHeight),
	)
}

// fitContent clips content to width columns and height lines.
func fitContent(content string, width, height int) string {
	lines := strings.Split(content, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		if lipgloss.Width(line) > width {
			lines[i] = ansi.Truncate(line, width, "")
		}
	}
	return strings.Join(lines, "\n")
}
