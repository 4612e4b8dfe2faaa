package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Overlay constants.
const (
	overlayNone = 0
	overlayHelp = 1
)

// renderOverlay dims base and draws box centered over it.
func renderOverlay(base, box string, width, height int) string {
	rows := strings.Split(base, "\n")
	for i, row := range rows {
		rows[i] = overlayDimStyle.Render(ansi.Strip(row))
	}

	boxRows := strings.Split(box, "\n")
	boxWidth := lipgloss.Width(box)
	top := max((height-len(boxRows))/2, 1)
	left := max((width-boxWidth)/2, 1)

	for i, boxRow := range boxRows {
		if top+i >= len(rows) {
			break
		}
		rows[top+i] = splice(rows[top+i], boxRow, left)
	}
	return strings.Join(rows, "\n")
}

// splice replaces the columns of row starting at col with insert.
func splice(row, insert string, col int) string {
	end := col + lipgloss.Width(insert)
	rowWidth := lipgloss.Width(row)

	head := ansi.Truncate(row, col, "")
	if pad := col - lipgloss.Width(head); pad > 0 {
		head += strings.Repeat(" ", pad)
	}
	tail := ""
	if end < rowWidth {
		tail = ansi.Cut(row, end, rowWidth)
	}
	return head + "\x1b[0m" + insert + "\x1b[0m" + tail
}
