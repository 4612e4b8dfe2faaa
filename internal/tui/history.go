package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/autoreflex/autoreflex/internal/models"
)

// historyDescLimit is how many runes of a description the list shows.
const historyDescLimit = 50

// HistoryList is the task history component for the left panel.
type HistoryList struct {
	records      []models.TaskHistoryRecord
	loaded       bool
	cursor       int
	scrollOffset int
	height       int
	now          func() time.Time
}

// NewHistoryList creates an empty history list.
func NewHistoryList() *HistoryList {
	return &HistoryList{now: time.Now}
}

// SetRecords replaces the list contents, keeping the cursor in bounds.
func (h *HistoryList) SetRecords(records []models.TaskHistoryRecord, loaded bool) {
	h.records = records
	h.loaded = loaded
	if h.cursor >= len(records) {
		h.cursor = len(records) - 1
	}
	if h.cursor < 0 {
		h.cursor = 0
	}
	h.ensureVisible()
}

// SetHeight sets the visible height.
func (h *HistoryList) SetHeight(height int) {
	h.height = height - 2 // title line and blank
	if h.height < 1 {
		h.height = 1
	}
	h.ensureVisible()
}

// Selected returns the highlighted record, or nil.
func (h *HistoryList) Selected() *models.TaskHistoryRecord {
	if h.cursor < 0 || h.cursor >= len(h.records) {
		return nil
	}
	r := h.records[h.cursor]
	return &r
}

// MoveUp moves the cursor up.
func (h *HistoryList) MoveUp() {
	if h.cursor > 0 {
		h.cursor--
		h.ensureVisible()
	}
}

// MoveDown moves the cursor down.
func (h *HistoryList) MoveDown() {
	if h.cursor < len(h.records)-1 {
		h.cursor++
		h.ensureVisible()
	}
}

func (h *HistoryList) ensureVisible() {
	if h.cursor < h.scrollOffset {
		h.scrollOffset = h.cursor
	}
	if h.height > 0 && h.cursor >= h.scrollOffset+h.height {
		h.scrollOffset = h.cursor - h.height + 1
	}
}

// View renders the history list.
func (h *HistoryList) View(width int, refreshedAt time.Time) string {
	title := sectionHeaderStyle.Render("Task History")
	if !refreshedAt.IsZero() {
		title += hintStyle.Render("  updated " + humanize.RelTime(refreshedAt, h.now(), "ago", "from now"))
	}

	if !h.loaded {
		return title + "\n\n" + hintStyle.Render("Loading history...")
	}
	if len(h.records) == 0 {
		return title + "\n\n" + hintStyle.Render("No tasks yet.")
	}

	lines := []string{title, ""}
	end := h.scrollOffset + h.height
	if end > len(h.records) {
		end = len(h.records)
	}
	for i := h.scrollOffset; i < end; i++ {
		line := h.formatRecord(h.records[i], width-2)
		if i == h.cursor {
			line = selectedItemStyle.Width(width).Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	if end < len(h.records) {
		lines = append(lines, hintStyle.Render("  ▼ more"))
	}
	return strings.Join(lines, "\n")
}

func (h *HistoryList) formatRecord(r models.TaskHistoryRecord, width int) string {
	when := "unknown"
	if !r.CreatedAt.IsZero() {
		when = humanize.RelTime(r.CreatedAt, h.now(), "ago", "from now")
	}
	line := fmt.Sprintf("#%-4d %s  %s  %s",
		r.ID,
		historyStatusStyle(r.Status).Render(fmt.Sprintf("%-10s", r.Status)),
		TruncateDescription(r.Description, historyDescLimit),
		hintStyle.Render(when),
	)
	if width > 0 && lipgloss.Width(line) > width {
		line = ansi.Truncate(line, width, "…")
	}
	return line
}

func historyStatusStyle(status string) lipgloss.Style {
	switch status {
	case "completed", "done", "success":
		return historyDoneStyle
	case "running", "optimizing", "executing":
		return historyActiveStyle
	case "failed", "error", "stopped":
		return historyFailedStyle
	}
	return historyPendingStyle
}

// TruncateDescription shortens s to limit runes, marking the cut with "...".
func TruncateDescription(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// FormatCreatedAt renders a history timestamp the way the dashboard lists it.
func FormatCreatedAt(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Jan 2, 2006 15:04")
}

func humanCount(n uint64) string {
	return humanize.Comma(int64(n))
}
