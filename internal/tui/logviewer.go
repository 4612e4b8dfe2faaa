package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/autoreflex/autoreflex/internal/models"
	"github.com/autoreflex/autoreflex/internal/session"
)

// LogViewer shows the live log tail. While following, it stays pinned to
// the newest line; scrolling up stops following until f is pressed.
type LogViewer struct {
	viewport viewport.Model
	width    int
	height   int
	follow   bool
	total    uint64 // Total() of the buffer when last rendered
	dropped  uint64
	loc      *time.Location
}

// NewLogViewer creates a log viewer that follows new lines.
func NewLogViewer() *LogViewer {
	return &LogViewer{
		viewport: viewport.New(80, 24),
		follow:   true,
		loc:      time.Local,
	}
}

// SetSize updates dimensions.
func (l *LogViewer) SetSize(width, height int) {
	l.width = width
	l.height = height - 1 // one line for the footer
	if l.height < 1 {
		l.height = 1
	}
	l.viewport.Width = width
	l.viewport.Height = l.height
	if l.follow {
		l.viewport.GotoBottom()
	}
}

// Sync re-renders from buf when it has new entries.
func (l *LogViewer) Sync(buf *session.LogBuffer) {
	if buf.Total() == l.total && l.total != 0 {
		return
	}
	l.total = buf.Total()
	l.dropped = buf.Dropped()

	entries := buf.Snapshot()
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, l.formatEntry(e))
	}
	l.viewport.SetContent(strings.Join(lines, "\n"))
	if l.follow {
		l.viewport.GotoBottom()
	}
}

func (l *LogViewer) formatEntry(e models.LogEntry) string {
	return logClockStyle.Render(session.FormatClock(e, l.loc)) + " " + toneStyle(session.Classify(e)).Render(e.Message)
}

func toneStyle(t session.Tone) lipgloss.Style {
	switch t {
	case session.ToneError:
		return logErrorStyle
	case session.ToneWarn:
		return logWarnStyle
	case session.ToneSuccess:
		return logSuccessStyle
	}
	return logNormalStyle
}

// Following reports whether the view is pinned to the newest line.
func (l *LogViewer) Following() bool { return l.follow }

// ScrollUp scrolls up and stops following.
func (l *LogViewer) ScrollUp(n int) {
	l.viewport.LineUp(n)
	l.follow = l.viewport.AtBottom()
}

// ScrollDown scrolls down; reaching the bottom resumes following.
func (l *LogViewer) ScrollDown(n int) {
	l.viewport.LineDown(n)
	l.follow = l.viewport.AtBottom()
}

// PageUp scrolls half a page up.
func (l *LogViewer) PageUp() {
	l.viewport.HalfViewUp()
	l.follow = l.viewport.AtBottom()
}

// PageDown scrolls half a page down.
func (l *LogViewer) PageDown() {
	l.viewport.HalfViewDown()
	l.follow = l.viewport.AtBottom()
}

// Follow jumps to the newest line and keeps following.
func (l *LogViewer) Follow() {
	l.follow = true
	l.viewport.GotoBottom()
}

// View renders the log viewer.
func (l *LogViewer) View() string {
	if l.total == 0 {
		return lipgloss.NewStyle().Foreground(colorDim).Width(l.width).Align(lipgloss.Center).
			Render("\nWaiting for agent output...")
	}

	footer := hintStyle.Render(l.footer())
	return l.viewport.View() + "\n" + footer
}

func (l *LogViewer) footer() string {
	var parts []string
	if l.follow {
		parts = append(parts, "following")
	} else {
		parts = append(parts, "paused (f to follow)")
	}
	if l.dropped > 0 {
		parts = append(parts, humanCount(l.dropped)+" older lines dropped")
	}
	return strings.Join(parts, " · ")
}
