package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/autoreflex/autoreflex/internal/models"
	"github.com/autoreflex/autoreflex/internal/session"
)

// MissionPanel is the left-panel mission editor and optimized-task review.
type MissionPanel struct {
	input   textarea.Model
	review  viewport.Model
	spinner spinner.Model
	editing bool
	width   int
	height  int

	reviewed *models.OptimizedTask // task currently rendered in review
}

// NewMissionPanel creates the mission panel.
func NewMissionPanel() *MissionPanel {
	ta := textarea.New()
	ta.Placeholder = "Describe the mission for the agent..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 4000
	ta.SetHeight(6)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorCyan)

	return &MissionPanel{
		input:   ta,
		review:  viewport.New(40, 10),
		spinner: sp,
	}
}

// SetSize updates dimensions.
func (p *MissionPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.SetWidth(width - 2)
	p.review.Width = width
	p.review.Height = height - 4
	if p.review.Height < 1 {
		p.review.Height = 1
	}
	p.reviewed = nil // force re-wrap
}

// Editing reports whether the textarea has focus.
func (p *MissionPanel) Editing() bool { return p.editing }

// StartEditing focuses the textarea.
func (p *MissionPanel) StartEditing() tea.Cmd {
	p.editing = true
	return p.input.Focus()
}

// StopEditing blurs the textarea, keeping its text.
func (p *MissionPanel) StopEditing() {
	p.editing = false
	p.input.Blur()
}

// Description returns the typed mission.
func (p *MissionPanel) Description() string { return p.input.Value() }

// Clear empties the textarea.
func (p *MissionPanel) Clear() {
	p.input.Reset()
	p.reviewed = nil
}

// UpdateInput forwards a message to the textarea.
func (p *MissionPanel) UpdateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// Tick starts the spinner.
func (p *MissionPanel) Tick() tea.Cmd { return p.spinner.Tick }

// UpdateSpinner advances the spinner.
func (p *MissionPanel) UpdateSpinner(msg spinner.TickMsg) tea.Cmd {
	var cmd tea.Cmd
	p.spinner, cmd = p.spinner.Update(msg)
	return cmd
}

// ScrollUp scrolls the review.
func (p *MissionPanel) ScrollUp() { p.review.LineUp(1) }

// ScrollDown scrolls the review.
func (p *MissionPanel) ScrollDown() { p.review.LineDown(1) }

// View renders the panel for the controller's current state.
func (p *MissionPanel) View(ctl *session.Controller) string {
	title := sectionHeaderStyle.Render("Mission")

	if p.editing || (ctl.Phase() == session.PhaseIdle && ctl.Task() == nil) {
		hint := hintStyle.Render("Press i to write a mission, Ctrl+s to optimize it.")
		if p.editing {
			hint = hintStyle.Render("Ctrl+s optimize · Esc leave editor")
		}
		return strings.Join([]string{title, "", p.input.View(), "", hint}, "\n")
	}

	switch ctl.Phase() {
	case session.PhaseOptimizing:
		return title + "\n\n" + p.spinner.View() + " Optimizing mission..."
	case session.PhaseIdle:
		return title + "\n\n" + hintStyle.Render("Press i to write a mission.")
	}

	task := ctl.Task()
	p.syncReview(task)

	state := fieldValueStyle.Render("Ready to execute")
	if ctl.Phase() == session.PhaseRunning {
		state = badgeRunningStyle.Render("Running")
	}
	if ctl.Busy() {
		state = p.spinner.View() + " Starting agent..."
	}
	return strings.Join([]string{title + "  " + state, "", p.review.View()}, "\n")
}

func (p *MissionPanel) syncReview(task *models.OptimizedTask) {
	if task == nil {
		return
	}
	if p.reviewed != nil && sameTask(p.reviewed, task) {
		return
	}
	p.reviewed = task
	p.review.SetContent(renderTaskReview(task, p.width))
	p.review.GotoTop()
}

func sameTask(a, b *models.OptimizedTask) bool {
	return a.TaskID() == b.TaskID() && a.HasID() == b.HasID() && a.OptimizedPrompt == b.OptimizedPrompt
}

func renderTaskReview(task *models.OptimizedTask, width int) string {
	wrap := lipgloss.NewStyle().Width(width)

	id := "not saved"
	if task.HasID() {
		id = fmt.Sprintf("#%d", task.TaskID())
	}

	lines := []string{
		fieldLabelStyle.Render("Task      ") + fieldValueStyle.Render(id),
		fieldLabelStyle.Render("Tokens    ") + fieldValueStyle.Render("~"+humanize.Comma(int64(task.EstimatedTokens))),
		"",
		sectionHeaderStyle.Render("Original"),
		wrap.Render(task.OriginalTask),
		"",
		sectionHeaderStyle.Render("Optimized prompt"),
		wrap.Render(task.OptimizedPrompt),
	}
	if task.Reasoning != "" {
		lines = append(lines, "", sectionHeaderStyle.Render("Reasoning"), wrap.Foreground(colorDim).Render(task.Reasoning))
	}
	return strings.Join(lines, "\n")
}
