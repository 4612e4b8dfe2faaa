package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/autoreflex/autoreflex/internal/models"
	"github.com/autoreflex/autoreflex/internal/session"
)

type stubTransport struct {
	mu     sync.Mutex
	status models.AgentStatus
	task   *models.OptimizedTask
	calls  map[string]int
	runIDs []int64
}

func newStubTransport() *stubTransport {
	id := int64(7)
	return &stubTransport{
		status: models.StatusIdle,
		task:   &models.OptimizedTask{ID: &id, OriginalTask: "fix bug", OptimizedPrompt: "Fix the login bug.", Reasoning: "scoped", EstimatedTokens: 42},
		calls:  make(map[string]int),
	}
}

func (s *stubTransport) count(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
}

func (s *stubTransport) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *stubTransport) FetchStatus(context.Context) (models.AgentStatus, error) {
	s.count("status")
	return s.status, nil
}

func (s *stubTransport) FetchHistory(context.Context) ([]models.TaskHistoryRecord, error) {
	s.count("history")
	return []models.TaskHistoryRecord{{ID: 1, Description: "earlier", Status: "done"}}, nil
}

func (s *stubTransport) Optimize(context.Context, string) (*models.OptimizedTask, error) {
	s.count("optimize")
	return s.task.Clone(), nil
}

func (s *stubTransport) Run(_ context.Context, taskID int64) (*models.RunAck, error) {
	s.count("run")
	s.mu.Lock()
	s.runIDs = append(s.runIDs, taskID)
	s.mu.Unlock()
	return &models.RunAck{Status: "started", TaskID: taskID}, nil
}

func (s *stubTransport) Stop(context.Context) (*models.StopAck, error) {
	s.count("stop")
	return &models.StopAck{Status: "stopped"}, nil
}

func newTestModel(t *testing.T, st *stubTransport) Model {
	t.Helper()
	sess := session.New(st, session.Options{})
	t.Cleanup(sess.Close)
	m := NewModel(sess, &programRef{})
	m = pump(m, m.Init())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

// collect runs cmd and returns the messages it produces. Commands that
// wait on a timer are abandoned.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

// pump feeds everything cmd leads to back through Update.
func pump(m Model, cmd tea.Cmd) Model {
	queue := []tea.Cmd{cmd}
	for i := 0; i < 100 && len(queue) > 0; i++ {
		c := queue[0]
		queue = queue[1:]
		for _, msg := range collect(c) {
			if _, ok := msg.(spinner.TickMsg); ok {
				continue
			}
			next, nc := m.Update(msg)
			m = next.(Model)
			queue = append(queue, nc)
		}
	}
	return m
}

func press(m Model, k tea.KeyMsg) Model {
	next, cmd := m.Update(k)
	return pump(next.(Model), cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
