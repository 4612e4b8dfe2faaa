package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/autoreflex/autoreflex/internal/models"
)

var errBackendDown = errors.New("connection refused")

// fakeTransport answers from canned values and counts calls. It ignores
// ctx so tests can model results that resolve after teardown.
type fakeTransport struct {
	mu sync.Mutex

	status     models.AgentStatus
	statusErr  error
	history    []models.TaskHistoryRecord
	historyErr error
	task       *models.OptimizedTask
	optErr     error
	runAck     *models.RunAck
	runErr     error
	stopErr    error

	calls        map[string]int
	descriptions []string
	runIDs       []int64
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{status: models.StatusIdle, calls: make(map[string]int)}
}

func (f *fakeTransport) count(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeTransport) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeTransport) FetchStatus(context.Context) (models.AgentStatus, error) {
	f.count("status")
	return f.status, f.statusErr
}

func (f *fakeTransport) FetchHistory(context.Context) ([]models.TaskHistoryRecord, error) {
	f.count("history")
	return f.history, f.historyErr
}

func (f *fakeTransport) Optimize(_ context.Context, description string) (*models.OptimizedTask, error) {
	f.count("optimize")
	f.mu.Lock()
	f.descriptions = append(f.descriptions, description)
	f.mu.Unlock()
	if f.optErr != nil {
		return nil, f.optErr
	}
	return f.task.Clone(), nil
}

func (f *fakeTransport) Run(_ context.Context, taskID int64) (*models.RunAck, error) {
	f.count("run")
	f.mu.Lock()
	f.runIDs = append(f.runIDs, taskID)
	f.mu.Unlock()
	if f.runErr != nil {
		return nil, f.runErr
	}
	if f.runAck != nil {
		return f.runAck, nil
	}
	return &models.RunAck{Status: "started", Message: "Agent started in background", TaskID: taskID}, nil
}

func (f *fakeTransport) Stop(context.Context) (*models.StopAck, error) {
	f.count("stop")
	if f.stopErr != nil {
		return nil, f.stopErr
	}
	return &models.StopAck{Status: "stopped"}, nil
}

func taskWithID(id int64) *models.OptimizedTask {
	return &models.OptimizedTask{
		ID:              &id,
		OriginalTask:    "fix bug",
		OptimizedPrompt: "...",
		Reasoning:       "clarified scope",
		EstimatedTokens: 120,
	}
}

var fixedNow = time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC)

func newTestSession(ft *fakeTransport) *Session {
	return New(ft, Options{Now: func() time.Time { return fixedNow }})
}

// drain runs cmd and everything it leads to, feeding each message back
// through Update. It returns every message produced, in order.
func drain(t *testing.T, s *Session, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var out []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		switch m := msg.(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, m...)
		default:
			out = append(out, msg)
			queue = append(queue, s.Update(msg))
		}
	}
	return out
}

func findError(msgs []tea.Msg) (ErrorMsg, bool) {
	for _, m := range msgs {
		if e, ok := m.(ErrorMsg); ok {
			return e, true
		}
	}
	return ErrorMsg{}, false
}

func logEntry(msg string) models.LogEntry {
	return models.LogEntry{Timestamp: fixedNow, Level: "INFO", Message: msg, Source: models.DefaultLogSource}
}
