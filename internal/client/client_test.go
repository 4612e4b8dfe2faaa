package client

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/autoreflex/autoreflex/internal/models"
	"github.com/autoreflex/autoreflex/internal/testutil"
)

func newTestClient(t *testing.T) (*Client, *testutil.Backend) {
	t.Helper()
	b := testutil.NewBackend(t)
	c := New(Config{BaseURL: b.BaseURL(), PushURL: b.PushURL(), Timeout: 2 * time.Second})
	return c, b
}

func TestFetchStatus(t *testing.T) {
	c, b := newTestClient(t)
	b.SetStatus(models.StatusRunning)

	got, err := c.FetchStatus(context.Background())
	if err != nil {
		t.Fatalf("FetchStatus() error: %v", err)
	}
	if got != models.StatusRunning {
		t.Errorf("FetchStatus() = %q, want %q", got, models.StatusRunning)
	}
	if h := b.SessionHeaders(); len(h) != 1 || h[0] != c.SessionID() {
		t.Errorf("session headers = %v, want [%s]", h, c.SessionID())
	}
}

func TestFetchHistoryKeepsServerOrder(t *testing.T) {
	c, b := newTestClient(t)
	now := time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC)
	b.SetHistory([]models.TaskHistoryRecord{
		{ID: 3, Description: "newest", Status: "optimizing", CreatedAt: now},
		{ID: 1, Description: "oldest", Status: "done", CreatedAt: now.Add(-time.Hour)},
	})

	got, err := c.FetchHistory(context.Background())
	if err != nil {
		t.Fatalf("FetchHistory() error: %v", err)
	}
	if len(got) != 2 || got[0].ID != 3 || got[1].ID != 1 {
		t.Fatalf("FetchHistory() = %+v", got)
	}
	if !got[0].CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", got[0].CreatedAt, now)
	}
}

func TestFetchHistoryEmpty(t *testing.T) {
	c, _ := newTestClient(t)
	got, err := c.FetchHistory(context.Background())
	if err != nil {
		t.Fatalf("FetchHistory() error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("FetchHistory() = %#v, want empty slice", got)
	}
}

func TestOptimizeSendsEmptyContextFiles(t *testing.T) {
	c, b := newTestClient(t)
	id := int64(7)
	b.SetOptimized(&models.OptimizedTask{ID: &id, OriginalTask: "fix bug", OptimizedPrompt: "p", EstimatedTokens: 42})

	task, err := c.Optimize(context.Background(), "fix bug")
	if err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}
	if task.TaskID() != 7 || task.EstimatedTokens != 42 {
		t.Errorf("Optimize() = %+v", task)
	}

	reqs := b.OptimizeRequests()
	if len(reqs) != 1 {
		t.Fatalf("optimize requests = %d, want 1", len(reqs))
	}
	if reqs[0].Description != "fix bug" || reqs[0].ContextFiles == nil || len(reqs[0].ContextFiles) != 0 {
		t.Errorf("optimize request = %+v", reqs[0])
	}
}

func TestRunAndStop(t *testing.T) {
	c, b := newTestClient(t)

	ack, err := c.Run(context.Background(), 7)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if ack.TaskID != 7 || ack.Status != "started" {
		t.Errorf("Run() = %+v", ack)
	}
	if reqs := b.RunRequests(); len(reqs) != 1 || reqs[0].TaskID != 7 {
		t.Errorf("run requests = %+v", reqs)
	}

	stop, err := c.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if stop.Status != "stopped" {
		t.Errorf("Stop() = %+v", stop)
	}
}

func TestNon2xxIsTransportError(t *testing.T) {
	tests := []struct {
		op   string
		code int
		call func(*Client) error
	}{
		{"status", http.StatusInternalServerError, func(c *Client) error { _, err := c.FetchStatus(context.Background()); return err }},
		{"history", http.StatusBadGateway, func(c *Client) error { _, err := c.FetchHistory(context.Background()); return err }},
		{"optimize", http.StatusUnprocessableEntity, func(c *Client) error { _, err := c.Optimize(context.Background(), "x"); return err }},
		{"run", http.StatusNotFound, func(c *Client) error { _, err := c.Run(context.Background(), 1); return err }},
		{"stop", http.StatusServiceUnavailable, func(c *Client) error { _, err := c.Stop(context.Background()); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			c, b := newTestClient(t)
			b.Fail(tt.op, tt.code)

			err := tt.call(c)
			var te *TransportError
			if !errors.As(err, &te) {
				t.Fatalf("%s error = %v, want *TransportError", tt.op, err)
			}
			if te.HTTPStatus != tt.code || te.Op != tt.op {
				t.Errorf("TransportError = %+v, want op %s status %d", te, tt.op, tt.code)
			}
			if te.Body == "" {
				t.Error("TransportError.Body is empty")
			}
			if IsUnreachable(err) {
				t.Error("IsUnreachable() = true for an HTTP failure")
			}
		})
	}
}

func TestUnreachableBackend(t *testing.T) {
	c, b := newTestClient(t)
	b.Close()

	err := c.Health(context.Background())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Health() error = %v, want *TransportError", err)
	}
	if te.HTTPStatus != 0 || te.Unwrap() == nil {
		t.Errorf("TransportError = %+v, want status 0 with cause", te)
	}
	if !IsUnreachable(err) {
		t.Error("IsUnreachable() = false")
	}
}

func TestCancelledContext(t *testing.T) {
	c, _ := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchStatus(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("FetchStatus() error = %v, want context.Canceled", err)
	}
}

func TestTransportErrorMessage(t *testing.T) {
	err := &TransportError{Op: "run", HTTPStatus: 500}
	if got, want := err.Error(), "run: HTTP error! status: 500"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
