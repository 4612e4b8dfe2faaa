package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/autoreflex/autoreflex/internal/models"
)

type stateLog struct {
	mu     sync.Mutex
	states []ConnState
	ch     chan ConnState
}

func (l *stateLog) record(s ConnState, _ error) {
	l.mu.Lock()
	l.states = append(l.states, s)
	l.mu.Unlock()
	select {
	case l.ch <- s:
	default:
	}
}

func (l *stateLog) waitFor(t *testing.T, want ConnState) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case s := <-l.ch:
			if s == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %v", want)
		}
	}
}

func TestSupervisorReconnectsAfterDrop(t *testing.T) {
	c, b := newTestClient(t)
	states := &stateLog{ch: make(chan ConnState, 64)}
	sup := NewSupervisor(c, 10*time.Millisecond, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sup.Stream(ctx, func(models.PushEvent) {}, states.record) }()

	states.waitFor(t, Open)
	b.WaitForSubscriber(2 * time.Second)

	b.DropSubscribers()
	states.waitFor(t, Closed)
	states.waitFor(t, Open)

	if n := b.Calls("ws"); n < 2 {
		t.Errorf("ws dials = %d, want at least 2", n)
	}
	if n := b.Subscribers(); n > 1 {
		t.Errorf("live subscribers = %d, want at most 1", n)
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Stream() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stream() did not return after cancel")
	}
}

func TestSupervisorRetriesFailedDial(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1/api", PushURL: "ws://127.0.0.1:1/api/ws", Timeout: 200 * time.Millisecond})
	states := &stateLog{ch: make(chan ConnState, 64)}
	sup := NewSupervisor(c, 5*time.Millisecond, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sup.Stream(ctx, func(models.PushEvent) {}, states.record) }()

	states.waitFor(t, Closed)
	states.waitFor(t, Connecting)
	cancel()
	<-done

	states.mu.Lock()
	defer states.mu.Unlock()
	for _, s := range states.states {
		if s == Open {
			t.Error("supervisor reported Open against an unreachable backend")
		}
	}
}

func TestClientStreamReportsLifecycle(t *testing.T) {
	c, b := newTestClient(t)
	states := &stateLog{ch: make(chan ConnState, 64)}

	done := make(chan error, 1)
	go func() { done <- c.Stream(context.Background(), func(models.PushEvent) {}, states.record) }()

	states.waitFor(t, Open)
	b.WaitForSubscriber(2 * time.Second)
	b.DropSubscribers()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stream() did not return after the server dropped the connection")
	}

	states.mu.Lock()
	defer states.mu.Unlock()
	want := []ConnState{Connecting, Open, Closed}
	if len(states.states) != len(want) {
		t.Fatalf("states = %v, want %v", states.states, want)
	}
	for i := range want {
		if states.states[i] != want[i] {
			t.Errorf("states[%d] = %v, want %v", i, states.states[i], want[i])
		}
	}
}
