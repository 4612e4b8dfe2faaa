// Package session keeps the dashboard's view of the backend consistent:
// agent status, the live log tail, task history and the task lifecycle.
//
// A Session is driven by a single event loop. Network calls run as tea.Cmds
// that only return messages, and push events arrive as messages through a
// Sender, so the stores are only ever touched from Update and need no locks.
package session

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/autoreflex/autoreflex/internal/client"
	"github.com/autoreflex/autoreflex/internal/models"
)

// Transport is the request/response side of the backend.
type Transport interface {
	FetchStatus(ctx context.Context) (models.AgentStatus, error)
	FetchHistory(ctx context.Context) ([]models.TaskHistoryRecord, error)
	Optimize(ctx context.Context, description string) (*models.OptimizedTask, error)
	Run(ctx context.Context, taskID int64) (*models.RunAck, error)
	Stop(ctx context.Context) (*models.StopAck, error)
}

// Pusher streams push events until ctx is cancelled or it gives up.
// *client.Client streams once; *client.Supervisor reconnects.
type Pusher interface {
	Stream(ctx context.Context, onEvent func(models.PushEvent), onState client.StateFunc) error
}

// Sender delivers messages into the event loop from other goroutines.
type Sender interface {
	Send(msg tea.Msg)
}

// Options configures a Session.
type Options struct {
	LogCapacity int
	Push        Pusher
	Sender      Sender
	Logger      *logrus.Entry
	Now         func() time.Time
}

// Session owns the stores for one dashboard lifetime.
type Session struct {
	Status  *StatusStore
	Logs    *LogBuffer
	History *HistoryCache
	Tasks   *Controller

	push   Pusher
	sender Sender
	cmds   *commands
	log    *logrus.Entry

	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	closed  bool

	conn    client.ConnState
	connErr error
}

// New creates a session over transport. Nothing is sent until Start.
func New(transport Transport, opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = logrus.NewEntry(l)
	}
	log = log.WithField("component", "session")

	ctx, cancel := context.WithCancel(context.Background())
	cmds := &commands{ctx: ctx, transport: transport}
	history := newHistoryCache(cmds, opts.Now)

	return &Session{
		Status:  NewStatusStore(opts.Now),
		Logs:    NewLogBuffer(opts.LogCapacity),
		History: history,
		Tasks:   newController(cmds, history, log),
		push:    opts.Push,
		sender:  opts.Sender,
		cmds:    cmds,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		conn:    client.Closed,
	}
}

// Start issues the initial status fetch and history refresh and opens the
// push channel. Only the first call does anything.
func (s *Session) Start() tea.Cmd {
	if s.started || s.closed {
		return nil
	}
	s.started = true
	s.log.Info("session starting")

	cmds := []tea.Cmd{s.cmds.fetchStatus(), s.History.Refresh()}
	if s.push != nil && s.sender != nil {
		cmds = append(cmds, s.streamCmd())
	}
	return tea.Batch(cmds...)
}

func (s *Session) streamCmd() tea.Cmd {
	push, sender, ctx := s.push, s.sender, s.ctx
	return func() tea.Msg {
		err := push.Stream(ctx,
			func(e models.PushEvent) { sender.Send(PushEventMsg{Event: e}) },
			func(state client.ConnState, err error) { sender.Send(ConnStateMsg{State: state, Err: err}) },
		)
		return PushStoppedMsg{Err: err}
	}
}

// Update applies one message to the stores and returns any follow-up
// command. Messages arriving after Close are discarded.
func (s *Session) Update(msg tea.Msg) tea.Cmd {
	if !s.alive() {
		return nil
	}

	switch msg := msg.(type) {
	case StatusFetchedMsg:
		s.Status.ApplyFetched(msg.Status, msg.Err)
		if msg.Err != nil {
			s.log.WithError(msg.Err).Error("initial status fetch failed")
			return errorCmd("status", msg.Err)
		}
		return nil

	case HistoryMsg:
		s.History.Apply(msg.Records, msg.Err)
		if msg.Err != nil {
			s.log.WithError(msg.Err).Warn("history refresh failed")
			return errorCmd("history", msg.Err)
		}
		return nil

	case OptimizeResultMsg:
		return s.Tasks.handleOptimize(msg)

	case RunResultMsg:
		return s.Tasks.handleRun(msg)

	case StopResultMsg:
		return s.Tasks.handleStop(msg)

	case PushEventMsg:
		s.applyPush(msg.Event)
		return nil

	case ConnStateMsg:
		s.conn = msg.State
		if msg.Err != nil {
			s.connErr = msg.Err
		} else if msg.State == client.Open {
			s.connErr = nil
		}
		s.log.WithField("state", msg.State.String()).Debug("push channel state")
		return nil

	case PushStoppedMsg:
		s.conn = client.Closed
		if msg.Err != nil && s.ctx.Err() == nil {
			s.connErr = msg.Err
		}
		return nil
	}
	return nil
}

func (s *Session) applyPush(e models.PushEvent) {
	switch e.Type {
	case models.PushEventLog:
		if e.Log != nil {
			s.Logs.Append(*e.Log)
		}
	case models.PushEventStatus:
		s.Status.ApplyPushed(e.Status)
		s.Tasks.observeStatus(e.Status)
	}
}

// Submit starts optimizing description.
func (s *Session) Submit(description string) (tea.Cmd, error) {
	if !s.alive() {
		return nil, ErrClosed
	}
	return s.Tasks.Submit(description)
}

// Execute runs the ready task.
func (s *Session) Execute() tea.Cmd {
	if !s.alive() {
		return nil
	}
	return s.Tasks.Execute()
}

// Abort asks the backend to stop the agent.
func (s *Session) Abort() tea.Cmd {
	if !s.alive() {
		return nil
	}
	return s.Tasks.Abort()
}

// RefreshHistory re-fetches the task history.
func (s *Session) RefreshHistory() tea.Cmd {
	if !s.alive() {
		return nil
	}
	return s.History.Refresh()
}

// ConnState returns the push connection state and the last connection error.
func (s *Session) ConnState() (client.ConnState, error) { return s.conn, s.connErr }

// Closed reports whether Close has been called.
func (s *Session) Closed() bool { return s.closed }

// Close tears the session down: the push channel is closed, in-flight
// requests are cancelled and any late results are discarded. Safe to call
// more than once.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
	s.log.Info("session closed")
}

func (s *Session) alive() bool { return !s.closed }

// PusherFor picks the push strategy for c: a supervised reconnecting stream
// when cfg.Reconnect is set, otherwise a single connection.
func PusherFor(c *client.Client, cfg models.PushConfig) Pusher {
	if cfg.Reconnect {
		return client.NewSupervisor(c, cfg.MinBackoff, cfg.MaxBackoff)
	}
	return c
}
