package session

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/autoreflex/autoreflex/internal/models"
)

// Phase is the task lifecycle as seen by the controller.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseOptimizing
	PhaseReady
	PhaseRunning
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseOptimizing:
		return "optimizing"
	case PhaseReady:
		return "ready"
	case PhaseRunning:
		return "running"
	}
	return "unknown"
}

// Controller drives one task from description to run. Its own requests
// never decide the displayed status; that comes from the StatusStore.
type Controller struct {
	phase   Phase
	task    *models.OptimizedTask
	lastErr error

	// seq tags requests so results from before a Reset are ignored.
	seq      uint64
	running  bool // run request in flight
	stopping bool // stop request in flight
	settle   bool // a non-running pushed status ends PhaseRunning
	runSeen  bool // running was pushed while the run request was in flight

	// Pushed statuses can arrive before the ack of the request that
	// caused them, so the latest one is kept for the ack handlers.
	pushes   uint64
	lastPush models.AgentStatus
	stopMark uint64 // pushes when the stop request was issued

	cmds    *commands
	history *HistoryCache
	log     *logrus.Entry
}

func newController(cmds *commands, history *HistoryCache, log *logrus.Entry) *Controller {
	return &Controller{cmds: cmds, history: history, log: log.WithField("component", "controller")}
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase { return c.phase }

// Busy reports whether an optimize or run request is in flight.
func (c *Controller) Busy() bool { return c.phase == PhaseOptimizing || c.running }

// Stopping reports whether a stop request is in flight.
func (c *Controller) Stopping() bool { return c.stopping }

// Task returns a copy of the held task, or nil.
func (c *Controller) Task() *models.OptimizedTask { return c.task.Clone() }

// LastError returns the most recent failure or rejected call.
func (c *Controller) LastError() error { return c.lastErr }

// Submit sends description for optimization. It is rejected while an
// optimize or run is in flight and while the agent is running.
func (c *Controller) Submit(description string) (tea.Cmd, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, c.violate("submit", ErrEmptyDescription)
	}
	if c.phase == PhaseOptimizing || c.phase == PhaseRunning || c.running {
		return nil, c.violate("submit", ErrBusy)
	}

	c.seq++
	c.phase = PhaseOptimizing
	c.lastErr = nil
	c.log.WithField("length", len(description)).Info("optimizing task")
	return c.cmds.optimize(c.seq, description), nil
}

// Execute runs the held task. Without a ready task carrying an id it logs
// a ContractViolation and returns nil.
func (c *Controller) Execute() tea.Cmd {
	switch {
	case c.phase != PhaseReady:
		c.violate("execute", ErrNotReady)
		return nil
	case !c.task.HasID():
		c.violate("execute", ErrNoTaskID)
		return nil
	case c.running:
		c.violate("execute", ErrBusy)
		return nil
	}

	c.running = true
	c.runSeen = false
	c.lastErr = nil
	c.log.WithField("task_id", c.task.TaskID()).Info("running task")
	return c.cmds.run(c.seq, c.task.TaskID())
}

// Abort asks the backend to stop the agent. The phase is left alone; the
// next pushed status decides what happens.
func (c *Controller) Abort() tea.Cmd {
	c.stopping = true
	c.stopMark = c.pushes
	c.log.Info("stopping agent")
	return c.cmds.stop(c.seq)
}

// Reset drops the held task and returns to idle. Results of requests
// issued before the reset are ignored.
func (c *Controller) Reset() {
	c.seq++
	c.phase = PhaseIdle
	c.task = nil
	c.lastErr = nil
	c.running = false
	c.runSeen = false
	c.stopping = false
	c.settle = false
}

func (c *Controller) handleOptimize(msg OptimizeResultMsg) tea.Cmd {
	if msg.seq != c.seq || c.phase != PhaseOptimizing {
		c.log.Debug("ignoring stale optimize result")
		return nil
	}
	if msg.Err != nil {
		c.phase = PhaseIdle
		c.lastErr = msg.Err
		c.log.WithError(msg.Err).Error("optimize failed")
		return errorCmd("optimize", msg.Err)
	}

	c.task = msg.Task.Clone()
	c.phase = PhaseReady
	c.log.WithFields(logrus.Fields{
		"task_id": c.task.TaskID(),
		"tokens":  c.task.EstimatedTokens,
	}).Info("task optimized")

	cmds := []tea.Cmd{c.history.Refresh()}
	if !c.task.HasID() {
		cmds = append(cmds, noticeCmd("Task optimized but not saved; it cannot be run"))
	}
	return tea.Batch(cmds...)
}

func (c *Controller) handleRun(msg RunResultMsg) tea.Cmd {
	if msg.seq != c.seq || !c.running {
		c.log.Debug("ignoring stale run result")
		return nil
	}
	c.running = false
	if msg.Err != nil {
		c.lastErr = msg.Err
		c.log.WithError(msg.Err).Error("run failed")
		return errorCmd("run", msg.Err)
	}

	// The ack only says the request was accepted. A running push seen
	// before it arms the settle, and a later non-running one means the
	// run already finished.
	c.phase = PhaseRunning
	c.settle = c.runSeen
	c.log.WithField("task_id", msg.TaskID).Info("run accepted")
	if c.runSeen && !c.lastPush.IsRunning() {
		c.finishRun(c.lastPush)
		return noticeCmd("Agent finished")
	}
	return noticeCmd("Agent started")
}

func (c *Controller) handleStop(msg StopResultMsg) tea.Cmd {
	if msg.seq != c.seq {
		c.log.Debug("ignoring stale stop result")
		return nil
	}
	c.stopping = false
	if msg.Err != nil {
		c.lastErr = msg.Err
		c.log.WithError(msg.Err).Error("stop failed")
		return errorCmd("stop", msg.Err)
	}
	if c.phase == PhaseRunning {
		if c.pushes > c.stopMark && !c.lastPush.IsRunning() {
			c.finishRun(c.lastPush)
		} else {
			c.settle = true
		}
	}
	return noticeCmd("Stop requested")
}

func (c *Controller) finishRun(status models.AgentStatus) {
	c.phase = PhaseReady
	c.settle = false
	c.log.WithField("status", status).Info("run finished")
}

// observeStatus lets the push ledger settle a finished run back to Ready.
func (c *Controller) observeStatus(status models.AgentStatus) {
	c.pushes++
	c.lastPush = status
	if c.running && status.IsRunning() {
		c.runSeen = true
	}
	if c.phase != PhaseRunning {
		return
	}
	if status.IsRunning() {
		// Only a running status seen in this phase arms the settle.
		c.settle = true
		return
	}
	if c.settle {
		c.finishRun(status)
	}
}

func (c *Controller) violate(op string, err error) error {
	v := &ContractViolation{Op: op, Phase: c.phase, Err: err}
	c.lastErr = v
	c.log.WithError(err).WithField("op", op).Warn("contract violation")
	return v
}
