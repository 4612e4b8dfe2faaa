package session

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// commands turns transport calls into tea.Cmds. The returned closures run
// off the event loop and only build a message; they never touch stores.
type commands struct {
	ctx       context.Context
	transport Transport
}

func (c *commands) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		status, err := c.transport.FetchStatus(c.ctx)
		if err != nil {
			return StatusFetchedMsg{Err: fmt.Errorf("failed to fetch status: %w", err)}
		}
		return StatusFetchedMsg{Status: status}
	}
}

func (c *commands) fetchHistory() tea.Cmd {
	return func() tea.Msg {
		records, err := c.transport.FetchHistory(c.ctx)
		if err != nil {
			return HistoryMsg{Err: fmt.Errorf("failed to fetch history: %w", err)}
		}
		return HistoryMsg{Records: records}
	}
}

func (c *commands) optimize(seq uint64, description string) tea.Cmd {
	return func() tea.Msg {
		task, err := c.transport.Optimize(c.ctx, description)
		if err != nil {
			return OptimizeResultMsg{seq: seq, Err: fmt.Errorf("failed to optimize task: %w", err)}
		}
		return OptimizeResultMsg{seq: seq, Task: task}
	}
}

func (c *commands) run(seq uint64, taskID int64) tea.Cmd {
	return func() tea.Msg {
		ack, err := c.transport.Run(c.ctx, taskID)
		if err != nil {
			return RunResultMsg{seq: seq, TaskID: taskID, Err: fmt.Errorf("failed to run task %d: %w", taskID, err)}
		}
		return RunResultMsg{seq: seq, TaskID: taskID, Ack: ack}
	}
}

func (c *commands) stop(seq uint64) tea.Cmd {
	return func() tea.Msg {
		ack, err := c.transport.Stop(c.ctx)
		if err != nil {
			return StopResultMsg{seq: seq, Err: fmt.Errorf("failed to stop agent: %w", err)}
		}
		return StopResultMsg{seq: seq, Ack: ack}
	}
}

func errorCmd(op string, err error) tea.Cmd {
	return func() tea.Msg { return ErrorMsg{Op: op, Err: err} }
}

func noticeCmd(text string) tea.Cmd {
	return func() tea.Msg { return NoticeMsg{Text: text} }
}
