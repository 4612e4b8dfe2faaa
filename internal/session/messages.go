package session

import (
	"github.com/autoreflex/autoreflex/internal/client"
	"github.com/autoreflex/autoreflex/internal/models"
)

// StatusFetchedMsg carries the result of the initial status fetch.
type StatusFetchedMsg struct {
	Status models.AgentStatus
	Err    error
}

// HistoryMsg carries the result of a history refresh.
type HistoryMsg struct {
	Records []models.TaskHistoryRecord
	Err     error
}

// OptimizeResultMsg carries the result of an optimize request.
type OptimizeResultMsg struct {
	seq  uint64
	Task *models.OptimizedTask
	Err  error
}

// RunResultMsg carries the result of a run request.
type RunResultMsg struct {
	seq    uint64
	TaskID int64
	Ack    *models.RunAck
	Err    error
}

// StopResultMsg carries the result of a stop request.
type StopResultMsg struct {
	seq uint64
	Ack *models.StopAck
	Err error
}

// PushEventMsg is a decoded push channel event.
type PushEventMsg struct {
	Event models.PushEvent
}

// ConnStateMsg reports a push connection state change.
type ConnStateMsg struct {
	State client.ConnState
	Err   error
}

// PushStoppedMsg is sent when the push stream gives up for good.
type PushStoppedMsg struct {
	Err error
}

// ErrorMsg is emitted by Update when a request failed, for display.
type ErrorMsg struct {
	Op  string
	Err error
}

// NoticeMsg is emitted by Update for user-facing confirmations.
type NoticeMsg struct {
	Text string
}
