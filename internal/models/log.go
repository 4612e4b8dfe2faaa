package models

import (
	"encoding/json"
	"time"
)

// LogEntry is a single line of agent output delivered over the push channel.
// Entries are never modified after they are received.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
}

// UnmarshalJSON accepts zone-less timestamps and defaults source like the backend does.
func (e *LogEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Timestamp string `json:"timestamp"`
		Level     string `json:"level"`
		Message   string `json:"message"`
		Source    string `json:"source"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ts, err := ParseTimestamp(raw.Timestamp)
	if err != nil {
		return err
	}
	e.Timestamp = ts
	e.Level = raw.Level
	e.Message = raw.Message
	e.Source = raw.Source
	if e.Source == "" {
		e.Source = DefaultLogSource
	}
	return nil
}

// DefaultLogSource is assumed when a log entry arrives without a source.
const DefaultLogSource = "claude-cli"

// PushEventType discriminates push channel messages.
type PushEventType string

const (
	PushEventLog    PushEventType = "log"
	PushEventStatus PushEventType = "status"
)

// PushEvent is a decoded push channel message. Exactly one of Log or Status
// is meaningful, selected by Type.
type PushEvent struct {
	Type   PushEventType
	Log    *LogEntry
	Status AgentStatus
}

// NewLogEvent wraps a log entry as a push event.
func NewLogEvent(entry LogEntry) PushEvent {
	return PushEvent{Type: PushEventLog, Log: &entry}
}

// NewStatusEvent wraps a status value as a push event.
func NewStatusEvent(status AgentStatus) PushEvent {
	return PushEvent{Type: PushEventStatus, Status: status}
}
