// Package models contains shared data structures used across the application.
package models

// AgentStatus is the lifecycle state of the agent run as reported by the backend.
// The backend may send values outside the known constants; they are kept verbatim.
type AgentStatus string

const (
	StatusIdle    AgentStatus = "idle"
	StatusRunning AgentStatus = "running"
	StatusError   AgentStatus = "error"
)

// IsRunning reports whether the agent is actively executing a task.
func (s AgentStatus) IsRunning() bool {
	return s == StatusRunning
}

// String returns the raw status value.
func (s AgentStatus) String() string {
	return string(s)
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Status AgentStatus `json:"status"`
}
