package models

import (
	"encoding/json"
	"time"
)

// OptimizedTask is the backend's rewrite of a user mission into an agent prompt.
// ID is nil until the backend has persisted the task; only tasks with an ID can run.
type OptimizedTask struct {
	ID              *int64 `json:"id,omitempty"`
	OriginalTask    string `json:"original_task"`
	OptimizedPrompt string `json:"optimized_prompt"`
	Reasoning       string `json:"reasoning"`
	EstimatedTokens int    `json:"estimated_tokens"`
}

// HasID returns true if the backend assigned an ID to the task.
func (t *OptimizedTask) HasID() bool {
	return t != nil && t.ID != nil
}

// TaskID returns the assigned ID, or 0 when there is none.
func (t *OptimizedTask) TaskID() int64 {
	if !t.HasID() {
		return 0
	}
	return *t.ID
}

// Clone returns a deep copy so holders cannot alias each other's task.
func (t *OptimizedTask) Clone() *OptimizedTask {
	if t == nil {
		return nil
	}
	c := *t
	if t.ID != nil {
		id := *t.ID
		c.ID = &id
	}
	return &c
}

// OptimizeRequest is the body of POST /optimize.
type OptimizeRequest struct {
	Description  string   `json:"description"`
	ContextFiles []string `json:"context_files"`
}

// RunRequest is the body of POST /run.
type RunRequest struct {
	TaskID int64 `json:"task_id"`
}

// RunAck acknowledges that the backend accepted a run request.
// It says nothing about whether the agent is running yet.
type RunAck struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	TaskID  int64  `json:"task_id"`
}

// StopAck acknowledges a stop request.
type StopAck struct {
	Status string `json:"status"`
}

// TaskHistoryRecord is a read-only snapshot of a past task.
type TaskHistoryRecord struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// UnmarshalJSON accepts zone-less timestamps for created_at.
func (r *TaskHistoryRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          int64  `json:"id"`
		Description string `json:"description"`
		Status      string `json:"status"`
		CreatedAt   string `json:"created_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.ID = raw.ID
	r.Description = raw.Description
	r.Status = raw.Status
	r.CreatedAt = time.Time{}
	if raw.CreatedAt != "" {
		t, err := ParseTimestamp(raw.CreatedAt)
		if err != nil {
			return err
		}
		r.CreatedAt = t
	}
	return nil
}
