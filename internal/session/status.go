package session

import (
	"time"

	"github.com/autoreflex/autoreflex/internal/models"
)

// StatusSource records which writer last set the status.
type StatusSource int

const (
	SourceNone StatusSource = iota
	SourceFetched
	SourcePushed
)

func (s StatusSource) String() string {
	switch s {
	case SourceFetched:
		return "fetched"
	case SourcePushed:
		return "pushed"
	}
	return "none"
}

// StatusStore holds the agent status shown to the user. It has two
// writers, the initial fetch and the push channel; the last one applied
// wins.
type StatusStore struct {
	current   models.AgentStatus
	source    StatusSource
	updatedAt time.Time
	fetchErr  error
	now       func() time.Time
}

// NewStatusStore returns a store initialised to idle.
func NewStatusStore(now func() time.Time) *StatusStore {
	if now == nil {
		now = time.Now
	}
	return &StatusStore{current: models.StatusIdle, now: now}
}

// ApplyFetched records the result of the initial status fetch. A failed
// fetch shows as error until a push says otherwise.
func (s *StatusStore) ApplyFetched(status models.AgentStatus, err error) {
	s.fetchErr = err
	if err != nil {
		status = models.StatusError
	}
	s.set(status, SourceFetched)
}

// ApplyPushed overwrites the status with a pushed value.
func (s *StatusStore) ApplyPushed(status models.AgentStatus) {
	s.set(status, SourcePushed)
}

func (s *StatusStore) set(status models.AgentStatus, src StatusSource) {
	s.current = status
	s.source = src
	s.updatedAt = s.now()
}

// Current returns the status last applied.
func (s *StatusStore) Current() models.AgentStatus { return s.current }

// Source returns which writer last applied a status.
func (s *StatusStore) Source() StatusSource { return s.source }

// UpdatedAt returns when the status was last applied. Zero before any write.
func (s *StatusStore) UpdatedAt() time.Time { return s.updatedAt }

// FetchErr returns the error from the initial fetch, if it failed.
func (s *StatusStore) FetchErr() error { return s.fetchErr }
