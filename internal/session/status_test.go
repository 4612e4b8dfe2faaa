package session

import (
	"testing"

	"github.com/autoreflex/autoreflex/internal/models"
)

func TestStatusStoreStartsIdle(t *testing.T) {
	s := NewStatusStore(nil)
	if s.Current() != models.StatusIdle || s.Source() != SourceNone {
		t.Errorf("initial = %q/%v, want idle/none", s.Current(), s.Source())
	}
	if !s.UpdatedAt().IsZero() {
		t.Errorf("UpdatedAt() = %v, want zero", s.UpdatedAt())
	}
}

func TestStatusStoreFetchFailureShowsError(t *testing.T) {
	s := NewStatusStore(nil)
	s.ApplyFetched("", errBackendDown)
	if s.Current() != models.StatusError {
		t.Errorf("Current() = %q, want error", s.Current())
	}
	if s.FetchErr() == nil {
		t.Error("FetchErr() = nil")
	}

	// A later push still updates it.
	s.ApplyPushed(models.StatusRunning)
	if s.Current() != models.StatusRunning {
		t.Errorf("Current() = %q, want running", s.Current())
	}
}

func TestStatusStoreLastWriteWins(t *testing.T) {
	tests := []struct {
		name  string
		apply func(*StatusStore)
		want  models.AgentStatus
		src   StatusSource
	}{
		{
			name: "fetch running then push idle",
			apply: func(s *StatusStore) {
				s.ApplyFetched(models.StatusRunning, nil)
				s.ApplyPushed(models.StatusIdle)
			},
			want: models.StatusIdle,
			src:  SourcePushed,
		},
		{
			name: "push running then late fetch idle",
			apply: func(s *StatusStore) {
				s.ApplyPushed(models.StatusRunning)
				s.ApplyFetched(models.StatusIdle, nil)
			},
			want: models.StatusIdle,
			src:  SourceFetched,
		},
		{
			name: "unknown server status kept",
			apply: func(s *StatusStore) {
				s.ApplyPushed("paused")
			},
			want: "paused",
			src:  SourcePushed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStatusStore(nil)
			tt.apply(s)
			if s.Current() != tt.want {
				t.Errorf("Current() = %q, want %q", s.Current(), tt.want)
			}
			if s.Source() != tt.src {
				t.Errorf("Source() = %v, want %v", s.Source(), tt.src)
			}
		})
	}
}
