package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "RFC3339 with zone",
			input: "2026-02-10T14:30:00Z",
			want:  time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC),
		},
		{
			name:  "naive isoformat with micros",
			input: "2026-02-10T14:30:00.123456",
			want:  time.Date(2026, 2, 10, 14, 30, 0, 123456000, time.UTC),
		},
		{
			name:  "naive space separated",
			input: "2026-02-10 14:30:00",
			want:  time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC),
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "garbage",
			input:   "yesterday",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseTimestamp(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestOptimizedTaskID(t *testing.T) {
	var withID OptimizedTask
	if err := json.Unmarshal([]byte(`{"id":7,"original_task":"fix bug","optimized_prompt":"...","reasoning":"r","estimated_tokens":120}`), &withID); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !withID.HasID() || withID.TaskID() != 7 {
		t.Errorf("HasID/TaskID = %v/%d, want true/7", withID.HasID(), withID.TaskID())
	}
	if withID.EstimatedTokens != 120 {
		t.Errorf("EstimatedTokens = %d, want 120", withID.EstimatedTokens)
	}

	var withoutID OptimizedTask
	if err := json.Unmarshal([]byte(`{"original_task":"x","optimized_prompt":"y","reasoning":"","estimated_tokens":1}`), &withoutID); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if withoutID.HasID() {
		t.Error("task without id reports HasID")
	}

	var nilTask *OptimizedTask
	if nilTask.HasID() {
		t.Error("nil task reports HasID")
	}
}

func TestOptimizedTaskCloneDoesNotAlias(t *testing.T) {
	id := int64(3)
	orig := &OptimizedTask{ID: &id, OptimizedPrompt: "p"}
	c := orig.Clone()
	*c.ID = 99
	c.OptimizedPrompt = "changed"
	if *orig.ID != 3 || orig.OptimizedPrompt != "p" {
		t.Errorf("clone aliases original: %+v", orig)
	}
}

func TestLogEntryUnmarshal(t *testing.T) {
	var e LogEntry
	if err := json.Unmarshal([]byte(`{"timestamp":"2026-02-10T14:30:00","level":"INFO","message":"[SUCCESS] done"}`), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Source != DefaultLogSource {
		t.Errorf("Source = %q, want %q", e.Source, DefaultLogSource)
	}
	if e.Message != "[SUCCESS] done" {
		t.Errorf("Message = %q", e.Message)
	}

	if err := json.Unmarshal([]byte(`{"timestamp":"soon","level":"INFO","message":"x"}`), &e); err == nil {
		t.Error("expected error for bad timestamp")
	}
}

func TestHistoryRecordUnmarshal(t *testing.T) {
	var records []TaskHistoryRecord
	data := `[{"id":2,"description":"b","status":"optimizing","created_at":"2026-02-10T14:30:00.5"},
	          {"id":1,"description":"a","status":"done","created_at":"2026-02-09T10:00:00+00:00"}]`
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if records[0].ID != 2 || records[1].Status != "done" {
		t.Errorf("unexpected records: %+v", records)
	}
	if records[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not parsed")
	}
}

func TestSettingsNormalize(t *testing.T) {
	s := &Settings{API: APIConfig{BaseURL: "http://example:9000/api"}}
	s.Normalize()

	if s.API.BaseURL != "http://example:9000/api" {
		t.Errorf("BaseURL overwritten: %q", s.API.BaseURL)
	}
	if s.API.PushURL != DefaultPushURL {
		t.Errorf("PushURL = %q, want %q", s.API.PushURL, DefaultPushURL)
	}
	if s.Logs.Capacity != DefaultLogCapacity {
		t.Errorf("Capacity = %d, want %d", s.Logs.Capacity, DefaultLogCapacity)
	}
	if s.Push.MaxBackoff < s.Push.MinBackoff {
		t.Errorf("MaxBackoff %v < MinBackoff %v", s.Push.MaxBackoff, s.Push.MinBackoff)
	}
}
