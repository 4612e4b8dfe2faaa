package session

import (
	"testing"
	"time"

	"github.com/autoreflex/autoreflex/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		message string
		want    Tone
	}{
		{"[ERROR] build failed", ToneError},
		{"[WARN] retrying", ToneWarn},
		{"[SUCCESS] tests pass", ToneSuccess},
		{"plain output", ToneNormal},
		{"[SUCCESS] then [ERROR]", ToneError},
		{"[WARN] and [SUCCESS]", ToneWarn},
		{"error without brackets", ToneNormal},
	}

	for _, tt := range tests {
		if got := Classify(models.LogEntry{Message: tt.message}); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.message, got, tt.want)
		}
	}
}

func TestClassifyDoesNotMutate(t *testing.T) {
	e := logEntry("[ERROR] x")
	before := e
	Classify(e)
	FormatClock(e, time.UTC)
	if e != before {
		t.Errorf("entry changed: %+v", e)
	}
}

func TestFormatClock(t *testing.T) {
	e := models.LogEntry{Timestamp: time.Date(2026, 2, 10, 9, 5, 7, 0, time.UTC)}
	if got := FormatClock(e, time.UTC); got != "09:05:07" {
		t.Errorf("FormatClock() = %q, want %q", got, "09:05:07")
	}
	if got := FormatClock(models.LogEntry{}, time.UTC); got != "--:--:--" {
		t.Errorf("FormatClock(zero) = %q", got)
	}
	if got := FormatLine(models.LogEntry{Timestamp: e.Timestamp, Message: "hi"}, time.UTC); got != "09:05:07 hi" {
		t.Errorf("FormatLine() = %q", got)
	}
}
