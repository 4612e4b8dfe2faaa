package session

import (
	"strings"
	"time"

	"github.com/autoreflex/autoreflex/internal/models"
)

// Tone is the display class of a log line.
type Tone int

const (
	ToneNormal Tone = iota
	ToneError
	ToneWarn
	ToneSuccess
)

func (t Tone) String() string {
	switch t {
	case ToneError:
		return "error"
	case ToneWarn:
		return "warn"
	case ToneSuccess:
		return "success"
	}
	return "normal"
}

// Classify picks a tone from the message markers the agent emits. The
// first matching marker wins, checked in error, warn, success order.
func Classify(entry models.LogEntry) Tone {
	switch {
	case strings.Contains(entry.Message, "[ERROR]"):
		return ToneError
	case strings.Contains(entry.Message, "[WARN]"):
		return ToneWarn
	case strings.Contains(entry.Message, "[SUCCESS]"):
		return ToneSuccess
	}
	return ToneNormal
}

// FormatClock renders the entry time as HH:MM:SS in loc (local time when nil).
func FormatClock(entry models.LogEntry, loc *time.Location) string {
	if entry.Timestamp.IsZero() {
		return "--:--:--"
	}
	if loc == nil {
		loc = time.Local
	}
	return entry.Timestamp.In(loc).Format("15:04:05")
}

// FormatLine renders an entry as "HH:MM:SS message" for plain output.
func FormatLine(entry models.LogEntry, loc *time.Location) string {
	return FormatClock(entry, loc) + " " + entry.Message
}
