package session

import "github.com/autoreflex/autoreflex/internal/models"

// LogBuffer is a fixed-capacity ring of log entries. Once full, each
// Append evicts exactly the oldest entry.
type LogBuffer struct {
	entries []models.LogEntry
	start   int
	count   int
	total   uint64
	dropped uint64
}

// NewLogBuffer creates a buffer holding at most capacity entries.
// A non-positive capacity uses models.DefaultLogCapacity.
func NewLogBuffer(capacity int) *LogBuffer {
	if capacity <= 0 {
		capacity = models.DefaultLogCapacity
	}
	return &LogBuffer{entries: make([]models.LogEntry, capacity)}
}

// Append adds entry at the tail.
func (b *LogBuffer) Append(entry models.LogEntry) {
	b.total++
	capacity := len(b.entries)
	if b.count < capacity {
		b.entries[(b.start+b.count)%capacity] = entry
		b.count++
		return
	}
	b.entries[b.start] = entry
	b.start = (b.start + 1) % capacity
	b.dropped++
}

// Snapshot returns the retained entries, oldest first. The returned slice
// is a copy.
func (b *LogBuffer) Snapshot() []models.LogEntry {
	out := make([]models.LogEntry, b.count)
	capacity := len(b.entries)
	for i := 0; i < b.count; i++ {
		out[i] = b.entries[(b.start+i)%capacity]
	}
	return out
}

// Tail returns up to n of the newest entries, oldest first.
func (b *LogBuffer) Tail(n int) []models.LogEntry {
	if n <= 0 {
		return nil
	}
	if n > b.count {
		n = b.count
	}
	out := make([]models.LogEntry, n)
	capacity := len(b.entries)
	skip := b.count - n
	for i := 0; i < n; i++ {
		out[i] = b.entries[(b.start+skip+i)%capacity]
	}
	return out
}

// Len returns the number of retained entries.
func (b *LogBuffer) Len() int { return b.count }

// Cap returns the capacity.
func (b *LogBuffer) Cap() int { return len(b.entries) }

// Total returns how many entries were ever appended.
func (b *LogBuffer) Total() uint64 { return b.total }

// Dropped returns how many entries were evicted.
func (b *LogBuffer) Dropped() uint64 { return b.dropped }

// Clear discards all entries but keeps the counters.
func (b *LogBuffer) Clear() {
	for i := range b.entries {
		b.entries[i] = models.LogEntry{}
	}
	b.start = 0
	b.count = 0
}
