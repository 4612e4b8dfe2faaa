package session

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/autoreflex/autoreflex/internal/models"
)

// HistoryCache holds the last successfully fetched task history. A failed
// refresh keeps the previous records.
type HistoryCache struct {
	records     []models.TaskHistoryRecord
	loaded      bool
	requests    int
	refreshedAt time.Time
	lastErr     error
	now         func() time.Time
	cmds        *commands
}

func newHistoryCache(cmds *commands, now func() time.Time) *HistoryCache {
	return &HistoryCache{cmds: cmds, now: now}
}

// Refresh issues one history fetch. The result arrives as a HistoryMsg and
// replaces the whole collection.
func (h *HistoryCache) Refresh() tea.Cmd {
	h.requests++
	return h.cmds.fetchHistory()
}

// Apply records the outcome of a refresh.
func (h *HistoryCache) Apply(records []models.TaskHistoryRecord, err error) {
	if err != nil {
		h.lastErr = err
		return
	}
	h.records = append([]models.TaskHistoryRecord(nil), records...)
	h.loaded = true
	h.lastErr = nil
	h.refreshedAt = h.now()
}

// Records returns a copy of the cached records in server order.
func (h *HistoryCache) Records() []models.TaskHistoryRecord {
	return append([]models.TaskHistoryRecord(nil), h.records...)
}

// Loaded reports whether any refresh has succeeded.
func (h *HistoryCache) Loaded() bool { return h.loaded }

// Requests returns how many refreshes were issued.
func (h *HistoryCache) Requests() int { return h.requests }

// RefreshedAt returns the time of the last successful refresh.
func (h *HistoryCache) RefreshedAt() time.Time { return h.refreshedAt }

// LastError returns the error of the most recent refresh, or nil if it succeeded.
func (h *HistoryCache) LastError() error { return h.lastErr }
