// Package testutil provides a fake autoreflex backend for tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/autoreflex/autoreflex/internal/models"
)

// Backend is an in-process stand-in for the autoreflex API. It serves the
// REST endpoints and the push channel under /api, records every call, and
// lets tests push frames to connected subscribers.
type Backend struct {
	server   *httptest.Server
	upgrader websocket.Upgrader

	mu          sync.Mutex
	status      models.AgentStatus
	history     []models.TaskHistoryRecord
	optimized   *models.OptimizedTask
	failures    map[string]int
	calls       map[string]int
	optimizeReq []models.OptimizeRequest
	runReq      []models.RunRequest
	sessions    []string
	subs        []*websocket.Conn
	subscribed  chan struct{}
}

// NewBackend starts a fake backend that is shut down when the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &Backend{
		status:     models.StatusIdle,
		failures:   make(map[string]int),
		calls:      make(map[string]int),
		subscribed: make(chan struct{}, 16),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	r := gin.New()
	api := r.Group("/api")
	api.GET("/status", b.handleStatus)
	api.GET("/history", b.handleHistory)
	api.POST("/optimize", b.handleOptimize)
	api.POST("/run", b.handleRun)
	api.POST("/stop", b.handleStop)
	api.GET("/ws", b.handlePush)

	b.server = httptest.NewServer(r)
	t.Cleanup(b.Close)
	return b
}

// BaseURL returns the REST base, e.g. http://127.0.0.1:1234/api.
func (b *Backend) BaseURL() string { return b.server.URL + "/api" }

// PushURL returns the websocket endpoint.
func (b *Backend) PushURL() string {
	return "ws" + strings.TrimPrefix(b.server.URL, "http") + "/api/ws"
}

// Close drops subscribers and stops the server.
func (b *Backend) Close() {
	b.DropSubscribers()
	b.server.Close()
}

// SetStatus sets the status returned by GET /status.
func (b *Backend) SetStatus(s models.AgentStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = s
}

// SetHistory sets the records returned by GET /history.
func (b *Backend) SetHistory(records []models.TaskHistoryRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = records
}

// SetOptimized sets the task returned by POST /optimize. When unset the
// backend echoes the description back with an incrementing id.
func (b *Backend) SetOptimized(task *models.OptimizedTask) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.optimized = task
}

// Fail makes op ("status", "history", "optimize", "run", "stop") answer
// with the given HTTP status. A code of 0 restores normal behaviour.
func (b *Backend) Fail(op string, code int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if code == 0 {
		delete(b.failures, op)
		return
	}
	b.failures[op] = code
}

// Calls returns how many times op was requested.
func (b *Backend) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

// OptimizeRequests returns the decoded optimize bodies in arrival order.
func (b *Backend) OptimizeRequests() []models.OptimizeRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.OptimizeRequest(nil), b.optimizeReq...)
}

// RunRequests returns the decoded run bodies in arrival order.
func (b *Backend) RunRequests() []models.RunRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.RunRequest(nil), b.runReq...)
}

// SessionHeaders returns the X-Client-Session values seen so far.
func (b *Backend) SessionHeaders() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.sessions...)
}

// Subscribers returns the number of live push connections.
func (b *Backend) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// WaitForSubscriber blocks until a push client connects or the timeout passes.
func (b *Backend) WaitForSubscriber(timeout time.Duration) bool {
	select {
	case <-b.subscribed:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Push writes a raw frame to every subscriber.
func (b *Backend) Push(frame string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.subs {
		_ = c.WriteMessage(websocket.TextMessage, []byte(frame))
	}
}

// PushStatus pushes a status event.
func (b *Backend) PushStatus(s models.AgentStatus) {
	data, _ := json.Marshal(map[string]any{"type": "status", "data": s})
	b.Push(string(data))
}

// PushLog pushes a log event with a naive timestamp, as the backend does.
func (b *Backend) PushLog(level, message string) {
	data, _ := json.Marshal(map[string]any{
		"type": "log",
		"data": map[string]string{
			"timestamp": time.Now().UTC().Format("2006-01-02T15:04:05.000000"),
			"level":     level,
			"message":   message,
			"source":    models.DefaultLogSource,
		},
	})
	b.Push(string(data))
}

// Finish ends a run the way the agent does: status goes idle and is pushed.
func (b *Backend) Finish() {
	b.setAndPush(models.StatusIdle)
}

func (b *Backend) setAndPush(s models.AgentStatus) {
	b.SetStatus(s)
	b.PushStatus(s)
}

// DropSubscribers closes every push connection from the server side.
func (b *Backend) DropSubscribers() {
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()
	for _, c := range subs {
		c.Close()
	}
}

// record counts a call and reports the failure code configured for op.
func (b *Backend) record(c *gin.Context, op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[op]++
	if id := c.GetHeader("X-Client-Session"); id != "" {
		b.sessions = append(b.sessions, id)
	}
	return b.failures[op]
}

func (b *Backend) handleStatus(c *gin.Context) {
	if code := b.record(c, "status"); code != 0 {
		c.JSON(code, gin.H{"detail": "status unavailable"})
		return
	}
	b.mu.Lock()
	status := b.status
	b.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (b *Backend) handleHistory(c *gin.Context) {
	if code := b.record(c, "history"); code != 0 {
		c.JSON(code, gin.H{"detail": "history unavailable"})
		return
	}
	b.mu.Lock()
	out := make([]gin.H, 0, len(b.history))
	for _, r := range b.history {
		out = append(out, gin.H{
			"id":          r.ID,
			"description": r.Description,
			"status":      r.Status,
			"created_at":  r.CreatedAt.UTC().Format("2006-01-02T15:04:05.000000"),
		})
	}
	b.mu.Unlock()
	c.JSON(http.StatusOK, out)
}

func (b *Backend) handleOptimize(c *gin.Context) {
	if code := b.record(c, "optimize"); code != 0 {
		c.JSON(code, gin.H{"detail": "optimize failed"})
		return
	}
	var req models.OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	b.mu.Lock()
	b.optimizeReq = append(b.optimizeReq, req)
	task := b.optimized.Clone()
	if task == nil {
		id := int64(len(b.optimizeReq))
		task = &models.OptimizedTask{
			ID:              &id,
			OriginalTask:    req.Description,
			OptimizedPrompt: "Plan and carry out: " + req.Description,
			Reasoning:       "expanded by test backend",
			EstimatedTokens: 10 * len(req.Description),
		}
	}
	b.mu.Unlock()
	c.JSON(http.StatusOK, task)
}

func (b *Backend) handleRun(c *gin.Context) {
	if code := b.record(c, "run"); code != 0 {
		c.JSON(code, gin.H{"detail": "run failed"})
		return
	}
	var req models.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	b.mu.Lock()
	b.runReq = append(b.runReq, req)
	b.mu.Unlock()

	// The agent announces itself before /run answers.
	b.setAndPush(models.StatusRunning)
	c.JSON(http.StatusOK, models.RunAck{Status: "started", Message: "Agent started in background", TaskID: req.TaskID})
}

func (b *Backend) handleStop(c *gin.Context) {
	if code := b.record(c, "stop"); code != 0 {
		c.JSON(code, gin.H{"detail": "stop failed"})
		return
	}
	b.setAndPush(models.StatusIdle)
	c.JSON(http.StatusOK, models.StopAck{Status: "stopped"})
}

func (b *Backend) handlePush(c *gin.Context) {
	b.record(c, "ws")
	conn, err := b.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	b.mu.Lock()
	b.subs = append(b.subs, conn)
	b.mu.Unlock()
	select {
	case b.subscribed <- struct{}{}:
	default:
	}

	go func() {
		defer b.remove(conn)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()
}

func (b *Backend) remove(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, c := range b.subs {
		if c == conn {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			break
		}
	}
	conn.Close()
}
