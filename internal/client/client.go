// Package client talks to the autoreflex backend: request/response calls
// over HTTP and the live push channel over a websocket.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/autoreflex/autoreflex/internal/models"
)

// SessionHeader carries the client session id on every request.
const SessionHeader = "X-Client-Session"

// maxErrorBody bounds how much of an error response body is retained.
const maxErrorBody = 4096

// Config configures a Client.
type Config struct {
	BaseURL    string
	PushURL    string
	Timeout    time.Duration
	SessionID  string
	HTTPClient *http.Client
	Dialer     *websocket.Dialer
	Logger     *logrus.Entry
}

// Client is the transport adapter. Request/response calls are safe for
// concurrent use; at most one push connection exists at a time.
type Client struct {
	baseURL   string
	pushURL   string
	timeout   time.Duration
	sessionID string
	http      *http.Client
	dialer    *websocket.Dialer
	log       *logrus.Entry

	mu   sync.Mutex
	conn *Connection
}

// New creates a client. Zero values in cfg fall back to the stock backend
// endpoints and a fresh session id.
func New(cfg Config) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		pushURL:   cfg.PushURL,
		timeout:   cfg.Timeout,
		sessionID: cfg.SessionID,
		http:      cfg.HTTPClient,
		dialer:    cfg.Dialer,
		log:       cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = models.DefaultBaseURL
	}
	if c.pushURL == "" {
		c.pushURL = models.DefaultPushURL
	}
	if c.timeout <= 0 {
		c.timeout = models.DefaultTimeout
	}
	if c.sessionID == "" {
		c.sessionID = uuid.NewString()
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.dialer == nil {
		d := *websocket.DefaultDialer
		d.HandshakeTimeout = c.timeout
		c.dialer = &d
	}
	if c.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.log = logrus.NewEntry(l)
	}
	c.log = c.log.WithField("component", "client")
	return c
}

// SessionID returns the id sent in the X-Client-Session header.
func (c *Client) SessionID() string { return c.sessionID }

// BaseURL returns the REST base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchStatus returns the agent's current status.
func (c *Client) FetchStatus(ctx context.Context) (models.AgentStatus, error) {
	var resp models.StatusResponse
	if err := c.do(ctx, "status", http.MethodGet, "/status", nil, &resp); err != nil {
		return "", err
	}
	if resp.Status == "" {
		return "", &ProtocolError{Reason: "status response missing status"}
	}
	return resp.Status, nil
}

// FetchHistory returns past tasks, newest first as ordered by the backend.
func (c *Client) FetchHistory(ctx context.Context) ([]models.TaskHistoryRecord, error) {
	var records []models.TaskHistoryRecord
	if err := c.do(ctx, "history", http.MethodGet, "/history", nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.TaskHistoryRecord{}
	}
	return records, nil
}

// Optimize asks the backend to turn description into an agent prompt.
func (c *Client) Optimize(ctx context.Context, description string) (*models.OptimizedTask, error) {
	req := models.OptimizeRequest{Description: description, ContextFiles: []string{}}
	var task models.OptimizedTask
	if err := c.do(ctx, "optimize", http.MethodPost, "/optimize", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Run asks the backend to start the agent on a persisted task.
func (c *Client) Run(ctx context.Context, taskID int64) (*models.RunAck, error) {
	var ack models.RunAck
	if err := c.do(ctx, "run", http.MethodPost, "/run", models.RunRequest{TaskID: taskID}, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// Stop asks the backend to stop the agent.
func (c *Client) Stop(ctx context.Context) (*models.StopAck, error) {
	var ack models.StopAck
	if err := c.do(ctx, "stop", http.MethodPost, "/stop", struct{}{}, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// Health reports whether the backend answers the status endpoint.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.FetchStatus(ctx)
	return err
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(SessionHeader, c.sessionID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("op", op).Error("request failed")
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	log := c.log.WithFields(logrus.Fields{
		"op":       op,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Error("request rejected")
		return &TransportError{Op: op, HTTPStatus: resp.StatusCode, Body: string(excerpt)}
	}
	log.Debug("request completed")

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProtocolError{Reason: op + " response", Err: err}
	}
	return nil
}

// FromSettings creates a client for the configured backend.
func FromSettings(s *models.Settings, log *logrus.Entry) *Client {
	return New(Config{
		BaseURL: s.API.BaseURL,
		PushURL: s.API.PushURL,
		Timeout: s.API.Timeout,
		Logger:  log,
	})
}
