package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/autoreflex/autoreflex/internal/models"
)

// ConnState is the lifecycle of a push connection.
type ConnState int

const (
	Connecting ConnState = iota
	Open
	Closed
)

func (s ConnState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// closeGrace bounds how long Close waits to deliver the close frame.
const closeGrace = time.Second

// Connection is one push channel connection. Once Closed it never reopens;
// a new Subscribe is needed.
type Connection struct {
	client *Client

	mu    sync.Mutex
	state ConnState
	ws    *websocket.Conn
	err   error

	done     chan struct{}
	finished sync.Once
}

// State returns the current connection state.
func (c *Connection) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the error that closed the connection, or nil after an
// explicit Close.
func (c *Connection) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Done is closed when the connection reaches Closed.
func (c *Connection) Done() <-chan struct{} { return c.done }

// Close closes the connection. Safe to call more than once.
func (c *Connection) Close() error {
	c.mu.Lock()
	ws := c.ws
	open := c.state == Open
	c.mu.Unlock()

	if ws != nil && open {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
	}
	c.finish(nil)
	return nil
}

func (c *Connection) finish(err error) {
	c.finished.Do(func() {
		c.mu.Lock()
		c.state = Closed
		c.err = err
		ws := c.ws
		c.mu.Unlock()
		if ws != nil {
			ws.Close()
		}
		close(c.done)
	})
}

// Subscribe opens the push channel and delivers every decoded event to
// onEvent from a reader goroutine. Frames that fail to decode are dropped.
// Cancelling ctx closes the connection.
func (c *Client) Subscribe(ctx context.Context, onEvent func(models.PushEvent)) (*Connection, error) {
	c.mu.Lock()
	if c.conn != nil && c.conn.State() != Closed {
		c.mu.Unlock()
		return nil, ErrAlreadySubscribed
	}
	conn := &Connection{client: c, state: Connecting, done: make(chan struct{})}
	c.conn = conn
	c.mu.Unlock()

	log := c.log.WithField("url", c.pushURL)
	log.Debug("connecting push channel")

	header := http.Header{SessionHeader: []string{c.sessionID}}
	ws, resp, err := c.dialer.DialContext(ctx, c.pushURL, header)
	if err != nil {
		te := &TransportError{Op: "subscribe", Err: err}
		if resp != nil {
			te.HTTPStatus = resp.StatusCode
		}
		conn.finish(te)
		log.WithError(err).Error("push channel dial failed")
		return nil, te
	}

	conn.mu.Lock()
	conn.ws = ws
	conn.state = Open
	conn.mu.Unlock()
	log.Info("push channel open")

	go conn.read(onEvent)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-conn.done:
		}
	}()
	return conn, nil
}

func (c *Connection) read(onEvent func(models.PushEvent)) {
	log := c.client.log
	for {
		_, frame, err := c.ws.ReadMessage()
		if err != nil {
			if c.State() == Closed || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.finish(nil)
			} else {
				log.WithError(err).Warn("push channel read failed")
				c.finish(&TransportError{Op: "push", Err: err})
			}
			log.Info("push channel closed")
			return
		}

		event, err := DecodePushEvent(frame)
		if err != nil {
			var pe *ProtocolError
			if errors.As(err, &pe) {
				log.WithField("reason", pe.Reason).WithField("frame", pe.Frame).Debug("dropping push frame")
			}
			continue
		}
		if c.State() != Open {
			return
		}
		onEvent(event)
	}
}
