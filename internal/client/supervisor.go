package client

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/autoreflex/autoreflex/internal/models"
)

// StateFunc is told about each push connection state change. err is set
// when a dial failed or an open connection dropped.
type StateFunc func(state ConnState, err error)

// Stream subscribes once and blocks until the connection closes or ctx is
// cancelled. It never reconnects.
func (c *Client) Stream(ctx context.Context, onEvent func(models.PushEvent), onState StateFunc) error {
	if onState == nil {
		onState = func(ConnState, error) {}
	}
	onState(Connecting, nil)
	conn, err := c.Subscribe(ctx, onEvent)
	if err != nil {
		onState(Closed, err)
		return err
	}
	onState(Open, nil)
	<-conn.Done()
	onState(Closed, conn.Err())
	return conn.Err()
}

// Supervisor keeps the push channel connected, redialing with exponential
// backoff after each close. It only dials once the previous connection has
// reached Closed. Events missed while disconnected are not replayed.
type Supervisor struct {
	client *Client
	min    time.Duration
	max    time.Duration
}

// NewSupervisor creates a supervisor for c.
func NewSupervisor(c *Client, minBackoff, maxBackoff time.Duration) *Supervisor {
	if minBackoff <= 0 {
		minBackoff = time.Second
	}
	if maxBackoff < minBackoff {
		maxBackoff = minBackoff
	}
	return &Supervisor{client: c, min: minBackoff, max: maxBackoff}
}

func (s *Supervisor) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.min
	b.MaxInterval = s.max
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Stream connects and reconnects until ctx is cancelled, then returns ctx.Err().
func (s *Supervisor) Stream(ctx context.Context, onEvent func(models.PushEvent), onState StateFunc) error {
	if onState == nil {
		onState = func(ConnState, error) {}
	}
	bo := s.newBackOff()
	log := s.client.log.WithField("component", "supervisor")

	for {
		onState(Connecting, nil)
		conn, err := s.client.Subscribe(ctx, onEvent)
		if err != nil {
			onState(Closed, err)
		} else {
			bo.Reset()
			onState(Open, nil)
			select {
			case <-conn.Done():
				onState(Closed, conn.Err())
			case <-ctx.Done():
				conn.Close()
				onState(Closed, nil)
				return ctx.Err()
			}
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			wait = s.max
		}
		log.WithField("wait", wait.String()).Info("reconnecting push channel")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
