// Package push maintains the live-update connection to the backend.
//
// # Overview
//
// A Subscriber owns exactly one WebSocket connection, scoped to a single
// push endpoint (one wishlist, or the aggregate landing channel). It dials,
// reads, normalizes and delivers events on a channel, and transparently
// reconnects with linear backoff when the connection drops. After the retry
// budget is exhausted the subscriber parks in StateFailed and surfaces a
// persistent connectivity error; nothing short of a new subscription
// restarts it.
//
// Watching a different wishlist means closing the old Subscriber and
// creating a new one. Each Subscriber delivers on its own channel, which is
// closed on teardown, so an event from a stale subscription can never reach
// the consumer of a new one.
package push

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/wishly-app/wishly/internal/event"
)

// State describes the connection lifecycle.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// ErrUnreachable is reported once the retry budget is spent with no
// successful open. The view stays usable but stale; only a manual restart
// reconnects.
var ErrUnreachable = errors.New("could not connect to the update server")

const (
	defaultMaxRetries = 5
	defaultRetryDelay = time.Second
	eventBuffer       = 64
)

// Options configures a Subscriber.
type Options struct {
	// URL is the full ws:// or wss:// endpoint for one push channel.
	URL string

	// Log receives connection lifecycle entries. Nil discards them.
	Log *logrus.Logger

	// Dialer overrides the websocket dialer, mainly for tests.
	Dialer *websocket.Dialer

	// MaxRetries caps reconnect attempts between successful opens.
	// Zero means the default of 5.
	MaxRetries int

	// RetryDelay is the backoff unit: attempt n waits n*RetryDelay.
	// Zero means the default of one second.
	RetryDelay time.Duration
}

// Subscriber is a cancellable subscription to one push channel.
type Subscriber struct {
	url        string
	dialer     *websocket.Dialer
	log        *logrus.Entry
	maxRetries int
	retryDelay time.Duration

	events chan event.Event
	state  atomic.Int32

	mu      sync.Mutex
	lastErr error

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Subscribe opens a push subscription and starts its connection loop. The
// returned Subscriber delivers normalized events on Events until Close is
// called, the context is cancelled, or the retry budget runs out.
func Subscribe(ctx context.Context, opts Options) *Subscriber {
	dialer := opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	retryDelay := opts.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	log := opts.Log
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Subscriber{
		url:        opts.URL,
		dialer:     dialer,
		log:        log.WithField("channel", opts.URL),
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		events:     make(chan event.Event, eventBuffer),
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

// Events returns the subscription's event channel. It is closed when the
// subscription ends; no event is ever delivered after Close returns the
// channel to a closed state.
func (s *Subscriber) Events() <-chan event.Event {
	return s.events
}

// State reports the current connection state.
func (s *Subscriber) State() State {
	return State(s.state.Load())
}

// Err returns the error that parked the subscriber in StateFailed, or the
// most recent transport error while reconnection is still in progress. It
// is nil while the connection is healthy.
func (s *Subscriber) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Done is closed once the connection loop has fully stopped.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// Close tears the subscription down: any pending reconnect timer is
// cancelled, the transport is closed, and the event channel is closed once
// the loop exits. Close is idempotent.
func (s *Subscriber) Close() {
	s.once.Do(s.cancel)
	<-s.done
}

// run is the connection loop. A dial failure counts the same as an
// immediate close: both bump the retry counter and schedule the next
// attempt at counter*retryDelay, until maxRetries consecutive attempts have
// failed with no successful open in between.
func (s *Subscriber) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.events)

	retries := 0
	for {
		s.state.Store(int32(StateConnecting))
		conn, resp, err := s.dialer.DialContext(ctx, s.url, nil)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if err == nil {
			s.state.Store(int32(StateConnected))
			s.setErr(nil)
			retries = 0
			s.log.Info("push channel connected")
			err = s.readLoop(ctx, conn)
		}
		s.setErr(err)

		if ctx.Err() != nil {
			s.state.Store(int32(StateDisconnected))
			return
		}
		s.state.Store(int32(StateDisconnected))

		if retries >= s.maxRetries {
			s.log.WithError(err).Warn("push channel failed permanently")
			s.setErr(ErrUnreachable)
			s.state.Store(int32(StateFailed))
			return
		}
		retries++
		delay := time.Duration(retries) * s.retryDelay
		s.log.WithError(err).WithFields(logrus.Fields{
			"attempt": retries,
			"delay":   delay,
		}).Info("push channel disconnected, reconnecting")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.state.Store(int32(StateDisconnected))
			return
		case <-timer.C:
		}
	}
}

// readLoop pumps messages off one connection until it breaks or the
// subscription is torn down. Unrecognized payloads are dropped by the
// normalizer; they are channel noise, not errors.
func (s *Subscriber) readLoop(ctx context.Context, conn *websocket.Conn) error {
	// Unblock ReadMessage when the subscription is cancelled.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-watchDone:
			_ = conn.Close()
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.WithError(err).Debug("push channel read error")
			}
			return err
		}
		ev, ok := event.Normalize(data)
		if !ok {
			continue
		}
		select {
		case s.events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Subscriber) setErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}
