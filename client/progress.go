package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// ProgressEvent is one update from the backend's progress channel
type ProgressEvent struct {
	Progress int `json:"progress"`
}

// Subscription is a cancellable stream of progress events for one task. The
// event channel is closed when the task reaches 100%, the connection drops,
// or the subscription is closed; Err reports the terminal condition.
type Subscription struct {
	conn   *websocket.Conn
	events chan ProgressEvent
	done   chan struct{}

	once sync.Once
	mu   sync.Mutex
	err  error
}

// Subscribe opens the websocket progress channel for a task
func (c *Client) Subscribe(ctx context.Context, taskID string) (*Subscription, error) {
	wsURL, err := progressURL(c.BaseURL, taskID)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to progress channel: %w", err)
	}

	sub := &Subscription{
		conn:   conn,
		events: make(chan ProgressEvent, 8),
		done:   make(chan struct{}),
	}

	// Close the connection when the caller's context ends so the read loop
	// unblocks.
	go func() {
		select {
		case <-ctx.Done():
			sub.close(ctx.Err())
		case <-sub.done:
		}
	}()

	go sub.readLoop()

	return sub, nil
}

// Events returns the stream of progress updates
func (s *Subscription) Events() <-chan ProgressEvent {
	return s.events
}

// Err reports why the subscription ended. It is nil after a normal
// completion and after an explicit Close.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close tears the subscription down; safe to call more than once
func (s *Subscription) Close() error {
	s.close(nil)
	return nil
}

func (s *Subscription) close(cause error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.err = cause
		s.mu.Unlock()
		close(s.done)
		s.conn.Close()
	})
}

// readLoop pumps progress messages into the event channel until the task
// completes or the connection goes away.
func (s *Subscription) readLoop() {
	defer close(s.events)

	for {
		var event ProgressEvent
		if err := s.conn.ReadJSON(&event); err != nil {
			// A close initiated by us or by a completed server is a normal
			// termination, not a failure.
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			s.close(fmt.Errorf("progress channel closed unexpectedly: %w", err))
			return
		}

		select {
		case s.events <- event:
		case <-s.done:
			return
		}

		if event.Progress >= 100 {
			s.close(nil)
			return
		}
	}
}

// progressURL turns the backend base URL into the websocket endpoint for a
// task, eg http://backend:8002 -> ws://backend:8002/ws/progress/<id>/
func progressURL(baseURL, taskID string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid backend URL: %w", err)
	}

	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	case "ws", "wss":
		// already a websocket URL
	default:
		return "", fmt.Errorf("unsupported backend URL scheme %q", parsed.Scheme)
	}

	parsed.Path = strings.TrimSuffix(parsed.Path, "/") + "/ws/progress/" + url.PathEscape(taskID) + "/"
	return parsed.String(), nil
}
