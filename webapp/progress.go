package webapp

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// ProgressFeed delivers translation progress updates for one task. The feed
// channel closes when the task reaches 100, the socket drops, or the feed is
// closed by the consumer.
type ProgressFeed interface {
	Events() <-chan int
	Close()
}

// newProgressFeed opens a feed for a backend task; swappable in tests
var newProgressFeed = func(taskID string) ProgressFeed {
	return openSocketFeed(taskID)
}

// progressSocketURL derives the websocket URL for a task from the configured
// API base URL, falling back to the page origin for relative URLs.
func progressSocketURL(baseURL, origin, taskID string) string {
	base := baseURL
	if base == "" {
		base = origin
	}
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/ws/progress/" + taskID + "/"
}

// socketFeed reads progress frames from the browser WebSocket API
type socketFeed struct {
	ws     app.Value
	events chan int

	mu     sync.Mutex
	closed bool
}

func openSocketFeed(taskID string) ProgressFeed {
	pageURL := app.Window().URL()
	origin := pageURL.Scheme + "://" + pageURL.Host
	socketURL := progressSocketURL(GetAPIBaseURL(), origin, taskID)

	feed := &socketFeed{events: make(chan int, 8)}
	feed.ws = app.Window().Get("WebSocket").New(socketURL)

	feed.ws.Set("onmessage", app.FuncOf(func(this app.Value, args []app.Value) any {
		if len(args) == 0 {
			return nil
		}
		var frame struct {
			Progress int `json:"progress"`
		}
		data := args[0].Get("data").String()
		if err := json.Unmarshal([]byte(data), &frame); err != nil {
			return nil
		}
		feed.deliver(frame.Progress)
		if frame.Progress >= 100 {
			feed.finish()
		}
		return nil
	}))
	feed.ws.Set("onclose", app.FuncOf(func(this app.Value, args []app.Value) any {
		feed.finish()
		return nil
	}))
	feed.ws.Set("onerror", app.FuncOf(func(this app.Value, args []app.Value) any {
		feed.finish()
		return nil
	}))

	return feed
}

func (f *socketFeed) deliver(progress int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	// Drop the frame rather than block the event loop
	select {
	case f.events <- progress:
	default:
	}
}

func (f *socketFeed) finish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
}

// Events returns the progress channel
func (f *socketFeed) Events() <-chan int {
	return f.events
}

// Close tears the socket down and closes the channel
func (f *socketFeed) Close() {
	f.finish()
	if f.ws.Truthy() {
		f.ws.Call("close")
	}
}
