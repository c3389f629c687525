package core

import (
	"sync"
	"sync/atomic"
)

// ResponseTracker holds the identifier of the most recent response so the
// next request can be chained to it. It is set when a creation event arrives,
// cleared on error or cancellation and read once per request build.
type ResponseTracker struct {
	mu sync.RWMutex
	id string
}

// NewResponseTracker returns an empty tracker.
func NewResponseTracker() *ResponseTracker { return &ResponseTracker{} }

// Set records id as the chainable previous response.
func (t *ResponseTracker) Set(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.id = id
}

// Get returns the previous response id ("" when none).
func (t *ResponseTracker) Get() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.id
}

// Reset clears the tracked id.
func (t *ResponseTracker) Reset() { t.Set("") }

// CancelToken is a cooperative cancellation flag polled while a turn streams.
// It must be reset at turn start and is left cancelled or disarmed at turn end.
type CancelToken struct {
	cancelled atomic.Bool
	armed     atomic.Bool
}

// NewCancelToken returns a disarmed token.
func NewCancelToken() *CancelToken { return &CancelToken{} }

// Reset arms the token for a new turn and clears any previous cancellation.
func (c *CancelToken) Reset() {
	c.cancelled.Store(false)
	c.armed.Store(true)
}

// Cancel requests cancellation of the armed turn. It reports whether a turn
// was armed to receive it.
func (c *CancelToken) Cancel() bool {
	if !c.armed.Load() {
		return false
	}
	c.cancelled.Store(true)
	return true
}

// Cancelled reports whether cancellation was requested.
func (c *CancelToken) Cancelled() bool { return c.cancelled.Load() }

// Armed reports whether a turn currently listens on the token.
func (c *CancelToken) Armed() bool { return c.armed.Load() }

// Disarm leaves the token in its terminal state; cancelled marks the
// outcome for callers inspecting it after the turn.
func (c *CancelToken) Disarm(cancelled bool) {
	c.armed.Store(false)
	c.cancelled.Store(cancelled)
}
