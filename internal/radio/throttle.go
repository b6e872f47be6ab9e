package radio

import (
	"sync"
	"time"
)

// Throttle allows at most one event per time window. Used to cap the
// identity-mismatch advisory regardless of message rate.
type Throttle struct {
	mu     sync.Mutex
	window time.Duration
	last   time.Time
}

// NewThrottle creates a throttle with the given window.
func NewThrottle(window time.Duration) *Throttle {
	return &Throttle{window: window}
}

// Allow reports whether an event at the given time may fire. The first call
// always passes; subsequent calls pass only once the window has elapsed
// since the last allowed event.
func (t *Throttle) Allow(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.last.IsZero() && now.Sub(t.last) < t.window {
		return false
	}
	t.last = now
	return true
}
