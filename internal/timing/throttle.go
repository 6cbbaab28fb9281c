package timing

import "time"

// Throttle enforces a minimum gap between allowed events. Calls inside the
// gap are rejected outright; nothing is queued.
type Throttle struct {
	Gap  time.Duration
	Now  func() time.Time
	last time.Time
}

// NewThrottle creates a throttle using the wall clock.
func NewThrottle(gap time.Duration) *Throttle {
	return &Throttle{Gap: gap, Now: time.Now}
}

// Allow reports whether an event may start now and records it if so.
func (t *Throttle) Allow() bool {
	now := t.Now()
	if !t.last.IsZero() && now.Sub(t.last) < t.Gap {
		return false
	}
	t.last = now
	return true
}

// Reset forgets the last event.
func (t *Throttle) Reset() { t.last = time.Time{} }
