// Package timing provides the debounce and throttle timers used by the chart.
// Timers are driven by bubbletea ticks so that their expiry is delivered to
// the event loop as a message instead of running on another goroutine.
package timing

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FiredMsg is delivered when a debouncer's wait elapses.
type FiredMsg struct {
	ID  string
	Gen uint64
}

// Debouncer fires once after Wait has passed with no further Trigger.
type Debouncer struct {
	ID      string
	Wait    time.Duration
	gen     uint64
	pending bool
}

// NewDebouncer creates a trailing debouncer.
func NewDebouncer(id string, wait time.Duration) *Debouncer {
	return &Debouncer{ID: id, Wait: wait}
}

// Trigger (re)starts the wait. Messages from earlier triggers become stale.
func (d *Debouncer) Trigger() tea.Cmd {
	d.gen++
	d.pending = true
	id, gen := d.ID, d.gen
	return tea.Tick(d.Wait, func(time.Time) tea.Msg {
		return FiredMsg{ID: id, Gen: gen}
	})
}

// Fire reports whether msg is the expiry of the latest pending trigger.
// A true result clears the pending state, so each trigger fires at most once.
func (d *Debouncer) Fire(msg FiredMsg) bool {
	if msg.ID != d.ID || msg.Gen != d.gen || !d.pending {
		return false
	}
	d.pending = false
	return true
}

// Pending reports whether a trigger is waiting to fire.
func (d *Debouncer) Pending() bool { return d.pending }

// Cancel drops any pending trigger.
func (d *Debouncer) Cancel() {
	d.gen++
	d.pending = false
}
