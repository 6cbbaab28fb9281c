package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_OnlyLatestTriggerFires(t *testing.T) {
	d := NewDebouncer("zoom", 10*time.Millisecond)

	first := d.Trigger()
	second := d.Trigger()

	stale, ok := first().(FiredMsg)
	require.True(t, ok)
	latest, ok := second().(FiredMsg)
	require.True(t, ok)

	assert.False(t, d.Fire(stale))
	assert.True(t, d.Fire(latest))
	assert.False(t, d.Fire(latest), "a trigger fires at most once")
	assert.False(t, d.Pending())
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer("zoom", time.Millisecond)
	msg := d.Trigger()().(FiredMsg)
	d.Cancel()
	assert.False(t, d.Fire(msg))
}

func TestDebouncer_IgnoresOtherIDs(t *testing.T) {
	d := NewDebouncer("zoom", time.Millisecond)
	msg := d.Trigger()().(FiredMsg)
	msg.ID = "other"
	assert.False(t, d.Fire(msg))
	assert.True(t, d.Pending())
}

func TestThrottle_Allow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	th := NewThrottle(500 * time.Millisecond)
	th.Now = func() time.Time { return now }

	assert.True(t, th.Allow())

	now = now.Add(499 * time.Millisecond)
	assert.False(t, th.Allow())

	// A rejected call does not move the window.
	now = now.Add(1 * time.Millisecond)
	assert.True(t, th.Allow())

	th.Reset()
	assert.True(t, th.Allow())
}
