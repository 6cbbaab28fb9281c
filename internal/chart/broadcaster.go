package chart

import (
	"math"
	"time"

	"candleview/internal/bus"
	"candleview/internal/scale"
	"candleview/internal/timing"

	tea "github.com/charmbracelet/bubbletea"
)

// GestureState tracks whether a pan/zoom gesture is in progress.
type GestureState int

const (
	Idle GestureState = iota
	Active
)

func (s GestureState) String() string {
	if s == Active {
		return "active"
	}
	return "idle"
}

const (
	// MinZoom and MaxZoom bound the transform scale factor.
	MinZoom = 1.0
	MaxZoom = 100.0
	// wheelFactor is the zoom applied per wheel notch.
	wheelFactor = 1.25
	// DefaultZoomEndWait is the idle time after which a gesture settles.
	DefaultZoomEndWait = 200 * time.Millisecond

	settleID = "zoom-end"
)

// Broadcaster turns pointer gestures into a shared transform and publishes it
// on the bus: Zoomed on every frame, then SetDomain and ZoomEnd once the
// gesture has been idle for the settle wait.
type Broadcaster struct {
	ctx    *Context
	bus    *bus.Bus
	settle *timing.Debouncer
	t      scale.Transform
	state  GestureState
}

// NewBroadcaster creates a broadcaster over ctx publishing on b.
func NewBroadcaster(ctx *Context, b *bus.Bus, settleWait time.Duration) *Broadcaster {
	if settleWait <= 0 {
		settleWait = DefaultZoomEndWait
	}
	return &Broadcaster{
		ctx:    ctx,
		bus:    b,
		settle: timing.NewDebouncer(settleID, settleWait),
		t:      scale.Identity,
	}
}

// Transform returns the current gesture transform.
func (b *Broadcaster) Transform() scale.Transform { return b.t }

// State returns the gesture state.
func (b *Broadcaster) State() GestureState { return b.state }

// Wheel zooms about plot column col. Positive notches zoom in.
func (b *Broadcaster) Wheel(col float64, notches int) tea.Cmd {
	if notches == 0 {
		return nil
	}
	return b.ZoomBy(math.Pow(wheelFactor, float64(notches)), col)
}

// ZoomBy multiplies the scale factor by factor, keeping column col fixed.
// Zooming past the extent is clamped; a clamped no-op publishes nothing.
func (b *Broadcaster) ZoomBy(factor, col float64) tea.Cmd {
	k := math.Min(math.Max(b.t.K*factor, MinZoom), MaxZoom)
	if k == b.t.K {
		return nil
	}
	b.t = b.t.ScaleTo(k, col)
	return b.emit()
}

// Drag pans by dx columns.
func (b *Broadcaster) Drag(dx float64) tea.Cmd {
	if dx == 0 {
		return nil
	}
	b.t = b.t.TranslateBy(dx, 0)
	return b.emit()
}

func (b *Broadcaster) emit() tea.Cmd {
	b.state = Active
	xz := b.t.RescaleX(b.ctx.X)
	b.ctx.XZ = xz
	b.bus.Zoomed.Publish(bus.ZoomedEvent{T: b.t, XZ: xz})
	return b.settle.Trigger()
}

// Settle handles a settle timer message. It reports false for messages that
// are stale or belong to another timer.
func (b *Broadcaster) Settle(msg timing.FiredMsg) bool {
	if !b.settle.Fire(msg) {
		return false
	}
	t := b.t
	d0, d1 := b.ctx.XZ.Domain()
	b.bus.SetDomain.Publish(bus.SetDomainEvent{
		Domain: [2]int64{int64(math.Round(d0)), int64(math.Round(d1))},
	})
	b.state = Idle
	b.bus.ZoomEnd.Publish(bus.ZoomEndEvent{T: t})
	return true
}

// Reset drops the gesture transform once X has been rebased on the window
// the gesture settled on.
func (b *Broadcaster) Reset() {
	b.t = scale.Identity
	b.ctx.XZ = b.ctx.X.Copy()
}

// Stop cancels a pending settle.
func (b *Broadcaster) Stop() {
	b.settle.Cancel()
	b.state = Idle
}
