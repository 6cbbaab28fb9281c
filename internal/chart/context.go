// Package chart is the coordinate engine of the candle chart: the shared
// scales, the gesture recognizer that broadcasts transforms, and the
// indicator layers that project data through them.
package chart

import (
	"math/rand"
	"time"

	"candleview/internal/domain"
	"candleview/internal/scale"
)

// Margin reserves cells around the plot area for the axes.
type Margin struct {
	Top, Right, Bottom, Left int
}

// DefaultMargin leaves room for price labels on the left and time labels below.
var DefaultMargin = Margin{Top: 1, Right: 2, Bottom: 2, Left: 11}

const (
	// DefaultTransition is the shared update transition.
	DefaultTransition = 250 * time.Millisecond
	// DefaultSettle is the transition used for end-of-zoom corrections.
	DefaultSettle = 200 * time.Millisecond
	// zoomEndPadding is the share of the visible price span added above and below.
	zoomEndPadding = 0.05
)

// Context is the chart state shared by reference between the broadcaster and
// every layer: the plot size, the base scales, and the transition clock.
type Context struct {
	Width  int // plot area, cells
	Height int
	Margin Margin

	X  *scale.Linear // base time scale
	XZ *scale.Linear // X rescaled by the current gesture transform
	Y  *scale.Linear // price scale

	XAxis *Axis
	YAxis *Axis

	Transition time.Duration
	Settle     time.Duration

	Now  func() time.Time
	Rand *rand.Rand

	animUntil time.Time
}

// NewContext sizes a context for a terminal of totalW by totalH cells.
func NewContext(totalW, totalH int) *Context {
	c := &Context{
		Margin:     DefaultMargin,
		X:          scale.NewLinear(0, 1, 0, 1),
		Y:          scale.NewLinear(0, 1, 1, 0),
		Transition: DefaultTransition,
		Settle:     DefaultSettle,
		Now:        time.Now,
		Rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	c.XZ = c.X.Copy()
	c.XAxis = &Axis{Orient: Bottom, Ticks: 6, Format: scale.TimeLabel}
	c.YAxis = &Axis{Orient: Left, Ticks: 8, Format: priceLabel}
	c.Resize(totalW, totalH)
	return c
}

// Resize updates the plot area and the scale ranges. Domains are kept.
func (c *Context) Resize(totalW, totalH int) {
	c.Width = max(totalW-c.Margin.Left-c.Margin.Right, 1)
	c.Height = max(totalH-c.Margin.Top-c.Margin.Bottom, 1)
	c.X.SetRange(0, float64(c.Width-1))
	c.XZ.SetRange(0, float64(c.Width-1))
	c.Y.SetRange(float64(c.Height-1), 0)
}

// Begin starts a transition of duration d and returns its start time.
// The context remembers when the last running transition ends.
func (c *Context) Begin(d time.Duration) time.Time {
	now := c.Now()
	if end := now.Add(d); end.After(c.animUntil) {
		c.animUntil = end
	}
	return now
}

// Animating reports whether any transition is still running at now.
func (c *Context) Animating(now time.Time) bool {
	return now.Before(c.animUntil)
}

// FitX sets the base time domain and drops any gesture rescale.
func (c *Context) FitX(start, end int64) {
	c.X.SetDomain(float64(start), float64(end))
	c.XZ = c.X.Copy()
}

// FitY sets the price domain to the candles' low/high extent, widened by
// pad times the span on each side. It reports false when there is nothing to fit.
func (c *Context) FitY(candles []domain.Candle, pad float64) bool {
	low, high, ok := domain.PriceExtent(candles)
	if !ok {
		return false
	}
	buffer := (high - low) * pad
	c.Y.SetDomain(low-buffer, high+buffer)
	return true
}
