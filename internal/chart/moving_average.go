package chart

import (
	"context"
	"math"
	"time"

	"candleview/internal/bus"
	"candleview/internal/domain"
	"candleview/internal/indicators"
)

type avgMark struct {
	t int64
	v float64
	x Tween
	y Tween
}

// MovingAverage overlays an indicator series as a polyline over the candles.
type MovingAverage struct {
	ctx   *Context
	ind   indicators.Indicator
	marks []*avgMark
}

// NewMovingAverage creates an overlay layer for ind.
func NewMovingAverage(ctx *Context, ind indicators.Indicator) *MovingAverage {
	return &MovingAverage{ctx: ctx, ind: ind}
}

// Name returns the overlay's indicator name.
func (l *MovingAverage) Name() string { return l.ind.Name() }

func (l *MovingAverage) series(view domain.ViewState) []avgMark {
	if !view.Config.ShowMovingAverage {
		return nil
	}
	values, err := l.ind.Calculate(context.Background(), view.Data.Candles)
	if err != nil {
		return nil
	}
	out := make([]avgMark, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		out = append(out, avgMark{t: view.Data.Candles[i].OpenTime, v: v})
	}
	return out
}

func (l *MovingAverage) Update(view domain.ViewState, c *Context) {
	pts := l.series(view)
	t0 := c.Begin(c.Transition)
	n := len(l.marks)
	l.marks = reconcile(l.marks, len(pts), func(i int) *avgMark {
		p := pts[i]
		return &avgMark{t: p.t, v: p.v, x: Fixed(c.X.Map(float64(p.t))), y: Fixed(c.Y.Map(p.v))}
	})
	for i := 0; i < min(n, len(pts)); i++ {
		m := l.marks[i]
		m.t, m.v = pts[i].t, pts[i].v
		m.x.Retarget(c.X.Map(float64(m.t)), t0, c.Transition)
		m.y.Retarget(c.Y.Map(m.v), t0, c.Transition)
	}
}

func (l *MovingAverage) Zoomed(ev bus.ZoomedEvent) {
	for _, m := range l.marks {
		m.x.Jump(ev.XZ.Map(float64(m.t)))
	}
}

func (l *MovingAverage) ZoomEnd(_ []domain.Candle, c *Context) {
	t0 := c.Begin(c.Settle)
	for _, m := range l.marks {
		m.y.Retarget(c.Y.Map(m.v), t0, c.Settle)
	}
}

func (l *MovingAverage) Draw(cv *Canvas, now time.Time) {
	for i := 1; i < len(l.marks); i++ {
		a, b := l.marks[i-1], l.marks[i]
		cv.SegmentRune(a.x.At(now), a.y.At(now), b.x.At(now), b.y.At(now), '·', InkAverage)
	}
}
