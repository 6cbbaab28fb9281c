package chart

import (
	"time"

	"candleview/internal/bus"
	"candleview/internal/domain"
)

type pointMark struct {
	p  domain.StrongPoint
	cx Tween
	cy Tween
}

// StrongPoints marks each strong point with a small circle.
type StrongPoints struct {
	ctx   *Context
	marks []*pointMark
}

// NewStrongPoints creates the strong point layer.
func NewStrongPoints(ctx *Context) *StrongPoints {
	return &StrongPoints{ctx: ctx}
}

func (l *StrongPoints) Update(view domain.ViewState, c *Context) {
	points := view.Data.StrongPoints
	t0 := c.Begin(c.Transition)
	n := len(l.marks)
	l.marks = reconcile(l.marks, len(points), func(i int) *pointMark {
		return &pointMark{
			p:  points[i],
			cx: Fixed(c.X.Map(points[i].X)),
			cy: Fixed(c.Y.Map(points[i].Y)),
		}
	})
	for i := 0; i < min(n, len(points)); i++ {
		m := l.marks[i]
		m.p = points[i]
		m.cx.Retarget(c.X.Map(m.p.X), t0, c.Transition)
		m.cy.Retarget(c.Y.Map(m.p.Y), t0, c.Transition)
	}
}

func (l *StrongPoints) Zoomed(ev bus.ZoomedEvent) {
	for _, m := range l.marks {
		m.cx.Jump(ev.XZ.Map(m.p.X))
	}
}

func (l *StrongPoints) ZoomEnd(_ []domain.Candle, c *Context) {
	t0 := c.Begin(c.Settle)
	for _, m := range l.marks {
		m.cy.Retarget(c.Y.Map(m.p.Y), t0, c.Settle)
	}
}

func (l *StrongPoints) Draw(cv *Canvas, now time.Time) {
	for _, m := range l.marks {
		cv.Set(round(m.cx.At(now)), round(m.cy.At(now)), '•', InkPoint)
	}
}
