package chart

import (
	"time"

	"candleview/internal/bus"
	"candleview/internal/domain"
)

// arrowOffset shifts the direction glyph right of the cross end, in data units.
const arrowOffset = 0.2

type crossMark struct {
	c      domain.Cross
	x1, x2 Tween
	y1, y2 Tween
	ax     Tween // glyph column
}

// TrendLineCrosses highlights each cross with a thick segment and an arrow.
type TrendLineCrosses struct {
	ctx   *Context
	marks []*crossMark
}

// NewTrendLineCrosses creates the cross layer.
func NewTrendLineCrosses(ctx *Context) *TrendLineCrosses {
	return &TrendLineCrosses{ctx: ctx}
}

func (l *TrendLineCrosses) Update(view domain.ViewState, c *Context) {
	var crosses []domain.Cross
	if view.Config.ShowCrosses {
		crosses = view.Data.Crosses()
	}
	t0 := c.Begin(c.Transition)
	n := len(l.marks)
	l.marks = reconcile(l.marks, len(crosses), func(i int) *crossMark {
		cr := crosses[i]
		return &crossMark{
			c:  cr,
			x1: Fixed(c.X.Map(cr.P1.X())),
			x2: Fixed(c.X.Map(cr.P2.X())),
			y1: Fixed(c.Y.Map(cr.P1.Y())),
			y2: Fixed(c.Y.Map(cr.P2.Y())),
			ax: Fixed(c.X.Map(cr.P2.X() + arrowOffset)),
		}
	})
	for i := 0; i < min(n, len(crosses)); i++ {
		m := l.marks[i]
		m.c = crosses[i]
		m.x1.Retarget(c.X.Map(m.c.P1.X()), t0, c.Transition)
		m.x2.Retarget(c.X.Map(m.c.P2.X()), t0, c.Transition)
		m.y1.Retarget(c.Y.Map(m.c.P1.Y()), t0, c.Transition)
		m.y2.Retarget(c.Y.Map(m.c.P2.Y()), t0, c.Transition)
		m.ax.Retarget(c.X.Map(m.c.P2.X()+arrowOffset), t0, c.Transition)
	}
}

func (l *TrendLineCrosses) Zoomed(ev bus.ZoomedEvent) {
	for _, m := range l.marks {
		m.x1.Jump(ev.XZ.Map(m.c.P1.X()))
		m.x2.Jump(ev.XZ.Map(m.c.P2.X()))
		m.ax.Jump(ev.XZ.Map(m.c.P2.X() + arrowOffset))
	}
}

func (l *TrendLineCrosses) ZoomEnd(_ []domain.Candle, c *Context) {
	t0 := c.Begin(c.Settle)
	for _, m := range l.marks {
		m.y1.Retarget(c.Y.Map(m.c.P1.Y()), t0, c.Settle)
		m.y2.Retarget(c.Y.Map(m.c.P2.Y()), t0, c.Settle)
	}
}

func (l *TrendLineCrosses) Draw(cv *Canvas, now time.Time) {
	for _, m := range l.marks {
		y2 := m.y2.At(now)
		cv.SegmentRune(m.x1.At(now), m.y1.At(now), m.x2.At(now), y2, '━', InkCross)
		cv.Text(round(m.ax.At(now))+1, round(y2), m.c.T.Glyph(), InkCross)
	}
}
