package chart

import (
	"time"

	"candleview/internal/bus"
	"candleview/internal/domain"
)

type lineMark struct {
	l      domain.TrendLine
	x1, x2 Tween
	y1, y2 Tween
	ink    Ink
}

// TrendLines draws one colored segment per trend line. Lines are replaced
// wholesale per fetch, so marks are matched by position.
type TrendLines struct {
	ctx   *Context
	marks []*lineMark
}

// NewTrendLines creates the trend line layer.
func NewTrendLines(ctx *Context) *TrendLines {
	return &TrendLines{ctx: ctx}
}

func (l *TrendLines) Update(view domain.ViewState, c *Context) {
	var lines []domain.TrendLine
	if view.Config.ShowTrendLines {
		lines = view.Data.TrendLines
	}
	t0 := c.Begin(c.Transition)
	n := len(l.marks)
	l.marks = reconcile(l.marks, len(lines), func(i int) *lineMark {
		tl := lines[i]
		return &lineMark{
			l:   tl,
			x1:  Fixed(c.X.Map(tl.P1.X())),
			x2:  Fixed(c.X.Map(tl.P2.X())),
			y1:  Fixed(c.Y.Map(tl.P1.Y())),
			y2:  Fixed(c.Y.Map(tl.P2.Y())),
			ink: InkLine0 + Ink(c.Rand.Intn(len(linePalette))),
		}
	})
	for i := 0; i < min(n, len(lines)); i++ {
		m := l.marks[i]
		m.l = lines[i]
		m.x1.Retarget(c.X.Map(m.l.P1.X()), t0, c.Transition)
		m.x2.Retarget(c.X.Map(m.l.P2.X()), t0, c.Transition)
		m.y1.Retarget(c.Y.Map(m.l.P1.Y()), t0, c.Transition)
		m.y2.Retarget(c.Y.Map(m.l.P2.Y()), t0, c.Transition)
	}
}

func (l *TrendLines) Zoomed(ev bus.ZoomedEvent) {
	for _, m := range l.marks {
		m.x1.Jump(ev.XZ.Map(m.l.P1.X()))
		m.x2.Jump(ev.XZ.Map(m.l.P2.X()))
	}
}

func (l *TrendLines) ZoomEnd(_ []domain.Candle, c *Context) {
	t0 := c.Begin(c.Settle)
	for _, m := range l.marks {
		m.y1.Retarget(c.Y.Map(m.l.P1.Y()), t0, c.Settle)
		m.y2.Retarget(c.Y.Map(m.l.P2.Y()), t0, c.Settle)
	}
}

func (l *TrendLines) Draw(cv *Canvas, now time.Time) {
	for _, m := range l.marks {
		cv.Segment(m.x1.At(now), m.y1.At(now), m.x2.At(now), m.y2.At(now), m.ink)
	}
}
