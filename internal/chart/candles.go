package chart

import (
	"math"
	"time"

	"candleview/internal/bus"
	"candleview/internal/domain"
)

// bandPadding is the share of each candle slot left empty.
const bandPadding = 0.3

type candleMark struct {
	c      domain.Candle
	x      Tween // centre column
	width  Tween
	top    Tween // body top row
	bottom Tween
	high   Tween
	low    Tween
}

// Candles draws one body and wick per candle, keyed by open time.
type Candles struct {
	ctx   *Context
	band  float64
	marks map[int64]*candleMark
	order []int64
}

// NewCandles creates the candle layer.
func NewCandles(ctx *Context) *Candles {
	return &Candles{ctx: ctx, marks: map[int64]*candleMark{}}
}

// Bandwidth returns the base candle width in cells.
func (l *Candles) Bandwidth() float64 { return l.band }

// bandwidth sizes count+1 slots over width cells.
func bandwidth(width int, count float64) float64 {
	if count < 0 {
		count = 0
	}
	step := float64(width) / (count + 1 + bandPadding)
	return step * (1 - bandPadding)
}

func (l *Candles) Update(view domain.ViewState, c *Context) {
	candles := view.Data.Candles
	if start, end, ok := view.Window(); ok && view.Data.Meta.Step > 0 {
		l.band = bandwidth(c.Width, float64(end-start)/float64(view.Data.Meta.Step))
	} else {
		l.band = bandwidth(c.Width, float64(len(candles)))
	}

	t0 := c.Begin(c.Transition)
	seen := make(map[int64]bool, len(candles))
	l.order = l.order[:0]
	for _, cd := range candles {
		seen[cd.OpenTime] = true
		l.order = append(l.order, cd.OpenTime)
		x := c.X.Map(float64(cd.OpenTime))
		m, ok := l.marks[cd.OpenTime]
		if !ok {
			l.marks[cd.OpenTime] = &candleMark{
				c:      cd,
				x:      Fixed(x),
				width:  Fixed(l.band),
				top:    Fixed(c.Y.Map(cd.BodyTop())),
				bottom: Fixed(c.Y.Map(cd.BodyBottom())),
				high:   Fixed(c.Y.Map(cd.High)),
				low:    Fixed(c.Y.Map(cd.Low)),
			}
			continue
		}
		m.c = cd
		m.x.Retarget(x, t0, c.Transition)
		m.width.Retarget(l.band, t0, c.Transition)
		m.settle(c, t0, c.Transition)
	}
	for k := range l.marks {
		if !seen[k] {
			delete(l.marks, k)
		}
	}
}

func (m *candleMark) settle(c *Context, t0 time.Time, d time.Duration) {
	m.top.Retarget(c.Y.Map(m.c.BodyTop()), t0, d)
	m.bottom.Retarget(c.Y.Map(m.c.BodyBottom()), t0, d)
	m.high.Retarget(c.Y.Map(m.c.High), t0, d)
	m.low.Retarget(c.Y.Map(m.c.Low), t0, d)
}

// Rebase keeps the settled zoom width as the new base band.
func (l *Candles) Rebase(k float64) {
	l.band *= k
}

func (l *Candles) Zoomed(ev bus.ZoomedEvent) {
	w := l.band * ev.T.K
	for _, m := range l.marks {
		m.x.Jump(ev.XZ.Map(float64(m.c.OpenTime)))
		m.width.Jump(w)
	}
}

func (l *Candles) ZoomEnd(_ []domain.Candle, c *Context) {
	t0 := c.Begin(c.Settle)
	for _, m := range l.marks {
		m.settle(c, t0, c.Settle)
	}
}

func (l *Candles) Draw(cv *Canvas, now time.Time) {
	for _, k := range l.order {
		m := l.marks[k]
		ink := InkDown
		if m.c.IsBullish() {
			ink = InkUp
		}
		x := m.x.At(now)
		w := math.Max(m.width.At(now), 1)
		left := round(x - w/2)
		right := max(round(x+w/2)-1, left)
		cx := round(x)

		cv.VLine(cx, round(m.high.At(now)), round(m.low.At(now)), '│', ink)
		top, bottom := round(m.top.At(now)), round(m.bottom.At(now))
		body := '█'
		if right == left {
			body = '▌'
		}
		for col := left; col <= right; col++ {
			if m.c.Open == m.c.Close {
				cv.Set(col, top, '─', ink)
				continue
			}
			cv.VLine(col, top, bottom, body, ink)
		}
	}
}

// CandleAt returns the candle drawn closest to column x, if any lies within
// one candle width.
func (l *Candles) CandleAt(x float64, now time.Time) (domain.Candle, bool) {
	var best *candleMark
	bestDist := math.Inf(1)
	for _, m := range l.marks {
		d := math.Abs(m.x.At(now) - x)
		if d < bestDist {
			best, bestDist = m, d
		}
	}
	if best == nil || bestDist > math.Max(best.width.At(now), 1) {
		return domain.Candle{}, false
	}
	return best.c, true
}
