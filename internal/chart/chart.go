package chart

import (
	"math"
	"time"

	"candleview/internal/bus"
	"candleview/internal/domain"
	"candleview/internal/indicators"
)

// Chart ties the shared context, the broadcaster and the layers together.
// Layers are passed in rather than owned so the state store stays the single
// owner of the layer list.
type Chart struct {
	Ctx         *Context
	Bus         *bus.Bus
	Broadcaster *Broadcaster
}

// New creates a chart for a terminal of w by h cells.
func New(w, h int, b *bus.Bus, settleWait time.Duration) *Chart {
	ctx := NewContext(w, h)
	return &Chart{
		Ctx:         ctx,
		Bus:         b,
		Broadcaster: NewBroadcaster(ctx, b, settleWait),
	}
}

// NewLayers builds the standard layer stack, bottom to top. ma may be nil.
func (ch *Chart) NewLayers(ma indicators.Indicator) []Layer {
	layers := []Layer{
		NewCandles(ch.Ctx),
	}
	if ma != nil {
		layers = append(layers, NewMovingAverage(ch.Ctx, ma))
	}
	return append(layers,
		NewTrendLines(ch.Ctx),
		NewTrendLineCrosses(ch.Ctx),
		NewStrongPoints(ch.Ctx),
	)
}

// Update fits both scales to the view and redraws every layer with the
// update transition. Any gesture transform is dropped.
func (ch *Chart) Update(view domain.ViewState, layers []Layer) {
	candles := view.Data.Candles
	if start, end, ok := view.Window(); ok {
		ch.Ctx.FitX(start, end)
		if !ch.Ctx.FitY(domain.CandlesBetween(candles, start, end), 0) {
			ch.Ctx.FitY(candles, 0)
		}
	} else if len(candles) > 0 {
		ch.Ctx.FitX(candles[0].OpenTime, candles[len(candles)-1].OpenTime+view.Data.Meta.Step)
		ch.Ctx.FitY(candles, 0)
	}
	ch.Broadcaster.Reset()
	for _, l := range layers {
		l.Update(view, ch.Ctx)
	}
}

// Rebase makes [start, end] the base time domain without moving or
// resizing any mark. It is used once a gesture settles so the transform can
// return to identity; layers sized by the scale factor keep it as their base.
func (ch *Chart) Rebase(start, end int64, layers []Layer) {
	k := ch.Broadcaster.Transform().K
	for _, l := range layers {
		if r, ok := l.(rebaser); ok {
			r.Rebase(k)
		}
	}
	ch.Ctx.FitX(start, end)
	ch.Broadcaster.Reset()
}

// Zoomed forwards a gesture frame to every layer.
func (ch *Chart) Zoomed(ev bus.ZoomedEvent, layers []Layer) {
	for _, l := range layers {
		l.Zoomed(ev)
	}
}

// ZoomEnd refits the price scale to the candles inside the zoomed time
// domain and lets every layer settle vertically. It returns the candles in
// view; when there are none the scales are left alone.
func (ch *Chart) ZoomEnd(candles []domain.Candle, layers []Layer) []domain.Candle {
	d0, d1 := ch.Ctx.XZ.Domain()
	visible := domain.CandlesBetween(candles, int64(math.Round(d0)), int64(math.Round(d1)))
	if !ch.Ctx.FitY(visible, zoomEndPadding) {
		return visible
	}
	for _, l := range layers {
		l.ZoomEnd(visible, ch.Ctx)
	}
	return visible
}

// Resize adapts the plot area to a new terminal size.
func (ch *Chart) Resize(w, h int) {
	ch.Ctx.Resize(w, h)
}

// Render draws the layers and the axes as of now.
func (ch *Chart) Render(layers []Layer, now time.Time) string {
	plot := NewCanvas(ch.Ctx.Width, ch.Ctx.Height)
	for _, l := range layers {
		l.Draw(plot, now)
	}
	return ch.Ctx.frame(plot).Render()
}

// Animating reports whether a transition is still running.
func (ch *Chart) Animating(now time.Time) bool {
	return ch.Ctx.Animating(now)
}

// PlotColumn converts a terminal column to a plot column.
func (ch *Chart) PlotColumn(x int) float64 {
	return float64(x - ch.Ctx.Margin.Left)
}

// CandleAt returns the candle drawn under terminal column x.
func (ch *Chart) CandleAt(layers []Layer, x int, now time.Time) (domain.Candle, bool) {
	for _, l := range layers {
		if c, ok := l.(*Candles); ok {
			return c.CandleAt(ch.PlotColumn(x), now)
		}
	}
	return domain.Candle{}, false
}
