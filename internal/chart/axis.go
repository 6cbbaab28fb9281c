package chart

import (
	"math"
	"strconv"
	"strings"

	"candleview/internal/scale"
)

// Orientation places an axis relative to the plot.
type Orientation int

const (
	Left Orientation = iota
	Bottom
)

// Axis renders tick labels for a scale.
type Axis struct {
	Orient Orientation
	Ticks  int
	Format func(float64) string
}

// Labels returns the tick positions in cells paired with their label.
func (a *Axis) Labels(s *scale.Linear) (pos []int, labels []string) {
	var ticks []float64
	if a.Orient == Bottom {
		ticks = s.TimeTicks(a.Ticks)
	} else {
		ticks = s.Ticks(a.Ticks)
	}
	seen := map[int]bool{}
	for _, t := range ticks {
		p := round(s.Map(t))
		if seen[p] {
			continue
		}
		seen[p] = true
		pos = append(pos, p)
		labels = append(labels, a.Format(t))
	}
	return pos, labels
}

func priceLabel(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1000:
		return strconv.FormatFloat(v, 'f', 0, 64)
	case abs >= 1:
		return strconv.FormatFloat(v, 'f', 2, 64)
	default:
		return strconv.FormatFloat(v, 'f', 6, 64)
	}
}

// frame draws the plot canvas with a left price axis and a bottom time axis
// onto a full-size canvas.
func (c *Context) frame(plot *Canvas) *Canvas {
	totalW := c.Width + c.Margin.Left + c.Margin.Right
	totalH := c.Height + c.Margin.Top + c.Margin.Bottom
	out := NewCanvas(totalW, totalH)

	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			out.Set(c.Margin.Left+x, c.Margin.Top+y, plot.At(x, y), plot.InkAt(x, y))
		}
	}

	axisX := c.Margin.Left - 1
	out.VLine(axisX, c.Margin.Top, c.Margin.Top+c.Height-1, '│', InkAxis)
	ys, ylabels := c.YAxis.Labels(c.Y)
	for i, p := range ys {
		if p < 0 || p >= c.Height {
			continue
		}
		row := c.Margin.Top + p
		label := ylabels[i]
		if len(label) > axisX-1 {
			label = label[:axisX-1]
		}
		out.Text(axisX-1-len(label), row, label, InkAxis)
		out.Set(axisX, row, '┤', InkAxis)
	}

	base := c.Margin.Top + c.Height
	out.Text(c.Margin.Left, base, strings.Repeat("─", c.Width), InkAxis)
	out.Set(axisX, base, '└', InkAxis)
	xs, xlabels := c.XAxis.Labels(c.XZ)
	next := 0
	for i, p := range xs {
		if p < 0 || p >= c.Width || p < next {
			continue
		}
		out.Set(c.Margin.Left+p, base, '┬', InkAxis)
		out.Text(c.Margin.Left+p, base+1, xlabels[i], InkAxis)
		next = p + len(xlabels[i]) + 1
	}
	return out
}
