package chart

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Ink selects the style a cell is drawn with.
type Ink int

const (
	InkNone Ink = iota
	InkUp
	InkDown
	InkCross
	InkPoint
	InkAxis
	InkAverage
	InkLine0 // first of len(linePalette) trend line colors
)

// linePalette mirrors the trend line colors: red, black, green, orange,
// purple, cyan, blue, gray.
var linePalette = []lipgloss.Color{"1", "8", "2", "208", "5", "6", "4", "7"}

var inkStyles = map[Ink]lipgloss.Style{
	InkNone:    lipgloss.NewStyle(),
	InkUp:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	InkDown:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	InkCross:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
	InkPoint:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	InkAxis:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	InkAverage: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
}

func init() {
	for i, c := range linePalette {
		inkStyles[InkLine0+Ink(i)] = lipgloss.NewStyle().Foreground(c)
	}
}

type cell struct {
	r   rune
	ink Ink
}

// Canvas is a fixed-size grid of styled terminal cells. Writes outside the
// grid are clipped.
type Canvas struct {
	w, h  int
	cells []cell
}

// NewCanvas creates a blank canvas.
func NewCanvas(w, h int) *Canvas {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	cv := &Canvas{w: w, h: h, cells: make([]cell, w*h)}
	cv.Clear()
	return cv
}

// Size returns the canvas dimensions.
func (cv *Canvas) Size() (int, int) { return cv.w, cv.h }

// Clear blanks every cell.
func (cv *Canvas) Clear() {
	for i := range cv.cells {
		cv.cells[i] = cell{r: ' '}
	}
}

// Set writes r at column x, row y.
func (cv *Canvas) Set(x, y int, r rune, ink Ink) {
	if x < 0 || y < 0 || x >= cv.w || y >= cv.h {
		return
	}
	cv.cells[y*cv.w+x] = cell{r: r, ink: ink}
}

// At returns the rune at x, y, or 0 when out of bounds.
func (cv *Canvas) At(x, y int) rune {
	if x < 0 || y < 0 || x >= cv.w || y >= cv.h {
		return 0
	}
	return cv.cells[y*cv.w+x].r
}

// InkAt returns the ink at x, y.
func (cv *Canvas) InkAt(x, y int) Ink {
	if x < 0 || y < 0 || x >= cv.w || y >= cv.h {
		return InkNone
	}
	return cv.cells[y*cv.w+x].ink
}

// Text writes s starting at x, y.
func (cv *Canvas) Text(x, y int, s string, ink Ink) {
	for i, r := range []rune(s) {
		cv.Set(x+i, y, r, ink)
	}
}

// VLine fills column x between rows y0 and y1 inclusive.
func (cv *Canvas) VLine(x, y0, y1 int, r rune, ink Ink) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		cv.Set(x, y, r, ink)
	}
}

// Segment draws a line between two points in cell space using a rune
// chosen from the segment's slope.
func (cv *Canvas) Segment(x0, y0, x1, y1 float64, ink Ink) {
	cv.SegmentRune(x0, y0, x1, y1, slopeRune(x0, y0, x1, y1), ink)
}

// SegmentRune draws a line between two points with a fixed rune. The
// segment is clipped to the canvas first, so one sample lands on every
// visible cell however far off-screen the endpoints are.
func (cv *Canvas) SegmentRune(x0, y0, x1, y1 float64, r rune, ink Ink) {
	if anyNaN(x0, y0, x1, y1) {
		return
	}
	x0, y0, x1, y1, ok := clipSegment(x0, y0, x1, y1, 0, 0, float64(cv.w-1), float64(cv.h-1))
	if !ok {
		return
	}
	steps := math.Ceil(math.Max(math.Abs(x1-x0), math.Abs(y1-y0)))
	if steps < 1 {
		cv.Set(round(x0), round(y0), r, ink)
		return
	}
	for i := 0.0; i <= steps; i++ {
		f := i / steps
		cv.Set(round(x0+(x1-x0)*f), round(y0+(y1-y0)*f), r, ink)
	}
}

// clipSegment clips a segment to the rectangle [xmin, xmax] x [ymin, ymax]
// (Liang-Barsky). ok is false when no part of it is inside.
func clipSegment(x0, y0, x1, y1, xmin, ymin, xmax, ymax float64) (cx0, cy0, cx1, cy1 float64, ok bool) {
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	for _, e := range [4][2]float64{
		{-dx, x0 - xmin},
		{dx, xmax - x0},
		{-dy, y0 - ymin},
		{dy, ymax - y0},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = math.Min(t1, t)
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

func slopeRune(x0, y0, x1, y1 float64) rune {
	dx, dy := x1-x0, y1-y0
	if dx == 0 {
		return '│'
	}
	m := dy / dx
	switch {
	case math.Abs(m) < 0.4:
		return '─'
	case math.Abs(m) > 2.5:
		return '│'
	case m < 0:
		return '╱'
	default:
		return '╲'
	}
}

// Render returns the canvas as styled lines joined by newlines.
func (cv *Canvas) Render() string {
	rows := make([]string, cv.h)
	for y := 0; y < cv.h; y++ {
		rows[y] = cv.renderRow(y)
	}
	return strings.Join(rows, "\n")
}

func (cv *Canvas) renderRow(y int) string {
	var sb strings.Builder
	var run []rune
	cur := InkNone
	flush := func() {
		if len(run) == 0 {
			return
		}
		if cur == InkNone {
			sb.WriteString(string(run))
		} else {
			sb.WriteString(inkStyles[cur].Render(string(run)))
		}
		run = run[:0]
	}
	for x := 0; x < cv.w; x++ {
		c := cv.cells[y*cv.w+x]
		if c.ink != cur {
			flush()
			cur = c.ink
		}
		run = append(run, c.r)
	}
	flush()
	return sb.String()
}

// Plain returns the canvas runes without styling. Useful for tests and logs.
func (cv *Canvas) Plain() string {
	rows := make([]string, cv.h)
	for y := 0; y < cv.h; y++ {
		rs := make([]rune, cv.w)
		for x := 0; x < cv.w; x++ {
			rs[x] = cv.cells[y*cv.w+x].r
		}
		rows[y] = string(rs)
	}
	return strings.Join(rows, "\n")
}

func round(f float64) int { return int(math.Round(f)) }

func anyNaN(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
