package domain

// Point is an [x, y] pair in data coordinates (x in ms, y in price).
type Point [2]float64

// X returns the time coordinate.
func (p Point) X() float64 { return p[0] }

// Y returns the price coordinate.
func (p Point) Y() float64 { return p[1] }

// Cross marks where price crosses a trend line.
type Cross struct {
	P1 Point     `json:"p1"`
	P2 Point     `json:"p2"`
	T  CrossType `json:"t"`
}

// TrendLine is a price-level reference between two points. It is never
// modified after it is received.
type TrendLine struct {
	P1      Point   `json:"p1"`
	P2      Point   `json:"p2"`
	Crosses []Cross `json:"crosses"`
}

// StrongPoint is a server-identified price extremum.
type StrongPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Meta describes the window a dataset was fetched for.
type Meta struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
	Step  int64 `json:"step"`
}

// Loaded reports whether the metadata came from a fetch.
func (m Meta) Loaded() bool {
	return m.Step > 0
}

// Dataset is the accumulated chart data held in the view state.
type Dataset struct {
	Candles      []Candle      `json:"candles"`
	Meta         Meta          `json:"meta"`
	StrongPoints []StrongPoint `json:"strong_points"`
	TrendLines   []TrendLine   `json:"trend_lines"`
}

// Crosses flattens the crosses of every trend line.
func (d Dataset) Crosses() []Cross {
	var out []Cross
	for _, tl := range d.TrendLines {
		out = append(out, tl.Crosses...)
	}
	return out
}

// CandleBatch wraps candles the way the /chart endpoint nests them.
type CandleBatch struct {
	Candles []Candle `json:"candles"`
}

// ChartResponse is the body returned by GET /chart.
type ChartResponse struct {
	Candles      CandleBatch   `json:"candles"`
	Meta         Meta          `json:"meta"`
	StrongPoints []StrongPoint `json:"strong_points"`
	TrendLines   []TrendLine   `json:"trend_lines"`
}

// ChartQuery holds the parameters of a /chart request.
type ChartQuery struct {
	Symbol    string
	Interval  Interval
	MinDomain *float64
	Start     *int64
	End       *int64
}
