package domain

import "time"

// Candle represents a single OHLC bar keyed by the start of its interval.
type Candle struct {
	OpenTime int64   `json:"open_time"` // Interval start, ms epoch. Unique key within a dataset.
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   float64 `json:"volume,omitempty"`
}

// Time returns the open time as a time.Time in UTC.
func (c Candle) Time() time.Time {
	return time.UnixMilli(c.OpenTime).UTC()
}

// IsBullish reports whether the candle closed at or above its open.
func (c Candle) IsBullish() bool {
	return c.Close >= c.Open
}

// BodyTop returns the higher of open and close.
func (c Candle) BodyTop() float64 {
	if c.Open > c.Close {
		return c.Open
	}
	return c.Close
}

// BodyBottom returns the lower of open and close.
func (c Candle) BodyBottom() float64 {
	if c.Open < c.Close {
		return c.Open
	}
	return c.Close
}

// CandlesBetween returns the candles whose open time falls within [from, to].
// The input is expected to be sorted by OpenTime.
func CandlesBetween(candles []Candle, from, to int64) []Candle {
	out := make([]Candle, 0, len(candles))
	for _, c := range candles {
		if c.OpenTime >= from && c.OpenTime <= to {
			out = append(out, c)
		}
	}
	return out
}

// PriceExtent returns the lowest low and highest high across candles.
// ok is false when candles is empty.
func PriceExtent(candles []Candle) (low, high float64, ok bool) {
	if len(candles) == 0 {
		return 0, 0, false
	}
	low, high = candles[0].Low, candles[0].High
	for _, c := range candles[1:] {
		if c.Low < low {
			low = c.Low
		}
		if c.High > high {
			high = c.High
		}
	}
	return low, high, true
}
