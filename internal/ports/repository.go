package ports

import (
	"context"

	"candleview/internal/domain"
)

// TimeRange is an inclusive range of candle open times in ms.
type TimeRange struct {
	Start int64
	End   int64
}

// CandleRepository caches candles per symbol and interval.
type CandleRepository interface {
	// SaveCandles upserts candles for symbol/interval and returns how many rows were written.
	SaveCandles(ctx context.Context, symbol string, interval domain.Interval, candles []domain.Candle) (int, error)
	// QueryCandles returns candles with open time in [start, end], ascending.
	QueryCandles(ctx context.Context, symbol string, interval domain.Interval, start, end int64) ([]domain.Candle, error)
	// MissingRanges returns the gaps in [start, end] with no cached candle.
	// Adjacent missing open times are grouped into one range.
	MissingRanges(ctx context.Context, symbol string, interval domain.Interval, start, end int64) ([]TimeRange, error)
}

// GroupMissing folds ascending missing open times into inclusive ranges of
// consecutive steps.
func GroupMissing(times []int64, step int64) []TimeRange {
	var out []TimeRange
	for i, t := range times {
		if i > 0 && times[i-1]+step == t {
			out[len(out)-1].End = t
			continue
		}
		out = append(out, TimeRange{Start: t, End: t})
	}
	return out
}
