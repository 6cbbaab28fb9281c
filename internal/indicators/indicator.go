// Package indicators computes overlay series from candle closes.
package indicators

import (
	"context"

	"candleview/internal/domain"
)

// Indicator represents a technical indicator computed over a candle series.
type Indicator interface {
	// Calculate returns one value per candle. Values before the indicator has
	// enough history are NaN.
	Calculate(ctx context.Context, candles []domain.Candle) ([]float64, error)

	// RequiredDataPoints returns the minimum number of candles needed for calculation
	RequiredDataPoints() int

	// Name returns the name of the indicator
	Name() string
}

// IndicatorConfig holds common configuration for indicators
type IndicatorConfig struct {
	Period int
}

// BaseIndicator provides common functionality for indicators
type BaseIndicator struct {
	Config IndicatorConfig
}

// RequiredDataPoints returns the minimum number of candles needed for calculation
func (b *BaseIndicator) RequiredDataPoints() int {
	return b.Config.Period
}

func closes(candles []domain.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
