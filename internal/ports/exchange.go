package ports

import (
	"context"
	"time"

	"candleview/internal/domain"
)

// KlineSource is the upstream market data provider used to fill the candle cache.
type KlineSource interface {
	// GetKlinesRange retrieves all candles for symbol/interval with open time in [start, end].
	GetKlinesRange(ctx context.Context, symbol string, interval domain.Interval, start, end time.Time) ([]domain.Candle, error)

	// Ping checks the connectivity to the exchange API.
	Ping(ctx context.Context) error
}
