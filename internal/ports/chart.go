package ports

import (
	"context"

	"candleview/internal/domain"
)

// ChartSource fetches a chart data window, usually from GET /chart.
type ChartSource interface {
	// FetchChart requests the window described by q. Errors wrap ErrFetchFailed.
	FetchChart(ctx context.Context, q domain.ChartQuery) (*domain.ChartResponse, error)
}
