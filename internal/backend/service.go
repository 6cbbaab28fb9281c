package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"candleview/internal/domain"
	"candleview/internal/ports"
)

// windowFactor sizes the largest window served, in multiples of history.
const windowFactor = 10

// fillPasses bounds how often the cache is refilled per request. Ranges
// still missing afterwards are served as gaps.
const fillPasses = 2

// Service answers chart queries from the candle cache, filling gaps from
// the exchange first.
type Service struct {
	repo    ports.CandleRepository
	source  ports.KlineSource
	logger  ports.Logger
	metrics *Metrics
	history int
	limit   int // most candles a window may span
	now     func() time.Time
}

// NewService creates a chart service. history is the number of candles
// served when a query has no start.
func NewService(repo ports.CandleRepository, source ports.KlineSource, logger ports.Logger, metrics *Metrics, history int) (*Service, error) {
	if repo == nil {
		return nil, errors.New("candle repository is required")
	}
	if source == nil {
		return nil, errors.New("kline source is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if metrics == nil {
		return nil, errors.New("metrics are required")
	}
	if history <= 0 {
		return nil, fmt.Errorf("%w: history must be positive, got %d", ports.ErrConfigurationError, history)
	}
	return &Service{
		repo:    repo,
		source:  source,
		logger:  logger,
		metrics: metrics,
		history: history,
		limit:   windowFactor * history,
		now:     time.Now,
	}, nil
}

// SetLimit changes the most candles a window may span.
func (s *Service) SetLimit(candles int) {
	if candles > 0 {
		s.limit = candles
	}
}

// Window resolves the [start, end] range of q, both rounded down to the
// interval step. A missing end is the current candle, a missing start is
// history candles before end.
func (s *Service) Window(q domain.ChartQuery) (start, end, step int64, err error) {
	if _, err := domain.ParseInterval(string(q.Interval)); err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %w", ports.ErrInvalidRequest, err)
	}
	step = q.Interval.Step()

	end = domain.RoundDown(s.now().UnixMilli(), step)
	if q.End != nil {
		end = domain.RoundDown(*q.End, step)
	}
	start = end - int64(s.history)*step
	if q.Start != nil {
		start = domain.RoundDown(*q.Start, step)
	}
	if start > end {
		return 0, 0, 0, fmt.Errorf("%w: start %d after end %d", ports.ErrInvalidRequest, start, end)
	}
	if n := (end - start) / step; n > int64(s.limit) {
		return 0, 0, 0, fmt.Errorf("%w: window spans %d candles, limit is %d", ports.ErrInvalidRequest, n, s.limit)
	}
	return start, end, step, nil
}

// Chart returns the candles of the window described by q.
func (s *Service) Chart(ctx context.Context, q domain.ChartQuery) (*domain.ChartResponse, error) {
	op := "Chart"
	q.Symbol = strings.ToUpper(strings.TrimSpace(q.Symbol))
	if q.Symbol == "" {
		return nil, fmt.Errorf("%s failed: %w: symbol is required", op, ports.ErrInvalidRequest)
	}
	start, end, step, err := s.Window(q)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}

	if err := s.fill(ctx, q.Symbol, q.Interval, start, end); err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}

	candles, err := s.repo.QueryCandles(ctx, q.Symbol, q.Interval, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}
	s.metrics.CandlesServed.Add(float64(len(candles)))

	return &domain.ChartResponse{
		Candles:      domain.CandleBatch{Candles: candles},
		Meta:         domain.Meta{Start: start, End: end, Step: step},
		StrongPoints: []domain.StrongPoint{},
		TrendLines:   []domain.TrendLine{},
	}, nil
}

// fill fetches the cache gaps of [start, end]. Gaps that open after the
// current candle are skipped.
func (s *Service) fill(ctx context.Context, symbol string, interval domain.Interval, start, end int64) error {
	last := domain.RoundDown(s.now().UnixMilli(), interval.Step())
	for pass := 0; pass < fillPasses; pass++ {
		ranges, err := s.repo.MissingRanges(ctx, symbol, interval, start, end)
		if err != nil {
			return err
		}
		fetched := 0
		for _, r := range ranges {
			if r.Start > last {
				continue
			}
			rEnd := min(r.End, last)
			candles, err := s.source.GetKlinesRange(ctx, symbol, interval, time.UnixMilli(r.Start), time.UnixMilli(rEnd))
			if err != nil {
				s.metrics.CacheFills.WithLabelValues("failed").Inc()
				return fmt.Errorf("%w: %w", ports.ErrFetchFailed, err)
			}
			saved, err := s.repo.SaveCandles(ctx, symbol, interval, candles)
			if err != nil {
				s.metrics.CacheFills.WithLabelValues("failed").Inc()
				return err
			}
			s.metrics.CacheFills.WithLabelValues("saved").Inc()
			fetched += saved
			s.logger.Debug(ctx, "Filled candle cache gap", map[string]interface{}{
				"symbol":   symbol,
				"interval": interval,
				"start":    r.Start,
				"end":      rEnd,
				"saved":    saved,
			})
		}
		if fetched == 0 {
			return nil
		}
	}
	return nil
}
