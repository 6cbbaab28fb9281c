package backend

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"candleview/internal/domain"
	"candleview/internal/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const step15m = int64(15 * time.Minute / time.Millisecond)

var testNow = time.Date(2024, 1, 1, 1, 7, 0, 0, time.UTC)

type mockLogger struct {
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.errorMsgs = append(m.errorMsgs, msg)
}

// memRepo is an in-memory ports.CandleRepository for one series.
type memRepo struct {
	candles map[int64]domain.Candle
	saves   int
}

func newMemRepo() *memRepo { return &memRepo{candles: map[int64]domain.Candle{}} }

func (r *memRepo) SaveCandles(ctx context.Context, symbol string, interval domain.Interval, candles []domain.Candle) (int, error) {
	r.saves++
	for _, c := range candles {
		r.candles[c.OpenTime] = c
	}
	return len(candles), nil
}

func (r *memRepo) QueryCandles(ctx context.Context, symbol string, interval domain.Interval, start, end int64) ([]domain.Candle, error) {
	out := []domain.Candle{}
	for t, c := range r.candles {
		if t >= start && t <= end {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenTime < out[j].OpenTime })
	return out, nil
}

func (r *memRepo) MissingRanges(ctx context.Context, symbol string, interval domain.Interval, start, end int64) ([]ports.TimeRange, error) {
	step := interval.Step()
	var missing []int64
	for t := start; t <= end; t += step {
		if _, ok := r.candles[t]; !ok {
			missing = append(missing, t)
		}
	}
	return ports.GroupMissing(missing, step), nil
}

type fetchCall struct{ start, end int64 }

// mockSource serves one candle per step for any requested range.
type mockSource struct {
	calls []fetchCall
	err   error
}

func (m *mockSource) GetKlinesRange(ctx context.Context, symbol string, interval domain.Interval, start, end time.Time) ([]domain.Candle, error) {
	m.calls = append(m.calls, fetchCall{start.UnixMilli(), end.UnixMilli()})
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Candle
	for t := start.UnixMilli(); t <= end.UnixMilli(); t += interval.Step() {
		p := float64(t / step15m % 1000)
		out = append(out, domain.Candle{OpenTime: t, Open: p, High: p + 2, Low: p - 2, Close: p + 1})
	}
	return out, nil
}

func (m *mockSource) Ping(ctx context.Context) error { return nil }

func newTestService(t *testing.T, repo *memRepo, src *mockSource) (*Service, *Metrics) {
	t.Helper()
	metrics := NewMetrics(prometheus.NewRegistry())
	svc, err := NewService(repo, src, &mockLogger{}, metrics, 4)
	require.NoError(t, err)
	svc.now = func() time.Time { return testNow }
	return svc, metrics
}

func query() domain.ChartQuery {
	return domain.ChartQuery{Symbol: "btcusdt", Interval: domain.Interval15m}
}

func TestNewService_ValidatesDependencies(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	_, err := NewService(nil, &mockSource{}, &mockLogger{}, metrics, 4)
	assert.Error(t, err)
	_, err = NewService(newMemRepo(), nil, &mockLogger{}, metrics, 4)
	assert.Error(t, err)
	_, err = NewService(newMemRepo(), &mockSource{}, nil, metrics, 4)
	assert.Error(t, err)
	_, err = NewService(newMemRepo(), &mockSource{}, &mockLogger{}, metrics, 0)
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}

func TestWindow_Defaults(t *testing.T) {
	svc, _ := newTestService(t, newMemRepo(), &mockSource{})
	end := domain.RoundDown(testNow.UnixMilli(), step15m)

	start, gotEnd, step, err := svc.Window(query())
	require.NoError(t, err)
	assert.Equal(t, step15m, step)
	assert.Equal(t, end, gotEnd)
	assert.Equal(t, end-4*step15m, start)

	q := query()
	q.Start = domain.Int64(end - 10*step15m + 5)
	q.End = domain.Int64(end - 2*step15m + 5)
	start, gotEnd, _, err = svc.Window(q)
	require.NoError(t, err)
	assert.Equal(t, end-10*step15m, start)
	assert.Equal(t, end-2*step15m, gotEnd)
}

func TestWindow_Limit(t *testing.T) {
	svc, _ := newTestService(t, newMemRepo(), &mockSource{})
	end := domain.RoundDown(testNow.UnixMilli(), step15m)

	q := query()
	q.Start = domain.Int64(end - 40*step15m)
	_, _, _, err := svc.Window(q)
	require.NoError(t, err, "ten times history is allowed")

	q.Start = domain.Int64(end - 41*step15m)
	_, _, _, err = svc.Window(q)
	assert.ErrorIs(t, err, ports.ErrInvalidRequest)

	svc.SetLimit(100)
	_, _, _, err = svc.Window(q)
	assert.NoError(t, err)
}

func TestChart_FillsEmptyCacheOnce(t *testing.T) {
	repo, src := newMemRepo(), &mockSource{}
	svc, metrics := newTestService(t, repo, src)
	end := domain.RoundDown(testNow.UnixMilli(), step15m)

	resp, err := svc.Chart(context.Background(), query())
	require.NoError(t, err)

	require.Len(t, src.calls, 1)
	assert.Equal(t, fetchCall{end - 4*step15m, end}, src.calls[0])
	assert.Len(t, resp.Candles.Candles, 5)
	assert.Equal(t, domain.Meta{Start: end - 4*step15m, End: end, Step: step15m}, resp.Meta)
	assert.NotNil(t, resp.StrongPoints)
	assert.NotNil(t, resp.TrendLines)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheFills.WithLabelValues("saved")))
	assert.Equal(t, 5.0, testutil.ToFloat64(metrics.CandlesServed))

	_, err = svc.Chart(context.Background(), query())
	require.NoError(t, err)
	assert.Len(t, src.calls, 1, "cached window must not hit the exchange")
}

func TestChart_FetchesOnlyGaps(t *testing.T) {
	repo, src := newMemRepo(), &mockSource{}
	svc, _ := newTestService(t, repo, src)
	end := domain.RoundDown(testNow.UnixMilli(), step15m)
	for _, i := range []int64{0, 3, 4} {
		repo.candles[end-4*step15m+i*step15m] = domain.Candle{OpenTime: end - 4*step15m + i*step15m}
	}

	resp, err := svc.Chart(context.Background(), query())
	require.NoError(t, err)

	require.Len(t, src.calls, 1)
	assert.Equal(t, fetchCall{end - 3*step15m, end - 2*step15m}, src.calls[0])
	assert.Len(t, resp.Candles.Candles, 5)
}

func TestChart_SkipsFutureRanges(t *testing.T) {
	repo, src := newMemRepo(), &mockSource{}
	svc, _ := newTestService(t, repo, src)
	last := domain.RoundDown(testNow.UnixMilli(), step15m)

	q := query()
	q.Start = domain.Int64(last - step15m)
	q.End = domain.Int64(last + 3*step15m)
	resp, err := svc.Chart(context.Background(), q)
	require.NoError(t, err)

	require.Len(t, src.calls, 1)
	assert.Equal(t, fetchCall{last - step15m, last}, src.calls[0])
	assert.Len(t, resp.Candles.Candles, 2)
	assert.Equal(t, last+3*step15m, resp.Meta.End)
}

func TestChart_Errors(t *testing.T) {
	t.Run("upstream failure", func(t *testing.T) {
		svc, metrics := newTestService(t, newMemRepo(), &mockSource{err: errors.New("boom")})
		_, err := svc.Chart(context.Background(), query())
		assert.ErrorIs(t, err, ports.ErrFetchFailed)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheFills.WithLabelValues("failed")))
	})
	t.Run("missing symbol", func(t *testing.T) {
		svc, _ := newTestService(t, newMemRepo(), &mockSource{})
		_, err := svc.Chart(context.Background(), domain.ChartQuery{Interval: domain.Interval15m})
		assert.ErrorIs(t, err, ports.ErrInvalidRequest)
	})
	t.Run("unknown interval", func(t *testing.T) {
		svc, _ := newTestService(t, newMemRepo(), &mockSource{})
		_, err := svc.Chart(context.Background(), domain.ChartQuery{Symbol: "BTCUSDT", Interval: "2m"})
		assert.ErrorIs(t, err, ports.ErrInvalidRequest)
	})
	t.Run("window too large", func(t *testing.T) {
		src := &mockSource{}
		repo := newMemRepo()
		svc, _ := newTestService(t, repo, src)
		q := query()
		q.Start = domain.Int64(1)
		_, err := svc.Chart(context.Background(), q)
		assert.ErrorIs(t, err, ports.ErrInvalidRequest)
		assert.Empty(t, src.calls)
	})
	t.Run("start after end", func(t *testing.T) {
		src := &mockSource{}
		svc, _ := newTestService(t, newMemRepo(), src)
		q := query()
		q.Start = domain.Int64(10 * step15m)
		q.End = domain.Int64(2 * step15m)
		_, err := svc.Chart(context.Background(), q)
		assert.ErrorIs(t, err, ports.ErrInvalidRequest)
		assert.Empty(t, src.calls)
	})
}
