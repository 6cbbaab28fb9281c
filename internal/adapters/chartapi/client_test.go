package chartapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"candleview/internal/domain"
	"candleview/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

const chartBody = `{
  "candles": {"candles": [
    {"open_time": 1700000000000, "open": 1, "high": 3, "low": 0.5, "close": 2},
    {"open_time": 1700000900000, "open": 2, "high": 4, "low": 1.5, "close": 3}
  ]},
  "meta": {"start": 1700000000000, "end": 1700001800000, "step": 900000},
  "strong_points": [{"x": 1700000000000, "y": 0.5}],
  "trend_lines": [{"p1": [1700000000000, 1], "p2": [1700000900000, 2],
    "crosses": [{"p1": [1700000000000, 1], "p2": [1700000900000, 2], "t": "REJECT"}]}]
}`

func TestNewClient_Validates(t *testing.T) {
	_, err := NewClient("http://localhost:8080", time.Second, nil)
	assert.Error(t, err)
	_, err = NewClient("", time.Second, &mockLogger{})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
	_, err = NewClient("localhost", time.Second, &mockLogger{})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}

func TestFetchChart_Success(t *testing.T) {
	var gotQuery, gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chart", r.URL.Path)
		gotQuery = r.URL.RawQuery
		gotID = r.Header.Get(RequestIDHeader)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL+"/api", time.Second, &mockLogger{})
	require.NoError(t, err)

	ctx := ports.WithRequestID(context.Background(), "req-1")
	resp, err := c.FetchChart(ctx, domain.ChartQuery{
		Symbol:    "BTCUSDT",
		Interval:  domain.Interval15m,
		MinDomain: domain.Float64(0.25),
		Start:     domain.Int64(10),
		End:       domain.Int64(20),
	})
	require.NoError(t, err)

	assert.Equal(t, "end=20&interval=15m&min_domain=0.25&start=10&symbol=BTCUSDT", gotQuery)
	assert.Equal(t, "req-1", gotID)
	require.Len(t, resp.Candles.Candles, 2)
	assert.Equal(t, int64(1700000900000), resp.Candles.Candles[1].OpenTime)
	assert.Equal(t, int64(900000), resp.Meta.Step)
	require.Len(t, resp.TrendLines, 1)
	assert.Equal(t, domain.CrossReject, resp.TrendLines[0].Crosses[0].T)
	assert.Equal(t, 2.0, resp.TrendLines[0].P2.Y())
	assert.Equal(t, []domain.StrongPoint{{X: 1700000000000, Y: 0.5}}, resp.StrongPoints)
}

func TestFetchChart_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":"unsupported interval"}`, wantErr: ports.ErrInvalidRequest},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `slow down`, wantErr: ports.ErrRateLimited},
		{name: "upstream", status: http.StatusBadGateway, body: `{"error":"binance down"}`, wantErr: ports.ErrUnknown},
		{name: "garbage body", status: http.StatusOK, body: `{"candles":`, wantErr: ports.ErrBadResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewClient(srv.URL, time.Second, &mockLogger{})
			require.NoError(t, err)
			_, err = c.FetchChart(context.Background(), domain.ChartQuery{Symbol: "BTCUSDT", Interval: domain.Interval1m})
			assert.ErrorIs(t, err, ports.ErrFetchFailed)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFetchChart_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(url, time.Second, &mockLogger{})
	require.NoError(t, err)
	_, err = c.FetchChart(context.Background(), domain.ChartQuery{Symbol: "BTCUSDT", Interval: domain.Interval1m})
	assert.ErrorIs(t, err, ports.ErrFetchFailed)
	assert.ErrorIs(t, err, ports.ErrConnectionFailed)
}

func TestFetchChart_Canceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c, err := NewClient(srv.URL, time.Second, &mockLogger{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.FetchChart(ctx, domain.ChartQuery{Symbol: "BTCUSDT", Interval: domain.Interval1m})
	assert.ErrorIs(t, err, ports.ErrContextCanceled)
}
