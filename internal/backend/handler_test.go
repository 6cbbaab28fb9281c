package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"candleview/internal/domain"
	"candleview/internal/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChartService struct {
	queries    []domain.ChartQuery
	requestIDs []string
	resp       *domain.ChartResponse
	err        error
}

func (m *mockChartService) Chart(ctx context.Context, q domain.ChartQuery) (*domain.ChartResponse, error) {
	m.queries = append(m.queries, q)
	m.requestIDs = append(m.requestIDs, ports.RequestID(ctx))
	return m.resp, m.err
}

func newTestHandler(svc ChartService) (*gin.Engine, *mockLogger) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	logger := &mockLogger{}
	return NewHandler(svc, NewMetrics(reg), reg, logger), logger
}

func serve(r http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Chart(t *testing.T) {
	svc := &mockChartService{resp: &domain.ChartResponse{
		Candles:      domain.CandleBatch{Candles: []domain.Candle{{OpenTime: 900000, Open: 1, High: 2, Low: 0.5, Close: 1.5}}},
		Meta:         domain.Meta{Start: 900000, End: 900000, Step: 900000},
		StrongPoints: []domain.StrongPoint{},
		TrendLines:   []domain.TrendLine{},
	}}
	r, _ := newTestHandler(svc)

	w := serve(r, "/chart?symbol=BTCUSDT&interval=1h&min_domain=0.5&start=0&end=3600000")
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, svc.queries, 1)
	q := svc.queries[0]
	assert.Equal(t, "BTCUSDT", q.Symbol)
	assert.Equal(t, domain.Interval1h, q.Interval)
	require.NotNil(t, q.MinDomain)
	assert.Equal(t, 0.5, *q.MinDomain)
	assert.Nil(t, q.Start, "start=0 means unset")
	require.NotNil(t, q.End)
	assert.Equal(t, int64(3600000), *q.End)
	assert.Equal(t, "req-1", svc.requestIDs[0])

	var body domain.ChartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, *svc.resp, body)
}

func TestHandler_ChartErrors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		svcErr     error
		wantStatus int
		wantCalls  int
	}{
		{"missing symbol", "/chart?interval=1h", nil, http.StatusBadRequest, 0},
		{"bad interval", "/chart?symbol=BTCUSDT&interval=7m", nil, http.StatusBadRequest, 0},
		{"bad start", "/chart?symbol=BTCUSDT&start=yesterday", nil, http.StatusBadRequest, 0},
		{"bad min_domain", "/chart?symbol=BTCUSDT&min_domain=wide", nil, http.StatusBadRequest, 0},
		{"rejected by service", "/chart?symbol=BTCUSDT", fmt.Errorf("Chart failed: %w", ports.ErrInvalidRequest), http.StatusBadRequest, 1},
		{"upstream failure", "/chart?symbol=BTCUSDT", fmt.Errorf("Chart failed: %w: %w", ports.ErrFetchFailed, errors.New("boom")), http.StatusBadGateway, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockChartService{err: tt.svcErr}
			r, logger := newTestHandler(svc)

			w := serve(r, tt.target)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Len(t, svc.queries, tt.wantCalls)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			if tt.wantStatus == http.StatusBadGateway {
				assert.Equal(t, []string{"Chart request failed"}, logger.errorMsgs)
			}
		})
	}
}

func TestHandler_HealthzAndMetrics(t *testing.T) {
	r, _ := newTestHandler(&mockChartService{resp: &domain.ChartResponse{}})

	w := serve(r, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	serve(r, "/chart?symbol=BTCUSDT")
	serve(r, "/chart")

	w = serve(r, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	raw, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `chartd_requests_total{status="200"} 1`)
	assert.Contains(t, string(raw), `chartd_requests_total{status="400"} 1`)
	assert.Contains(t, string(raw), "chartd_request_duration_seconds_count 2")
}
