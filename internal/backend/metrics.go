package backend

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the chart backend.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec // labels: status
	RequestDuration prometheus.Histogram
	CandlesServed   prometheus.Counter
	CacheFills      *prometheus.CounterVec // labels: result=saved|failed
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chartd_requests_total",
			Help: "Chart requests served, by HTTP status",
		}, []string{"status"}),
		RequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chartd_request_duration_seconds",
			Help:    "Chart request latency",
			Buckets: prometheus.DefBuckets,
		}),
		CandlesServed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chartd_candles_served_total",
			Help: "Candles returned in chart responses",
		}),
		CacheFills: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chartd_cache_fills_total",
			Help: "Missing ranges fetched from the exchange, by result",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.CandlesServed,
		m.CacheFills,
	)
	return m
}
