package backend

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"candleview/internal/domain"
	"candleview/internal/ports"
)

// ChartService is what the HTTP handler needs from Service.
type ChartService interface {
	Chart(ctx context.Context, q domain.ChartQuery) (*domain.ChartResponse, error)
}

// NewHandler builds the gin engine serving /chart, /healthz and /metrics.
func NewHandler(svc ChartService, metrics *Metrics, gatherer prometheus.Gatherer, logger ports.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	h := &chartHandler{svc: svc, metrics: metrics, logger: logger}
	r.GET("/chart", h.observe, h.chart)
	r.GET("/healthz", handleHealthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	return r
}

type chartHandler struct {
	svc     ChartService
	metrics *Metrics
	logger  ports.Logger
}

func handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// observe records status and latency of the chart route.
func (h *chartHandler) observe(c *gin.Context) {
	started := time.Now()
	c.Next()
	h.metrics.RequestDuration.Observe(time.Since(started).Seconds())
	h.metrics.RequestsTotal.WithLabelValues(strconv.Itoa(c.Writer.Status())).Inc()
}

func (h *chartHandler) chart(c *gin.Context) {
	ctx := c.Request.Context()
	if id := c.GetHeader("X-Request-ID"); id != "" {
		ctx = ports.WithRequestID(ctx, id)
	}

	q, err := parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.svc.Chart(ctx, q)
	if err != nil {
		if errors.Is(err, ports.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error(ctx, err, "Chart request failed", map[string]interface{}{
			"symbol":   q.Symbol,
			"interval": q.Interval,
		})
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// parseQuery reads the /chart parameters. Empty and "0" bounds mean unset.
func parseQuery(c *gin.Context) (domain.ChartQuery, error) {
	q := domain.ChartQuery{Symbol: c.Query("symbol")}
	if q.Symbol == "" {
		return q, errors.New("symbol is required")
	}

	iv, err := domain.ParseInterval(c.DefaultQuery("interval", string(domain.Interval15m)))
	if err != nil {
		return q, err
	}
	q.Interval = iv

	if s := c.Query("min_domain"); s != "" {
		md, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return q, errors.New("min_domain must be a number")
		}
		q.MinDomain = &md
	}
	for _, b := range []struct {
		key string
		dst **int64
	}{{"start", &q.Start}, {"end", &q.End}} {
		s := c.Query(b.key)
		if s == "" || s == "0" {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return q, errors.New(b.key + " must be a ms timestamp")
		}
		*b.dst = &n
	}
	return q, nil
}
