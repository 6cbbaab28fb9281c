// Package chartapi implements ports.ChartSource over the backend's GET /chart.
package chartapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"candleview/internal/domain"
	"candleview/internal/ports"
)

// RequestIDHeader carries the loader's request ID to the backend.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody bounds how much of an error response is read into the error.
const maxErrorBody = 512

// Client fetches chart windows from a chart backend.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger ports.Logger
}

// Ensure Client implements the ChartSource interface.
var _ ports.ChartSource = (*Client)(nil)

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger ports.Logger) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("chart server URL is required: %w", ports.ErrConfigurationError)
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid chart server URL %q: %w", baseURL, ports.ErrConfigurationError)
	}
	return &Client{
		base:   u,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}, nil
}

// chartURL builds the /chart URL for q.
func (c *Client) chartURL(q domain.ChartQuery) string {
	u := c.base.JoinPath("chart")
	v := url.Values{}
	v.Set("symbol", q.Symbol)
	v.Set("interval", string(q.Interval))
	if q.MinDomain != nil {
		v.Set("min_domain", strconv.FormatFloat(*q.MinDomain, 'g', -1, 64))
	}
	if q.Start != nil {
		v.Set("start", strconv.FormatInt(*q.Start, 10))
	}
	if q.End != nil {
		v.Set("end", strconv.FormatInt(*q.End, 10))
	}
	u.RawQuery = v.Encode()
	return u.String()
}

// FetchChart requests the chart window for q.
func (c *Client) FetchChart(ctx context.Context, q domain.ChartQuery) (*domain.ChartResponse, error) {
	op := "FetchChart"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.chartURL(q), nil)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w: %w", op, ports.ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	if id := ports.RequestID(ctx); id != "" {
		req.Header.Set(RequestIDHeader, id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.handleError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%s failed: %w: %w", op, ports.ErrFetchFailed, statusError(resp.StatusCode, body))
	}

	var out domain.ChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%s failed: %w: %w: %w", op, ports.ErrFetchFailed, ports.ErrBadResponse, err)
	}

	c.logger.Debug(ctx, "Chart window received", map[string]interface{}{
		"symbol":   q.Symbol,
		"interval": string(q.Interval),
		"candles":  len(out.Candles.Candles),
		"duration": time.Since(start).String(),
	})
	return &out, nil
}

func statusError(code int, body []byte) error {
	var sentinel error
	switch {
	case code == http.StatusBadRequest:
		sentinel = ports.ErrInvalidRequest
	case code == http.StatusNotFound:
		sentinel = ports.ErrNotFound
	case code == http.StatusTooManyRequests:
		sentinel = ports.ErrRateLimited
	case code == http.StatusGatewayTimeout:
		sentinel = ports.ErrTimeout
	default:
		sentinel = ports.ErrUnknown
	}
	var apiErr struct {
		Error string `json:"error"`
	}
	msg := string(body)
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		msg = apiErr.Error
	}
	return fmt.Errorf("%w: status %d: %s", sentinel, code, msg)
}

// handleError maps transport failures onto port sentinels.
func (c *Client) handleError(op string, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s failed: %w: %w: %w", op, ports.ErrFetchFailed, ports.ErrContextCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s failed: %w: %w: %w", op, ports.ErrFetchFailed, ports.ErrTimeout, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("%s failed: %w: %w: %w", op, ports.ErrFetchFailed, ports.ErrTimeout, err)
	}
	return fmt.Errorf("%s failed: %w: %w: %w", op, ports.ErrFetchFailed, ports.ErrConnectionFailed, err)
}
