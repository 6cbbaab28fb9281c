// Package loader fetches chart data windows whenever the fields that shape
// the backend query change, at most once per throttle gap.
package loader

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"candleview/internal/domain"
	"candleview/internal/ports"
	"candleview/internal/timing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// DefaultThrottle is the minimum gap between fetch initiations.
const DefaultThrottle = 500 * time.Millisecond

// LoadedMsg carries a successful fetch back to the event loop.
type LoadedMsg struct {
	Seq       uint64
	RequestID string
	Query     domain.ChartQuery
	Data      *domain.ChartResponse
}

// FetchFailedMsg carries a failed fetch back to the event loop.
type FetchFailedMsg struct {
	Seq       uint64
	RequestID string
	Query     domain.ChartQuery
	Err       error
}

// Loader decides when the view needs new data and builds the fetch command.
// It is driven from the UI loop and is not safe for concurrent use.
type Loader struct {
	source   ports.ChartSource
	logger   ports.Logger
	throttle *timing.Throttle
	timeout  time.Duration

	observed   bool
	lastKey    string
	lastWindow string
	seq        uint64
	merged     uint64
}

// New creates a loader over source. A zero gap uses DefaultThrottle.
func New(source ports.ChartSource, logger ports.Logger, gap, timeout time.Duration) (*Loader, error) {
	if source == nil {
		return nil, errors.New("chart source is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if gap <= 0 {
		gap = DefaultThrottle
	}
	return &Loader{
		source:   source,
		logger:   logger,
		throttle: timing.NewThrottle(gap),
		timeout:  timeout,
	}, nil
}

// Throttle exposes the fetch throttle, mainly so tests can drive its clock.
func (l *Loader) Throttle() *timing.Throttle { return l.throttle }

// Key returns the trigger key of view: the fields that shape the query.
func Key(view domain.ViewState) string {
	md := ""
	if view.Config.StrongPoint.MinDomain != nil {
		md = strconv.FormatFloat(*view.Config.StrongPoint.MinDomain, 'g', -1, 64)
	}
	return strings.Join([]string{
		view.Symbol,
		string(view.Interval),
		strconv.FormatFloat(view.PointPercent, 'g', -1, 64),
		md,
	}, "|")
}

// outside reports whether the visible window reaches past the loaded range.
func outside(view domain.ViewState) (string, bool) {
	start, end, ok := view.Window()
	if !ok || !view.Data.Meta.Loaded() {
		return "", false
	}
	if start >= view.Data.Meta.Start && end <= view.Data.Meta.End {
		return "", false
	}
	return fmt.Sprintf("%d-%d", start, end), true
}

// Observe inspects view and returns a fetch command when the query-shaping
// fields changed, or when the window moved past the loaded data. Triggers
// inside the throttle gap are dropped but still count as observed.
func (l *Loader) Observe(view domain.ViewState) tea.Cmd {
	key := Key(view)
	var q domain.ChartQuery

	switch window, out := outside(view); {
	case !l.observed || key != l.lastKey:
		l.observed = true
		l.lastKey = key
		l.lastWindow = ""
		q = query(view, !view.Data.Meta.Loaded())
	case out && window != l.lastWindow:
		l.lastWindow = window
		q = query(view, true)
	default:
		return nil
	}

	if !l.throttle.Allow() {
		l.logger.Debug(context.Background(), "Fetch skipped inside throttle gap", map[string]interface{}{
			"key": key,
		})
		return nil
	}
	return l.fetch(q)
}

func query(view domain.ViewState, windowed bool) domain.ChartQuery {
	q := domain.ChartQuery{
		Symbol:    view.Symbol,
		Interval:  view.Interval,
		MinDomain: view.Config.StrongPoint.MinDomain,
	}
	if start, end, ok := view.Window(); ok && windowed {
		q.Start = domain.Int64(start)
		q.End = domain.Int64(end)
	}
	return q
}

func (l *Loader) fetch(q domain.ChartQuery) tea.Cmd {
	l.seq++
	seq := l.seq
	id := uuid.NewString()
	l.logger.Info(context.Background(), "Fetching chart data", map[string]interface{}{
		"seq":        seq,
		"request_id": id,
		"symbol":     q.Symbol,
		"interval":   string(q.Interval),
	})

	source, timeout := l.source, l.timeout
	return func() tea.Msg {
		ctx := ports.WithRequestID(context.Background(), id)
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		data, err := source.FetchChart(ctx, q)
		if err != nil {
			if !errors.Is(err, ports.ErrFetchFailed) {
				err = fmt.Errorf("fetch chart failed: %w: %w", ports.ErrFetchFailed, err)
			}
			return FetchFailedMsg{Seq: seq, RequestID: id, Query: q, Err: err}
		}
		return LoadedMsg{Seq: seq, RequestID: id, Query: q, Data: data}
	}
}

// Accept records that msg is about to be merged and reports whether it is
// the newest response seen so far. Older responses are still merged.
func (l *Loader) Accept(msg LoadedMsg) bool {
	if msg.Seq < l.merged {
		l.logger.Warn(context.Background(), "Merging stale chart response", map[string]interface{}{
			"seq":        msg.Seq,
			"latest":     l.merged,
			"request_id": msg.RequestID,
		})
		return false
	}
	l.merged = msg.Seq
	return true
}

// Failed logs a failed fetch.
func (l *Loader) Failed(msg FetchFailedMsg) {
	l.logger.Error(context.Background(), msg.Err, "Chart fetch failed", map[string]interface{}{
		"seq":        msg.Seq,
		"request_id": msg.RequestID,
		"symbol":     msg.Query.Symbol,
		"interval":   string(msg.Query.Interval),
	})
}
