package loader

import (
	"context"
	"errors"
	"testing"
	"time"

	"candleview/internal/domain"
	"candleview/internal/ports"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct {
	infoMsgs  []string
	warnMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}

func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.infoMsgs = append(m.infoMsgs, msg)
}

func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.warnMsgs = append(m.warnMsgs, msg)
}

func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.errorMsgs = append(m.errorMsgs, msg)
}

type mockSource struct {
	queries    []domain.ChartQuery
	requestIDs []string
	resp       *domain.ChartResponse
	err        error
}

func (m *mockSource) FetchChart(ctx context.Context, q domain.ChartQuery) (*domain.ChartResponse, error) {
	m.queries = append(m.queries, q)
	m.requestIDs = append(m.requestIDs, ports.RequestID(ctx))
	return m.resp, m.err
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time          { return c.now }
func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newLoader(t *testing.T, src *mockSource) (*Loader, *clock, *mockLogger) {
	t.Helper()
	logger := &mockLogger{}
	l, err := New(src, logger, 0, time.Second)
	require.NoError(t, err)
	c := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l.Throttle().Now = c.Now
	return l, c, logger
}

func baseView() domain.ViewState {
	return domain.ViewState{
		Symbol:       "BTCUSDT",
		Interval:     domain.Interval15m,
		PointPercent: 0.009,
		Config:       domain.DefaultFeatureConfig(),
	}
}

func TestNew_ValidatesDependencies(t *testing.T) {
	_, err := New(nil, &mockLogger{}, 0, 0)
	assert.Error(t, err)
	_, err = New(&mockSource{}, nil, 0, 0)
	assert.Error(t, err)
}

func TestObserve_FetchesOnKeyChangeOnly(t *testing.T) {
	src := &mockSource{resp: &domain.ChartResponse{}}
	l, clk, _ := newLoader(t, src)
	view := baseView()

	cmd := l.Observe(view)
	require.NotNil(t, cmd)
	msg, ok := cmd().(LoadedMsg)
	require.True(t, ok)
	assert.Equal(t, uint64(1), msg.Seq)
	_, err := uuid.Parse(msg.RequestID)
	assert.NoError(t, err)
	assert.Equal(t, []string{msg.RequestID}, src.requestIDs)
	assert.Equal(t, "BTCUSDT", msg.Query.Symbol)
	assert.Nil(t, msg.Query.Start)

	clk.Advance(time.Second)
	assert.Nil(t, l.Observe(view), "unchanged key")

	view.Config.ShowCrosses = true
	assert.Nil(t, l.Observe(view), "toggles do not shape the query")

	view.Config.StrongPoint.MinDomain = domain.Float64(0.5)
	cmd = l.Observe(view)
	require.NotNil(t, cmd)
	msg = cmd().(LoadedMsg)
	assert.Equal(t, uint64(2), msg.Seq)
	require.NotNil(t, msg.Query.MinDomain)
	assert.Equal(t, 0.5, *msg.Query.MinDomain)
}

func TestObserve_ThrottleDropsTrigger(t *testing.T) {
	src := &mockSource{resp: &domain.ChartResponse{}}
	l, clk, _ := newLoader(t, src)
	view := baseView()

	require.NotNil(t, l.Observe(view))

	clk.Advance(100 * time.Millisecond)
	view.Symbol = "ETHUSDT"
	assert.Nil(t, l.Observe(view), "inside the gap")

	clk.Advance(time.Second)
	assert.Nil(t, l.Observe(view), "dropped trigger is not rescheduled")

	view.Interval = domain.Interval1h
	assert.NotNil(t, l.Observe(view))
}

func TestObserve_InitialWindowFromLocation(t *testing.T) {
	src := &mockSource{resp: &domain.ChartResponse{}}
	l, _, _ := newLoader(t, src)
	view := baseView()
	view.Start = domain.Int64(1000)
	view.End = domain.Int64(2000)

	msg := l.Observe(view)().(LoadedMsg)
	require.NotNil(t, msg.Query.Start)
	assert.Equal(t, int64(1000), *msg.Query.Start)
	assert.Equal(t, int64(2000), *msg.Query.End)
}

func TestObserve_WindowPastLoadedRange(t *testing.T) {
	src := &mockSource{resp: &domain.ChartResponse{}}
	l, clk, _ := newLoader(t, src)
	view := baseView()
	view.Data.Meta = domain.Meta{Start: 0, End: 100, Step: 10}
	view.Start, view.End = domain.Int64(0), domain.Int64(100)

	require.NotNil(t, l.Observe(view))
	clk.Advance(time.Second)

	view.Start, view.End = domain.Int64(-200), domain.Int64(-100)
	cmd := l.Observe(view)
	require.NotNil(t, cmd)
	msg := cmd().(LoadedMsg)
	require.NotNil(t, msg.Query.Start)
	assert.Equal(t, int64(-200), *msg.Query.Start)
	assert.Equal(t, int64(-100), *msg.Query.End)

	clk.Advance(time.Second)
	assert.Nil(t, l.Observe(view), "same window is fetched once")

	view.Data.Meta = domain.Meta{Start: -200, End: -100, Step: 10}
	assert.Nil(t, l.Observe(view), "window now loaded")
}

func TestObserve_FetchFailure(t *testing.T) {
	cause := errors.New("connection refused")
	src := &mockSource{err: cause}
	l, _, logger := newLoader(t, src)

	msg, ok := l.Observe(baseView())().(FetchFailedMsg)
	require.True(t, ok)
	assert.ErrorIs(t, msg.Err, ports.ErrFetchFailed)
	assert.ErrorIs(t, msg.Err, cause)

	l.Failed(msg)
	assert.Len(t, logger.errorMsgs, 1)
}

func TestAccept_StaleResponsesStillMerge(t *testing.T) {
	l, _, logger := newLoader(t, &mockSource{})

	assert.True(t, l.Accept(LoadedMsg{Seq: 2}))
	assert.False(t, l.Accept(LoadedMsg{Seq: 1}))
	assert.True(t, l.Accept(LoadedMsg{Seq: 3}))
	assert.Len(t, logger.warnMsgs, 1)
}

func TestKey(t *testing.T) {
	a := baseView()
	b := baseView()
	b.Start = domain.Int64(5)
	b.Config.ShowTrendLines = false
	assert.Equal(t, Key(a), Key(b))

	b.PointPercent = 0.01
	assert.NotEqual(t, Key(a), Key(b))
}

func TestLocation_ApplyAndReplace(t *testing.T) {
	loc, err := ParseLocation("http://localhost:8080/?symbol=ETHUSDT&interval=1h&min_domain=0.25&start=1000&end=5000")
	require.NoError(t, err)

	view, err := loc.Apply(baseView())
	require.NoError(t, err)
	assert.Equal(t, "ETHUSDT", view.Symbol)
	assert.Equal(t, domain.Interval1h, view.Interval)
	require.NotNil(t, view.Config.StrongPoint.MinDomain)
	assert.Equal(t, 0.25, *view.Config.StrongPoint.MinDomain)
	assert.Equal(t, int64(1000), *view.Start)
	assert.Equal(t, int64(5000), *view.End)

	view.Start, view.End = domain.Int64(2000), domain.Int64(3000)
	loc.Replace(domain.ChartQuery{Symbol: "ETHUSDT", Interval: domain.Interval1h}, view)
	assert.Equal(t, "http://localhost:8080/?end=3000&interval=1h&start=2000&symbol=ETHUSDT", loc.String())
}

func TestLocation_ApplyRejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		"/?interval=2m",
		"/?start=abc",
		"/?min_domain=wide",
		"/?start=10&end=5",
	} {
		loc, err := ParseLocation(raw)
		require.NoError(t, err)
		_, err = loc.Apply(baseView())
		assert.ErrorIs(t, err, ports.ErrInvalidRequest, raw)
	}

	loc, err := ParseLocation("")
	require.NoError(t, err)
	view, err := loc.Apply(baseView())
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", view.Symbol)
	assert.Nil(t, view.Start)
}
