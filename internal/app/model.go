// Package app runs the interactive chart: it wires the state store, the
// data loader and the chart engine to the bubbletea event loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"candleview/config"
	"candleview/internal/bus"
	"candleview/internal/chart"
	"candleview/internal/domain"
	"candleview/internal/indicators"
	"candleview/internal/loader"
	"candleview/internal/ports"
	"candleview/internal/state"
	"candleview/internal/timing"
)

const (
	// frameInterval paces transition redraws.
	frameInterval = 33 * time.Millisecond
	// chromeLines is the height of the status bar plus the info line.
	chromeLines = 2
	// Keyboard pan steps, in candles.
	moveBack    = -20
	moveForward = 10
)

// frameMsg asks for a redraw while a transition runs.
type frameMsg time.Time

// Model is the bubbletea model of the chart.
type Model struct {
	cfg      *config.Config
	logger   ports.Logger
	store    *state.Store
	bus      *bus.Bus
	chart    *chart.Chart
	loader   *loader.Loader
	location *loader.Location
	ma       indicators.Indicator

	pending []tea.Cmd
	ticking bool
	unsub   []func()

	width, height int
	pointerX      int
	dragging      bool
	dragX         int
	detail        bool
	input         *string // min-domain input, nil when closed
	status        string
	lastErr       error
}

// NewModel builds the chart model. location holds the bookmark the view
// starts from and is kept in sync with the loaded data.
func NewModel(cfg *config.Config, logger ports.Logger, source ports.ChartSource, location *loader.Location) (*Model, error) {
	if cfg == nil || logger == nil || source == nil || location == nil {
		return nil, fmt.Errorf("missing required dependencies for chart model")
	}

	initial := state.Initial(cfg.Symbol, cfg.Interval)
	initial.PointPercent = cfg.PointPercent
	if cfg.MinDomain != nil {
		md := *cfg.MinDomain
		initial.Config.StrongPoint.MinDomain = &md
	}
	view, err := location.Apply(initial.ViewState)
	if err != nil {
		return nil, fmt.Errorf("failed to apply chart location: %w", err)
	}
	initial.ViewState = view

	store, err := state.NewStore(initial, logger)
	if err != nil {
		return nil, err
	}
	ld, err := loader.New(source, logger, cfg.FetchThrottle, cfg.HTTPTimeout)
	if err != nil {
		return nil, err
	}

	b := bus.New()
	ch := chart.New(80, 24-chromeLines, b, cfg.ZoomEndDebounce)
	if cfg.Transition > 0 {
		ch.Ctx.Transition = cfg.Transition
	}

	m := &Model{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		bus:      b,
		chart:    ch,
		loader:   ld,
		location: location,
		ma:       indicators.NewEMA(cfg.EMAPeriod),
		width:    80,
		height:   24,
	}
	m.subscribe()
	return m, nil
}

// subscribe connects the bus topics and the store to the chart.
func (m *Model) subscribe() {
	m.unsub = append(m.unsub,
		m.bus.Zoomed.Subscribe(func(ev bus.ZoomedEvent) {
			m.chart.Zoomed(ev, m.store.State().Indicators)
		}),
		m.bus.SetDomain.Subscribe(func(ev bus.SetDomainEvent) {
			if err := m.store.Dispatch(state.SetDomain{Domain: ev.Domain}); err != nil {
				m.lastErr = err
				return
			}
			m.chart.Rebase(ev.Domain[0], ev.Domain[1], m.store.State().Indicators)
		}),
		m.bus.ZoomEnd.Subscribe(func(bus.ZoomEndEvent) {
			s := m.store.State()
			m.chart.ZoomEnd(s.Data.Candles, s.Indicators)
		}),
		m.store.Subscribe(m.onChange),
	)
}

// onChange redraws the chart after an applied action and lets the loader
// decide whether the new view needs data. A settled gesture has already
// moved the marks, so it only rebases.
func (m *Model) onChange(a state.Action, _, next state.State) {
	if _, settled := a.(state.SetDomain); !settled {
		m.chart.Update(next.ViewState, next.Indicators)
	}
	m.enqueue(m.loader.Observe(next.ViewState))
}

func (m *Model) enqueue(cmd tea.Cmd) {
	if cmd != nil {
		m.pending = append(m.pending, cmd)
	}
}

// flush returns the queued commands plus a frame tick while a transition runs.
func (m *Model) flush() tea.Cmd {
	if !m.ticking && m.chart.Animating(m.chart.Ctx.Now()) {
		m.ticking = true
		m.pending = append(m.pending, tea.Tick(frameInterval, func(t time.Time) tea.Msg {
			return frameMsg(t)
		}))
	}
	cmds := m.pending
	m.pending = nil
	return tea.Batch(cmds...)
}

// dispatch applies a and keeps a rejection for the status bar.
func (m *Model) dispatch(a state.Action) {
	if err := m.store.Dispatch(a); err != nil {
		m.lastErr = err
		return
	}
	m.lastErr = nil
}

// Init registers the layers, which triggers the first fetch.
func (m *Model) Init() tea.Cmd {
	m.dispatch(state.SetIndicators{Layers: m.chart.NewLayers(m.ma)})
	return m.flush()
}

// Update handles one message of the event loop.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.chart.Resize(msg.Width, max(msg.Height-chromeLines, 1))
		s := m.store.State()
		m.chart.Update(s.ViewState, s.Indicators)

	case tea.KeyMsg:
		if m.input != nil {
			m.editInput(msg)
			break
		}
		if quit := m.handleKey(msg); quit {
			m.chart.Broadcaster.Stop()
			return m, tea.Quit
		}

	case tea.MouseMsg:
		m.handleMouse(msg)

	case timing.FiredMsg:
		m.chart.Broadcaster.Settle(msg)

	case loader.LoadedMsg:
		m.loader.Accept(msg)
		if msg.Data != nil {
			m.dispatch(state.LoadData{Data: *msg.Data})
			m.location.Replace(msg.Query, m.store.State().ViewState)
			m.status = fmt.Sprintf("loaded %d candles", len(msg.Data.Candles.Candles))
		}

	case loader.FetchFailedMsg:
		m.loader.Failed(msg)
		m.lastErr = msg.Err

	case frameMsg:
		m.ticking = false
	}
	return m, m.flush()
}

// handleKey maps the control surface to actions. It reports true on quit.
func (m *Model) handleKey(msg tea.KeyMsg) bool {
	s := m.store.State()
	switch msg.String() {
	case "q", "ctrl+c":
		return true
	case "left", "h":
		m.dispatch(state.Move{Candles: moveBack})
	case "right", "l":
		m.dispatch(state.Move{Candles: moveForward})
	case "+", "=":
		m.enqueue(m.chart.Broadcaster.Wheel(m.centerColumn(), 1))
	case "-", "_":
		m.enqueue(m.chart.Broadcaster.Wheel(m.centerColumn(), -1))
	case "s":
		m.dispatch(state.SetSymbol{Symbol: nextSymbol(m.cfg.Symbols, s.Symbol)})
	case "i":
		m.dispatch(state.SetInterval{Interval: s.Interval.Next()})
	case "c":
		m.dispatch(state.SetConfig{Path: "showCrosses", Value: !s.Config.ShowCrosses})
	case "t":
		m.dispatch(state.SetConfig{Path: "showTrendLines", Value: !s.Config.ShowTrendLines})
	case "e":
		m.dispatch(state.SetConfig{Path: "showMovingAverage", Value: !s.Config.ShowMovingAverage})
	case "d":
		m.detail = !m.detail
	case "m":
		text := ""
		if md := s.Config.StrongPoint.MinDomain; md != nil {
			text = fmt.Sprint(*md)
		}
		m.input = &text
	}
	return false
}

// editInput feeds a key to the min-domain input. Enter applies the text,
// an empty text clears the setting.
func (m *Model) editInput(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEnter:
		m.dispatch(state.SetConfig{Path: "strong_point.min_domain", Value: strings.TrimSpace(*m.input)})
		m.input = nil
	case tea.KeyEsc:
		m.input = nil
	case tea.KeyBackspace:
		if r := []rune(*m.input); len(r) > 0 {
			*m.input = string(r[:len(r)-1])
		}
	case tea.KeyRunes:
		*m.input += string(msg.Runes)
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	m.pointerX = msg.X
	col := m.chart.PlotColumn(msg.X)
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.enqueue(m.chart.Broadcaster.Wheel(col, 1))
	case msg.Button == tea.MouseButtonWheelDown:
		m.enqueue(m.chart.Broadcaster.Wheel(col, -1))
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		m.dragging, m.dragX = true, msg.X
	case msg.Action == tea.MouseActionMotion && m.dragging:
		m.enqueue(m.chart.Broadcaster.Drag(float64(msg.X - m.dragX)))
		m.dragX = msg.X
	case msg.Action == tea.MouseActionRelease:
		m.dragging = false
	}
}

func (m *Model) centerColumn() float64 {
	return float64(m.chart.Ctx.Width) / 2
}

// nextSymbol cycles through symbols, starting over when current is unknown.
func nextSymbol(symbols []string, current string) string {
	if len(symbols) == 0 {
		return current
	}
	for i, s := range symbols {
		if s == current {
			return symbols[(i+1)%len(symbols)]
		}
	}
	return symbols[0]
}

// Location returns the bookmark of the current view.
func (m *Model) Location() string { return m.location.String() }

// SaveBookmark writes the current location to the bookmark file.
func (m *Model) SaveBookmark() error {
	if m.cfg.BookmarkFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(m.cfg.BookmarkFile), 0o755); err != nil {
		return fmt.Errorf("failed to create bookmark directory: %w", err)
	}
	if err := os.WriteFile(m.cfg.BookmarkFile, []byte(m.location.String()+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write bookmark: %w", err)
	}
	m.logger.Info(context.Background(), "Bookmark saved", map[string]interface{}{
		"file":     m.cfg.BookmarkFile,
		"location": m.location.String(),
	})
	return nil
}

// Close detaches the model from the bus and the store.
func (m *Model) Close() {
	for _, fn := range m.unsub {
		fn()
	}
	m.unsub = nil
}

// LoadBookmark returns the saved location, or "" when there is none.
func LoadBookmark(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read bookmark: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// describe names a rejected action for the status bar.
func describe(err error) string {
	switch {
	case errors.Is(err, ports.ErrStepUnknown), errors.Is(err, ports.ErrWindowUnresolved):
		return "waiting for data"
	case errors.Is(err, ports.ErrInvalidConfigPath):
		return "invalid value"
	case errors.Is(err, ports.ErrFetchFailed):
		return "fetch failed: " + err.Error()
	default:
		return err.Error()
	}
}

// visibleWindow formats the window of view for the status bar.
func visibleWindow(view domain.ViewState) string {
	start, end, ok := view.Window()
	if !ok {
		return "window unresolved"
	}
	layout := "2006-01-02 15:04"
	return time.UnixMilli(start).UTC().Format(layout) + " → " + time.UnixMilli(end).UTC().Format(layout)
}
