// Package state owns the chart view state: the pure reducer that applies
// actions to it and the store that serializes dispatches on the UI loop.
package state

import (
	"fmt"
	"sort"

	"candleview/internal/chart"
	"candleview/internal/domain"
	"candleview/internal/ports"
)

// State is the view state plus the registered indicator layers.
type State struct {
	domain.ViewState
	Indicators []chart.Layer
}

// Initial returns the state a chart starts in.
func Initial(symbol string, interval domain.Interval) State {
	return State{ViewState: domain.ViewState{
		Symbol:   symbol,
		Interval: interval,
		Config:   domain.DefaultFeatureConfig(),
	}}
}

// Reduce applies a to s and returns the next state. A rejected action
// returns s unchanged together with the reason.
//
// SetSymbol and SetInterval drop the accumulated candles when the series
// changes, so a dataset never mixes candles of two series.
func Reduce(s State, a Action) (State, error) {
	switch a := a.(type) {
	case LoadData:
		next := s
		next.Data = domain.Dataset{
			Candles:      mergeCandles(s.Data.Candles, a.Data.Candles.Candles),
			Meta:         a.Data.Meta,
			StrongPoints: a.Data.StrongPoints,
			TrendLines:   a.Data.TrendLines,
		}
		next.Start = domain.Int64(a.Data.Meta.Start)
		next.End = domain.Int64(a.Data.Meta.End)
		return next, nil

	case SetIndicators:
		next := s
		next.Indicators = append([]chart.Layer(nil), a.Layers...)
		return next, nil

	case Move:
		if a.Candles == 0 {
			return s, nil
		}
		step := s.Data.Meta.Step
		if step == 0 {
			return s, fmt.Errorf("move by %d: %w", a.Candles, ports.ErrStepUnknown)
		}
		start, end, ok := s.Window()
		if !ok {
			return s, fmt.Errorf("move by %d: %w", a.Candles, ports.ErrWindowUnresolved)
		}
		shift := int64(a.Candles) * step
		next := s
		next.Start = domain.Int64(start + shift)
		next.End = domain.Int64(end + shift)
		return next, nil

	case SetSymbol:
		next := s
		if a.Symbol != s.Symbol {
			next.Data.Candles = nil
		}
		next.Symbol = a.Symbol
		return next, nil

	case SetInterval:
		next := s
		if a.Interval != s.Interval {
			next.Data.Candles = nil
		}
		next.Interval = a.Interval
		next.Start = nil
		next.End = nil
		return next, nil

	case SetConfig:
		cfg := s.Config
		if err := cfg.Set(a.Path, a.Value); err != nil {
			return s, fmt.Errorf("%w: %w", ports.ErrInvalidConfigPath, err)
		}
		next := s
		next.Config = cfg
		return next, nil

	case SetDomain:
		next := s
		next.Start = domain.Int64(a.Domain[0])
		next.End = domain.Int64(a.Domain[1])
		return next, nil

	default:
		name := "<nil>"
		if a != nil {
			name = fmt.Sprintf("%s (%T)", a.Type(), a)
		}
		return s, fmt.Errorf("%w: %s", ports.ErrInvalidAction, name)
	}
}

// mergeCandles appends incoming to existing, keeps the first candle seen for
// each open time, and sorts the result by open time. Neither input is modified.
func mergeCandles(existing, incoming []domain.Candle) []domain.Candle {
	out := make([]domain.Candle, 0, len(existing)+len(incoming))
	seen := make(map[int64]struct{}, cap(out))
	for _, batch := range [][]domain.Candle{existing, incoming} {
		for _, c := range batch {
			if _, dup := seen[c.OpenTime]; dup {
				continue
			}
			seen[c.OpenTime] = struct{}{}
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OpenTime < out[j].OpenTime })
	return out
}
