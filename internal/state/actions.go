package state

import (
	"candleview/internal/chart"
	"candleview/internal/domain"
)

// Action is a request to change the chart state.
type Action interface {
	Type() string
}

// LoadData merges a fetched chart response into the dataset.
type LoadData struct {
	Data domain.ChartResponse
}

// SetIndicators replaces the registered layers.
type SetIndicators struct {
	Layers []chart.Layer
}

// Move shifts the visible window by a number of candles.
type Move struct {
	Candles int
}

// SetSymbol switches the chart to another symbol.
type SetSymbol struct {
	Symbol string
}

// SetInterval switches the candle interval and unbinds the window.
type SetInterval struct {
	Interval domain.Interval
}

// SetConfig assigns Value at the dotted config Path.
type SetConfig struct {
	Path  string
	Value any
}

// SetDomain sets the visible window directly, in ms.
type SetDomain struct {
	Domain [2]int64
}

func (LoadData) Type() string      { return "LOAD_DATA" }
func (SetIndicators) Type() string { return "SET_INDICATORS" }
func (Move) Type() string          { return "MOVE" }
func (SetSymbol) Type() string     { return "SET_SYMBOL" }
func (SetInterval) Type() string   { return "SET_INTERVAL" }
func (SetConfig) Type() string     { return "SET_CONFIG" }
func (SetDomain) Type() string     { return "SET_DOMAIN" }
