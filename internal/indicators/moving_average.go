package indicators

import (
	"context"
	"fmt"
	"math"

	"candleview/internal/domain"

	"github.com/markcheno/go-talib"
)

// MovingAverageType defines the type of moving average
type MovingAverageType string

const (
	// SimpleMovingAverage represents a simple moving average
	SimpleMovingAverage MovingAverageType = "SMA"
	// ExponentialMovingAverage represents an exponential moving average
	ExponentialMovingAverage MovingAverageType = "EMA"
)

// MovingAverageConfig holds configuration for moving average indicators
type MovingAverageConfig struct {
	IndicatorConfig
	Type MovingAverageType
}

// MovingAverage implements both SMA and EMA indicators
type MovingAverage struct {
	BaseIndicator
	config MovingAverageConfig
}

// NewMovingAverage creates a new moving average indicator instance
func NewMovingAverage(config MovingAverageConfig) *MovingAverage {
	return &MovingAverage{
		BaseIndicator: BaseIndicator{Config: config.IndicatorConfig},
		config:        config,
	}
}

// NewEMA is shorthand for an exponential moving average of period.
func NewEMA(period int) *MovingAverage {
	return NewMovingAverage(MovingAverageConfig{
		IndicatorConfig: IndicatorConfig{Period: period},
		Type:            ExponentialMovingAverage,
	})
}

// Name returns the name of the indicator
func (m *MovingAverage) Name() string {
	return fmt.Sprintf("%s(%d)", m.config.Type, m.Config.Period)
}

// Calculate computes the moving average series based on the configured type
func (m *MovingAverage) Calculate(ctx context.Context, candles []domain.Candle) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Config.Period < 2 {
		return nil, fmt.Errorf("invalid %s period %d", m.config.Type, m.Config.Period)
	}
	if len(candles) < m.Config.Period {
		return nil, fmt.Errorf("not enough data (%d) to calculate %s for period %d", len(candles), m.config.Type, m.Config.Period)
	}

	var out []float64
	switch m.config.Type {
	case SimpleMovingAverage:
		out = talib.Sma(closes(candles), m.Config.Period)
	case ExponentialMovingAverage:
		out = talib.Ema(closes(candles), m.Config.Period)
	default:
		return nil, fmt.Errorf("unsupported moving average type: %s", m.config.Type)
	}

	// talib zero-fills the lookback window
	for i := 0; i < m.Config.Period-1 && i < len(out); i++ {
		out[i] = math.NaN()
	}
	return out, nil
}
