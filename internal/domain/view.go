package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// StrongPointConfig tunes the strong point set requested from the backend.
type StrongPointConfig struct {
	LimitBy   LimitBy  `json:"limit_by"`
	Count     int      `json:"count"`
	MinDomain *float64 `json:"min_domain,omitempty"`
}

// FeatureConfig holds the per-feature toggles of the chart.
type FeatureConfig struct {
	ShowCrosses       bool              `json:"showCrosses"`
	ShowTrendLines    bool              `json:"showTrendLines"`
	ShowMovingAverage bool              `json:"showMovingAverage"`
	StrongPoint       StrongPointConfig `json:"strong_point"`
}

// DefaultFeatureConfig returns the config a fresh chart starts with.
func DefaultFeatureConfig() FeatureConfig {
	return FeatureConfig{
		ShowCrosses:    false,
		ShowTrendLines: true,
		StrongPoint: StrongPointConfig{
			LimitBy: LimitFixed,
			Count:   200,
		},
	}
}

// Set assigns value at a dotted path such as "strong_point.min_domain".
// Strings are parsed into the target type. The receiver is left untouched
// on error.
func (c *FeatureConfig) Set(path string, value any) error {
	next := *c
	switch strings.TrimSpace(path) {
	case "showCrosses":
		b, err := toBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		next.ShowCrosses = b
	case "showTrendLines":
		b, err := toBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		next.ShowTrendLines = b
	case "showMovingAverage":
		b, err := toBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		next.ShowMovingAverage = b
	case "strong_point.limit_by":
		s, ok := value.(string)
		if !ok {
			if lb, isLimit := value.(LimitBy); isLimit {
				s, ok = string(lb), true
			}
		}
		if !ok || (LimitBy(s) != LimitFixed && LimitBy(s) != LimitPercent) {
			return fmt.Errorf("%s: unsupported value %v", path, value)
		}
		next.StrongPoint.LimitBy = LimitBy(s)
	case "strong_point.count":
		n, err := toInt(value)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		next.StrongPoint.Count = n
	case "strong_point.min_domain":
		f, err := toOptionalFloat(value)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		next.StrongPoint.MinDomain = f
	default:
		return fmt.Errorf("unknown config path %q", path)
	}
	*c = next
	return nil
}

func toBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		return strconv.ParseBool(t)
	default:
		return false, fmt.Errorf("expected bool, got %T", v)
	}
}

func toInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		return int(t), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(t))
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

// toOptionalFloat maps nil and "" to an unset value.
func toOptionalFloat(v any) (*float64, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case *float64:
		if t == nil {
			return nil, nil
		}
		f := *t
		return &f, nil
	case float64:
		return &t, nil
	case int:
		f := float64(t)
		return &f, nil
	case string:
		t = strings.TrimSpace(t)
		if t == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil, err
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("expected number, got %T", v)
	}
}

// ViewState is everything the chart needs to draw one frame.
type ViewState struct {
	Symbol       string
	Interval     Interval
	Start        *int64 // nil: resolved by the loader from dataset metadata
	End          *int64
	PointPercent float64
	Config       FeatureConfig
	Data         Dataset
}

// Window returns the visible range. ok is false while either bound is unset.
func (v ViewState) Window() (start, end int64, ok bool) {
	if v.Start == nil || v.End == nil {
		return 0, 0, false
	}
	return *v.Start, *v.End, true
}

// Int64 returns a pointer to a copy of n.
func Int64(n int64) *int64 { return &n }

// Float64 returns a pointer to a copy of f.
func Float64(f float64) *float64 { return &f }
