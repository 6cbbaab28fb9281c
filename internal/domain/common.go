package domain

import (
	"fmt"
	"time"
)

// Interval represents a candle interval supported by the chart.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
)

// Intervals lists the supported intervals in ascending duration.
var Intervals = []Interval{Interval1m, Interval5m, Interval15m, Interval30m, Interval1h, Interval4h, Interval1d}

// ParseInterval validates an interval string.
func ParseInterval(s string) (Interval, error) {
	for _, iv := range Intervals {
		if string(iv) == s {
			return iv, nil
		}
	}
	return "", fmt.Errorf("unsupported interval %q", s)
}

// Duration returns the interval length.
func (i Interval) Duration() time.Duration {
	switch i {
	case Interval1m:
		return time.Minute
	case Interval5m:
		return 5 * time.Minute
	case Interval15m:
		return 15 * time.Minute
	case Interval30m:
		return 30 * time.Minute
	case Interval1h:
		return time.Hour
	case Interval4h:
		return 4 * time.Hour
	case Interval1d:
		return 24 * time.Hour
	default:
		return 0
	}
}

// Step returns the interval length in milliseconds, the unit of Candle.OpenTime.
func (i Interval) Step() int64 {
	return i.Duration().Milliseconds()
}

// Next returns the interval following i, wrapping around.
func (i Interval) Next() Interval {
	for idx, iv := range Intervals {
		if iv == i {
			return Intervals[(idx+1)%len(Intervals)]
		}
	}
	return Intervals[0]
}

// RoundDown truncates a ms timestamp to the start of its step.
func RoundDown(ms, step int64) int64 {
	if step <= 0 {
		return ms
	}
	return ms - ms%step
}

// CrossType tags the direction of a trend line cross.
type CrossType string

const (
	CrossReject CrossType = "REJECT"
	CrossUp     CrossType = "UP"
	CrossDown   CrossType = "DOWN"
	CrossBounce CrossType = "BOUNCE"
	CrossVoid   CrossType = "VOID"
)

// Glyph returns the arrow drawn next to a cross.
func (t CrossType) Glyph() string {
	if t == CrossReject || t == CrossDown {
		return "↓"
	}
	return "↑"
}

// LimitBy selects how the backend limits the strong point set.
type LimitBy string

const (
	LimitFixed   LimitBy = "FIXED"
	LimitPercent LimitBy = "PERCENT"
)
