// Package scale holds the continuous scales and zoom transform shared by the
// chart layers.
package scale

import "math"

// Linear maps a continuous domain onto a continuous range.
type Linear struct {
	d0, d1 float64
	r0, r1 float64
}

// NewLinear creates a scale over domain [d0, d1] and range [r0, r1].
func NewLinear(d0, d1, r0, r1 float64) *Linear {
	return &Linear{d0: d0, d1: d1, r0: r0, r1: r1}
}

// Domain returns the domain bounds.
func (s *Linear) Domain() (float64, float64) { return s.d0, s.d1 }

// SetDomain replaces the domain in place.
func (s *Linear) SetDomain(d0, d1 float64) { s.d0, s.d1 = d0, d1 }

// Range returns the range bounds.
func (s *Linear) Range() (float64, float64) { return s.r0, s.r1 }

// SetRange replaces the range in place.
func (s *Linear) SetRange(r0, r1 float64) { s.r0, s.r1 = r0, r1 }

// Map projects a domain value into the range.
func (s *Linear) Map(v float64) float64 {
	if s.d1 == s.d0 {
		return (s.r0 + s.r1) / 2
	}
	return s.r0 + (v-s.d0)/(s.d1-s.d0)*(s.r1-s.r0)
}

// Invert maps a range value back into the domain.
func (s *Linear) Invert(px float64) float64 {
	if s.r1 == s.r0 {
		return s.d0
	}
	return s.d0 + (px-s.r0)/(s.r1-s.r0)*(s.d1-s.d0)
}

// Copy returns an independent scale with the same domain and range.
func (s *Linear) Copy() *Linear {
	c := *s
	return &c
}

// Ticks returns roughly count evenly spaced, human-friendly domain values.
func (s *Linear) Ticks(count int) []float64 {
	lo, hi := s.d0, s.d1
	if lo > hi {
		lo, hi = hi, lo
	}
	if count <= 0 || hi == lo || math.IsNaN(lo) || math.IsNaN(hi) {
		return nil
	}
	step := niceStep((hi - lo) / float64(count))
	var out []float64
	for v := math.Ceil(lo/step) * step; v <= hi+step*1e-9; v += step {
		out = append(out, v)
	}
	return out
}

// niceStep rounds a raw step to 1, 2 or 5 times a power of ten.
func niceStep(raw float64) float64 {
	power := math.Pow(10, math.Floor(math.Log10(raw)))
	ratio := raw / power
	switch {
	case ratio >= math.Sqrt(50):
		return 10 * power
	case ratio >= math.Sqrt(10):
		return 5 * power
	case ratio >= math.Sqrt(2):
		return 2 * power
	default:
		return power
	}
}
