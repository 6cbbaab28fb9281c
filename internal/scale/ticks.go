package scale

import (
	"math"
	"time"
)

var timeSteps = []time.Duration{
	time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
	time.Hour,
	3 * time.Hour,
	6 * time.Hour,
	12 * time.Hour,
	24 * time.Hour,
	2 * 24 * time.Hour,
	7 * 24 * time.Hour,
	30 * 24 * time.Hour,
}

// TimeTicks returns tick positions for a domain in ms epoch, aligned to
// round clock steps.
func (s *Linear) TimeTicks(count int) []float64 {
	lo, hi := s.d0, s.d1
	if lo > hi {
		lo, hi = hi, lo
	}
	if count <= 0 || hi <= lo {
		return nil
	}
	target := (hi - lo) / float64(count)
	step := float64(timeSteps[len(timeSteps)-1].Milliseconds())
	for _, d := range timeSteps {
		if float64(d.Milliseconds()) >= target {
			step = float64(d.Milliseconds())
			break
		}
	}
	var out []float64
	for v := math.Ceil(lo/step) * step; v <= hi; v += step {
		out = append(out, v)
	}
	return out
}

// TimeLabel formats a ms tick the way the chart axis shows it (M/D H:MM).
func TimeLabel(ms float64) string {
	return time.UnixMilli(int64(ms)).UTC().Format("1/2 15:04")
}
