package chart

import "time"

// Tween is one animated attribute. Its value eases from From to To over Dur
// starting at Start.
type Tween struct {
	From  float64
	To    float64
	Start time.Time
	Dur   time.Duration
}

// Fixed returns a tween that already sits at v.
func Fixed(v float64) Tween { return Tween{From: v, To: v} }

// At returns the value at now.
func (t Tween) At(now time.Time) float64 {
	if t.Dur <= 0 || !now.Before(t.Start.Add(t.Dur)) {
		return t.To
	}
	if now.Before(t.Start) {
		return t.From
	}
	p := float64(now.Sub(t.Start)) / float64(t.Dur)
	return t.From + (t.To-t.From)*easeCubicInOut(p)
}

// Retarget starts a transition from the current value towards v.
func (t *Tween) Retarget(v float64, start time.Time, d time.Duration) {
	t.From = t.At(start)
	t.To = v
	t.Start = start
	t.Dur = d
}

// Jump sets v immediately, cancelling any running transition.
func (t *Tween) Jump(v float64) {
	*t = Fixed(v)
}

func easeCubicInOut(p float64) float64 {
	p *= 2
	if p <= 1 {
		return p * p * p / 2
	}
	p -= 2
	return (p*p*p + 2) / 2
}
