package scale

// Transform is the scale-and-translate pair produced by a zoom gesture.
// A point p in range space maps to p*K + {X,Y}.
type Transform struct {
	K float64
	X float64
	Y float64
}

// Identity is the transform of an untouched chart.
var Identity = Transform{K: 1}

// ApplyX maps a base range position to its zoomed position.
func (t Transform) ApplyX(x float64) float64 { return x*t.K + t.X }

// InvertX maps a zoomed range position back to the base range.
func (t Transform) InvertX(x float64) float64 { return (x - t.X) / t.K }

// RescaleX returns a copy of s whose domain shows what the transform shows.
// s itself is not modified.
func (t Transform) RescaleX(s *Linear) *Linear {
	r0, r1 := s.Range()
	out := s.Copy()
	out.SetDomain(s.Invert(t.InvertX(r0)), s.Invert(t.InvertX(r1)))
	return out
}

// ScaleTo returns a transform with factor k that keeps the point at
// position p fixed on screen.
func (t Transform) ScaleTo(k, p float64) Transform {
	base := t.InvertX(p)
	return Transform{K: k, X: p - base*k, Y: t.Y}
}

// TranslateBy shifts the transform by dx, dy range units.
func (t Transform) TranslateBy(dx, dy float64) Transform {
	return Transform{K: t.K, X: t.X + dx, Y: t.Y + dy}
}
