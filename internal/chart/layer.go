package chart

import (
	"time"

	"candleview/internal/bus"
	"candleview/internal/domain"
)

// Layer is one independently drawn set of marks. All layers share the
// Context and must stay in step under the same transform.
type Layer interface {
	// Update reconciles marks with the view state (enter/update/exit) and
	// animates changed values over the context's transition.
	Update(view domain.ViewState, c *Context)
	// Zoomed re-projects existing marks horizontally. It runs every gesture
	// frame and must not touch scale domains.
	Zoomed(ev bus.ZoomedEvent)
	// ZoomEnd settles vertical attributes after the price scale was refitted
	// to the candles in view.
	ZoomEnd(candles []domain.Candle, c *Context)
	// Draw paints the marks as of now.
	Draw(cv *Canvas, now time.Time)
}

// rebaser is implemented by layers whose mark sizes depend on the gesture
// scale. Rebase folds the settled scale factor k into their base size once
// the transform returns to identity.
type rebaser interface {
	Rebase(k float64)
}

// reconcile resizes a positional mark slice to n, calling enter for new
// indexes. Extra marks are dropped.
func reconcile[M any](marks []M, n int, enter func(i int) M) []M {
	if len(marks) > n {
		return marks[:n]
	}
	for i := len(marks); i < n; i++ {
		marks = append(marks, enter(i))
	}
	return marks
}
