package transition

import "time"

// Tween describes one staggered scale animation over the grid.
// Blocks in the same column share a start offset of Col*Each.
type Tween struct {
	Duration time.Duration
	Each     time.Duration
	Ease     Ease
}

var (
	CoverTween  = Tween{Duration: time.Second, Each: 100 * time.Millisecond, Ease: Power4InOut}
	RevealTween = Tween{Duration: 800 * time.Millisecond, Each: 120 * time.Millisecond, Ease: Power3InOut}
)

// Delay is the start offset of a block in column col.
func (tw Tween) Delay(col int) time.Duration {
	if col < 0 {
		col = 0
	}
	return time.Duration(col) * tw.Each
}

// Total is the time until the last column finishes.
func (tw Tween) Total(cols int) time.Duration {
	if cols <= 0 {
		return 0
	}
	return tw.Delay(cols-1) + tw.Duration
}

// Progress is the eased progress of a block in column col at elapsed.
func (tw Tween) Progress(col int, elapsed time.Duration) float64 {
	local := elapsed - tw.Delay(col)
	if local <= 0 {
		return 0
	}
	if tw.Duration <= 0 || local >= tw.Duration {
		return 1
	}
	return tw.Ease.At(float64(local) / float64(tw.Duration))
}
