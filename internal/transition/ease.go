package transition

import "math"

// Ease maps linear progress in [0,1] to eased progress.
type Ease struct {
	Name string
	fn   func(float64) float64
}

// At evaluates the curve, clamping t to [0,1].
func (e Ease) At(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	}
	if e.fn == nil {
		return t
	}
	return e.fn(t)
}

var (
	Linear      = Ease{Name: "none", fn: func(t float64) float64 { return t }}
	Power3InOut = Ease{Name: "power3.inOut", fn: powerInOut(4)}
	Power4InOut = Ease{Name: "power4.inOut", fn: powerInOut(5)}
)

// powerInOut is the symmetric polynomial ease; power3 is quartic, power4 quintic.
func powerInOut(exp float64) func(float64) float64 {
	return func(t float64) float64 {
		if t < 0.5 {
			return math.Pow(2*t, exp) / 2
		}
		return 1 - math.Pow(2*(1-t), exp)/2
	}
}
