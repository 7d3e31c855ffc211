package sequence

import "fmt"

// Ease selects the curve applied to a transition's progress.
type Ease string

const (
	Linear Ease = "linear"
	Smooth Ease = "smooth"
	Cubic  Ease = "cubic"
)

// ParseEase accepts "", "linear", "smooth" and "cubic".
func ParseEase(s string) (Ease, error) {
	switch Ease(s) {
	case "", Linear:
		return Linear, nil
	case Smooth, Cubic:
		return Ease(s), nil
	}
	return Linear, fmt.Errorf("unknown ease %q", s)
}

// clamp01 clamps x in [0,1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// smootherstep (cubic-ish) for ease="cubic"
func smootherstep(x float64) float64 {
	// 6x^5 - 15x^4 + 10x^3
	return x * x * x * (x*(x*6-15) + 10)
}

// Apply maps progress x in [0,1] onto the curve. Every curve maps 0 to 0 and
// 1 to 1.
func (e Ease) Apply(x float64) float64 {
	x = clamp01(x)
	switch e {
	case Smooth:
		// classic smoothstep 3x^2 - 2x^3
		return x * x * (3 - 2*x)
	case Cubic:
		return smootherstep(x)
	default:
		return x
	}
}

// interpolate returns the value fraction of the way from a to b.
func interpolate(a, b, fraction float64) float64 {
	return a + (b-a)*fraction
}
