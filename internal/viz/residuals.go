package viz

import (
	"fmt"
	"math"
)

// ResidualStats returns the maximum absolute value and root mean square of a
// residual vector.
func ResidualStats(residuals []float64) (maxAbs, rms float64) {
	if len(residuals) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, r := range residuals {
		if a := math.Abs(r); a > maxAbs {
			maxAbs = a
		}
		sum += r * r
	}
	return maxAbs, math.Sqrt(sum / float64(len(residuals)))
}

// FormatResidual renders a residual value colored by magnitude: green within
// tol, amber within 100x tol, red beyond.
func FormatResidual(v, tol float64) string {
	s := fmt.Sprintf("% .4e", v)
	switch a := math.Abs(v); {
	case a <= tol:
		return Good.Render(s)
	case a <= 100*tol:
		return Warn.Render(s)
	default:
		return Bad.Render(s)
	}
}
