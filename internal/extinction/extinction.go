package extinction

import (
	"errors"

	"github.com/avendal/sedlab/internal/units"
)

// Domain errors for extinction curve evaluation.
var (
	// ErrBadRv indicates a nonpositive R(V).
	ErrBadRv = errors.New("extinction: R(V) must be positive")

	// ErrBadWave indicates a nonpositive wavelength.
	ErrBadWave = errors.New("extinction: wavelengths must be positive")
)

// evalCurve evaluates f, a curve in inverse microns, on a wavelength
// grid in Å, applying the package out-of-range convention: zero below
// xmin (redward of validity), the xmax value above it (blueward).
func evalCurve(wave []float64, xmin, xmax float64, f func(x float64) float64) ([]float64, error) {
	out := make([]float64, len(wave))
	for i, w := range wave {
		if w <= 0 {
			return nil, ErrBadWave
		}
		x := units.InverseMicron(w)
		switch {
		case x < xmin:
			out[i] = 0
		case x > xmax:
			out[i] = f(xmax)
		default:
			out[i] = f(x)
		}
	}
	return out, nil
}
