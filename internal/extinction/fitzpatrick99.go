package extinction

import (
	"math"

	"gonum.org/v1/gonum/interp"
)

// Fitzpatrick99 validity in inverse microns (1000 Å to 3.3 µm).
const (
	f99XMin = 1.0 / 3.3
	f99XMax = 10.0
	f99XUV  = 1e4 / 2700 // blue of this the FM90 form applies directly
)

// FM90 shape parameters held fixed in Fitzpatrick (1999); c1 and c2
// follow from R(V).
const (
	f99X0    = 4.596
	f99Gamma = 0.99
	f99C3    = 3.23
	f99C4    = 0.41
)

// Fitzpatrick99 is the Fitzpatrick (1999) Milky Way law: the FM90
// parametrization in the ultraviolet joined to a natural cubic spline
// through R(V)-dependent optical and infrared anchors.
type Fitzpatrick99 struct{}

func NewFitzpatrick99() *Fitzpatrick99 { return &Fitzpatrick99{} }

func (f *Fitzpatrick99) Name() string       { return "f99" }
func (f *Fitzpatrick99) RvDefault() float64 { return 3.1 }

func (f *Fitzpatrick99) WaveRange() (float64, float64) {
	return 1e4 / f99XMax, 1e4 / f99XMin
}

func (f *Fitzpatrick99) AlAv(wave []float64, rv float64) ([]float64, error) {
	if rv <= 0 || math.IsNaN(rv) {
		return nil, ErrBadRv
	}

	uv := f99UV(rv)

	// Spline anchors in A(λ)/E(B-V); the two bluest come from the UV
	// form so the pieces join smoothly.
	xs := []float64{0, 1e4 / 26500, 1e4 / 12200, 1e4 / 6000, 1e4 / 5470, 1e4 / 4670, 1e4 / 4110, 1e4 / 2700, 1e4 / 2600}
	ys := []float64{
		0,
		0.26469 * rv / 3.1,
		0.82925 * rv / 3.1,
		-0.422809 + rv*(1.00270+rv*2.13572e-4),
		-0.0513540 + rv*(1.00216-rv*7.35778e-5),
		0.700127 + rv*(1.00184-rv*3.32598e-5),
		1.19456 + rv*(1.01707+rv*(-5.46959e-3+rv*(7.97809e-4-rv*4.45636e-5))),
		uv(1e4 / 2700),
		uv(1e4 / 2600),
	}

	var spline interp.NaturalCubic
	if err := spline.Fit(xs, ys); err != nil {
		return nil, err
	}

	return evalCurve(wave, f99XMin, f99XMax, func(x float64) float64 {
		if x >= f99XUV {
			return uv(x) / rv
		}
		return spline.Predict(x) / rv
	})
}

// f99UV returns A(λ)/E(B-V) in the FM90 form for the given R(V).
func f99UV(rv float64) func(x float64) float64 {
	c2 := -0.824 + 4.717/rv
	c1 := 2.030 - 3.007*c2
	return func(x float64) float64 {
		x2 := x * x
		drude := x2 / ((x2-f99X0*f99X0)*(x2-f99X0*f99X0) + x2*f99Gamma*f99Gamma)
		k := c1 + c2*x + f99C3*drude
		if x > 5.9 {
			d := x - 5.9
			k += f99C4 * (0.5392*d*d + 0.05644*d*d*d)
		}
		return k + rv
	}
}
