package extinction

import "gonum.org/v1/gonum/interp"

// Gordon03 sample points, x in inverse microns against A(λ)/A(V).
var (
	gordon03X = []float64{
		0.455, 0.606, 0.800, 1.235, 1.538, 1.818, 2.273, 2.703, 3.375,
		3.625, 3.875, 4.125, 4.375, 4.625, 4.875, 5.125, 5.375, 5.625,
		5.875, 6.125, 6.375, 6.625, 6.875, 7.125, 7.375, 7.625, 7.875,
		8.125, 8.375, 8.625,
	}
	gordon03Y = []float64{
		0.110, 0.169, 0.250, 0.567, 0.801, 1.000, 1.374, 1.672, 2.000,
		2.220, 2.428, 2.661, 2.947, 3.161, 3.293, 3.489, 3.637, 3.866,
		4.013, 4.243, 4.472, 4.776, 5.000, 5.272, 5.575, 5.795, 6.074,
		6.297, 6.436, 6.992,
	}
)

// Gordon03 is the Gordon et al. (2003) Small Magellanic Cloud bar
// average, a steep UV curve without the 2175 Å bump. The curve is a
// fixed sample average, so R(V) is pinned at 2.74 and the rv argument
// is ignored.
type Gordon03 struct{}

func NewGordon03() *Gordon03 { return &Gordon03{} }

func (g *Gordon03) Name() string       { return "smc" }
func (g *Gordon03) RvDefault() float64 { return 2.74 }

func (g *Gordon03) WaveRange() (float64, float64) {
	n := len(gordon03X)
	return 1e4 / gordon03X[n-1], 1e4 / gordon03X[0]
}

func (g *Gordon03) AlAv(wave []float64, _ float64) ([]float64, error) {
	var spline interp.NaturalCubic
	if err := spline.Fit(gordon03X, gordon03Y); err != nil {
		return nil, err
	}
	xmin, xmax := gordon03X[0], gordon03X[len(gordon03X)-1]
	return evalCurve(wave, xmin, xmax, spline.Predict)
}
