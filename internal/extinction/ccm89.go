package extinction

import "math"

// CCM89 validity in inverse microns.
const (
	ccm89XMin = 0.3
	ccm89XMax = 10.0
)

// CCM89 is the Cardelli, Clayton & Mathis (1989) Milky Way extinction
// law, A(λ)/A(V) = a(x) + b(x)/Rv with piecewise polynomial a and b.
type CCM89 struct{}

func NewCCM89() *CCM89 { return &CCM89{} }

func (c *CCM89) Name() string       { return "ccm89" }
func (c *CCM89) RvDefault() float64 { return 3.1 }

func (c *CCM89) WaveRange() (float64, float64) {
	return 1e4 / ccm89XMax, 1e4 / ccm89XMin
}

func (c *CCM89) AlAv(wave []float64, rv float64) ([]float64, error) {
	if rv <= 0 || math.IsNaN(rv) {
		return nil, ErrBadRv
	}
	return evalCurve(wave, ccm89XMin, ccm89XMax, func(x float64) float64 {
		a, b := ccm89ab(x)
		return a + b/rv
	})
}

// ccm89ab evaluates the CCM89 piecewise coefficients at x in inverse
// microns. The optical segment uses the original CCM polynomials.
func ccm89ab(x float64) (a, b float64) {
	switch {
	case x < 1.1: // infrared
		t := math.Pow(x, 1.61)
		return 0.574 * t, -0.527 * t
	case x < 3.3: // optical and near infrared
		y := x - 1.82
		a = 1 + y*(0.17699+y*(-0.50447+y*(-0.02427+y*(0.72085+y*(0.01979+y*(-0.77530+y*0.32999))))))
		b = y * (1.41338 + y*(2.28305+y*(1.07233+y*(-5.38434+y*(-0.62251+y*(5.30260-y*2.09002))))))
		return a, b
	case x < 8.0: // ultraviolet
		var fa, fb float64
		if x >= 5.9 {
			d := x - 5.9
			fa = d * d * (-0.04473 - 0.009779*d)
			fb = d * d * (0.2130 + 0.1207*d)
		}
		a = 1.752 - 0.316*x - 0.104/((x-4.67)*(x-4.67)+0.341) + fa
		b = -3.090 + 1.825*x + 1.206/((x-4.62)*(x-4.62)+0.263) + fb
		return a, b
	default: // far ultraviolet
		y := x - 8.0
		a = -1.073 + y*(-0.628+y*(0.137-y*0.070))
		b = 13.670 + y*(4.257+y*(-0.420+y*0.374))
		return a, b
	}
}
