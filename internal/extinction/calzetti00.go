package extinction

import "math"

// Calzetti00 validity in inverse microns (0.12 to 2.2 µm).
const (
	calzettiXMin = 1.0 / 2.2
	calzettiXMax = 1.0 / 0.12
)

// Calzetti00 is the Calzetti et al. (2000) attenuation law for
// starburst galaxies. It is defined through k(λ) = A(λ)/E(B-V) with a
// default R(V) of 4.05; A(λ)/A(V) = k(λ)/Rv.
type Calzetti00 struct{}

func NewCalzetti00() *Calzetti00 { return &Calzetti00{} }

func (c *Calzetti00) Name() string       { return "calzetti00" }
func (c *Calzetti00) RvDefault() float64 { return 4.05 }

func (c *Calzetti00) WaveRange() (float64, float64) {
	return 1e4 / calzettiXMax, 1e4 / calzettiXMin
}

func (c *Calzetti00) AlAv(wave []float64, rv float64) ([]float64, error) {
	if rv <= 0 || math.IsNaN(rv) {
		return nil, ErrBadRv
	}
	return evalCurve(wave, calzettiXMin, calzettiXMax, func(x float64) float64 {
		// The published fits are in microns; the break sits at 0.63 µm.
		var k float64
		if x > 1.0/0.63 {
			k = 2.659*(-2.156+x*(1.509+x*(-0.198+x*0.011))) + rv
		} else {
			k = 2.659*(-1.857+1.040*x) + rv
		}
		return k / rv
	})
}
