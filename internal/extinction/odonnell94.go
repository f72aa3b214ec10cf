package extinction

import "math"

// ODonnell94 is CCM89 with the optical segment replaced by the
// O'Donnell (1994) eighth-order polynomials. Infrared and ultraviolet
// segments are unchanged.
type ODonnell94 struct{}

func NewODonnell94() *ODonnell94 { return &ODonnell94{} }

func (o *ODonnell94) Name() string       { return "odonnell94" }
func (o *ODonnell94) RvDefault() float64 { return 3.1 }

func (o *ODonnell94) WaveRange() (float64, float64) {
	return 1e4 / ccm89XMax, 1e4 / ccm89XMin
}

func (o *ODonnell94) AlAv(wave []float64, rv float64) ([]float64, error) {
	if rv <= 0 || math.IsNaN(rv) {
		return nil, ErrBadRv
	}
	return evalCurve(wave, ccm89XMin, ccm89XMax, func(x float64) float64 {
		var a, b float64
		if x >= 1.1 && x < 3.3 {
			a, b = odonnell94ab(x)
		} else {
			a, b = ccm89ab(x)
		}
		return a + b/rv
	})
}

func odonnell94ab(x float64) (a, b float64) {
	y := x - 1.82
	a = 1 + y*(0.104+y*(-0.609+y*(0.701+y*(1.137+y*(-1.718+y*(-0.827+y*(1.647-y*0.505)))))))
	b = y * (1.952 + y*(2.908+y*(-3.989+y*(-7.985+y*(11.102+y*(5.491+y*(-10.805+y*3.347)))))))
	return a, b
}
