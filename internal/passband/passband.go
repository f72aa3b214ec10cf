package passband

import (
	"errors"
	"math"

	"github.com/avendal/sedlab/internal/grid"
	"github.com/avendal/sedlab/internal/sed"
	"github.com/avendal/sedlab/internal/units"
)

// Detector is the response type of the instrument behind a filter.
// Photon counters weight the integrand by λ, energy integrators do not.
type Detector int

const (
	Photon Detector = iota
	Energy
)

func (d Detector) String() string {
	if d == Energy {
		return "energy"
	}
	return "photon"
}

// System is a magnitude zeropoint convention.
type System string

const (
	AB   System = "ab"
	ST   System = "st"
	Vega System = "vega"
)

// Domain errors for passband operations.
var (
	// ErrBadCurve indicates a malformed throughput curve.
	ErrBadCurve = errors.New("passband: invalid throughput curve")

	// ErrUnknownBand indicates a name with no built-in curve.
	ErrUnknownBand = errors.New("passband: unknown band")

	// ErrBadSystem indicates an unrecognized magnitude system.
	ErrBadSystem = errors.New("passband: unknown magnitude system")
)

// Passband is a filter transmission curve on an ascending wavelength
// grid in Å, with dimensionless throughput.
type Passband struct {
	Name       string
	Wave       []float64
	Throughput []float64
	Detector   Detector
}

// New validates the curve and builds a passband.
func New(name string, wave, throughput []float64, det Detector) (*Passband, error) {
	if len(wave) < 2 || len(wave) != len(throughput) {
		return nil, ErrBadCurve
	}
	if !grid.IsAscending(wave) || wave[0] <= 0 {
		return nil, ErrBadCurve
	}
	positive := false
	for _, t := range throughput {
		if t < 0 || math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, ErrBadCurve
		}
		if t > 0 {
			positive = true
		}
	}
	if !positive {
		return nil, ErrBadCurve
	}
	return &Passband{Name: name, Wave: wave, Throughput: throughput, Detector: det}, nil
}

// WaveRange returns the first and last wavelength of the curve.
func (p *Passband) WaveRange() (float64, float64) {
	return p.Wave[0], p.Wave[len(p.Wave)-1]
}

// PivotWave is the detector-weighted pivot wavelength, the reference
// point for converting the AB f_ν standard into f_λ. With the matching
// detector weighting a flat-f_ν source has AB magnitude zero exactly.
func (p *Passband) PivotWave() float64 {
	n := len(p.Wave)
	num := make([]float64, n)
	den := make([]float64, n)
	for i, w := range p.Wave {
		t := p.Throughput[i]
		if p.Detector == Photon {
			num[i] = t * w
			den[i] = t / w
		} else {
			num[i] = t
			den[i] = t / (w * w)
		}
	}
	a, err := grid.Trapezoid(p.Wave, num)
	if err != nil {
		return math.NaN()
	}
	b, err := grid.Trapezoid(p.Wave, den)
	if err != nil || b == 0 {
		return math.NaN()
	}
	return math.Sqrt(a / b)
}

// EffectiveWidth is the curve integral divided by its peak, the width
// of the equivalent rectangular filter.
func (p *Passband) EffectiveWidth() float64 {
	area, err := grid.Trapezoid(p.Wave, p.Throughput)
	if err != nil {
		return math.NaN()
	}
	return area / p.peak()
}

// Fwhm is the distance between the outermost half-maximum crossings.
func (p *Passband) Fwhm() float64 {
	half := p.peak() / 2
	var lo, hi float64
	for i := 1; i < len(p.Wave); i++ {
		if p.Throughput[i-1] < half && p.Throughput[i] >= half {
			lo = crossing(p.Wave[i-1], p.Wave[i], p.Throughput[i-1], p.Throughput[i], half)
			break
		}
	}
	for i := len(p.Wave) - 1; i > 0; i-- {
		if p.Throughput[i] < half && p.Throughput[i-1] >= half {
			hi = crossing(p.Wave[i-1], p.Wave[i], p.Throughput[i-1], p.Throughput[i], half)
			break
		}
	}
	if lo == 0 || hi == 0 {
		return math.NaN()
	}
	return hi - lo
}

func (p *Passband) peak() float64 {
	m := p.Throughput[0]
	for _, t := range p.Throughput[1:] {
		if t > m {
			m = t
		}
	}
	return m
}

func crossing(x0, x1, y0, y1, y float64) float64 {
	return x0 + (x1-x0)*(y-y0)/(y1-y0)
}

// Flux integrates a spectrum through the band into a band-averaged
// f_λ. The spectrum must cover the whole curve, else sed.ErrCoverage.
func (p *Passband) Flux(spec *sed.Spectrum) (float64, error) {
	slo, shi := spec.WaveRange()
	plo, phi := p.WaveRange()
	if slo > plo || shi < phi {
		return 0, sed.ErrCoverage
	}

	resampled, err := spec.Resample(p.Wave)
	if err != nil {
		return 0, err
	}

	n := len(p.Wave)
	num := make([]float64, n)
	den := make([]float64, n)
	for i, w := range p.Wave {
		t := p.Throughput[i]
		if p.Detector == Photon {
			num[i] = resampled.Flux[i] * t * w
			den[i] = t * w
		} else {
			num[i] = resampled.Flux[i] * t
			den[i] = t
		}
	}
	a, err := grid.Trapezoid(p.Wave, num)
	if err != nil {
		return 0, err
	}
	b, err := grid.Trapezoid(p.Wave, den)
	if err != nil {
		return 0, err
	}
	if b == 0 {
		return 0, ErrBadCurve
	}
	return a / b, nil
}

// ZeroFlux is the band-averaged f_λ of the zero-magnitude reference of
// the given system.
func (p *Passband) ZeroFlux(system System) (float64, error) {
	switch system {
	case AB:
		lp := p.PivotWave()
		return units.ABReferenceFnu * units.LightSpeedAng / (lp * lp), nil
	case ST:
		return units.STReferenceFlam, nil
	case Vega:
		return p.Flux(VegaSpectrum())
	default:
		return 0, ErrBadSystem
	}
}

// Zeropoint returns -2.5 log10 of the system's zero flux, the constant
// subtracted from instrumental -2.5 log10(flux).
func (p *Passband) Zeropoint(system System) (float64, error) {
	zf, err := p.ZeroFlux(system)
	if err != nil {
		return 0, err
	}
	return -2.5 * math.Log10(zf), nil
}

// Mag is the magnitude of a spectrum through the band in the given
// system.
func (p *Passband) Mag(spec *sed.Spectrum, system System) (float64, error) {
	flux, err := p.Flux(spec)
	if err != nil {
		return 0, err
	}
	zp, err := p.Zeropoint(system)
	if err != nil {
		return 0, err
	}
	return units.FluxToMag(flux, zp), nil
}
