package sed

import (
	"math"

	"github.com/avendal/sedlab/internal/units"
)

// Star holds the parameters a spectral library is queried with. Teff is
// in Kelvin, LogG in log cm s^-2, LogL in log solar luminosities, Mass
// in solar masses and Z a metal mass fraction. Mass and Z are carried
// for bookkeeping; not every library uses them.
type Star struct {
	Teff  float64
	LogG  float64
	LogL  float64
	Mass  float64
	Z     float64
	Label string
}

// Validate reports ErrBadStar for unphysical parameters.
func (s Star) Validate() error {
	if s.Teff <= 0 || math.IsNaN(s.Teff) || math.IsInf(s.Teff, 0) {
		return ErrBadStar
	}
	if math.IsNaN(s.LogL) || math.IsInf(s.LogL, 0) {
		return ErrBadStar
	}
	if math.IsNaN(s.LogG) || math.IsInf(s.LogG, 0) {
		return ErrBadStar
	}
	return nil
}

// Radius returns the stellar radius in cm from LogL and Teff via
// L = 4 pi R^2 sigma Teff^4.
func (s Star) Radius() float64 {
	lum := units.SolarLum * math.Pow(10, s.LogL)
	t4 := s.Teff * s.Teff * s.Teff * s.Teff
	return math.Sqrt(lum / (4 * math.Pi * units.StefanBoltzmann * t4))
}

// Library is a stellar spectral library: it turns star parameters into
// a flux-calibrated spectrum at the 10 pc reference distance.
type Library interface {
	Name() string
	Spectrum(star Star) (*Spectrum, error)
	Covers(star Star) bool
	WaveRange() (lo, hi float64)
}

// Law is an interstellar extinction curve. AlAv evaluates A(λ)/A(V) on
// a wavelength grid in Å for a given R(V). Outside the law's validity
// the convention is: transparent (0) beyond the red limit, held at the
// blue-limit value below it.
type Law interface {
	Name() string
	RvDefault() float64
	WaveRange() (lo, hi float64)
	AlAv(wave []float64, rv float64) ([]float64, error)
}

// BandFlux is the per-passband outcome for one star. Fluxes are band
// averages in erg s^-1 cm^-2 Å^-1 at the configured distance; the three
// magnitudes are of the attenuated flux.
type BandFlux struct {
	Band       string
	Intrinsic  float64
	Attenuated float64
	MagAB      float64
	MagVega    float64
	MagST      float64
}

// Row is the pipeline result for a single star. BoloIntrinsic and
// BoloAttenuated are the bolometric fluxes before and after dust,
// integrated over the pipeline grid.
type Row struct {
	Star           Star
	Bands          []BandFlux
	BoloIntrinsic  float64
	BoloAttenuated float64
}

// Mag returns the Vega magnitude for the named band, or NaN when the
// row has no such band.
func (r Row) Mag(band string) float64 {
	for _, b := range r.Bands {
		if b.Band == band {
			return b.MagVega
		}
	}
	return math.NaN()
}

// Metric accumulates a scalar over pipeline rows. Observe sees every
// star, including skipped ones, which carry an empty Bands slice.
type Metric interface {
	Name() string
	Observe(row Row)
	Value() float64
	Reset()
}

// Observer receives each successfully completed row in star order.
type Observer interface {
	OnStar(row Row)
}
