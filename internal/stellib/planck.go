package stellib

import (
	"math"

	"github.com/avendal/sedlab/internal/grid"
	"github.com/avendal/sedlab/internal/sed"
	"github.com/avendal/sedlab/internal/units"
)

const (
	planckLo = 300.0    // Å
	planckHi = 100000.0 // Å
	planckN  = 1500
)

// Planck is an analytic blackbody spectral library. The emergent
// surface flux is pi*B_lambda(Teff), diluted by (R/10pc)^2 with the
// radius following from LogL and Teff.
type Planck struct {
	wave []float64
}

// NewPlanck builds the library on its default log-spaced grid.
func NewPlanck() *Planck {
	return &Planck{wave: grid.Logspace(planckLo, planckHi, planckN)}
}

func (p *Planck) Name() string { return "planck" }

func (p *Planck) WaveRange() (float64, float64) {
	return p.wave[0], p.wave[len(p.wave)-1]
}

// Covers accepts any star with valid parameters; a blackbody exists at
// every temperature.
func (p *Planck) Covers(star sed.Star) bool {
	return star.Validate() == nil
}

// Spectrum evaluates the diluted blackbody on the library grid.
func (p *Planck) Spectrum(star sed.Star) (*sed.Spectrum, error) {
	if err := star.Validate(); err != nil {
		return nil, err
	}

	r := star.Radius()
	d := 10 * units.Parsec
	dilution := (r / d) * (r / d)

	flux := make([]float64, len(p.wave))
	for i, w := range p.wave {
		flux[i] = math.Pi * PlanckLambda(w, star.Teff) * dilution
	}

	wave := make([]float64, len(p.wave))
	copy(wave, p.wave)
	return sed.NewSpectrum(wave, flux)
}

// PlanckLambda is the Planck function B_lambda in erg s^-1 cm^-2 Å^-1
// sr^-1 for a wavelength in Å and temperature in K. Underflows to zero
// deep in the Wien tail rather than overflowing.
func PlanckLambda(wave, teff float64) float64 {
	if wave <= 0 || teff <= 0 {
		return 0
	}
	const (
		twoHC2  = 2 * units.PlanckH * units.LightSpeed * units.LightSpeed
		hcOverK = units.PlanckH * units.LightSpeed / units.Boltzmann
	)
	lcm := wave * units.CmPerAngstrom
	x := hcOverK / (lcm * teff)
	denom := math.Expm1(x)
	if math.IsInf(denom, 1) {
		return 0
	}
	l5 := lcm * lcm * lcm * lcm * lcm
	// The 1e-8 converts per-cm flux density to per-Å.
	return twoHC2 / (l5 * denom) * units.CmPerAngstrom
}
