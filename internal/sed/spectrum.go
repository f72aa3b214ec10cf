package sed

import (
	"math"

	"github.com/avendal/sedlab/internal/grid"
	"github.com/avendal/sedlab/internal/units"
)

// Spectrum is a flux density sampled on a strictly ascending wavelength
// grid. Wave is Å, Flux erg s^-1 cm^-2 Å^-1.
type Spectrum struct {
	Wave []float64
	Flux []float64
}

// NewSpectrum validates the grid and wraps it without copying.
func NewSpectrum(wave, flux []float64) (*Spectrum, error) {
	if len(wave) == 0 || len(flux) == 0 {
		return nil, ErrEmptySpectrum
	}
	if len(wave) != len(flux) {
		return nil, ErrGridMismatch
	}
	if !grid.IsAscending(wave) {
		return nil, ErrWaveOrder
	}
	return &Spectrum{Wave: wave, Flux: flux}, nil
}

// Clone deep-copies the spectrum.
func (s *Spectrum) Clone() *Spectrum {
	c := &Spectrum{
		Wave: make([]float64, len(s.Wave)),
		Flux: make([]float64, len(s.Flux)),
	}
	copy(c.Wave, s.Wave)
	copy(c.Flux, s.Flux)
	return c
}

// IsValid reports whether every flux sample is finite.
func (s *Spectrum) IsValid() bool {
	for _, f := range s.Flux {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// WaveRange returns the first and last grid wavelengths.
func (s *Spectrum) WaveRange() (lo, hi float64) {
	if len(s.Wave) == 0 {
		return 0, 0
	}
	return s.Wave[0], s.Wave[len(s.Wave)-1]
}

// Scale multiplies the flux in place.
func (s *Spectrum) Scale(factor float64) {
	for i := range s.Flux {
		s.Flux[i] *= factor
	}
}

// MaxFlux returns the peak flux density.
func (s *Spectrum) MaxFlux() float64 {
	max := 0.0
	for _, f := range s.Flux {
		if f > max {
			max = f
		}
	}
	return max
}

// Resample interpolates the spectrum onto the target grid. Flux is zero
// where the target reaches beyond the spectrum's support.
func (s *Spectrum) Resample(target []float64) (*Spectrum, error) {
	if !grid.IsAscending(target) {
		return nil, ErrWaveOrder
	}
	flux, err := grid.ResampleLinear(s.Wave, s.Flux, target)
	if err != nil {
		return nil, err
	}
	wave := make([]float64, len(target))
	copy(wave, target)
	return &Spectrum{Wave: wave, Flux: flux}, nil
}

// Slice copies the samples with lo <= wave <= hi into a new spectrum.
// A window holding no samples returns ErrEmptySpectrum.
func (s *Spectrum) Slice(lo, hi float64) (*Spectrum, error) {
	i0 := 0
	for i0 < len(s.Wave) && s.Wave[i0] < lo {
		i0++
	}
	i1 := len(s.Wave)
	for i1 > i0 && s.Wave[i1-1] > hi {
		i1--
	}
	if i0 == i1 {
		return nil, ErrEmptySpectrum
	}
	wave := make([]float64, i1-i0)
	flux := make([]float64, i1-i0)
	copy(wave, s.Wave[i0:i1])
	copy(flux, s.Flux[i0:i1])
	return &Spectrum{Wave: wave, Flux: flux}, nil
}

// Bolometric integrates the flux over the grid, erg s^-1 cm^-2.
func (s *Spectrum) Bolometric() (float64, error) {
	return grid.Trapezoid(s.Wave, s.Flux)
}

// Attenuate applies an extinction law: flux is dimmed by
// 10^(-0.4 * av * AlAv(λ)). Av <= 0 returns an unmodified clone.
func (s *Spectrum) Attenuate(law Law, av, rv float64) (*Spectrum, error) {
	out := s.Clone()
	if law == nil || av <= 0 {
		return out, nil
	}
	alav, err := law.AlAv(s.Wave, rv)
	if err != nil {
		return nil, err
	}
	for i := range out.Flux {
		out.Flux[i] *= units.AttenuationFactor(av * alav[i])
	}
	return out, nil
}

// Accumulate adds src flux into dst in place. Both spectra must share
// the same grid.
func Accumulate(dst, src *Spectrum) error {
	if len(dst.Wave) != len(src.Wave) {
		return ErrGridMismatch
	}
	for i := range dst.Wave {
		if dst.Wave[i] != src.Wave[i] {
			return ErrGridMismatch
		}
	}
	for i := range dst.Flux {
		dst.Flux[i] += src.Flux[i]
	}
	return nil
}
