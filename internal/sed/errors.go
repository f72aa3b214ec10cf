package sed

import (
	"errors"
	"fmt"
)

// Domain errors for spectral operations.
var (
	// ErrEmptySpectrum indicates a spectrum with no samples.
	ErrEmptySpectrum = errors.New("sed: empty spectrum")

	// ErrWaveOrder indicates a wavelength grid that is not strictly ascending.
	ErrWaveOrder = errors.New("sed: wavelength grid must be strictly ascending")

	// ErrBadSpectrum indicates NaN or Inf flux values.
	ErrBadSpectrum = errors.New("sed: invalid spectrum (NaN or Inf flux)")

	// ErrGridMismatch indicates two spectra on different wavelength grids.
	ErrGridMismatch = errors.New("sed: spectra sampled on different grids")

	// ErrOutOfGrid indicates star parameters outside a library's coverage.
	ErrOutOfGrid = errors.New("sed: star parameters outside library grid")

	// ErrCoverage indicates a passband with no overlap with the spectrum.
	ErrCoverage = errors.New("sed: passband does not overlap spectrum")

	// ErrBadStar indicates unphysical star parameters.
	ErrBadStar = errors.New("sed: invalid star parameters")
)

// StarError wraps an error with the star that triggered it.
type StarError struct {
	Index   int
	Star    Star
	Wrapped error
}

func (e *StarError) Error() string {
	return fmt.Sprintf("star %d (Teff=%.0f logg=%.2f): %v", e.Index, e.Star.Teff, e.Star.LogG, e.Wrapped)
}

func (e *StarError) Unwrap() error {
	return e.Wrapped
}
