// Package passband provides photometric filter curves and synthetic
// photometry against them.
//
// A [Passband] couples a throughput curve with a detector type and
// integrates spectra into band-averaged fluxes:
//
//	photon detector:  <f> = ∫ f(λ) T(λ) λ dλ / ∫ T(λ) λ dλ
//	energy detector:  <f> = ∫ f(λ) T(λ) dλ   / ∫ T(λ) dλ
//
// Magnitudes follow mag = -2.5 log10(flux) - zeropoint with zeropoints
// in the AB, ST and Vega systems. The built-in curve set covers
// Johnson-Cousins UBVRI, SDSS ugriz and 2MASS JHKs; additional filters
// load from plain CSV directories.
package passband
