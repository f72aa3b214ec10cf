// Package sed provides the core types for synthetic spectrophotometry.
//
// The package defines the fundamental value types and interfaces that the
// rest of the module composes:
//
//   - [Spectrum]: flux density sampled on an ascending Å grid
//   - [Star]: the stellar parameters a spectral library is queried with
//   - [Library]: interface for stellar spectral libraries
//   - [Law]: interface for interstellar extinction curves
//   - [Metric]: per-star pipeline observations
//
// # Example
//
//	lib := stellib.NewPlanck()
//	law := extinction.NewCCM89()
//	spec, _ := lib.Spectrum(sed.Star{Teff: 5777, LogG: 4.44, LogL: 0})
//	red, _ := spec.Attenuate(law, 1.0, 3.1)
//
// # Conventions
//
// Wavelengths are Å, strictly ascending. Flux densities are
// erg s^-1 cm^-2 Å^-1 at the 10 pc reference distance unless a pipeline
// applies a distance. Spectrum values are not safe for concurrent
// mutation; pipelines clone before fan-out.
package sed
