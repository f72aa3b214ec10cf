// Package stellib provides stellar spectral libraries.
//
// Two implementations of [sed.Library] ship:
//
//   - [Planck]: analytic blackbody atmospheres. No data files, covers
//     any positive temperature, absolute flux scale from logL via
//     Stefan-Boltzmann. The out-of-the-box default.
//   - [Grid]: a directory of model spectra on a (Teff, logg) lattice
//     with a yaml manifest, bilinearly interpolated in (logTeff, logg)
//     and renormalized to the requested logL. The plug-in point for
//     real atmosphere grids, which are external data products.
//
// Libraries return flux at the 10 pc reference distance.
package stellib
