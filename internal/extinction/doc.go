// Package extinction provides interstellar dust attenuation curves.
//
// Each law implements the [sed.Law] interface, evaluating A(λ)/A(V) on
// a wavelength grid for a given total-to-selective ratio R(V):
//
//   - [CCM89]: Cardelli, Clayton & Mathis (1989) Milky Way law
//   - [ODonnell94]: CCM89 with the O'Donnell (1994) optical polynomials
//   - [Calzetti00]: starburst attenuation law for continuously
//     star-forming galaxies
//   - [Fitzpatrick99]: FM90 ultraviolet parametrization joined to a
//     cubic spline through optical and infrared anchors
//   - [Gordon03]: Small Magellanic Cloud bar average
//
// All laws share an out-of-range convention: the curve is zero beyond
// the red validity limit (dust is transparent in the far infrared) and
// holds its blue-limit value below the blue one, so attenuating a
// spectrum wider than a law's validity never extrapolates the fits.
package extinction
