// Package viz renders pipeline output in the terminal.
//
// The package has two halves:
//
//   - ascii plots for one-shot commands: composite SEDs, extinction
//     curves (single or overlaid), filter throughputs and
//     color-magnitude scatters
//   - [Live]: an interactive single-star explorer built on Bubble Tea
//
// # Key Bindings (live view)
//
//	tab   - select parameter (Teff, logg, logL, Av, Rv)
//	up    - increase selected parameter
//	down  - decrease selected parameter
//	l     - cycle extinction law
//	r     - reset to the starting star
//	q     - quit
package viz
