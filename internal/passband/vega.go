package passband

import (
	"github.com/avendal/sedlab/internal/grid"
	"github.com/avendal/sedlab/internal/sed"
	"github.com/avendal/sedlab/internal/stellib"
)

// Vega reference: a 9602 K blackbody pinned to the measured monochromatic
// flux at 5556 Å. Good to a few percent across the optical, which is the
// point of a demo-grade reference; swap in a calibration spectrum via a
// custom zeropoint for serious work.
const (
	vegaTeff    = 9602.0
	vegaPinWave = 5556.0
	vegaPinFlux = 3.44e-9 // erg s^-1 cm^-2 Å^-1
)

// VegaSpectrum returns the analytic zero-magnitude reference spectrum.
// The grid spans 912 Å to 30 µm so every built-in band is covered.
func VegaSpectrum() *sed.Spectrum {
	wave := grid.Logspace(912, 300000, 3000)
	scale := vegaPinFlux / stellib.PlanckLambda(vegaPinWave, vegaTeff)

	flux := make([]float64, len(wave))
	for i, w := range wave {
		flux[i] = scale * stellib.PlanckLambda(w, vegaTeff)
	}
	return &sed.Spectrum{Wave: wave, Flux: flux}
}
