package units

import "math"

// Physical constants in cgs.
const (
	PlanckH         = 6.62607015e-27        // erg s
	LightSpeed      = 2.99792458e10         // cm/s
	LightSpeedAng   = 2.99792458e18         // Å/s
	Boltzmann       = 1.380649e-16          // erg/K
	StefanBoltzmann = 5.670374419e-5        // erg cm^-2 s^-1 K^-4
	SolarLum        = 3.828e33              // erg/s
	SolarRadius     = 6.957e10              // cm
	Parsec          = 3.0856775814913673e18 // cm
	CmPerAngstrom   = 1e-8
)

// ABReferenceFnu is the AB system reference flux density, 3631 Jy in
// erg s^-1 cm^-2 Hz^-1.
const ABReferenceFnu = 3.631e-20

// STReferenceFlam is the ST system reference flux density in
// erg s^-1 cm^-2 Å^-1.
const STReferenceFlam = 3.631e-9

// AngstromToMicron converts a wavelength from Å to µm.
func AngstromToMicron(wave float64) float64 { return wave * 1e-4 }

// MicronToAngstrom converts a wavelength from µm to Å.
func MicronToAngstrom(wave float64) float64 { return wave * 1e4 }

// AngstromToNm converts a wavelength from Å to nm.
func AngstromToNm(wave float64) float64 { return wave * 0.1 }

// NmToAngstrom converts a wavelength from nm to Å.
func NmToAngstrom(wave float64) float64 { return wave * 10 }

// InverseMicron returns x = 1/λ in µm^-1 for a wavelength in Å.
// Extinction curves are traditionally parameterized in x.
func InverseMicron(wave float64) float64 {
	if wave <= 0 {
		return math.NaN()
	}
	return 1e4 / wave
}

// FlamToFnu converts erg s^-1 cm^-2 Å^-1 to erg s^-1 cm^-2 Hz^-1 at wave Å.
func FlamToFnu(flam, wave float64) float64 {
	return flam * wave * wave / LightSpeedAng
}

// FnuToFlam converts erg s^-1 cm^-2 Hz^-1 to erg s^-1 cm^-2 Å^-1 at wave Å.
func FnuToFlam(fnu, wave float64) float64 {
	if wave == 0 {
		return math.NaN()
	}
	return fnu * LightSpeedAng / (wave * wave)
}

// FnuToJansky converts erg s^-1 cm^-2 Hz^-1 to Jy.
func FnuToJansky(fnu float64) float64 { return fnu * 1e23 }

// JanskyToFnu converts Jy to erg s^-1 cm^-2 Hz^-1.
func JanskyToFnu(jy float64) float64 { return jy * 1e-23 }

// JanskyToFlam converts Jy to erg s^-1 cm^-2 Å^-1 at wave Å.
func JanskyToFlam(jy, wave float64) float64 {
	return FnuToFlam(JanskyToFnu(jy), wave)
}

// FluxToMag converts a band flux to a magnitude against a zeropoint:
// mag = -2.5*log10(flux) - zeropoint.
// Returns +Inf for zero flux and NaN for negative flux.
func FluxToMag(flux, zeropoint float64) float64 {
	if flux < 0 {
		return math.NaN()
	}
	if flux == 0 {
		return math.Inf(1)
	}
	return -2.5*math.Log10(flux) - zeropoint
}

// MagToFlux inverts FluxToMag.
func MagToFlux(mag, zeropoint float64) float64 {
	return math.Pow(10, -0.4*(mag+zeropoint))
}

// DistanceModulus returns 5*log10(d/10pc) for a distance in parsec.
// Returns NaN for non-positive distances.
func DistanceModulus(pc float64) float64 {
	if pc <= 0 {
		return math.NaN()
	}
	return 5 * math.Log10(pc/10)
}

// LsunToFlux returns the bolometric flux L / (4 pi d^2) in
// erg s^-1 cm^-2 for a luminosity in log solar units at a distance in
// parsec. Returns NaN for non-positive distances.
func LsunToFlux(logL, pc float64) float64 {
	if pc <= 0 {
		return math.NaN()
	}
	d := pc * Parsec
	return SolarLum * math.Pow(10, logL) / (4 * math.Pi * d * d)
}

// AttenuationFactor returns the linear flux factor 10^(-0.4*a) for a
// magnitude of attenuation a.
func AttenuationFactor(a float64) float64 {
	return math.Pow(10, -0.4*a)
}
