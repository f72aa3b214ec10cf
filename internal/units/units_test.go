package units

import (
	"math"
	"testing"
)

func TestWavelengthRoundTrips(t *testing.T) {
	tests := []struct {
		wave float64
	}{
		{1000.0},
		{5500.0},
		{21900.0},
	}

	for _, tt := range tests {
		if got := MicronToAngstrom(AngstromToMicron(tt.wave)); math.Abs(got-tt.wave) > 1e-9 {
			t.Errorf("micron round trip: got %f, want %f", got, tt.wave)
		}
		if got := NmToAngstrom(AngstromToNm(tt.wave)); math.Abs(got-tt.wave) > 1e-9 {
			t.Errorf("nm round trip: got %f, want %f", got, tt.wave)
		}
	}
}

func TestInverseMicron(t *testing.T) {
	// V band at 5500 Å sits at x ~ 1.818 µm^-1.
	x := InverseMicron(5500)
	if math.Abs(x-1.8181818) > 1e-4 {
		t.Errorf("got x=%f, want ~1.818", x)
	}
	if !math.IsNaN(InverseMicron(0)) {
		t.Error("expected NaN for zero wavelength")
	}
}

func TestFlamFnuRoundTrip(t *testing.T) {
	flam := 3.44e-9
	wave := 5556.0
	fnu := FlamToFnu(flam, wave)
	back := FnuToFlam(fnu, wave)
	if math.Abs(back-flam)/flam > 1e-12 {
		t.Errorf("round trip lost precision: got %e, want %e", back, flam)
	}
	// Vega near V is roughly 3500 Jy.
	jy := FnuToJansky(fnu)
	if jy < 3000 || jy > 4000 {
		t.Errorf("Vega-like flux should be a few thousand Jy, got %f", jy)
	}
}

func TestFluxToMagEdges(t *testing.T) {
	if !math.IsInf(FluxToMag(0, 21.1), 1) {
		t.Error("zero flux should give +Inf magnitude")
	}
	if !math.IsNaN(FluxToMag(-1e-9, 21.1)) {
		t.Error("negative flux should give NaN magnitude")
	}

	zp := -2.5 * math.Log10(3.631e-9)
	mag := FluxToMag(3.631e-9, zp)
	if math.Abs(mag) > 1e-10 {
		t.Errorf("flux equal to zeroflux should give mag 0, got %e", mag)
	}
}

func TestMagFluxRoundTrip(t *testing.T) {
	zp := 21.1
	for _, mag := range []float64{-5, 0, 4.83, 12.2} {
		got := FluxToMag(MagToFlux(mag, zp), zp)
		if math.Abs(got-mag) > 1e-10 {
			t.Errorf("mag round trip: got %f, want %f", got, mag)
		}
	}
}

func TestDistanceModulus(t *testing.T) {
	if dm := DistanceModulus(10); math.Abs(dm) > 1e-12 {
		t.Errorf("10 pc should give DM 0, got %f", dm)
	}
	if dm := DistanceModulus(100); math.Abs(dm-5) > 1e-12 {
		t.Errorf("100 pc should give DM 5, got %f", dm)
	}
	if !math.IsNaN(DistanceModulus(0)) {
		t.Error("expected NaN for zero distance")
	}
}

func TestLsunToFlux(t *testing.T) {
	// The sun seen from 10 pc: L_sun over 4 pi (10 pc)^2.
	d := 10 * Parsec
	want := SolarLum / (4 * math.Pi * d * d)
	if got := LsunToFlux(0, 10); math.Abs(got-want)/want > 1e-12 {
		t.Errorf("solar flux at 10 pc: got %e, want %e", got, want)
	}

	// Ten times the distance is a hundredth of the flux.
	ratio := LsunToFlux(0, 10) / LsunToFlux(0, 100)
	if math.Abs(ratio-100) > 1e-9 {
		t.Errorf("inverse square ratio: got %f, want 100", ratio)
	}

	if !math.IsNaN(LsunToFlux(0, 0)) {
		t.Error("expected NaN for zero distance")
	}
}

func TestAttenuationFactor(t *testing.T) {
	if f := AttenuationFactor(0); f != 1 {
		t.Errorf("zero attenuation should be identity, got %f", f)
	}
	// One magnitude dims to ~39.8%.
	if f := AttenuationFactor(1); math.Abs(f-0.398107) > 1e-5 {
		t.Errorf("1 mag should dim to ~0.398, got %f", f)
	}
}
