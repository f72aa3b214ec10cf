package pipeline

import (
	"math"
	"testing"

	"github.com/avendal/sedlab/internal/sed"
)

func rowWith(bands ...sed.BandFlux) sed.Row {
	return sed.Row{Star: sed.Star{Teff: 5000}, Bands: bands}
}

func TestColorExcessMetric(t *testing.T) {
	m := NewColorExcess("B", "V")
	if m.Name() != "color_excess" {
		t.Fatalf("name %q", m.Name())
	}

	// A(B)=1.3, A(V)=1.0 in magnitudes.
	dim := func(mag float64) float64 { return math.Pow(10, -0.4*mag) }
	m.Observe(rowWith(
		sed.BandFlux{Band: "B", Intrinsic: 1, Attenuated: dim(1.3)},
		sed.BandFlux{Band: "V", Intrinsic: 1, Attenuated: dim(1.0)},
	))
	if got := m.Value(); math.Abs(got-0.3) > 1e-12 {
		t.Errorf("E(B-V) = %g, want 0.3", got)
	}

	// Rows without both bands do not contribute.
	m.Observe(rowWith(sed.BandFlux{Band: "B", Intrinsic: 1, Attenuated: 0.5}))
	if got := m.Value(); math.Abs(got-0.3) > 1e-12 {
		t.Errorf("partial row shifted value to %g", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("value after reset should be 0")
	}
}

func TestCoverageMetric(t *testing.T) {
	m := NewCoverage()
	if m.Value() != 1.0 {
		t.Error("empty coverage should report 1")
	}

	m.Observe(rowWith(sed.BandFlux{Band: "V"}))
	m.Observe(sed.Row{Star: sed.Star{Teff: 99000}}) // skipped star, no bands
	if got := m.Value(); got != 0.5 {
		t.Errorf("coverage %g, want 0.5", got)
	}

	m.Reset()
	if m.Value() != 1.0 {
		t.Error("reset should restore the empty value")
	}
}

func TestDimmingMetric(t *testing.T) {
	m := NewDimming()
	if m.Value() != 1.0 {
		t.Error("empty dimming should report 1")
	}

	m.Observe(sed.Row{
		Star:           sed.Star{Teff: 5000},
		Bands:          []sed.BandFlux{{Band: "V"}},
		BoloIntrinsic:  2.0,
		BoloAttenuated: 1.0,
	})
	if got := m.Value(); got != 0.5 {
		t.Errorf("dimming %g, want 0.5", got)
	}
}
