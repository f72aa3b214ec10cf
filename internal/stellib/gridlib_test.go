package stellib

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/avendal/sedlab/internal/sed"
	"github.com/avendal/sedlab/internal/units"
)

// writeMiniGrid lays out a 2x2 lattice. The two hot nodes carry a
// tilted spectrum so interpolation in Teff is visible in the flux
// shape; normalization erases the overall scale.
func writeMiniGrid(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	manifest := `name: minigrid
nodes:
  - {teff: 5000, logg: 4.0, file: t5000g40.csv}
  - {teff: 6000, logg: 4.0, file: t6000g40.csv}
  - {teff: 5000, logg: 5.0, file: t5000g50.csv}
  - {teff: 6000, logg: 5.0, file: t6000g50.csv}
`
	files := map[string]string{
		"manifest.yaml": manifest,
		"t5000g40.csv":  "wave,flux\n4000,1\n5000,1\n6000,1\n7000,1\n",
		"t6000g40.csv":  "wave,flux\n4000,3\n5000,1\n6000,1\n7000,1\n",
		"t5000g50.csv":  "wave,flux\n4000,1\n5000,1\n6000,1\n7000,1\n",
		"t6000g50.csv":  "wave,flux\n4000,3\n5000,1\n6000,1\n7000,1\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadGrid(t *testing.T) {
	g, err := LoadGrid(writeMiniGrid(t))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if g.Name() != "minigrid" {
		t.Errorf("expected name minigrid, got %s", g.Name())
	}
	lo, hi := g.WaveRange()
	if lo != 4000 || hi != 7000 {
		t.Errorf("wave range [%g, %g], want [4000, 7000]", lo, hi)
	}
}

func TestLoadGridMissingManifest(t *testing.T) {
	if _, err := LoadGrid(t.TempDir()); err == nil {
		t.Error("expected error for missing manifest")
	}
}

func TestGridCovers(t *testing.T) {
	g, err := LoadGrid(writeMiniGrid(t))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	tests := []struct {
		name string
		star sed.Star
		want bool
	}{
		{"interior", sed.Star{Teff: 5500, LogG: 4.5, LogL: 0}, true},
		{"exact node", sed.Star{Teff: 5000, LogG: 4.0, LogL: 0}, true},
		{"too cool", sed.Star{Teff: 4000, LogG: 4.5, LogL: 0}, false},
		{"too hot", sed.Star{Teff: 7000, LogG: 4.5, LogL: 0}, false},
		{"logg low", sed.Star{Teff: 5500, LogG: 3.0, LogL: 0}, false},
		{"invalid", sed.Star{Teff: -1, LogG: 4.5, LogL: 0}, false},
	}
	for _, tt := range tests {
		if got := g.Covers(tt.star); got != tt.want {
			t.Errorf("%s: Covers = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestGridSpectrumAtNode(t *testing.T) {
	g, err := LoadGrid(writeMiniGrid(t))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	// The cool node is flat, so the normalized spectrum stays flat.
	spec, err := g.Spectrum(sed.Star{Teff: 5000, LogG: 4.0, LogL: 0})
	if err != nil {
		t.Fatalf("spectrum failed: %v", err)
	}
	for i := 1; i < len(spec.Flux); i++ {
		if math.Abs(spec.Flux[i]-spec.Flux[0]) > 1e-12*spec.Flux[0] {
			t.Fatalf("expected flat spectrum at flat node, got %v", spec.Flux)
		}
	}
}

func TestGridSpectrumInterpolates(t *testing.T) {
	g, err := LoadGrid(writeMiniGrid(t))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	// Halfway in logTeff between 5000 and 6000 the blue-to-flat flux
	// ratio mixes the node shapes 1:1, giving (1+3)/2 = 2.
	teff := math.Sqrt(5000.0 * 6000.0)
	spec, err := g.Spectrum(sed.Star{Teff: teff, LogG: 4.5, LogL: 0})
	if err != nil {
		t.Fatalf("spectrum failed: %v", err)
	}

	ratio := spec.Flux[0] / spec.Flux[1]
	if math.Abs(ratio-2.0) > 1e-9 {
		t.Errorf("blue-to-flat ratio %g, want 2.0", ratio)
	}
}

func TestGridSpectrumNormalization(t *testing.T) {
	g, err := LoadGrid(writeMiniGrid(t))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	star := sed.Star{Teff: 5500, LogG: 4.5, LogL: 1.5}
	spec, err := g.Spectrum(star)
	if err != nil {
		t.Fatalf("spectrum failed: %v", err)
	}

	got, err := spec.Bolometric()
	if err != nil {
		t.Fatalf("bolometric failed: %v", err)
	}

	d := 10 * units.Parsec
	want := units.SolarLum * math.Pow(10, star.LogL) / (4 * math.Pi * d * d)
	if math.Abs(got-want)/want > 1e-9 {
		t.Errorf("bolometric flux %g, want %g", got, want)
	}
}

func TestGridSpectrumOutOfGrid(t *testing.T) {
	g, err := LoadGrid(writeMiniGrid(t))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	_, err = g.Spectrum(sed.Star{Teff: 9000, LogG: 4.5, LogL: 0})
	if err == nil {
		t.Fatal("expected error outside the lattice")
	}
}

func TestGridMissingCorner(t *testing.T) {
	dir := t.TempDir()
	manifest := `name: holey
nodes:
  - {teff: 5000, logg: 4.0, file: a.csv}
  - {teff: 6000, logg: 4.0, file: a.csv}
  - {teff: 5000, logg: 5.0, file: a.csv}
`
	if err := os.WriteFile(filepath.Join(dir, "manifest.yaml"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.csv"), []byte("4000,1\n5000,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	g, err := LoadGrid(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if g.Covers(sed.Star{Teff: 5500, LogG: 4.5, LogL: 0}) {
		t.Error("expected missing corner to break coverage")
	}
}
