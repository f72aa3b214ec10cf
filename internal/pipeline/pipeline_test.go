package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/avendal/sedlab/internal/extinction"
	"github.com/avendal/sedlab/internal/passband"
	"github.com/avendal/sedlab/internal/sed"
	"github.com/avendal/sedlab/internal/stellib"
)

// capLibrary wraps Planck with an artificial temperature ceiling so
// coverage handling can be exercised.
type capLibrary struct {
	maxTeff float64
}

func (c capLibrary) Name() string                  { return "cap" }
func (c capLibrary) WaveRange() (float64, float64) { return stellib.NewPlanck().WaveRange() }

func (c capLibrary) Covers(star sed.Star) bool {
	return star.Validate() == nil && star.Teff <= c.maxTeff
}

func (c capLibrary) Spectrum(star sed.Star) (*sed.Spectrum, error) {
	if !c.Covers(star) {
		return nil, sed.ErrOutOfGrid
	}
	return stellib.NewPlanck().Spectrum(star)
}

func testBands(t *testing.T, names ...string) []*passband.Passband {
	t.Helper()
	bands := make([]*passband.Passband, len(names))
	for i, name := range names {
		b, err := passband.Builtin(name)
		if err != nil {
			t.Fatalf("band %s: %v", name, err)
		}
		bands[i] = b
	}
	return bands
}

func testStars() []sed.Star {
	return []sed.Star{
		{Teff: 5772, LogG: 4.44, LogL: 0, Mass: 1.0},
		{Teff: 9000, LogG: 4.2, LogL: 1.3, Mass: 2.2},
		{Teff: 4200, LogG: 1.8, LogL: 2.8, Mass: 1.1},
	}
}

func newTestPipeline(t *testing.T, cfg Config, law sed.Law) *Pipeline {
	t.Helper()
	p, err := New(stellib.NewPlanck(), law, testBands(t, cfg.Bands...), cfg)
	if err != nil {
		t.Fatalf("pipeline setup failed: %v", err)
	}
	return p
}

func TestRunBasic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bands = []string{"B", "V"}
	p := newTestPipeline(t, cfg, extinction.NewCCM89())

	res, err := p.Run(context.Background(), testStars())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(res.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(res.Rows))
	}
	if res.StarsSkipped != 0 || len(res.Errors) != 0 {
		t.Errorf("unexpected skips: %d, errors: %v", res.StarsSkipped, res.Errors)
	}
	if len(res.Zeropoints) != 2 {
		t.Fatalf("expected 2 zeropoint entries, got %d", len(res.Zeropoints))
	}

	for _, row := range res.Rows {
		for _, b := range row.Bands {
			if b.Attenuated >= b.Intrinsic {
				t.Errorf("star %g band %s: attenuated %g not below intrinsic %g",
					row.Star.Teff, b.Band, b.Attenuated, b.Intrinsic)
			}
			for _, m := range []float64{b.MagAB, b.MagVega, b.MagST} {
				if math.IsNaN(m) || math.IsInf(m, 0) {
					t.Errorf("star %g band %s: non-finite magnitude", row.Star.Teff, b.Band)
				}
			}
		}
		if row.BoloAttenuated >= row.BoloIntrinsic {
			t.Errorf("bolometric flux not dimmed: %g vs %g", row.BoloAttenuated, row.BoloIntrinsic)
		}
	}

	if res.Intrinsic == nil || res.Attenuated == nil {
		t.Fatal("missing composite spectra")
	}
}

func TestRunNoDust(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bands = []string{"V"}
	cfg.Av = 0
	p := newTestPipeline(t, cfg, nil)
	p.AddMetric(NewDimming())

	res, err := p.Run(context.Background(), testStars())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, row := range res.Rows {
		b := row.Bands[0]
		if b.Attenuated != b.Intrinsic {
			t.Errorf("Av=0 should leave flux untouched: %g vs %g", b.Attenuated, b.Intrinsic)
		}
	}
	if got := res.Stats["dimming"]; math.Abs(got-1.0) > 1e-12 {
		t.Errorf("dimming %g, want 1", got)
	}
}

func TestRunSkipsUncoveredStars(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bands = []string{"V"}
	p, err := New(capLibrary{maxTeff: 6000}, extinction.NewCCM89(), testBands(t, "V"), cfg)
	if err != nil {
		t.Fatal(err)
	}
	p.AddMetric(NewCoverage())

	stars := []sed.Star{
		{Teff: 5000, LogL: 0},
		{Teff: 9000, LogL: 1}, // above the cap
	}
	res, err := p.Run(context.Background(), stars)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(res.Rows) != 1 || res.StarsSkipped != 1 {
		t.Fatalf("expected 1 row and 1 skip, got %d rows, %d skipped", len(res.Rows), res.StarsSkipped)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(res.Errors))
	}
	if !errors.Is(res.Errors[0], sed.ErrOutOfGrid) {
		t.Errorf("expected ErrOutOfGrid, got %v", res.Errors[0])
	}
	var serr *sed.StarError
	if !errors.As(res.Errors[0], &serr) || serr.Index != 1 {
		t.Errorf("expected StarError for index 1, got %v", res.Errors[0])
	}
	if got := res.Stats["coverage"]; math.Abs(got-0.5) > 1e-12 {
		t.Errorf("coverage %g, want 0.5", got)
	}
}

// rowRecorder keeps the Teff of every row it is handed.
type rowRecorder struct {
	teffs []float64
}

func (r *rowRecorder) OnStar(row sed.Row) { r.teffs = append(r.teffs, row.Star.Teff) }

func TestObserverSeesRowsInOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bands = []string{"V"}
	cfg.Workers = 4
	p, err := New(capLibrary{maxTeff: 6000}, nil, testBands(t, "V"), cfg)
	if err != nil {
		t.Fatal(err)
	}
	rec := &rowRecorder{}
	p.AddObserver(rec)

	stars := []sed.Star{
		{Teff: 5000, LogL: 0},
		{Teff: 9000, LogL: 1}, // above the cap, not delivered
		{Teff: 4200, LogL: 0.5},
		{Teff: 5700, LogL: 0},
	}
	if _, err := p.Run(context.Background(), stars); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := []float64{5000, 4200, 5700}
	if len(rec.teffs) != len(want) {
		t.Fatalf("observer saw %d rows, want %d", len(rec.teffs), len(want))
	}
	for i, teff := range want {
		if rec.teffs[i] != teff {
			t.Errorf("row %d: observer saw Teff %g, want %g", i, rec.teffs[i], teff)
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bands = []string{"B", "V", "I"}
	cfg.Workers = 4

	run := func() *Result {
		p := newTestPipeline(t, cfg, extinction.NewFitzpatrick99())
		res, err := p.Run(context.Background(), testStars())
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		return res
	}

	a, b := run(), run()
	for i := range a.Rows {
		for j := range a.Rows[i].Bands {
			if a.Rows[i].Bands[j].MagAB != b.Rows[i].Bands[j].MagAB {
				t.Fatalf("row %d band %d differs between runs", i, j)
			}
		}
	}
	for i := range a.Intrinsic.Flux {
		if a.Intrinsic.Flux[i] != b.Intrinsic.Flux[i] {
			t.Fatal("composite spectrum differs between runs")
		}
	}
}

func TestRunCanceled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bands = []string{"V"}
	p := newTestPipeline(t, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, testStars())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunDistanceDimming(t *testing.T) {
	star := []sed.Star{{Teff: 5772, LogG: 4.44, LogL: 0}}

	mag := func(dpc float64) float64 {
		cfg := DefaultConfig()
		cfg.Bands = []string{"V"}
		cfg.Av = 0
		cfg.DistancePc = dpc
		p := newTestPipeline(t, cfg, nil)
		res, err := p.Run(context.Background(), star)
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		return res.Rows[0].Bands[0].MagAB
	}

	if diff := mag(100) - mag(10); math.Abs(diff-5.0) > 1e-9 {
		t.Errorf("10x distance moved magnitude by %g, want 5", diff)
	}
}

func TestRunCompositeAddsUp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bands = []string{"V"}
	cfg.Av = 0

	star := sed.Star{Teff: 5772, LogG: 4.44, LogL: 0}

	p := newTestPipeline(t, cfg, nil)
	one, err := p.Run(context.Background(), []sed.Star{star})
	if err != nil {
		t.Fatal(err)
	}
	p = newTestPipeline(t, cfg, nil)
	two, err := p.Run(context.Background(), []sed.Star{star, star})
	if err != nil {
		t.Fatal(err)
	}

	mid := len(one.Intrinsic.Flux) / 2
	if math.Abs(two.Intrinsic.Flux[mid]-2*one.Intrinsic.Flux[mid]) > 1e-12*one.Intrinsic.Flux[mid] {
		t.Error("two identical stars should double the composite flux")
	}
}

func TestColorExcessTracksLaw(t *testing.T) {
	// For CCM89 at R(V)=3.1, E(B-V) recovers roughly A(V)/3.1.
	cfg := DefaultConfig()
	cfg.Bands = []string{"B", "V"}
	cfg.Av = 1.0
	p := newTestPipeline(t, cfg, extinction.NewCCM89())
	p.AddMetric(NewColorExcess("B", "V"))

	res, err := p.Run(context.Background(), testStars())
	if err != nil {
		t.Fatal(err)
	}
	ebv := res.Stats["color_excess"]
	if ebv < 0.25 || ebv > 0.40 {
		t.Errorf("E(B-V) = %g, want near 1/3.1", ebv)
	}
}

func TestZeropointsTable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bands = []string{"V"}
	p := newTestPipeline(t, cfg, nil)

	zps, err := p.Zeropoints()
	if err != nil {
		t.Fatal(err)
	}
	zp := zps[0]
	if zp.Band != "V" || zp.Detector != "energy" {
		t.Errorf("unexpected band info: %+v", zp)
	}
	if zp.Pivot < 5350 || zp.Pivot > 5650 {
		t.Errorf("V pivot %g out of range", zp.Pivot)
	}
	if math.Abs(zp.AB-21.1) > 0.05 || math.Abs(zp.ST-21.1) > 0.05 {
		t.Errorf("V zeropoints AB=%g ST=%g, want ~21.1", zp.AB, zp.ST)
	}
}

func TestNewValidation(t *testing.T) {
	bands := testBands(t, "V")
	lib := stellib.NewPlanck()

	bad := []Config{
		{GridLo: 0, GridHi: 100, GridN: 10, Bands: []string{"V"}},
		{GridLo: 1000, GridHi: 500, GridN: 10, Bands: []string{"V"}},
		{GridLo: 1000, GridHi: 30000, GridN: 1, Bands: []string{"V"}},
		{GridLo: 1000, GridHi: 30000, GridN: 100, Av: -1, Bands: []string{"V"}},
		{GridLo: 1000, GridHi: 30000, GridN: 100, DistancePc: -5, Bands: []string{"V"}},
	}
	for i, cfg := range bad {
		if _, err := New(lib, nil, bands, cfg); err == nil {
			t.Errorf("config %d: expected error", i)
		}
	}

	if _, err := New(nil, nil, bands, DefaultConfig()); err == nil {
		t.Error("nil library: expected error")
	}
	if _, err := New(lib, nil, nil, DefaultConfig()); err == nil {
		t.Error("no bands: expected error")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	if _, err := r.GetLibrary("planck"); err != nil {
		t.Errorf("planck lookup failed: %v", err)
	}
	if _, err := r.GetLibrary("missing"); err == nil {
		t.Error("expected error for unknown library")
	}

	for _, name := range []string{"ccm89", "odonnell94", "calzetti00", "f99", "smc"} {
		law, err := r.GetLaw(name)
		if err != nil || law == nil {
			t.Errorf("law %s lookup failed: %v", name, err)
		}
	}
	if law, err := r.GetLaw("none"); err != nil || law != nil {
		t.Errorf("none should resolve to nil law, got %v, %v", law, err)
	}
	if _, err := r.GetLaw("missing"); err == nil {
		t.Error("expected error for unknown law")
	}

	laws := r.ListLaws()
	if len(laws) != 5 {
		t.Errorf("expected 5 laws, got %v", laws)
	}

	if got := len(r.DefaultMetrics()); got != 3 {
		t.Errorf("expected 3 default metrics, got %d", got)
	}
}

func TestRvDefaultApplied(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bands = []string{"V"}
	cfg.Rv = 0
	p := newTestPipeline(t, cfg, extinction.NewCalzetti00())

	if got := p.Config().Rv; got != 4.05 {
		t.Errorf("Rv defaulted to %g, want 4.05", got)
	}
}
