package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/avendal/sedlab/internal/grid"
	"github.com/avendal/sedlab/internal/passband"
	"github.com/avendal/sedlab/internal/sed"
	"github.com/avendal/sedlab/internal/units"
)

// Config holds the knobs of a synthetic photometry run.
type Config struct {
	Library    string
	Law        string
	Av         float64
	Rv         float64 // 0 means the law's default
	DistancePc float64 // 0 means the 10 pc reference
	Bands      []string
	GridLo     float64
	GridHi     float64
	GridN      int
	Workers    int
}

// DefaultConfig covers the built-in optical and near-IR bands on a
// wide log grid.
func DefaultConfig() Config {
	return Config{
		Library:    "planck",
		Law:        "ccm89",
		Av:         1.0,
		DistancePc: 10,
		Bands:      []string{"U", "B", "V", "R", "I"},
		GridLo:     1000,
		GridHi:     30000,
		GridN:      1200,
	}
}

// BandInfo is the per-band calibration block of a run: pivot
// wavelength and the zeropoints of the three magnitude systems.
type BandInfo struct {
	Band     string
	Detector string
	Pivot    float64
	Width    float64
	AB       float64
	ST       float64
	Vega     float64
}

// Result collects everything a run produced. Rows keep star order;
// stars that failed are recorded in Errors and omitted from Rows.
type Result struct {
	Rows         []sed.Row
	Zeropoints   []BandInfo
	Intrinsic    *sed.Spectrum
	Attenuated   *sed.Spectrum
	Stats        map[string]float64
	Errors       []error
	StarsSkipped int
}

// Pipeline chains a spectral library, an extinction law and a set of
// passbands into per-star photometry.
type Pipeline struct {
	lib       sed.Library
	law       sed.Law
	bands     []*passband.Passband
	cfg       Config
	metrics   []sed.Metric
	observers []sed.Observer
}

// New validates the configuration and assembles a pipeline.
func New(lib sed.Library, law sed.Law, bands []*passband.Passband, cfg Config) (*Pipeline, error) {
	if lib == nil {
		return nil, fmt.Errorf("pipeline: no library")
	}
	if len(bands) == 0 {
		return nil, fmt.Errorf("pipeline: no passbands")
	}
	if cfg.GridN < 2 || cfg.GridLo <= 0 || cfg.GridHi <= cfg.GridLo {
		return nil, fmt.Errorf("pipeline: bad wavelength grid [%g, %g] n=%d", cfg.GridLo, cfg.GridHi, cfg.GridN)
	}
	if cfg.Av < 0 {
		return nil, fmt.Errorf("pipeline: negative A(V) %g", cfg.Av)
	}
	if cfg.DistancePc < 0 {
		return nil, fmt.Errorf("pipeline: negative distance %g", cfg.DistancePc)
	}
	if cfg.DistancePc == 0 {
		cfg.DistancePc = 10
	}
	if cfg.Rv == 0 && law != nil {
		cfg.Rv = law.RvDefault()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Pipeline{lib: lib, law: law, bands: bands, cfg: cfg}, nil
}

func (p *Pipeline) AddMetric(m sed.Metric)     { p.metrics = append(p.metrics, m) }
func (p *Pipeline) AddObserver(o sed.Observer) { p.observers = append(p.observers, o) }

// Config returns the effective configuration after defaulting.
func (p *Pipeline) Config() Config { return p.cfg }

// Zeropoints computes the per-band calibration table.
func (p *Pipeline) Zeropoints() ([]BandInfo, error) {
	infos := make([]BandInfo, len(p.bands))
	for i, b := range p.bands {
		ab, err := b.Zeropoint(passband.AB)
		if err != nil {
			return nil, fmt.Errorf("pipeline: band %s: %w", b.Name, err)
		}
		st, err := b.Zeropoint(passband.ST)
		if err != nil {
			return nil, fmt.Errorf("pipeline: band %s: %w", b.Name, err)
		}
		vega, err := b.Zeropoint(passband.Vega)
		if err != nil {
			return nil, fmt.Errorf("pipeline: band %s: %w", b.Name, err)
		}
		infos[i] = BandInfo{
			Band:     b.Name,
			Detector: b.Detector.String(),
			Pivot:    b.PivotWave(),
			Width:    b.EffectiveWidth(),
			AB:       ab,
			ST:       st,
			Vega:     vega,
		}
	}
	return infos, nil
}

// Run pushes every star through the chain. Per-star failures are
// collected, not fatal; the error return is reserved for setup
// problems and context cancellation.
func (p *Pipeline) Run(ctx context.Context, stars []sed.Star) (*Result, error) {
	wave := grid.Logspace(p.cfg.GridLo, p.cfg.GridHi, p.cfg.GridN)

	// The attenuation curve depends only on the grid, so evaluate it
	// once and share the factors across stars.
	atten, err := p.attenuationFactors(wave)
	if err != nil {
		return nil, err
	}

	zps, err := p.Zeropoints()
	if err != nil {
		return nil, err
	}

	type outcome struct {
		row        sed.Row
		intrinsic  *sed.Spectrum
		attenuated *sed.Spectrum
		err        error
	}

	outcomes := make([]outcome, len(stars))
	sem := make(chan struct{}, p.cfg.Workers)
	var wg sync.WaitGroup
	for i := range stars {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			select {
			case <-ctx.Done():
				outcomes[idx].err = ctx.Err()
				return
			default:
			}

			o := &outcomes[idx]
			o.row, o.intrinsic, o.attenuated, o.err = p.processStar(stars[idx], wave, atten, zps)
		}(i)
	}
	wg.Wait()

	result := &Result{
		Zeropoints: zps,
		Stats:      make(map[string]float64),
	}
	for _, m := range p.metrics {
		m.Reset()
	}

	for i := range outcomes {
		o := &outcomes[i]
		if o.err != nil {
			result.Errors = append(result.Errors, &sed.StarError{Index: i, Star: stars[i], Wrapped: o.err})
			result.StarsSkipped++
			for _, m := range p.metrics {
				m.Observe(sed.Row{Star: stars[i]})
			}
			continue
		}

		result.Rows = append(result.Rows, o.row)
		for _, m := range p.metrics {
			m.Observe(o.row)
		}
		for _, obs := range p.observers {
			obs.OnStar(o.row)
		}

		if result.Intrinsic == nil {
			result.Intrinsic = o.intrinsic.Clone()
			result.Attenuated = o.attenuated.Clone()
			continue
		}
		if err := sed.Accumulate(result.Intrinsic, o.intrinsic); err != nil {
			return nil, err
		}
		if err := sed.Accumulate(result.Attenuated, o.attenuated); err != nil {
			return nil, err
		}
	}

	for _, m := range p.metrics {
		result.Stats[m.Name()] = m.Value()
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// attenuationFactors evaluates the law once on the run grid and turns
// A(λ) into multiplicative flux factors.
func (p *Pipeline) attenuationFactors(wave []float64) ([]float64, error) {
	factors := make([]float64, len(wave))
	if p.law == nil || p.cfg.Av == 0 {
		for i := range factors {
			factors[i] = 1
		}
		return factors, nil
	}
	alav, err := p.law.AlAv(wave, p.cfg.Rv)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %s: %w", p.law.Name(), err)
	}
	for i, a := range alav {
		factors[i] = units.AttenuationFactor(p.cfg.Av * a)
	}
	return factors, nil
}

func (p *Pipeline) processStar(star sed.Star, wave, atten []float64, zps []BandInfo) (sed.Row, *sed.Spectrum, *sed.Spectrum, error) {
	if err := star.Validate(); err != nil {
		return sed.Row{}, nil, nil, err
	}
	if !p.lib.Covers(star) {
		return sed.Row{}, nil, nil, sed.ErrOutOfGrid
	}

	spec, err := p.lib.Spectrum(star)
	if err != nil {
		return sed.Row{}, nil, nil, err
	}

	intrinsic, err := spec.Resample(wave)
	if err != nil {
		return sed.Row{}, nil, nil, err
	}

	// Libraries are calibrated at 10 pc; rescale to the run distance.
	if p.cfg.DistancePc != 10 {
		f := 10 / p.cfg.DistancePc
		intrinsic.Scale(f * f)
	}

	attenuated := intrinsic.Clone()
	for i := range attenuated.Flux {
		attenuated.Flux[i] *= atten[i]
	}

	row := sed.Row{Star: star, Bands: make([]sed.BandFlux, len(p.bands))}
	for i, band := range p.bands {
		intFlux, err := band.Flux(intrinsic)
		if err != nil {
			return sed.Row{}, nil, nil, fmt.Errorf("band %s: %w", band.Name, err)
		}
		attFlux, err := band.Flux(attenuated)
		if err != nil {
			return sed.Row{}, nil, nil, fmt.Errorf("band %s: %w", band.Name, err)
		}
		row.Bands[i] = sed.BandFlux{
			Band:       band.Name,
			Intrinsic:  intFlux,
			Attenuated: attFlux,
			MagAB:      units.FluxToMag(attFlux, zps[i].AB),
			MagST:      units.FluxToMag(attFlux, zps[i].ST),
			MagVega:    units.FluxToMag(attFlux, zps[i].Vega),
		}
	}

	if row.BoloIntrinsic, err = intrinsic.Bolometric(); err != nil {
		return sed.Row{}, nil, nil, err
	}
	if row.BoloAttenuated, err = attenuated.Bolometric(); err != nil {
		return sed.Row{}, nil, nil, err
	}

	return row, intrinsic, attenuated, nil
}

// DistanceModulus for the configured distance.
func (p *Pipeline) DistanceModulus() float64 {
	return units.DistanceModulus(p.cfg.DistancePc)
}
