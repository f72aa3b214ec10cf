package batch

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/avendal/sedlab/internal/isochrone"
	"github.com/avendal/sedlab/internal/passband"
	"github.com/avendal/sedlab/internal/pipeline"
	"github.com/avendal/sedlab/internal/sed"
	"github.com/avendal/sedlab/internal/store"
)

// Scenario defines a scripted sequence of photometry runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single step in a scenario. An empty law means no
// dust; an empty isochrone means the bundled demo table.
type ScenarioStep struct {
	Library    string   `yaml:"library"`
	Law        string   `yaml:"law"`
	Av         float64  `yaml:"av"`
	Rv         float64  `yaml:"rv"`
	DistancePc float64  `yaml:"distance_pc"`
	Bands      []string `yaml:"bands"`
	Isochrone  string   `yaml:"isochrone"`
	LogAge     float64  `yaml:"log_age"`
	Z          float64  `yaml:"z"`
	SaveAs     string   `yaml:"save_as"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// StepResult ties a completed step to its stored run id. RunID is
// empty when the step was not saved.
type StepResult struct {
	Step   int
	RunID  string
	Result *pipeline.Result
}

func (s ScenarioStep) pipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.Library = s.Library
	if cfg.Library == "" {
		cfg.Library = "planck"
	}
	cfg.Law = s.Law
	cfg.Av = s.Av
	cfg.Rv = s.Rv
	cfg.DistancePc = s.DistancePc
	if len(s.Bands) > 0 {
		cfg.Bands = s.Bands
	}
	return cfg
}

func (s ScenarioStep) stars() ([]sed.Star, error) {
	name := s.Isochrone
	if name == "" {
		name = "demo"
	}

	var table *isochrone.Table
	var err error
	if name == "demo" {
		table, err = isochrone.Demo()
	} else {
		table, err = isochrone.Load(name)
	}
	if err != nil {
		return nil, err
	}

	block, _ := table.Nearest(s.LogAge, s.Z)
	return block.Stars()
}

// RunScenario executes all steps in order. Steps with a save_as id are
// written to st; a nil store skips saving.
func RunScenario(ctx context.Context, scenario *Scenario, st *store.Store) ([]StepResult, error) {
	reg := pipeline.NewRegistry()
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		fmt.Printf("Running step %d/%d: %s\n", i+1, len(scenario.Steps), stepLabel(step))

		cfg := step.pipelineConfig()

		lib, err := reg.GetLibrary(cfg.Library)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		law, err := reg.GetLaw(cfg.Law)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		bands := make([]*passband.Passband, len(cfg.Bands))
		for j, name := range cfg.Bands {
			if bands[j], err = passband.Find(name, nil); err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
		}

		stars, err := step.stars()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		p, err := pipeline.New(lib, law, bands, cfg)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		for _, m := range reg.DefaultMetrics() {
			p.AddMetric(m)
		}

		res, err := p.Run(ctx, stars)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		runID := ""
		if st != nil && step.SaveAs != "" {
			if err := st.SaveAs(step.SaveAs, p.Config(), res); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			runID = step.SaveAs
		}

		results = append(results, StepResult{Step: i + 1, RunID: runID, Result: res})
	}

	return results, nil
}

func stepLabel(step ScenarioStep) string {
	law := step.Law
	if law == "" {
		law = "none"
	}
	iso := step.Isochrone
	if iso == "" {
		iso = "demo"
	}
	return fmt.Sprintf("%s + %s av=%.2f", iso, law, step.Av)
}

// AvSweep runs the same stars through a range of A(V) values
type AvSweep struct {
	Library  string
	Law      string
	Bands    []string
	AvMin    float64
	AvMax    float64
	NumSteps int
	Stars    []sed.Star
}

// SweepResult holds the run statistics at one A(V) value
type SweepResult struct {
	Av          float64
	ColorExcess float64
	Dimming     float64
	Skipped     int
}

// RunSweep executes a sweep over A(V)
func RunSweep(ctx context.Context, sweep *AvSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("batch: sweep needs at least 2 steps")
	}
	if len(sweep.Stars) == 0 {
		return nil, fmt.Errorf("batch: sweep has no stars")
	}

	reg := pipeline.NewRegistry()
	lib, err := reg.GetLibrary(sweep.Library)
	if err != nil {
		return nil, err
	}
	law, err := reg.GetLaw(sweep.Law)
	if err != nil {
		return nil, err
	}

	bands := make([]*passband.Passband, len(sweep.Bands))
	for i, name := range sweep.Bands {
		if bands[i], err = passband.Find(name, nil); err != nil {
			return nil, err
		}
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	avStep := (sweep.AvMax - sweep.AvMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		av := sweep.AvMin + float64(i)*avStep

		cfg := pipeline.DefaultConfig()
		cfg.Library = sweep.Library
		cfg.Law = sweep.Law
		cfg.Av = av
		cfg.Bands = sweep.Bands

		p, err := pipeline.New(lib, law, bands, cfg)
		if err != nil {
			return nil, err
		}
		for _, m := range reg.DefaultMetrics() {
			p.AddMetric(m)
		}

		res, err := p.Run(ctx, sweep.Stars)
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			Av:          av,
			ColorExcess: res.Stats["color_excess"],
			Dimming:     res.Stats["dimming"],
			Skipped:     res.StarsSkipped,
		})

		fmt.Printf("Sweep %d/%d: av=%.4f\n", i+1, sweep.NumSteps, av)
	}

	return results, nil
}
