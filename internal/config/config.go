package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/avendal/sedlab/internal/pipeline"
)

const (
	DefaultAv       = 1.0
	DefaultDistance = 10.0
	DefaultGridLo   = 1000.0
	DefaultGridHi   = 30000.0
	DefaultGridN    = 1200
	DefaultLogAge   = 8.0
	DefaultZ        = 0.0152
)

type Config struct {
	Library    string       `yaml:"library"`
	Law        string       `yaml:"law"`
	Av         float64      `yaml:"av"`
	Rv         float64      `yaml:"rv"`
	DistancePc float64      `yaml:"distance_pc"`
	Bands      []string     `yaml:"bands"`
	Grid       GridConfig   `yaml:"grid"`
	Source     SourceConfig `yaml:"source"`
	Workers    int          `yaml:"workers"`
	StoreDir   string       `yaml:"store_dir"`
	BandDirs   []string     `yaml:"band_dirs"`
}

// GridConfig is the wavelength grid of a run, in Å.
type GridConfig struct {
	Lo float64 `yaml:"lo"`
	Hi float64 `yaml:"hi"`
	N  int     `yaml:"n"`
}

// SourceConfig selects the stars of a run: an isochrone table ("demo"
// or a file path) narrowed to the block nearest log_age and z.
type SourceConfig struct {
	Isochrone string  `yaml:"isochrone"`
	LogAge    float64 `yaml:"log_age"`
	Z         float64 `yaml:"z"`
}

func DefaultConfig() *Config {
	return &Config{
		Library:    "planck",
		Law:        "ccm89",
		Av:         DefaultAv,
		DistancePc: DefaultDistance,
		Bands:      []string{"U", "B", "V", "R", "I"},
		Grid: GridConfig{
			Lo: DefaultGridLo,
			Hi: DefaultGridHi,
			N:  DefaultGridN,
		},
		Source: SourceConfig{
			Isochrone: "demo",
			LogAge:    DefaultLogAge,
			Z:         DefaultZ,
		},
		StoreDir: "runs",
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// PipelineConfig maps the file shape onto the runtime one.
func (c *Config) PipelineConfig() pipeline.Config {
	return pipeline.Config{
		Library:    c.Library,
		Law:        c.Law,
		Av:         c.Av,
		Rv:         c.Rv,
		DistancePc: c.DistancePc,
		Bands:      c.Bands,
		GridLo:     c.Grid.Lo,
		GridHi:     c.Grid.Hi,
		GridN:      c.Grid.N,
		Workers:    c.Workers,
	}
}
