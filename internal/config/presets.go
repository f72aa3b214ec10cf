package config

import "sort"

// Presets are ready-made run setups for familiar lines of sight. Ages
// and compositions stay within what the bundled demo table carries.
var Presets = map[string]*Config{
	"pleiades": {
		Library: "planck", Law: "ccm89", Av: 0.12, DistancePc: 136,
		Bands:  []string{"U", "B", "V", "R", "I"},
		Source: SourceConfig{Isochrone: "demo", LogAge: 8.1, Z: 0.0152},
	},
	"bulge": {
		Library: "planck", Law: "f99", Av: 2.0, DistancePc: 8000,
		Bands:  []string{"V", "I", "J", "H", "Ks"},
		Source: SourceConfig{Isochrone: "demo", LogAge: 9.0, Z: 0.0152},
	},
	"smc": {
		Library: "planck", Law: "smc", Av: 0.4, DistancePc: 62000,
		Bands:  []string{"B", "V", "I"},
		Source: SourceConfig{Isochrone: "demo", LogAge: 8.0, Z: 0.0152},
	},
	"starburst": {
		Library: "planck", Law: "calzetti00", Av: 1.5, DistancePc: 10,
		Bands:  []string{"u", "g", "r", "i", "z"},
		Source: SourceConfig{Isochrone: "demo", LogAge: 8.0, Z: 0.0152},
	},
	"naked": {
		Library: "planck", Law: "none", Av: 0, DistancePc: 10,
		Bands:  []string{"U", "B", "V", "R", "I"},
		Source: SourceConfig{Isochrone: "demo", LogAge: 9.0, Z: 0.0152},
	},
}

// GetPreset returns a completed copy of the named preset, or nil when
// no such preset exists. Presets declare only what differs from the
// defaults; the grid and store directory are filled in here.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	if cfg.Grid.N == 0 {
		cfg.Grid = GridConfig{Lo: DefaultGridLo, Hi: DefaultGridHi, N: DefaultGridN}
	}
	if cfg.StoreDir == "" {
		cfg.StoreDir = "runs"
	}
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
