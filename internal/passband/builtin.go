package passband

import (
	"embed"
	"fmt"
	"sort"
)

//go:embed curves/*.csv
var curvesFS embed.FS

// Built-in filter set. Johnson-Cousins bands are energy-type, matching
// the photomultiplier system they were defined on; SDSS and 2MASS are
// photon counters.
var builtins = map[string]struct {
	file     string
	detector Detector
}{
	"U":  {"curves/johnson_u.csv", Energy},
	"B":  {"curves/johnson_b.csv", Energy},
	"V":  {"curves/johnson_v.csv", Energy},
	"R":  {"curves/cousins_r.csv", Energy},
	"I":  {"curves/cousins_i.csv", Energy},
	"u":  {"curves/sdss_u.csv", Photon},
	"g":  {"curves/sdss_g.csv", Photon},
	"r":  {"curves/sdss_r.csv", Photon},
	"i":  {"curves/sdss_i.csv", Photon},
	"z":  {"curves/sdss_z.csv", Photon},
	"J":  {"curves/tmass_j.csv", Photon},
	"H":  {"curves/tmass_h.csv", Photon},
	"Ks": {"curves/tmass_ks.csv", Photon},
}

// BuiltinNames lists the embedded bands, blue to red.
func BuiltinNames() []string {
	type entry struct {
		name  string
		pivot float64
	}
	entries := make([]entry, 0, len(builtins))
	for name := range builtins {
		p, err := Builtin(name)
		if err != nil {
			continue
		}
		entries = append(entries, entry{name, p.PivotWave()})
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].pivot < entries[b].pivot })

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// Builtin returns the embedded passband with the given name, or
// ErrUnknownBand.
func Builtin(name string) (*Passband, error) {
	def, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBand, name)
	}
	f, err := curvesFS.Open(def.file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	wave, throughput, err := parseCurve(f)
	if err != nil {
		return nil, fmt.Errorf("passband %s: %w", name, err)
	}
	return New(name, wave, throughput, def.detector)
}
