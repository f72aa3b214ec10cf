package stellib

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/avendal/sedlab/internal/sed"
	"github.com/avendal/sedlab/internal/units"
)

// Manifest describes a spectral grid directory.
type Manifest struct {
	Name  string `yaml:"name"`
	Notes string `yaml:"notes"`
	Nodes []Node `yaml:"nodes"`
}

// Node is one model atmosphere on the (Teff, logg) lattice.
type Node struct {
	Teff float64 `yaml:"teff"`
	LogG float64 `yaml:"logg"`
	File string  `yaml:"file"`
}

type nodeKey struct {
	ti, gi int
}

// Grid is a file-backed spectral library on a rectilinear (Teff, logg)
// lattice. Spectra are bilinearly interpolated in (logTeff, logg) and
// renormalized so the bolometric flux matches the requested logL.
type Grid struct {
	name    string
	wave    []float64
	teffs   []float64 // ascending
	loggs   []float64 // ascending
	spectra map[nodeKey][]float64
}

// LoadGrid reads manifest.yaml and every node spectrum from dir. All
// node spectra are resampled onto the grid of the first node.
func LoadGrid(dir string) (*Grid, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "manifest.yaml"))
	if err != nil {
		return nil, fmt.Errorf("stellib: reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("stellib: parsing manifest: %w", err)
	}
	if len(m.Nodes) == 0 {
		return nil, fmt.Errorf("stellib: manifest %q lists no nodes", m.Name)
	}

	g := &Grid{
		name:    m.Name,
		spectra: make(map[nodeKey][]float64),
	}
	if g.name == "" {
		g.name = filepath.Base(dir)
	}

	g.teffs = uniqueSorted(m.Nodes, func(n Node) float64 { return n.Teff })
	g.loggs = uniqueSorted(m.Nodes, func(n Node) float64 { return n.LogG })

	for _, node := range m.Nodes {
		wave, flux, err := readSpectrumCSV(filepath.Join(dir, node.File))
		if err != nil {
			return nil, fmt.Errorf("stellib: node %s: %w", node.File, err)
		}
		spec, err := sed.NewSpectrum(wave, flux)
		if err != nil {
			return nil, fmt.Errorf("stellib: node %s: %w", node.File, err)
		}
		if g.wave == nil {
			g.wave = spec.Wave
		} else {
			spec, err = spec.Resample(g.wave)
			if err != nil {
				return nil, fmt.Errorf("stellib: node %s: %w", node.File, err)
			}
		}
		key := nodeKey{
			ti: indexOf(g.teffs, node.Teff),
			gi: indexOf(g.loggs, node.LogG),
		}
		g.spectra[key] = spec.Flux
	}

	return g, nil
}

func (g *Grid) Name() string { return g.name }

func (g *Grid) WaveRange() (float64, float64) {
	return g.wave[0], g.wave[len(g.wave)-1]
}

// Covers reports whether the star sits inside the lattice and all four
// surrounding nodes exist.
func (g *Grid) Covers(star sed.Star) bool {
	if star.Validate() != nil {
		return false
	}
	t0, t1, ok := bracket(g.teffs, star.Teff)
	if !ok {
		return false
	}
	g0, g1, ok := bracket(g.loggs, star.LogG)
	if !ok {
		return false
	}
	for _, ti := range []int{t0, t1} {
		for _, gi := range []int{g0, g1} {
			if _, found := g.spectra[nodeKey{ti, gi}]; !found {
				return false
			}
		}
	}
	return true
}

// Spectrum bilinearly interpolates the four surrounding node spectra in
// (logTeff, logg) and scales the result to the star's logL.
func (g *Grid) Spectrum(star sed.Star) (*sed.Spectrum, error) {
	if err := star.Validate(); err != nil {
		return nil, err
	}
	if !g.Covers(star) {
		return nil, &sed.StarError{Star: star, Wrapped: sed.ErrOutOfGrid}
	}

	t0, t1, _ := bracket(g.teffs, star.Teff)
	g0, g1, _ := bracket(g.loggs, star.LogG)

	// Interpolation weight in logTeff; the lattice is coarse enough
	// that log spacing matters.
	wt := 0.0
	if t1 != t0 {
		wt = (math.Log10(star.Teff) - math.Log10(g.teffs[t0])) /
			(math.Log10(g.teffs[t1]) - math.Log10(g.teffs[t0]))
	}
	wg := 0.0
	if g1 != g0 {
		wg = (star.LogG - g.loggs[g0]) / (g.loggs[g1] - g.loggs[g0])
	}

	corners := []struct {
		key nodeKey
		w   float64
	}{
		{nodeKey{t0, g0}, (1 - wt) * (1 - wg)},
		{nodeKey{t1, g0}, wt * (1 - wg)},
		{nodeKey{t0, g1}, (1 - wt) * wg},
		{nodeKey{t1, g1}, wt * wg},
	}

	flux := make([]float64, len(g.wave))
	for _, c := range corners {
		node := g.spectra[c.key]
		for i := range flux {
			flux[i] += c.w * node[i]
		}
	}

	wave := make([]float64, len(g.wave))
	copy(wave, g.wave)
	spec, err := sed.NewSpectrum(wave, flux)
	if err != nil {
		return nil, err
	}
	if err := normalizeToLogL(spec, star); err != nil {
		return nil, err
	}
	return spec, nil
}

// normalizeToLogL rescales a spectrum so its bolometric flux equals
// L / (4 pi (10pc)^2).
func normalizeToLogL(spec *sed.Spectrum, star sed.Star) error {
	bolo, err := spec.Bolometric()
	if err != nil {
		return err
	}
	if bolo <= 0 {
		return sed.ErrBadSpectrum
	}
	spec.Scale(units.LsunToFlux(star.LogL, 10) / bolo)
	return nil
}

func readSpectrumCSV(path string) (wave, flux []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, nil, fmt.Errorf("row %d: want 2 columns, got %d", i+1, len(rec))
		}
		w, werr := strconv.ParseFloat(rec[0], 64)
		fl, ferr := strconv.ParseFloat(rec[1], 64)
		if werr != nil || ferr != nil {
			if i == 0 {
				continue // header row
			}
			return nil, nil, fmt.Errorf("row %d: bad number", i+1)
		}
		wave = append(wave, w)
		flux = append(flux, fl)
	}
	return wave, flux, nil
}

func uniqueSorted(nodes []Node, get func(Node) float64) []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for _, n := range nodes {
		v := get(n)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

func indexOf(xs []float64, x float64) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return -1
}

// bracket finds indices i, j with xs[i] <= x <= xs[j]; i == j at an
// exact node or a single-node axis.
func bracket(xs []float64, x float64) (int, int, bool) {
	if len(xs) == 0 {
		return 0, 0, false
	}
	if x < xs[0] || x > xs[len(xs)-1] {
		return 0, 0, false
	}
	for i, v := range xs {
		if x == v {
			return i, i, true
		}
		if x < v {
			return i - 1, i, true
		}
	}
	return len(xs) - 1, len(xs) - 1, true
}
