package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/avendal/sedlab/internal/extinction"
	"github.com/avendal/sedlab/internal/sed"
	"github.com/avendal/sedlab/internal/stellib"
)

// Registry resolves library and law names to instances.
type Registry struct {
	libraries map[string]func() (sed.Library, error)
	laws      map[string]func() sed.Law
}

func NewRegistry() *Registry {
	r := &Registry{
		libraries: make(map[string]func() (sed.Library, error)),
		laws:      make(map[string]func() sed.Law),
	}

	r.libraries["planck"] = func() (sed.Library, error) { return stellib.NewPlanck(), nil }

	r.laws["ccm89"] = func() sed.Law { return extinction.NewCCM89() }
	r.laws["odonnell94"] = func() sed.Law { return extinction.NewODonnell94() }
	r.laws["calzetti00"] = func() sed.Law { return extinction.NewCalzetti00() }
	r.laws["f99"] = func() sed.Law { return extinction.NewFitzpatrick99() }
	r.laws["smc"] = func() sed.Law { return extinction.NewGordon03() }

	return r
}

// GetLibrary resolves a library name. The form "grid:<dir>" loads a
// file-backed spectral grid from a manifest directory.
func (r *Registry) GetLibrary(name string) (sed.Library, error) {
	if dir, ok := strings.CutPrefix(name, "grid:"); ok {
		return stellib.LoadGrid(dir)
	}
	fn, ok := r.libraries[name]
	if !ok {
		return nil, fmt.Errorf("unknown library: %s", name)
	}
	return fn()
}

// GetLaw resolves an extinction law name. The empty string and "none"
// mean no dust.
func (r *Registry) GetLaw(name string) (sed.Law, error) {
	if name == "" || name == "none" {
		return nil, nil
	}
	fn, ok := r.laws[name]
	if !ok {
		return nil, fmt.Errorf("unknown law: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListLibraries() []string {
	names := make([]string, 0, len(r.libraries))
	for name := range r.libraries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListLaws() []string {
	names := make([]string, 0, len(r.laws))
	for name := range r.laws {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics is the standard per-run metric set.
func (r *Registry) DefaultMetrics() []sed.Metric {
	return []sed.Metric{
		NewColorExcess("B", "V"),
		NewCoverage(),
		NewDimming(),
	}
}
