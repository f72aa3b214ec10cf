package fit

import (
	"context"
	"fmt"
	"math"

	"github.com/avendal/sedlab/internal/passband"
	"github.com/avendal/sedlab/internal/pipeline"
	"github.com/avendal/sedlab/internal/sed"
)

// Color is one observed color index, e.g. {"B", "V", 0.65}.
type Color struct {
	Blue     string
	Red      string
	Observed float64
}

// GridSearch walks a parameter grid and keeps the combination with the
// smallest squared color residual.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

// NewGridSearch takes parallel slices of parameter names and candidate
// values. Supported names are "av" and "rv".
func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search evaluates every grid point and returns the best parameters
// and their residual. buildRun maps a parameter set to a completed
// pipeline result for the star under study.
func (g *GridSearch) Search(
	ctx context.Context,
	buildRun func(params map[string]float64) (*pipeline.Result, error),
	colors []Color,
) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("fit: %d names for %d ranges", len(g.paramNames), len(g.ranges))
	}
	if len(colors) == 0 {
		return nil, 0, fmt.Errorf("fit: no colors to fit")
	}

	best := math.Inf(1)
	var bestParams map[string]float64

	g.searchRecursive(ctx, 0, make(map[string]float64), buildRun, colors, &best, &bestParams)

	if bestParams == nil {
		return nil, 0, fmt.Errorf("fit: no grid point produced a usable run")
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildRun func(map[string]float64) (*pipeline.Result, error),
	colors []Color,
	best *float64,
	bestParams *map[string]float64,
) {
	if ctx.Err() != nil {
		return
	}

	if depth == len(g.paramNames) {
		res, err := buildRun(current)
		if err != nil {
			return
		}

		val, err := Residual(res, colors)
		if err != nil {
			return
		}
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(ctx, depth+1, newParams, buildRun, colors, best, bestParams)
	}
}

// Residual is the summed squared difference between the run's model
// colors and the observed ones, averaged over the run's rows.
func Residual(res *pipeline.Result, colors []Color) (float64, error) {
	if len(res.Rows) == 0 {
		return 0, fmt.Errorf("fit: run produced no rows")
	}
	var total float64
	for _, c := range colors {
		var sum float64
		for _, row := range res.Rows {
			model := modelColor(row, c)
			if math.IsNaN(model) {
				return 0, fmt.Errorf("fit: run has no %s-%s color", c.Blue, c.Red)
			}
			sum += model
		}
		mean := sum / float64(len(res.Rows))
		d := mean - c.Observed
		total += d * d
	}
	return total, nil
}

func modelColor(row sed.Row, c Color) float64 {
	return row.Mag(c.Blue) - row.Mag(c.Red)
}

// FitReddening is the common case: search Av (and Rv when rvGrid is
// non-empty) for one star against observed colors. The star is pushed
// through lib and law with the given bands at each grid point.
func FitReddening(
	ctx context.Context,
	lib sed.Library,
	law sed.Law,
	cfg pipeline.Config,
	star sed.Star,
	colors []Color,
	avGrid, rvGrid []float64,
) (av, rv, residual float64, err error) {
	names := []string{"av"}
	ranges := [][]float64{avGrid}
	if len(rvGrid) > 0 {
		names = append(names, "rv")
		ranges = append(ranges, rvGrid)
	}

	bandSet := make([]*passband.Passband, len(cfg.Bands))
	for i, name := range cfg.Bands {
		b, err := passband.Find(name, nil)
		if err != nil {
			return 0, 0, 0, err
		}
		bandSet[i] = b
	}

	build := func(params map[string]float64) (*pipeline.Result, error) {
		runCfg := cfg
		runCfg.Av = params["av"]
		if v, ok := params["rv"]; ok {
			runCfg.Rv = v
		}
		p, err := pipeline.New(lib, law, bandSet, runCfg)
		if err != nil {
			return nil, err
		}
		return p.Run(ctx, []sed.Star{star})
	}

	search := NewGridSearch(names, ranges)
	params, residual, err := search.Search(ctx, build, colors)
	if err != nil {
		return 0, 0, 0, err
	}

	av = params["av"]
	rv = cfg.Rv
	if v, ok := params["rv"]; ok {
		rv = v
	} else if rv == 0 && law != nil {
		rv = law.RvDefault()
	}
	return av, rv, residual, nil
}
