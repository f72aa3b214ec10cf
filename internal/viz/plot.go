package viz

import (
	"fmt"
	"math"
	"sort"

	"github.com/guptarohit/asciigraph"
)

const (
	plotWidth  = 80
	plotHeight = 15

	// Flux spans many decades; clamp the log plot this far below the
	// peak so zeros do not drag the axis to -inf.
	logFloorDecades = 8
)

var seriesPalette = []asciigraph.AnsiColor{
	asciigraph.Blue,
	asciigraph.Red,
	asciigraph.Green,
	asciigraph.Yellow,
	asciigraph.Magenta,
}

// SEDPlot renders intrinsic and attenuated composite spectra on a
// log10 flux scale.
func SEDPlot(wave, intrinsic, attenuated []float64) string {
	if len(wave) == 0 {
		return ""
	}

	series := [][]float64{
		logScale(binned(intrinsic, plotWidth)),
		logScale(binned(attenuated, plotWidth)),
	}

	caption := fmt.Sprintf("log10 flux [erg s-1 cm-2 A-1], %.0f..%.0f A", wave[0], wave[len(wave)-1])
	return asciigraph.PlotMany(series,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
		asciigraph.SeriesLegends("intrinsic", "attenuated"),
	)
}

// CurvePlot renders one extinction curve A(λ)/A(V).
func CurvePlot(wave, alav []float64, name string) string {
	if len(wave) == 0 {
		return ""
	}

	caption := fmt.Sprintf("%s: A(λ)/A(V), %.0f..%.0f A", name, wave[0], wave[len(wave)-1])
	return asciigraph.Plot(binned(alav, plotWidth),
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
	)
}

// CurveComparePlot overlays several extinction curves, keyed by law
// name, on one chart.
func CurveComparePlot(wave []float64, curves map[string][]float64) string {
	if len(wave) == 0 || len(curves) == 0 {
		return ""
	}

	names := make([]string, 0, len(curves))
	for name := range curves {
		names = append(names, name)
	}
	sort.Strings(names)

	series := make([][]float64, len(names))
	colors := make([]asciigraph.AnsiColor, len(names))
	for i, name := range names {
		series[i] = binned(curves[name], plotWidth)
		colors[i] = seriesPalette[i%len(seriesPalette)]
	}

	caption := fmt.Sprintf("A(λ)/A(V), %.0f..%.0f A", wave[0], wave[len(wave)-1])
	return asciigraph.PlotMany(series,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(names...),
	)
}

// ThroughputPlot renders a filter transmission curve.
func ThroughputPlot(wave, throughput []float64, name string) string {
	if len(wave) == 0 {
		return ""
	}

	caption := fmt.Sprintf("%s throughput, %.0f..%.0f A", name, wave[0], wave[len(wave)-1])
	return asciigraph.Plot(binned(throughput, plotWidth),
		asciigraph.Height(10),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
	)
}

// binned shrinks data to at most n samples by averaging equal bins.
func binned(data []float64, n int) []float64 {
	if len(data) <= n {
		out := make([]float64, len(data))
		copy(out, data)
		return out
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		lo := i * len(data) / n
		hi := (i + 1) * len(data) / n
		if hi <= lo {
			hi = lo + 1
		}
		var sum float64
		for _, v := range data[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

// logScale maps fluxes to log10, flooring at logFloorDecades below the
// peak so non-positive samples stay plottable.
func logScale(data []float64) []float64 {
	peak := 0.0
	for _, v := range data {
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		return make([]float64, len(data))
	}

	floor := peak * math.Pow(10, -logFloorDecades)
	out := make([]float64, len(data))
	for i, v := range data {
		if v < floor {
			v = floor
		}
		out[i] = math.Log10(v)
	}
	return out
}
