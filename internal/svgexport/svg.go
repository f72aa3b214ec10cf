package svgexport

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Series is one named polyline of a chart.
type Series struct {
	Name   string
	Y      []float64
	Stroke string
}

const (
	marginLeft   = 64
	marginRight  = 16
	marginTop    = 24
	marginBottom = 40

	logFloorDecades = 8
)

// SED renders composite spectra as log-flux polylines over wavelength.
func SED(wave, intrinsic, attenuated []float64, width, height int) string {
	if len(wave) < 2 || len(intrinsic) != len(wave) || len(attenuated) != len(wave) {
		return ""
	}
	series := []Series{
		{Name: "intrinsic", Y: logFlux(intrinsic), Stroke: "#4aa8ff"},
		{Name: "attenuated", Y: logFlux(attenuated), Stroke: "#ff5c5c"},
	}
	return Chart(wave, series, "wavelength [A]", "log10 flux [erg s-1 cm-2 A-1]", width, height)
}

// Curve renders a single extinction curve A(lambda)/A(V).
func Curve(wave, alav []float64, name string, width, height int) string {
	if len(wave) < 2 || len(alav) != len(wave) {
		return ""
	}
	series := []Series{{Name: name, Y: alav, Stroke: "#00ff88"}}
	return Chart(wave, series, "wavelength [A]", "A(lambda)/A(V)", width, height)
}

// Chart renders named series against a shared x axis. Non-finite
// samples break the polyline into segments.
func Chart(x []float64, series []Series, xLabel, yLabel string, width, height int) string {
	if len(x) < 2 || len(series) == 0 {
		return ""
	}
	for _, s := range series {
		if len(s.Y) != len(x) {
			return ""
		}
	}

	minX, maxX := x[0], x[0]
	for _, v := range x {
		minX = math.Min(minX, v)
		maxX = math.Max(maxX, v)
	}
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s.Y {
			if !finite(v) {
				continue
			}
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
	}
	if minY > maxY {
		return ""
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	plotW := float64(width - marginLeft - marginRight)
	plotH := float64(height - marginTop - marginBottom)
	toX := func(v float64) float64 { return float64(marginLeft) + (v-minX)/rangeX*plotW }
	toY := func(v float64) float64 { return float64(marginTop) + plotH - (v-minY)/rangeY*plotH }

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	// Horizontal grid lines with y tick labels.
	for i := 0; i <= 4; i++ {
		v := minY + rangeY*float64(i)/4
		y := toY(v)
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#222233"/>
`, marginLeft, y, width-marginRight, y))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%.1f" fill="#9999aa" font-family="monospace" font-size="11" text-anchor="end">%s</text>
`, marginLeft-6, y+4, tickLabel(v)))
	}

	// X tick labels.
	for i := 0; i <= 4; i++ {
		v := minX + rangeX*float64(i)/4
		xp := toX(v)
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" fill="#9999aa" font-family="monospace" font-size="11" text-anchor="middle">%s</text>
`, xp, height-marginBottom+16, tickLabel(v)))
	}

	// Axes.
	sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#666677"/>
<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#666677"/>
`, marginLeft, marginTop, marginLeft, height-marginBottom,
		marginLeft, height-marginBottom, width-marginRight, height-marginBottom))

	// Axis labels.
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" fill="#ccccdd" font-family="monospace" font-size="12" text-anchor="middle">%s</text>
`, marginLeft+int(plotW)/2, height-8, xLabel))
	sb.WriteString(fmt.Sprintf(`<text x="14" y="%d" fill="#ccccdd" font-family="monospace" font-size="12" text-anchor="middle" transform="rotate(-90 14 %d)">%s</text>
`, marginTop+int(plotH)/2, marginTop+int(plotH)/2, yLabel))

	for _, s := range series {
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="%s"/>
`, s.Stroke, pathData(x, s.Y, toX, toY)))
	}

	// Legend, one entry per named series.
	row := 0
	for _, s := range series {
		if s.Name == "" {
			continue
		}
		lx := width - marginRight - 120
		ly := marginTop + 6 + 16*row
		sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="12" height="3" fill="%s"/>
<text x="%d" y="%d" fill="#ccccdd" font-family="monospace" font-size="11">%s</text>
`, lx, ly, s.Stroke, lx+18, ly+5, s.Name))
		row++
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func pathData(x, y []float64, toX, toY func(float64) float64) string {
	var sb strings.Builder
	pen := false
	for i := range x {
		if !finite(y[i]) {
			pen = false
			continue
		}
		cmd := "M"
		if pen {
			cmd = " L"
		}
		sb.WriteString(fmt.Sprintf("%s%.1f,%.1f", cmd, toX(x[i]), toY(y[i])))
		pen = true
	}
	return sb.String()
}

// logFlux maps flux to log10, flooring nonpositive samples a fixed
// number of decades below the peak so dust-killed bins stay plottable.
func logFlux(flux []float64) []float64 {
	peak := 0.0
	for _, f := range flux {
		if f > peak {
			peak = f
		}
	}
	out := make([]float64, len(flux))
	if peak <= 0 {
		return out
	}
	floor := peak * math.Pow(10, -logFloorDecades)
	for i, f := range flux {
		if f < floor {
			f = floor
		}
		out[i] = math.Log10(f)
	}
	return out
}

func tickLabel(v float64) string {
	if math.Abs(v) >= 100 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
