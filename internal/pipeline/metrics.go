package pipeline

import (
	"math"

	"github.com/avendal/sedlab/internal/sed"
)

// ColorExcess accumulates the mean selective extinction E(blue-red)
// over the run, recovered per star from the intrinsic and attenuated
// band fluxes.
type ColorExcess struct {
	name string
	blue string
	red  string
	sum  float64
	n    int
}

func NewColorExcess(blue, red string) *ColorExcess {
	return &ColorExcess{name: "color_excess", blue: blue, red: red}
}

func (c *ColorExcess) Name() string { return c.name }

func (c *ColorExcess) Observe(row sed.Row) {
	b := findBand(row, c.blue)
	r := findBand(row, c.red)
	if b == nil || r == nil {
		return
	}
	if b.Intrinsic <= 0 || r.Intrinsic <= 0 || b.Attenuated <= 0 || r.Attenuated <= 0 {
		return
	}
	ab := -2.5 * math.Log10(b.Attenuated/b.Intrinsic)
	ar := -2.5 * math.Log10(r.Attenuated/r.Intrinsic)
	c.sum += ab - ar
	c.n++
}

func (c *ColorExcess) Value() float64 {
	if c.n == 0 {
		return 0
	}
	return c.sum / float64(c.n)
}

func (c *ColorExcess) Reset() {
	c.sum = 0
	c.n = 0
}

// Coverage is the fraction of stars the library could synthesize.
// Skipped stars reach Observe with an empty band slice.
type Coverage struct {
	name    string
	inside  int
	samples int
}

func NewCoverage() *Coverage { return &Coverage{name: "coverage"} }

func (c *Coverage) Name() string { return c.name }

func (c *Coverage) Observe(row sed.Row) {
	c.samples++
	if len(row.Bands) > 0 {
		c.inside++
	}
}

func (c *Coverage) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return float64(c.inside) / float64(c.samples)
}

func (c *Coverage) Reset() {
	c.inside = 0
	c.samples = 0
}

// Dimming is the mean bolometric attenuated-to-intrinsic flux ratio,
// the fraction of the population's light that survives the dust.
type Dimming struct {
	name    string
	sum     float64
	samples int
}

func NewDimming() *Dimming { return &Dimming{name: "dimming"} }

func (d *Dimming) Name() string { return d.name }

func (d *Dimming) Observe(row sed.Row) {
	if len(row.Bands) == 0 || row.BoloIntrinsic <= 0 {
		return
	}
	d.sum += row.BoloAttenuated / row.BoloIntrinsic
	d.samples++
}

func (d *Dimming) Value() float64 {
	if d.samples == 0 {
		return 1.0
	}
	return d.sum / float64(d.samples)
}

func (d *Dimming) Reset() {
	d.sum = 0
	d.samples = 0
}

func findBand(row sed.Row, name string) *sed.BandFlux {
	for i := range row.Bands {
		if row.Bands[i].Band == name {
			return &row.Bands[i]
		}
	}
	return nil
}
