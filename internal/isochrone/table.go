package isochrone

import (
	"errors"
	"fmt"
	"math"

	"github.com/avendal/sedlab/internal/sed"
)

// Solar metal mass fraction used for [M/H] conversion (PARSEC value).
const SolarZ = 0.0152

// Domain errors for isochrone tables.
var (
	// ErrNoBlocks indicates a table without any data rows.
	ErrNoBlocks = errors.New("isochrone: table holds no blocks")

	// ErrNoColumns indicates a file without a column header line.
	ErrNoColumns = errors.New("isochrone: missing column header")

	// ErrMissingColumn indicates a block lacking a required column.
	ErrMissingColumn = errors.New("isochrone: required column missing")
)

// Block is a single isochrone: all rows sharing one (logAge, Z).
// Columns holds canonical names, Raw the spellings found in the file.
type Block struct {
	LogAge  float64
	Z       float64
	Columns []string
	Raw     []string
	Rows    [][]float64

	index map[string]int
}

// Table is a parsed isochrone file, split into (logAge, Z) blocks.
type Table struct {
	Path   string
	Blocks []*Block
}

// Column returns the values of a canonical or passthrough column.
func (b *Block) Column(name string) ([]float64, bool) {
	i, ok := b.index[name]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(b.Rows))
	for j, row := range b.Rows {
		out[j] = row[i]
	}
	return out, true
}

// Stars converts the block rows into spectral library queries. logTe
// and logL are required; logg, mass and stage labels are carried when
// present.
func (b *Block) Stars() ([]sed.Star, error) {
	ite, ok := b.index[ColLogTe]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColLogTe)
	}
	ill, ok := b.index[ColLogL]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColLogL)
	}
	igg, hasLogg := b.index[ColLogG]
	imass, hasMass := b.index[ColMass]
	imini, hasMini := b.index[ColMini]
	ilabel, hasLabel := b.index[ColLabel]

	stars := make([]sed.Star, len(b.Rows))
	for i, row := range b.Rows {
		star := sed.Star{
			Teff: math.Pow(10, row[ite]),
			LogL: row[ill],
			Z:    b.Z,
		}
		if hasLogg {
			star.LogG = row[igg]
		}
		switch {
		case hasMass:
			star.Mass = row[imass]
		case hasMini:
			star.Mass = row[imini]
		}
		if hasLabel {
			star.Label = stageName(row[ilabel])
		}
		stars[i] = star
	}
	return stars, nil
}

// Ages lists the distinct logAge values in table order.
func (t *Table) Ages() []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for _, b := range t.Blocks {
		if !seen[b.LogAge] {
			seen[b.LogAge] = true
			out = append(out, b.LogAge)
		}
	}
	return out
}

// Nearest returns the block closest to the requested (logAge, Z) and
// the distance in (logAge, log Z) space. Callers warn when the
// distance is not small.
func (t *Table) Nearest(logAge, z float64) (*Block, float64) {
	var best *Block
	bestDist := math.Inf(1)
	for _, b := range t.Blocks {
		d := math.Abs(b.LogAge - logAge)
		if z > 0 && b.Z > 0 {
			d += math.Abs(math.Log10(b.Z / z))
		}
		if d < bestDist {
			best = b
			bestDist = d
		}
	}
	return best, bestDist
}
