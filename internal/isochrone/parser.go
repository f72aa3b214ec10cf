package isochrone

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Load reads an isochrone table from disk.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Path = path
	return t, nil
}

// Parse reads a PARSEC/CMD-style whitespace table. The last '#' line
// before a run of data rows names the columns; rows are grouped into
// blocks wherever (logAge, Z) changes, and a repeated header mid-file
// starts a fresh block.
func Parse(r io.Reader) (*Table, error) {
	var (
		t          = &Table{}
		cur        *Block
		cols       []string
		raw        []string
		rawHeader  []string
		newHeader  bool
		convertAge = -1 // column index holding linear years, -1 if none
	)

	flush := func() {
		if cur != nil && len(cur.Rows) > 0 {
			t.Blocks = append(t.Blocks, cur)
		}
		cur = nil
	}

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line[0] == '#' {
			fields := strings.Fields(strings.TrimLeft(line, "#"))
			if len(fields) > 0 {
				rawHeader = fields
				newHeader = true
			}
			continue
		}

		if newHeader {
			if len(rawHeader) == 0 {
				return nil, ErrNoColumns
			}
			flush()
			cols = make([]string, len(rawHeader))
			raw = append(raw[:0:0], rawHeader...)
			convertAge = -1
			for i, name := range rawHeader {
				cols[i] = canonicalName(name)
				if cols[i] == ColAge {
					cols[i] = ColLogAge
					convertAge = i
				}
			}
			newHeader = false
		}
		if cols == nil {
			return nil, ErrNoColumns
		}

		fields := strings.Fields(line)
		if len(fields) != len(cols) {
			return nil, fmt.Errorf("isochrone: line %d: expected %d columns, got %d", lineNo, len(cols), len(fields))
		}
		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("isochrone: line %d: bad value %q", lineNo, f)
			}
			if i == convertAge && v > 100 {
				v = math.Log10(v)
			}
			row[i] = v
		}

		logAge, z := blockKey(cols, row)
		if cur == nil || logAge != cur.LogAge || z != cur.Z {
			flush()
			cur = newBlock(cols, raw, logAge, z)
		}
		cur.Rows = append(cur.Rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()

	if len(t.Blocks) == 0 {
		return nil, ErrNoBlocks
	}
	return t, nil
}

func newBlock(cols, raw []string, logAge, z float64) *Block {
	b := &Block{
		LogAge:  logAge,
		Z:       z,
		Columns: cols,
		Raw:     raw,
		index:   make(map[string]int, len(cols)),
	}
	for i, name := range cols {
		if _, dup := b.index[name]; !dup {
			b.index[name] = i
		}
	}
	return b
}

// blockKey extracts the (logAge, Z) pair a row belongs to. Missing age
// keys to 0; metallicity falls back from Z to an [M/H] conversion.
func blockKey(cols []string, row []float64) (logAge, z float64) {
	for i, name := range cols {
		switch name {
		case ColLogAge:
			logAge = row[i]
		case ColZ:
			z = row[i]
		case ColMH:
			if z == 0 {
				z = SolarZ * math.Pow(10, row[i])
			}
		}
	}
	return logAge, z
}
