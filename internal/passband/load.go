package passband

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// parseCurve reads wavelength_angstrom,throughput rows. A header row
// and '#' comment lines are skipped.
func parseCurve(r io.Reader) (wave, throughput []float64, err error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, nil, fmt.Errorf("row %d: want 2 columns, got %d", i+1, len(rec))
		}
		w, werr := strconv.ParseFloat(rec[0], 64)
		t, terr := strconv.ParseFloat(rec[1], 64)
		if werr != nil || terr != nil {
			if i == 0 {
				continue // header row
			}
			return nil, nil, fmt.Errorf("row %d: bad number", i+1)
		}
		wave = append(wave, w)
		throughput = append(throughput, t)
	}
	return wave, throughput, nil
}

// LoadFile reads a single filter curve; the band name is the file name
// without extension.
func LoadFile(path string, det Detector) (*Passband, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	wave, throughput, err := parseCurve(f)
	if err != nil {
		return nil, fmt.Errorf("passband %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return New(name, wave, throughput, det)
}

// LoadDir reads every .csv in a filter directory as a photon-type
// passband.
func LoadDir(dir string) ([]*Passband, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	bands := make([]*Passband, 0, len(matches))
	for _, path := range matches {
		p, err := LoadFile(path, Photon)
		if err != nil {
			return nil, err
		}
		bands = append(bands, p)
	}
	return bands, nil
}

// Find resolves a band name against the built-in set first, then any
// user filter directories.
func Find(name string, dirs []string) (*Passband, error) {
	if p, err := Builtin(name); err == nil {
		return p, nil
	}
	for _, dir := range dirs {
		path := filepath.Join(dir, name+".csv")
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path, Photon)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownBand, name)
}
