package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/avendal/sedlab/internal/pipeline"
)

// Store keeps completed runs on disk, one directory per run with a
// metadata.json, a magnitudes.csv and a sed.csv.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Library    string             `json:"library"`
	Law        string             `json:"law"`
	Av         float64            `json:"av"`
	Rv         float64            `json:"rv"`
	DistancePc float64            `json:"distance_pc"`
	Bands      []string           `json:"bands"`
	Stars      int                `json:"stars"`
	Skipped    int                `json:"skipped"`
	Timestamp  time.Time          `json:"timestamp"`
	Stats      map[string]float64 `json:"stats"`
}

// Save writes a run directory named <law>_<unix> and returns its id.
func (s *Store) Save(cfg pipeline.Config, result *pipeline.Result) (string, error) {
	law := cfg.Law
	if law == "" {
		law = "none"
	}
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", err
	}

	// Suffix the id when two saves land in the same second.
	var runID, runDir string
	for n := 0; ; n++ {
		runID = fmt.Sprintf("%s_%d", law, time.Now().Unix())
		if n > 0 {
			runID = fmt.Sprintf("%s_%d", runID, n)
		}
		runDir = filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return "", err
		}
	}

	if err := s.write(runDir, runID, cfg, result); err != nil {
		return "", err
	}
	return runID, nil
}

// SaveAs writes a run under a caller-chosen id, replacing any previous
// run with that id.
func (s *Store) SaveAs(runID string, cfg pipeline.Config, result *pipeline.Result) error {
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return err
	}
	return s.write(runDir, runID, cfg, result)
}

func (s *Store) write(runDir, runID string, cfg pipeline.Config, result *pipeline.Result) error {
	law := cfg.Law
	if law == "" {
		law = "none"
	}

	meta := RunMetadata{
		ID:         runID,
		Library:    cfg.Library,
		Law:        law,
		Av:         cfg.Av,
		Rv:         cfg.Rv,
		DistancePc: cfg.DistancePc,
		Bands:      cfg.Bands,
		Stars:      len(result.Rows),
		Skipped:    result.StarsSkipped,
		Timestamp:  time.Now(),
		Stats:      result.Stats,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}

	if err := s.writeMagnitudes(runDir, cfg, result); err != nil {
		return err
	}
	return s.writeSED(runDir, result)
}

func (s *Store) writeMagnitudes(runDir string, cfg pipeline.Config, result *pipeline.Result) error {
	f, err := os.Create(filepath.Join(runDir, "magnitudes.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"teff", "logg", "logl", "mass", "label"}
	for _, b := range cfg.Bands {
		header = append(header, b+"_ab", b+"_vega", b+"_st")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, row := range result.Rows {
		rec := []string{
			formatF(row.Star.Teff),
			formatF(row.Star.LogG),
			formatF(row.Star.LogL),
			formatF(row.Star.Mass),
			row.Star.Label,
		}
		for _, b := range row.Bands {
			rec = append(rec, formatF(b.MagAB), formatF(b.MagVega), formatF(b.MagST))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeSED(runDir string, result *pipeline.Result) error {
	f, err := os.Create(filepath.Join(runDir, "sed.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"wavelength", "intrinsic", "attenuated"}); err != nil {
		return err
	}
	if result.Intrinsic == nil {
		return nil
	}

	for i := range result.Intrinsic.Wave {
		rec := []string{
			formatF(result.Intrinsic.Wave[i]),
			formatE(result.Intrinsic.Flux[i]),
			formatE(result.Attenuated.Flux[i]),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func formatF(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
func formatE(v float64) string { return strconv.FormatFloat(v, 'e', 9, 64) }

// List returns the metadata of every readable run, skipping over
// directories that do not parse.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTable reads magnitudes.csv back as a header plus string records.
func (s *Store) LoadTable(runID string) ([]string, [][]string, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "magnitudes.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("store: %s: empty magnitudes table", runID)
	}

	return records[0], records[1:], nil
}

// Column extracts one numeric column from LoadTable output. Rows whose
// cell does not parse are skipped.
func Column(header []string, rows [][]string, name string) []float64 {
	col := -1
	for i, h := range header {
		if h == name {
			col = i
			break
		}
	}
	if col < 0 {
		return nil
	}

	vals := make([]float64, 0, len(rows))
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		v, err := strconv.ParseFloat(row[col], 64)
		if err != nil {
			continue
		}
		vals = append(vals, v)
	}
	return vals
}

// LoadSED reads the composite spectra back from sed.csv.
func (s *Store) LoadSED(runID string) (wave, intrinsic, attenuated []float64, err error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "sed.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}

	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 3 {
			continue
		}
		w, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			continue
		}
		fi, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			continue
		}
		fa, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			continue
		}
		wave = append(wave, w)
		intrinsic = append(intrinsic, fi)
		attenuated = append(attenuated, fa)
	}

	return wave, intrinsic, attenuated, nil
}
