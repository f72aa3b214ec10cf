package store

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/avendal/sedlab/internal/pipeline"
)

// ExportRow is one star of an exported run.
type ExportRow struct {
	Teff  float64            `json:"teff"`
	LogG  float64            `json:"logg"`
	LogL  float64            `json:"logl"`
	Mass  float64            `json:"mass"`
	Label string             `json:"label,omitempty"`
	AB    map[string]float64 `json:"ab"`
	Vega  map[string]float64 `json:"vega"`
	ST    map[string]float64 `json:"st"`
}

// ExportData is the JSON shape of a full run.
type ExportData struct {
	ID         string             `json:"id"`
	Library    string             `json:"library"`
	Law        string             `json:"law"`
	Av         float64            `json:"av"`
	Rv         float64            `json:"rv"`
	DistancePc float64            `json:"distance_pc"`
	Bands      []string           `json:"bands"`
	Stars      int                `json:"stars"`
	Skipped    int                `json:"skipped"`
	Stats      map[string]float64 `json:"stats"`
	Rows       []ExportRow        `json:"rows"`
	Wavelength []float64          `json:"wavelength"`
	Intrinsic  []float64          `json:"intrinsic"`
	Attenuated []float64          `json:"attenuated"`
}

// NewExport assembles export data from a live run.
func NewExport(meta RunMetadata, result *pipeline.Result) *ExportData {
	data := &ExportData{
		ID:         meta.ID,
		Library:    meta.Library,
		Law:        meta.Law,
		Av:         meta.Av,
		Rv:         meta.Rv,
		DistancePc: meta.DistancePc,
		Bands:      meta.Bands,
		Stars:      len(result.Rows),
		Skipped:    result.StarsSkipped,
		Stats:      result.Stats,
	}

	for _, row := range result.Rows {
		er := ExportRow{
			Teff:  row.Star.Teff,
			LogG:  row.Star.LogG,
			LogL:  row.Star.LogL,
			Mass:  row.Star.Mass,
			Label: row.Star.Label,
			AB:    make(map[string]float64, len(row.Bands)),
			Vega:  make(map[string]float64, len(row.Bands)),
			ST:    make(map[string]float64, len(row.Bands)),
		}
		for _, b := range row.Bands {
			er.AB[b.Band] = b.MagAB
			er.Vega[b.Band] = b.MagVega
			er.ST[b.Band] = b.MagST
		}
		data.Rows = append(data.Rows, er)
	}

	if result.Intrinsic != nil {
		data.Wavelength = result.Intrinsic.Wave
		data.Intrinsic = result.Intrinsic.Flux
		data.Attenuated = result.Attenuated.Flux
	}

	return data
}

// LoadExport rebuilds export data from a saved run directory.
func (s *Store) LoadExport(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	header, rows, err := s.LoadTable(runID)
	if err != nil {
		return nil, err
	}

	data := &ExportData{
		ID:         meta.ID,
		Library:    meta.Library,
		Law:        meta.Law,
		Av:         meta.Av,
		Rv:         meta.Rv,
		DistancePc: meta.DistancePc,
		Bands:      meta.Bands,
		Stars:      len(rows),
		Skipped:    meta.Skipped,
		Stats:      meta.Stats,
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}
	cell := func(row []string, name string) float64 {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return 0
		}
		v, err := strconv.ParseFloat(row[i], 64)
		if err != nil {
			return 0
		}
		return v
	}

	for _, row := range rows {
		er := ExportRow{
			Teff: cell(row, "teff"),
			LogG: cell(row, "logg"),
			LogL: cell(row, "logl"),
			Mass: cell(row, "mass"),
			AB:   make(map[string]float64, len(meta.Bands)),
			Vega: make(map[string]float64, len(meta.Bands)),
			ST:   make(map[string]float64, len(meta.Bands)),
		}
		if i, ok := col["label"]; ok && i < len(row) {
			er.Label = row[i]
		}
		for _, b := range meta.Bands {
			er.AB[b] = cell(row, b+"_ab")
			er.Vega[b] = cell(row, b+"_vega")
			er.ST[b] = cell(row, b+"_st")
		}
		data.Rows = append(data.Rows, er)
	}

	wave, intrinsic, attenuated, err := s.LoadSED(runID)
	if err != nil {
		return nil, err
	}
	data.Wavelength = wave
	data.Intrinsic = intrinsic
	data.Attenuated = attenuated

	return data, nil
}

// ExportJSON writes export data to a file, indented.
func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSONStdout writes export data to standard output.
func ExportJSONStdout(data *ExportData) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
