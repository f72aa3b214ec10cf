package batch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/avendal/sedlab/internal/sed"
	"github.com/avendal/sedlab/internal/store"
)

func writeScenario(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t, `name: cluster tour
description: two lines of sight
steps:
  - law: ccm89
    av: 0.5
    bands: [B, V]
    log_age: 8.0
    save_as: dusty
  - av: 0
    bands: [V]
    log_age: 9.0
`)

	scenario, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if scenario.Name != "cluster tour" {
		t.Errorf("name %q", scenario.Name)
	}
	if len(scenario.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(scenario.Steps))
	}
	if scenario.Steps[0].Law != "ccm89" || scenario.Steps[0].SaveAs != "dusty" {
		t.Errorf("step 1 parsed wrong: %+v", scenario.Steps[0])
	}
	if scenario.Steps[1].Av != 0 || scenario.Steps[1].LogAge != 9.0 {
		t.Errorf("step 2 parsed wrong: %+v", scenario.Steps[1])
	}
}

func TestLoadScenarioMissing(t *testing.T) {
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRunScenario(t *testing.T) {
	scenario := &Scenario{
		Name: "test",
		Steps: []ScenarioStep{
			{Law: "ccm89", Av: 0.5, Bands: []string{"B", "V"}, LogAge: 8.0, SaveAs: "dusty"},
			{Av: 0, Bands: []string{"V"}, LogAge: 9.0},
		},
	}

	st := store.New(t.TempDir())
	results, err := RunScenario(context.Background(), scenario, st)
	if err != nil {
		t.Fatalf("scenario failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 step results, got %d", len(results))
	}
	if results[0].RunID != "dusty" || results[1].RunID != "" {
		t.Errorf("run ids: %q, %q", results[0].RunID, results[1].RunID)
	}
	for _, r := range results {
		if len(r.Result.Rows) == 0 {
			t.Errorf("step %d produced no rows", r.Step)
		}
	}

	meta, err := st.Load("dusty")
	if err != nil {
		t.Fatalf("saved step not loadable: %v", err)
	}
	if meta.Law != "ccm89" || meta.Av != 0.5 {
		t.Errorf("saved metadata: %+v", meta)
	}
}

func TestRunScenarioBadStep(t *testing.T) {
	scenario := &Scenario{
		Steps: []ScenarioStep{
			{Law: "notalaw", Bands: []string{"V"}},
		},
	}

	_, err := RunScenario(context.Background(), scenario, nil)
	if err == nil {
		t.Fatal("expected error for unknown law")
	}
	if !strings.Contains(err.Error(), "step 1") {
		t.Errorf("error should name the step: %v", err)
	}
}

func TestRunSweep(t *testing.T) {
	sweep := &AvSweep{
		Library:  "planck",
		Law:      "ccm89",
		Bands:    []string{"B", "V"},
		AvMin:    0,
		AvMax:    1.0,
		NumSteps: 3,
		Stars:    []sed.Star{{Teff: 5772, LogG: 4.44, LogL: 0}},
	}

	results, err := RunSweep(context.Background(), sweep)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 sweep points, got %d", len(results))
	}

	if results[0].Av != 0 || results[0].ColorExcess != 0 || results[0].Dimming != 1 {
		t.Errorf("dust-free point: %+v", results[0])
	}
	for i := 1; i < len(results); i++ {
		if results[i].ColorExcess <= results[i-1].ColorExcess {
			t.Errorf("color excess should grow with av: %+v", results)
		}
		if results[i].Dimming >= results[i-1].Dimming {
			t.Errorf("dimming should fall with av: %+v", results)
		}
	}
}

func TestRunSweepValidation(t *testing.T) {
	star := sed.Star{Teff: 5772, LogL: 0}

	_, err := RunSweep(context.Background(), &AvSweep{
		Library: "planck", Law: "ccm89", Bands: []string{"V"},
		NumSteps: 1, Stars: []sed.Star{star},
	})
	if err == nil {
		t.Error("single-point sweep should fail")
	}

	_, err = RunSweep(context.Background(), &AvSweep{
		Library: "planck", Law: "ccm89", Bands: []string{"V"},
		NumSteps: 3,
	})
	if err == nil {
		t.Error("starless sweep should fail")
	}
}
