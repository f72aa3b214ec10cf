package isochrone

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestDemoTable(t *testing.T) {
	table, err := Demo()
	if err != nil {
		t.Fatalf("demo table failed to parse: %v", err)
	}

	if len(table.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(table.Blocks))
	}
	ages := table.Ages()
	if len(ages) != 2 || ages[0] != 8.0 || ages[1] != 9.0 {
		t.Errorf("ages %v, want [8 9]", ages)
	}
	for _, b := range table.Blocks {
		if b.Z != 0.0152 {
			t.Errorf("block Z = %g, want 0.0152", b.Z)
		}
		if len(b.Rows) < 10 {
			t.Errorf("block logAge=%g has only %d rows", b.LogAge, len(b.Rows))
		}
	}
}

func TestDemoStars(t *testing.T) {
	table, err := Demo()
	if err != nil {
		t.Fatal(err)
	}

	stars, err := table.Blocks[0].Stars()
	if err != nil {
		t.Fatalf("stars failed: %v", err)
	}

	// First row: 0.8 Msun dwarf, logTe 3.693.
	s := stars[0]
	if math.Abs(s.Teff-math.Pow(10, 3.693)) > 0.1 {
		t.Errorf("Teff = %g, want 10^3.693", s.Teff)
	}
	if s.LogL != -0.53 || s.LogG != 4.62 || s.Mass != 0.8 {
		t.Errorf("unexpected star params: %+v", s)
	}
	if s.Label != "ms" {
		t.Errorf("label %q, want ms", s.Label)
	}
	if s.Z != 0.0152 {
		t.Errorf("Z = %g, want 0.0152", s.Z)
	}

	// Last row of the 100 Myr block is a red giant.
	if got := stars[len(stars)-1].Label; got != "rgb" {
		t.Errorf("last label %q, want rgb", got)
	}
}

func TestParseAliases(t *testing.T) {
	// MIST-style spellings resolve to the same canonical columns.
	input := `# log10_isochrone_age_yr initial_mass star_mass log_Teff log_g log(L/Lo) [Fe/H]
8.0 1.0 1.0 3.755 4.45 -0.02 0.0
8.0 2.0 2.0 3.950 4.27 1.26 0.0
`
	table, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	b := table.Blocks[0]

	if b.LogAge != 8.0 {
		t.Errorf("logAge = %g, want 8", b.LogAge)
	}
	// [Fe/H] = 0 converts to solar Z.
	if math.Abs(b.Z-SolarZ) > 1e-12 {
		t.Errorf("Z = %g, want %g", b.Z, SolarZ)
	}

	stars, err := b.Stars()
	if err != nil {
		t.Fatal(err)
	}
	if len(stars) != 2 || stars[1].Mass != 2.0 {
		t.Errorf("unexpected stars: %+v", stars)
	}
}

func TestParseLinearAge(t *testing.T) {
	input := `# Z Age Mini logL logTe logg
0.0152 100000000 1.0 -0.02 3.755 4.45
0.0152 1000000000 1.0 -0.01 3.757 4.45
`
	table, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(table.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(table.Blocks))
	}
	if table.Blocks[0].LogAge != 8.0 || table.Blocks[1].LogAge != 9.0 {
		t.Errorf("ages %g, %g; want 8, 9", table.Blocks[0].LogAge, table.Blocks[1].LogAge)
	}
}

func TestParsePassthroughColumns(t *testing.T) {
	input := `# Z logAge Mini logL logTe logg mbolmag
0.0152 8.0 1.0 -0.02 3.755 4.45 4.80
`
	table, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	vals, ok := table.Blocks[0].Column("mbolmag")
	if !ok {
		t.Fatal("passthrough column lost")
	}
	if vals[0] != 4.80 {
		t.Errorf("mbolmag = %g, want 4.8", vals[0])
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse(strings.NewReader("1.0 2.0\n")); !errors.Is(err, ErrNoColumns) {
		t.Errorf("headerless input: expected ErrNoColumns, got %v", err)
	}
	if _, err := Parse(strings.NewReader("# a b\n")); !errors.Is(err, ErrNoBlocks) {
		t.Errorf("dataless input: expected ErrNoBlocks, got %v", err)
	}
	if _, err := Parse(strings.NewReader("# a b\n1.0\n")); err == nil {
		t.Error("short row: expected error")
	}
	if _, err := Parse(strings.NewReader("# a b\n1.0 x\n")); err == nil {
		t.Error("bad value: expected error")
	}
}

func TestStarsMissingColumn(t *testing.T) {
	input := `# Z logAge Mini
0.0152 8.0 1.0
`
	table, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := table.Blocks[0].Stars(); !errors.Is(err, ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}
}

func TestNearest(t *testing.T) {
	table, err := Demo()
	if err != nil {
		t.Fatal(err)
	}

	b, dist := table.Nearest(8.1, 0.0152)
	if b.LogAge != 8.0 {
		t.Errorf("nearest to 8.1 has logAge %g, want 8", b.LogAge)
	}
	if math.Abs(dist-0.1) > 1e-9 {
		t.Errorf("distance %g, want 0.1", dist)
	}

	b, _ = table.Nearest(9.4, 0.0152)
	if b.LogAge != 9.0 {
		t.Errorf("nearest to 9.4 has logAge %g, want 9", b.LogAge)
	}

	// Metallicity mismatch contributes in log space.
	_, dist = table.Nearest(8.0, 0.00152)
	if math.Abs(dist-1.0) > 1e-9 {
		t.Errorf("decade Z mismatch distance %g, want 1", dist)
	}
}
