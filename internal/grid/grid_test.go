package grid

import (
	"math"
	"testing"
)

func TestLogspace(t *testing.T) {
	xs := Logspace(1000, 30000, 100)
	if len(xs) != 100 {
		t.Fatalf("expected 100 points, got %d", len(xs))
	}
	if math.Abs(xs[0]-1000) > 1e-6 || math.Abs(xs[99]-30000) > 1e-6 {
		t.Errorf("endpoints wrong: %f %f", xs[0], xs[99])
	}
	if !IsAscending(xs) {
		t.Error("logspace should be ascending")
	}
	// Log spacing means constant ratio, not constant step.
	r1 := xs[1] / xs[0]
	r2 := xs[51] / xs[50]
	if math.Abs(r1-r2) > 1e-9 {
		t.Errorf("ratios differ: %f vs %f", r1, r2)
	}
}

func TestIsAscending(t *testing.T) {
	tests := []struct {
		xs   []float64
		want bool
	}{
		{[]float64{1, 2, 3}, true},
		{[]float64{1, 1, 3}, false},
		{[]float64{3, 2, 1}, false},
		{[]float64{1}, true},
		{nil, true},
	}
	for _, tt := range tests {
		if got := IsAscending(tt.xs); got != tt.want {
			t.Errorf("IsAscending(%v) = %v, want %v", tt.xs, got, tt.want)
		}
	}
}

func TestResampleLinear(t *testing.T) {
	xs := []float64{1000, 2000, 3000}
	ys := []float64{1.0, 2.0, 3.0}

	out, err := ResampleLinear(xs, ys, []float64{1500, 2500})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(out[0]-1.5) > 1e-12 || math.Abs(out[1]-2.5) > 1e-12 {
		t.Errorf("linear midpoints wrong: %v", out)
	}
}

func TestResampleLinearOutsideSupport(t *testing.T) {
	xs := []float64{1000, 2000}
	ys := []float64{5.0, 5.0}

	out, err := ResampleLinear(xs, ys, []float64{500, 1500, 4000})
	if err != nil {
		t.Fatal(err)
	}
	if out[0] != 0 || out[2] != 0 {
		t.Errorf("outside support should be zero, got %v", out)
	}
	if math.Abs(out[1]-5.0) > 1e-12 {
		t.Errorf("inside support wrong: %v", out)
	}
}

func TestResampleLinearErrors(t *testing.T) {
	if _, err := ResampleLinear([]float64{1, 2}, []float64{1}, []float64{1.5}); err != ErrLength {
		t.Errorf("expected ErrLength, got %v", err)
	}
	if _, err := ResampleLinear([]float64{1}, []float64{1}, []float64{1}); err != ErrTooFew {
		t.Errorf("expected ErrTooFew, got %v", err)
	}
	if _, err := ResampleLinear([]float64{2, 1}, []float64{1, 1}, []float64{1.5}); err != ErrUnordered {
		t.Errorf("expected ErrUnordered, got %v", err)
	}
}

func TestTrapezoid(t *testing.T) {
	// Integral of y=x over [0,10] is 50.
	xs := Linspace(0, 10, 101)
	ys := make([]float64, len(xs))
	copy(ys, xs)

	area, err := Trapezoid(xs, ys)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(area-50) > 1e-9 {
		t.Errorf("got %f, want 50", area)
	}
}

func TestTrapezoidQuadratic(t *testing.T) {
	// Integral of x^2 over [0,1] is 1/3; trapezoid converges from above.
	xs := Linspace(0, 1, 2001)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = x * x
	}
	area, err := Trapezoid(xs, ys)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(area-1.0/3.0) > 1e-6 {
		t.Errorf("got %.9f, want 1/3", area)
	}
}

func TestOverlap(t *testing.T) {
	lo, hi, ok := Overlap(1000, 5000, 3000, 9000)
	if !ok || lo != 3000 || hi != 5000 {
		t.Errorf("got (%f, %f, %v)", lo, hi, ok)
	}
	if _, _, ok := Overlap(1000, 2000, 3000, 4000); ok {
		t.Error("disjoint ranges should not overlap")
	}
}

func TestLocate(t *testing.T) {
	xs := []float64{1, 2, 4, 8}
	tests := []struct {
		x    float64
		want int
	}{
		{1.5, 0},
		{3, 1},
		{7.9, 2},
		{0.5, -1},
		{9, -1},
	}
	for _, tt := range tests {
		if got := Locate(xs, tt.x); got != tt.want {
			t.Errorf("Locate(%f) = %d, want %d", tt.x, got, tt.want)
		}
	}
}
