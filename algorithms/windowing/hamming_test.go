package windowing

import (
	"errors"
	"math"
	"testing"
)

func TestPeriodicHammingCoefficients(t *testing.T) {
	w := NewPeriodicHamming(512)
	if w.GetSize() != 512 {
		t.Fatalf("size = %d, want 512", w.GetSize())
	}
	if w.IsSymmetric() {
		t.Fatal("periodic window reported as symmetric")
	}

	if got := w.Coefficient(0); math.Abs(got-0.08) > 1e-12 {
		t.Fatalf("w[0] = %v, want 0.08", got)
	}
	// Peak sits at N/2 for the periodic definition.
	if got := w.Coefficient(256); math.Abs(got-1.0) > 1e-12 {
		t.Fatalf("w[256] = %v, want 1", got)
	}
	for i := 1; i < 256; i++ {
		if d := math.Abs(w.Coefficient(i) - w.Coefficient(512-i)); d > 1e-12 {
			t.Fatalf("w[%d] and w[%d] differ by %v", i, 512-i, d)
		}
	}
}

func TestSymmetricHammingEndpoints(t *testing.T) {
	w := NewHamming(65, true)
	c := w.GetCoefficients()
	if math.Abs(c[0]-c[64]) > 1e-12 {
		t.Fatalf("endpoints differ: %v vs %v", c[0], c[64])
	}
	if math.Abs(c[32]-1.0) > 1e-12 {
		t.Fatalf("center = %v, want 1", c[32])
	}
}

func TestApplyInPlace(t *testing.T) {
	w := NewPeriodicHamming(8)
	signal := []float64{1, 1, 1, 1, 1, 1, 1, 1}
	if err := w.ApplyInPlace(signal); err != nil {
		t.Fatalf("ApplyInPlace() error = %v", err)
	}
	for i, v := range signal {
		if v != w.Coefficient(i) {
			t.Fatalf("signal[%d] = %v, want %v", i, v, w.Coefficient(i))
		}
	}

	if err := w.ApplyInPlace(make([]float64, 7)); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("ApplyInPlace() err = %v, want ErrSizeMismatch", err)
	}
}

func TestApply(t *testing.T) {
	w := NewPeriodicHamming(4)
	frame := []float64{2, 2, 2, 2}
	got, err := w.Apply(frame)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	for i, v := range got {
		if v != 2*w.Coefficient(i) {
			t.Fatalf("got[%d] = %v, want %v", i, v, 2*w.Coefficient(i))
		}
	}
	if frame[0] != 2 {
		t.Fatal("Apply modified its input")
	}

	if out, err := w.Apply(make([]float64, 3)); !errors.Is(err, ErrSizeMismatch) || out != nil {
		t.Fatalf("Apply(3 samples) = %v, %v; want nil, ErrSizeMismatch", out, err)
	}
}

func TestHammingSizeOne(t *testing.T) {
	w := NewHamming(1, true)
	if w.Coefficient(0) != 1 {
		t.Fatalf("w[0] = %v, want 1", w.Coefficient(0))
	}
}

func TestSumSquare(t *testing.T) {
	w := NewPeriodicHamming(8)
	got := w.SumSquare(3, 4)
	if len(got) != 16 {
		t.Fatalf("len = %d, want 16", len(got))
	}

	want := make([]float64, 16)
	for f := range 3 {
		for n := range 8 {
			c := w.Coefficient(n)
			want[f*4+n] += c * c
		}
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("sum[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if w.SumSquare(0, 4) != nil {
		t.Fatal("zero frames should give nil")
	}
}
