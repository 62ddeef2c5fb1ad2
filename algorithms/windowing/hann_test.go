package windowing

import (
	"math"
	"testing"
)

func TestHannCoefficients(t *testing.T) {
	h := NewHann(8)
	coeffs := h.Coefficients()

	if len(coeffs) != 8 {
		t.Fatalf("size = %d, want 8", len(coeffs))
	}
	if coeffs[0] != 0 {
		t.Errorf("first coefficient = %g, want 0", coeffs[0])
	}
	// Periodic Hann: w[n] = 0.5 - 0.5 cos(2 pi n / N)
	for n, got := range coeffs {
		want := 0.5 - 0.5*math.Cos(2*math.Pi*float64(n)/8)
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("coeff[%d] = %g, want %g", n, got, want)
		}
	}
}

func TestHannApplyInPlace(t *testing.T) {
	h := NewHann(4)

	signal := []float64{1, 1, 1, 1}
	if err := h.ApplyInPlace(signal); err != nil {
		t.Fatalf("ApplyInPlace: %v", err)
	}
	for n, got := range signal {
		want := 0.5 - 0.5*math.Cos(2*math.Pi*float64(n)/4)
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("sample %d = %g, want %g", n, got, want)
		}
	}

	if err := h.ApplyInPlace(make([]float64, 3)); err == nil {
		t.Error("expected error for length mismatch")
	}
}
