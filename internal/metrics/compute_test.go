package metrics

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMean(t *testing.T) {
	if got := Mean([]float64{0.05, 0.10, 0.03}); !almostEqual(got, 0.06) {
		t.Errorf("expected 0.06, got %f", got)
	}
	if got := Mean(nil); got != 0 {
		t.Errorf("expected 0 on empty, got %f", got)
	}
}

func TestMedian_Odd(t *testing.T) {
	if got := Median([]float64{3, 1, 2}); got != 2 {
		t.Errorf("expected 2, got %f", got)
	}
}

func TestMedian_Even(t *testing.T) {
	if got := Median([]float64{4, 1, 3, 2}); !almostEqual(got, 2.5) {
		t.Errorf("expected 2.5, got %f", got)
	}
}

func TestMedian_DoesNotMutateInput(t *testing.T) {
	xs := []float64{3, 1, 2}
	_ = Median(xs)
	if xs[0] != 3 || xs[1] != 1 || xs[2] != 2 {
		t.Errorf("input mutated: %v", xs)
	}
}

func TestWinRate(t *testing.T) {
	// Zero is not a win
	if got := WinRate([]float64{0.05, -0.02, 0.0, 0.01}); !almostEqual(got, 0.5) {
		t.Errorf("expected 0.5, got %f", got)
	}
	if got := WinRate(nil); got != 0 {
		t.Errorf("expected 0 on empty, got %f", got)
	}
}

func TestStddevPopulation(t *testing.T) {
	// Variance of {1,2,3,4} around 2.5 is 1.25
	if got := StddevPopulation([]float64{1, 2, 3, 4}); !almostEqual(got, math.Sqrt(1.25)) {
		t.Errorf("expected sqrt(1.25), got %f", got)
	}
	if got := StddevPopulation([]float64{5}); got != 0 {
		t.Errorf("expected 0 for single value, got %f", got)
	}
}

func TestStddevSample(t *testing.T) {
	// Sample variance of {1,2,3,4} is 5/3
	if got := StddevSample([]float64{1, 2, 3, 4}); !almostEqual(got, math.Sqrt(5.0/3.0)) {
		t.Errorf("expected sqrt(5/3), got %f", got)
	}
	if got := StddevSample([]float64{5}); got != 0 {
		t.Errorf("expected 0 below two samples, got %f", got)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}

	if got := Percentile(sorted, 0.5); got != 3 {
		t.Errorf("expected median 3, got %f", got)
	}
	if got := Percentile(sorted, 0.0); got != 1 {
		t.Errorf("expected min 1, got %f", got)
	}
	if got := Percentile(sorted, 1.0); got != 5 {
		t.Errorf("expected max 5, got %f", got)
	}
	// Linear interpolation between ranks
	if got := Percentile([]float64{1, 2}, 0.25); !almostEqual(got, 1.25) {
		t.Errorf("expected 1.25, got %f", got)
	}
}
