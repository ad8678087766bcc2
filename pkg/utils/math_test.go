package utils

import (
	"math"
	"testing"
)

func TestClampFloat64(t *testing.T) {
	tests := []struct {
		value, min, max, want float64
	}{
		{0.3, 0.05, 0.5, 0.3},
		{0.01, 0.05, 0.5, 0.05},
		{0.9, 0.05, 0.5, 0.5},
	}
	for _, tt := range tests {
		if got := ClampFloat64(tt.value, tt.min, tt.max); got != tt.want {
			t.Errorf("ClampFloat64(%f, %f, %f) = %f, want %f", tt.value, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestMeanVarianceStdDev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	if got := Mean(values); got != 5 {
		t.Fatalf("Mean = %f, want 5", got)
	}
	if got := Variance(values); got != 4 {
		t.Fatalf("Variance = %f, want 4", got)
	}
	if got := StdDev(values); got != 2 {
		t.Fatalf("StdDev = %f, want 2", got)
	}
}

func TestMeanEmpty(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Fatalf("Mean(nil) = %f, want 0", got)
	}
	if got := StdDev(nil); got != 0 {
		t.Fatalf("StdDev(nil) = %f, want 0", got)
	}
}

func TestVarianceSingleValue(t *testing.T) {
	if got := Variance([]float64{3.5}); got != 0 {
		t.Fatalf("Variance of single value = %f, want 0", got)
	}
	if math.IsNaN(StdDev([]float64{3.5})) {
		t.Fatalf("StdDev of single value should not be NaN")
	}
}
