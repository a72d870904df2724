package analysis

import (
	"math"
	"testing"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"Empty", []float64{}, 0},
		{"Single", []float64{5}, 5},
		{"OddCount", []float64{1, 3, 2, 4, 5}, 3},
		{"EvenCount", []float64{1, 2, 3, 4}, 2.5},
		{"Unsorted", []float64{10, 2, 8, 4, 6}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Median(tt.values); got != tt.expected {
				t.Errorf("Median() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStdDevPopulation(t *testing.T) {
	// Population stddev of [2,4,4,4,5,5,7,9] is exactly 2.
	got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if math.Abs(got-2) > 1e-9 {
		t.Errorf("StdDev() = %v, want 2", got)
	}

	if got := StdDev(nil); got != 0 {
		t.Errorf("StdDev(nil) = %v, want 0", got)
	}
}

func TestRemoveOutliersIQR(t *testing.T) {
	tests := []struct {
		name         string
		values       []float64
		wantKept     []float64
		wantOutliers []float64
	}{
		{
			// The canonical lead-time sample: 45 is far outside Q3 + 1.5*IQR.
			name:         "DiscardsHighOutlier",
			values:       []float64{5, 6, 6, 7, 45},
			wantKept:     []float64{5, 6, 6, 7},
			wantOutliers: []float64{45},
		},
		{
			name:         "KeepsAllUnderFourSamples",
			values:       []float64{2, 30, 3},
			wantKept:     []float64{2, 30, 3},
			wantOutliers: nil,
		},
		{
			name:         "NoOutliers",
			values:       []float64{4, 5, 5, 6},
			wantKept:     []float64{4, 5, 5, 6},
			wantOutliers: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, outliers := RemoveOutliersIQR(tt.values)
			if !equalFloats(kept, tt.wantKept) {
				t.Errorf("kept = %v, want %v", kept, tt.wantKept)
			}
			if !equalFloats(outliers, tt.wantOutliers) {
				t.Errorf("outliers = %v, want %v", outliers, tt.wantOutliers)
			}
		})
	}
}

func TestRemoveOutliersIQRMedianAfterCleaning(t *testing.T) {
	kept, _ := RemoveOutliersIQR([]float64{5, 6, 6, 7, 45})
	if got := Median(kept); got != 6 {
		t.Errorf("Median(kept) = %v, want 6", got)
	}
}

func TestCoefficientOfVariation(t *testing.T) {
	if got := CoefficientOfVariation([]float64{10, 10, 10}); got != 0 {
		t.Errorf("CV of constant series = %v, want 0", got)
	}

	got := CoefficientOfVariation([]float64{10, 100, 10, 100})
	if math.Abs(got-45.0/55.0) > 1e-9 {
		t.Errorf("CV = %v, want %v", got, 45.0/55.0)
	}

	if got := CoefficientOfVariation(nil); got != 0 {
		t.Errorf("CV(nil) = %v, want 0", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{0.5, 0, 1, 0.5},
	}

	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
