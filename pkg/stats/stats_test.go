package stats

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"single", []float64{4}, 4},
		{"pair", []float64{2, 4}, 3},
		{"constant", []float64{20, 20, 20, 20}, 20},
		{"mixed", []float64{1, 2, 3, 4, 5}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mean(tt.values); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Mean(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}

	if !math.IsNaN(Mean(nil)) {
		t.Error("Mean of empty slice should be NaN")
	}
}

func TestQuantile(t *testing.T) {
	values := []float64{5, 1, 3, 2, 4} // unsorted on purpose

	tests := []struct {
		q    float64
		want float64
	}{
		{0, 1},
		{0.25, 2},
		{0.5, 3},
		{0.75, 4},
		{1, 5},
		{0.125, 1.5}, // interpolated between 1 and 2
	}
	for _, tt := range tests {
		if got := Quantile(values, tt.q); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Quantile(%v, %v) = %v, want %v", values, tt.q, got, tt.want)
		}
	}

	// Quantile must not reorder its input.
	if values[0] != 5 || values[1] != 1 {
		t.Errorf("Quantile mutated its input: %v", values)
	}
}

func TestSummarizeConstantValues(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = 20
	}

	s := Summarize(values)
	if s.Count != 100 {
		t.Errorf("Count = %d, want 100", s.Count)
	}
	for name, got := range map[string]float64{
		"Mean": s.Mean, "Min": s.Min, "Max": s.Max,
		"Lower": s.Lower, "Q1": s.Q1, "Median": s.Median, "Q3": s.Q3, "Upper": s.Upper,
	} {
		if got != 20 {
			t.Errorf("%s = %v, want exactly 20", name, got)
		}
	}
}

func TestSummarizeOrdering(t *testing.T) {
	s := Summarize([]float64{9, 1, 7, 3, 5, 2, 8, 4, 6, 0})
	if s.Min != 0 || s.Max != 9 {
		t.Errorf("Min/Max = %v/%v, want 0/9", s.Min, s.Max)
	}
	if !(s.Lower <= s.Q1 && s.Q1 <= s.Median && s.Median <= s.Q3 && s.Q3 <= s.Upper) {
		t.Errorf("quantiles out of order: %+v", s)
	}
}
