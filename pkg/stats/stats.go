// Package stats computes the descriptive summaries the report is built from:
// grouped means, quantiles and the 10-minute smoothed activity profiles.
package stats

import (
	"math"
	"sort"
)

// Summary holds descriptive statistics over one group of values.
type Summary struct {
	Count  int
	Mean   float64
	Min    float64
	Max    float64
	Lower  float64 // 2.5th percentile
	Q1     float64
	Median float64
	Q3     float64
	Upper  float64 // 97.5th percentile
}

// Mean returns the arithmetic mean, or NaN for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Quantile returns the q-th quantile (q in [0,1]) of values using linear
// interpolation between order statistics. values need not be sorted.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}

	h := q * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	frac := h - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Summarize computes the full summary over one group of values.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	minVal := values[0]
	maxVal := values[0]
	for _, v := range values {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}

	return Summary{
		Count:  len(values),
		Mean:   Mean(values),
		Min:    minVal,
		Max:    maxVal,
		Lower:  Quantile(values, 0.025),
		Q1:     Quantile(values, 0.25),
		Median: Quantile(values, 0.5),
		Q3:     Quantile(values, 0.75),
		Upper:  Quantile(values, 0.975),
	}
}
