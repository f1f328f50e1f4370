package stats

import (
	"fmt"

	"github.com/wristlab/mims/pkg/bands"
)

// Smooth averages a full-day minute vector into disjoint 10-minute windows.
// The result always has exactly bands.WindowsPerDay values; window w is the
// mean of minutes [10(w-1)+1, 10w].
func Smooth(minuteValues []float64) ([]float64, error) {
	if len(minuteValues) != bands.MinutesPerDay {
		return nil, fmt.Errorf("smoothing needs %d minute values, got %d",
			bands.MinutesPerDay, len(minuteValues))
	}

	const width = bands.MinutesPerDay / bands.WindowsPerDay
	windows := make([]float64, bands.WindowsPerDay)
	for w := range windows {
		sum := 0.0
		for m := w * width; m < (w+1)*width; m++ {
			sum += minuteValues[m]
		}
		windows[w] = sum / width
	}
	return windows, nil
}
