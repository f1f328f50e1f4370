package histogram

import (
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/wristlab/mims/pkg/dataset"
	"github.com/wristlab/mims/pkg/stats"
)

func TestRenderProfile(t *testing.T) {
	color.NoColor = true

	var points []stats.HourPoint
	for hour := range 24 {
		mean := 5.0
		if hour == 14 {
			mean = 50 // afternoon peak
		}
		if hour == 3 {
			mean = 0.5 // night nadir
		}
		points = append(points,
			stats.HourPoint{Hour: hour, Gender: dataset.Male, Mean: mean},
			stats.HourPoint{Hour: hour, Gender: dataset.Female, Mean: mean + 1},
		)
	}

	out := Render(points)

	for _, want := range []string{"00:00", "23:00", "Activity Profile"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// Peak and nadir markers must sit on the right lines.
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "14:00"):
			if !strings.Contains(line, "^") {
				t.Errorf("peak hour line missing marker: %q", line)
			}
		case strings.HasPrefix(line, "03:00"):
			if !strings.Contains(line, "z") {
				t.Errorf("nadir hour line missing marker: %q", line)
			}
		case strings.HasPrefix(line, "10:00"):
			if strings.Contains(line, "^") || strings.Contains(line, " z ") {
				t.Errorf("ordinary hour line has a marker: %q", line)
			}
		}
	}
}

// Inputs covering only part of the day must place peak and nadir among the
// hours that actually have data, not default to midnight.
func TestRenderPartialDay(t *testing.T) {
	color.NoColor = true

	var points []stats.HourPoint
	for hour := 8; hour <= 17; hour++ {
		mean := 10.0
		if hour == 12 {
			mean = 2 // midday dip
		}
		if hour == 16 {
			mean = 40
		}
		points = append(points, stats.HourPoint{Hour: hour, Gender: dataset.Male, Mean: mean})
	}

	out := Render(points)

	if strings.Contains(out, "00:00") {
		t.Errorf("output includes an hour with no data:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "12:00"):
			if !strings.Contains(line, "z") {
				t.Errorf("nadir marker missing from lowest hour: %q", line)
			}
		case strings.HasPrefix(line, "16:00"):
			if !strings.Contains(line, "^") {
				t.Errorf("peak marker missing from highest hour: %q", line)
			}
		case strings.HasPrefix(line, "08:00"):
			if strings.Contains(line, "^") || strings.Contains(line, " z ") {
				t.Errorf("ordinary hour line has a marker: %q", line)
			}
		}
	}
}

func TestRenderEmpty(t *testing.T) {
	color.NoColor = true
	out := Render(nil)
	if !strings.Contains(out, "No activity data") {
		t.Errorf("unexpected empty-input output: %q", out)
	}
}
