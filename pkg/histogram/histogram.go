// Package histogram renders the cohort's time-of-day activity profile as a
// terminal chart: one line per clock hour with side-by-side gender bars.
package histogram

import (
	"fmt"
	"math"
	"strings"

	"github.com/fatih/color"

	"github.com/wristlab/mims/pkg/dataset"
	"github.com/wristlab/mims/pkg/stats"
)

const maxBarLength = 30

func genderColor(gender dataset.Gender) *color.Color {
	if gender == dataset.Female {
		return color.New(color.FgMagenta)
	}
	return color.New(color.FgBlue)
}

// Render builds the terminal profile from hourly mean activity points.
func Render(points []stats.HourPoint) string {
	var output strings.Builder

	output.WriteString("📊 Activity Profile (hourly mean MIMS)\n")
	output.WriteString(strings.Repeat("─", 50) + "\n")

	if len(points) == 0 {
		return output.String() + "No activity data available\n"
	}

	means := make(map[int]map[dataset.Gender]float64, 24)
	combined := make(map[int]float64, 24)
	maxMean := 0.0
	for _, pt := range points {
		if means[pt.Hour] == nil {
			means[pt.Hour] = make(map[dataset.Gender]float64, 2)
		}
		means[pt.Hour][pt.Gender] = pt.Mean
		combined[pt.Hour] += pt.Mean
		maxMean = math.Max(maxMean, pt.Mean)
	}
	if maxMean == 0 {
		return output.String() + "No activity recorded\n"
	}

	// Peak and nadir only consider hours that have data.
	peakHour, nadirHour := -1, -1
	for hour := range 24 {
		total, ok := combined[hour]
		if !ok {
			continue
		}
		if peakHour == -1 || total > combined[peakHour] {
			peakHour = hour
		}
		if nadirHour == -1 || total < combined[nadirHour] {
			nadirHour = hour
		}
	}

	for hour := range 24 {
		hourMeans, ok := means[hour]
		if !ok {
			continue
		}

		// Hour marker: peak hour, nadir hour, or blank.
		marker := "  "
		switch hour {
		case peakHour:
			marker = color.New(color.FgYellow).Sprint("^") + " "
		case nadirHour:
			marker = color.New(color.FgBlue).Sprint("z") + " "
		}

		line := fmt.Sprintf("%02d:00 %s", hour, marker)

		var bars []string
		for _, gender := range dataset.Genders() {
			mean, ok := hourMeans[gender]
			if !ok {
				continue
			}
			length := int(math.Round(mean / maxMean * maxBarLength))
			bar := "·"
			if length > 0 {
				bar = strings.Repeat("█", length)
			}
			bars = append(bars, fmt.Sprintf("%s %5.1f", genderColor(gender).Sprint(bar), mean))
		}
		line += strings.Join(bars, "  ")

		output.WriteString(line + "\n")

		// Visual break at the 6-hour band boundaries.
		if hour == 5 || hour == 11 || hour == 17 {
			output.WriteString(strings.Repeat("·", 50) + "\n")
		}
	}

	output.WriteString(strings.Repeat("─", 50) + "\n")
	legend := fmt.Sprintf("%s male  %s female  ^ peak  z nadir\n",
		genderColor(dataset.Male).Sprint("█"),
		genderColor(dataset.Female).Sprint("█"))
	output.WriteString(legend)

	return output.String()
}
