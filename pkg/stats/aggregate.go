package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/wristlab/mims/pkg/bands"
	"github.com/wristlab/mims/pkg/dataset"
	"github.com/wristlab/mims/pkg/reshape"
)

// TimeBandGenderRow is the grouped summary over (time band, gender).
type TimeBandGenderRow struct {
	TimeBand bands.TimeBand
	Gender   dataset.Gender
	Summary  Summary
}

// ByTimeBandGender summarizes all samples grouped by time band and gender.
// Rows come back in clock order, male before female within a band.
func ByTimeBandGender(samples []reshape.Sample) []TimeBandGenderRow {
	type key struct {
		band   bands.TimeBand
		gender dataset.Gender
	}
	groups := make(map[key][]float64)
	for _, s := range samples {
		k := key{s.TimeBand, s.Gender}
		groups[k] = append(groups[k], s.Value)
	}

	var rows []TimeBandGenderRow
	for _, band := range bands.TimeBands() {
		for _, gender := range dataset.Genders() {
			values, ok := groups[key{band, gender}]
			if !ok {
				continue
			}
			rows = append(rows, TimeBandGenderRow{
				TimeBand: band,
				Gender:   gender,
				Summary:  Summarize(values),
			})
		}
	}
	return rows
}

// ParticipantMean is one participant's whole-day mean activity.
type ParticipantMean struct {
	ParticipantID string
	Gender        dataset.Gender
	AgeBand       bands.AgeBand
	Age           float64
	Mean          float64
}

// DailyMeans computes each participant's mean activity over the whole day.
func DailyMeans(participants []dataset.Participant) ([]ParticipantMean, error) {
	means := make([]ParticipantMean, 0, len(participants))
	for i := range participants {
		p := &participants[i]
		if len(p.MIMS) != bands.MinutesPerDay {
			return nil, fmt.Errorf("participant %s: %d minute values, want %d",
				p.ID, len(p.MIMS), bands.MinutesPerDay)
		}
		means = append(means, ParticipantMean{
			ParticipantID: p.ID,
			Gender:        p.Gender,
			Age:           p.Age,
			AgeBand:       bands.ForAge(p.Age),
			Mean:          Mean(p.MIMS),
		})
	}
	return means, nil
}

// AgeBandGenderRow summarizes per-participant daily means over
// (age band, gender). This is the distribution the violin/box view renders.
type AgeBandGenderRow struct {
	AgeBand bands.AgeBand
	Gender  dataset.Gender
	Summary Summary
}

// ByAgeBandGender groups participant daily means by age band and gender.
func ByAgeBandGender(means []ParticipantMean) []AgeBandGenderRow {
	type key struct {
		band   bands.AgeBand
		gender dataset.Gender
	}
	groups := make(map[key][]float64)
	for _, m := range means {
		k := key{m.AgeBand, m.Gender}
		groups[k] = append(groups[k], m.Mean)
	}

	var rows []AgeBandGenderRow
	for _, band := range bands.AgeBands() {
		for _, gender := range dataset.Genders() {
			values, ok := groups[key{band, gender}]
			if !ok {
				continue
			}
			rows = append(rows, AgeBandGenderRow{
				AgeBand: band,
				Gender:  gender,
				Summary: Summarize(values),
			})
		}
	}
	return rows
}

// WindowPoint is the cohort profile at one 10-minute window for one gender:
// the mean of participants' smoothed values plus the 2.5th/97.5th percentile
// envelope across participants.
type WindowPoint struct {
	Window int // 1..bands.WindowsPerDay
	Gender dataset.Gender
	Mean   float64
	Lower  float64
	Upper  float64
}

// SmoothedProfile smooths every participant into 10-minute windows and
// summarizes each window across participants, per gender. Points come back
// ordered by window then gender.
func SmoothedProfile(participants []dataset.Participant) ([]WindowPoint, error) {
	// window values per gender: [gender][window] -> participant values
	perWindow := make(map[dataset.Gender][][]float64)
	for _, gender := range dataset.Genders() {
		perWindow[gender] = make([][]float64, bands.WindowsPerDay)
	}

	for i := range participants {
		p := &participants[i]
		smoothed, err := Smooth(p.MIMS)
		if err != nil {
			return nil, fmt.Errorf("participant %s: %w", p.ID, err)
		}
		for w, value := range smoothed {
			perWindow[p.Gender][w] = append(perWindow[p.Gender][w], value)
		}
	}

	var points []WindowPoint
	for w := range bands.WindowsPerDay {
		for _, gender := range dataset.Genders() {
			values := perWindow[gender][w]
			if len(values) == 0 {
				continue
			}
			points = append(points, WindowPoint{
				Window: w + 1,
				Gender: gender,
				Mean:   Mean(values),
				Lower:  Quantile(values, 0.025),
				Upper:  Quantile(values, 0.975),
			})
		}
	}
	return points, nil
}

// HourPoint is the mean activity at one clock hour for one gender.
type HourPoint struct {
	Hour   int // 0..23
	Gender dataset.Gender
	Mean   float64
}

// HourlyProfile averages all samples by clock hour and gender, in hour order.
func HourlyProfile(samples []reshape.Sample) []HourPoint {
	type key struct {
		hour   int
		gender dataset.Gender
	}
	groups := make(map[key][]float64)
	for _, s := range samples {
		k := key{bands.HourOfDay(s.Minute), s.Gender}
		groups[k] = append(groups[k], s.Value)
	}

	var points []HourPoint
	for hour := range 24 {
		for _, gender := range dataset.Genders() {
			values, ok := groups[key{hour, gender}]
			if !ok {
				continue
			}
			points = append(points, HourPoint{Hour: hour, Gender: gender, Mean: Mean(values)})
		}
	}
	return points
}

// AgeTrendPoint is the mean activity for one (age year, time band, gender)
// cell. Age years are floors of the recorded ages.
type AgeTrendPoint struct {
	Age      int
	TimeBand bands.TimeBand
	Gender   dataset.Gender
	Mean     float64
}

// AgeTrend averages samples by whole age year, time band and gender.
// Points come back ordered by age, then clock order, then gender.
func AgeTrend(samples []reshape.Sample) []AgeTrendPoint {
	type key struct {
		age    int
		band   bands.TimeBand
		gender dataset.Gender
	}
	groups := make(map[key][]float64)
	ageSet := make(map[int]bool)
	for _, s := range samples {
		age := int(math.Floor(s.Age))
		ageSet[age] = true
		k := key{age, s.TimeBand, s.Gender}
		groups[k] = append(groups[k], s.Value)
	}

	ages := make([]int, 0, len(ageSet))
	for age := range ageSet {
		ages = append(ages, age)
	}
	sort.Ints(ages)

	var points []AgeTrendPoint
	for _, age := range ages {
		for _, band := range bands.TimeBands() {
			for _, gender := range dataset.Genders() {
				values, ok := groups[key{age, band, gender}]
				if !ok {
					continue
				}
				points = append(points, AgeTrendPoint{
					Age:      age,
					TimeBand: band,
					Gender:   gender,
					Mean:     Mean(values),
				})
			}
		}
	}
	return points
}

// GenderGapPoint is the paired female-minus-male difference of mean activity
// for one (age year, time band) cell.
type GenderGapPoint struct {
	Age      int
	TimeBand bands.TimeBand
	Gap      float64
}

// GenderGap pairs the age-trend cells by gender and keeps only cells where
// both genders are represented.
func GenderGap(trend []AgeTrendPoint) []GenderGapPoint {
	type key struct {
		age  int
		band bands.TimeBand
	}
	females := make(map[key]float64)
	males := make(map[key]float64)
	var order []key
	seen := make(map[key]bool)

	for _, p := range trend {
		k := key{p.Age, p.TimeBand}
		if !seen[k] {
			seen[k] = true
			order = append(order, k)
		}
		switch p.Gender {
		case dataset.Female:
			females[k] = p.Mean
		case dataset.Male:
			males[k] = p.Mean
		}
	}

	var points []GenderGapPoint
	for _, k := range order {
		female, okF := females[k]
		male, okM := males[k]
		if !okF || !okM {
			continue
		}
		points = append(points, GenderGapPoint{Age: k.age, TimeBand: k.band, Gap: female - male})
	}
	return points
}
