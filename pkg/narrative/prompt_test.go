package narrative

import (
	"strings"
	"testing"

	"github.com/wristlab/mims/pkg/bands"
	"github.com/wristlab/mims/pkg/dataset"
	"github.com/wristlab/mims/pkg/report"
	"github.com/wristlab/mims/pkg/stats"
)

func TestBuildPrompt(t *testing.T) {
	data := &report.Data{
		Cohort: report.Cohort{Participants: 3, Males: 1, Females: 2, AgeMin: 8, AgeMax: 71},
		TimeBandGender: []stats.TimeBandGenderRow{
			{TimeBand: bands.Morning, Gender: dataset.Female, Summary: stats.Summary{Count: 720, Mean: 14.5, Median: 13}},
		},
		AgeBandGender: []stats.AgeBandGenderRow{
			{AgeBand: bands.Age65Plus, Gender: dataset.Female, Summary: stats.Summary{Count: 1, Mean: 6.2, Lower: 6.2, Upper: 6.2}},
		},
		GenderGap: []stats.GenderGapPoint{
			{Age: 30, TimeBand: bands.Night, Gap: -0.5},
			{Age: 40, TimeBand: bands.Afternoon, Gap: 3.2},
		},
	}

	prompt := BuildPrompt(data)

	for _, want := range []string{
		"3 participants",
		"morning female: mean 14.50",
		"65+ female",
		"3.20 MIMS at age 40 (afternoon)",
		"MIMS",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
