package narrative

import (
	"fmt"
	"strings"

	"github.com/wristlab/mims/pkg/report"
)

// BuildPrompt formats the computed aggregates into the evidence block the
// model is asked to comment on.
func BuildPrompt(data *report.Data) string {
	var sb strings.Builder

	sb.WriteString("You are summarizing a wrist-accelerometer activity analysis of an NHANES cohort.\n")
	sb.WriteString("Activity is measured in MIMS (Monitor-Independent Movement Summary) per minute.\n")
	sb.WriteString("Describe the most notable age and gender contrasts in the evidence below.\n")
	sb.WriteString("Do not speculate beyond the numbers.\n\n")

	fmt.Fprintf(&sb, "Cohort: %d participants (%d male, %d female), ages %.0f-%.0f.\n\n",
		data.Cohort.Participants, data.Cohort.Males, data.Cohort.Females,
		data.Cohort.AgeMin, data.Cohort.AgeMax)

	sb.WriteString("Mean MIMS by time band and gender:\n")
	for _, row := range data.TimeBandGender {
		fmt.Fprintf(&sb, "- %s %s: mean %.2f, median %.2f (n=%d minutes)\n",
			row.TimeBand, row.Gender, row.Summary.Mean, row.Summary.Median, row.Summary.Count)
	}

	sb.WriteString("\nDaily mean MIMS by age group and gender:\n")
	for _, row := range data.AgeBandGender {
		fmt.Fprintf(&sb, "- %s %s: mean %.2f, p2.5 %.2f, p97.5 %.2f (n=%d participants)\n",
			row.AgeBand, row.Gender, row.Summary.Mean, row.Summary.Lower, row.Summary.Upper, row.Summary.Count)
	}

	if len(data.GenderGap) > 0 {
		largest := data.GenderGap[0]
		for _, gap := range data.GenderGap {
			if abs(gap.Gap) > abs(largest.Gap) {
				largest = gap
			}
		}
		fmt.Fprintf(&sb, "\nLargest female-minus-male difference: %.2f MIMS at age %d (%s).\n",
			largest.Gap, largest.Age, largest.TimeBand)
	}

	return sb.String()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
