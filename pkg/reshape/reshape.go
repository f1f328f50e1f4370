// Package reshape transposes the per-participant activity vectors into the
// long-form table the aggregations run over: one row per (participant,
// minute-of-day), with demographics and derived bands joined on.
package reshape

import (
	"fmt"

	"github.com/wristlab/mims/pkg/bands"
	"github.com/wristlab/mims/pkg/dataset"
)

// Sample is one long-form row.
type Sample struct {
	ParticipantID string
	Gender        dataset.Gender
	AgeBand       bands.AgeBand
	TimeBand      bands.TimeBand
	Minute        int // 1..1440
	Age           float64
	Value         float64
}

// Long builds the long-form table. Every participant contributes exactly
// bands.MinutesPerDay samples; a participant whose activity vector has any
// other length fails the whole reshape.
func Long(participants []dataset.Participant) ([]Sample, error) {
	samples := make([]Sample, 0, len(participants)*bands.MinutesPerDay)

	for i := range participants {
		p := &participants[i]
		if len(p.MIMS) != bands.MinutesPerDay {
			return nil, fmt.Errorf("participant %s: %d minute values, want %d",
				p.ID, len(p.MIMS), bands.MinutesPerDay)
		}

		ageBand := bands.ForAge(p.Age)
		for m, value := range p.MIMS {
			minute := m + 1
			timeBand, err := bands.ForMinute(minute)
			if err != nil {
				return nil, fmt.Errorf("participant %s: %w", p.ID, err)
			}
			samples = append(samples, Sample{
				ParticipantID: p.ID,
				Minute:        minute,
				Value:         value,
				Gender:        p.Gender,
				Age:           p.Age,
				AgeBand:       ageBand,
				TimeBand:      timeBand,
			})
		}
	}

	return samples, nil
}
