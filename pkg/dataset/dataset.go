// Package dataset loads the wrist-accelerometer source file: one row per
// participant carrying an identifier, gender, age and 1440 per-minute MIMS
// values. The loader restricts the frame to exactly those fields; any other
// columns in the source are dropped.
package dataset

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/wristlab/mims/pkg/bands"
)

// Gender is the participant's recorded gender.
type Gender string

// Gender values as recorded in the cohort.
const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Genders lists the gender values in display order.
func Genders() []Gender {
	return []Gender{Male, Female}
}

// Participant is one row of the source dataset.
type Participant struct {
	ID     string
	Gender Gender
	Age    float64
	MIMS   []float64 // exactly bands.MinutesPerDay values, minute 1 first
}

// Schema column names.
const (
	colID     = "SEQN"
	colGender = "gender"
	colAge    = "age"
)

func minuteCol(minute int) string {
	return fmt.Sprintf("min_%d", minute)
}

// Load reads the dataset from a CSV file on disk.
func Load(path string) ([]Participant, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer file.Close() //nolint:errcheck // read-only file

	participants, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	return participants, nil
}

// Read parses the dataset from CSV. The header must carry SEQN, gender, age
// and min_1..min_1440; extra columns are ignored.
func Read(r io.Reader) ([]Participant, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Error() != nil {
		return nil, fmt.Errorf("parsing CSV: %w", df.Error())
	}

	// Restrict the frame to the four fields of the schema.
	wanted := make([]string, 0, 3+bands.MinutesPerDay)
	wanted = append(wanted, colID, colGender, colAge)
	for minute := 1; minute <= bands.MinutesPerDay; minute++ {
		wanted = append(wanted, minuteCol(minute))
	}
	have := make(map[string]bool, len(df.Names()))
	for _, name := range df.Names() {
		have[name] = true
	}
	for _, name := range wanted {
		if !have[name] {
			return nil, fmt.Errorf("dataset missing column %q", name)
		}
	}
	df = df.Select(wanted)
	if df.Error() != nil {
		return nil, fmt.Errorf("selecting schema columns: %w", df.Error())
	}

	ids := df.Col(colID).Records()
	genders := df.Col(colGender).Records()
	ages := df.Col(colAge).Records()

	// Pull minute columns once; each is a full column of the frame.
	minutes := make([][]string, bands.MinutesPerDay)
	for m := 1; m <= bands.MinutesPerDay; m++ {
		minutes[m-1] = df.Col(minuteCol(m)).Records()
	}

	participants := make([]Participant, 0, df.Nrow())
	seen := make(map[string]bool, df.Nrow())
	for row := range df.Nrow() {
		id := strings.TrimSpace(ids[row])
		if id == "" {
			return nil, fmt.Errorf("row %d: empty participant identifier", row+1)
		}
		if seen[id] {
			return nil, fmt.Errorf("row %d: duplicate participant %s", row+1, id)
		}
		seen[id] = true

		gender, err := parseGender(genders[row])
		if err != nil {
			return nil, fmt.Errorf("participant %s: %w", id, err)
		}

		age, err := strconv.ParseFloat(strings.TrimSpace(ages[row]), 64)
		if err != nil || age < 0 {
			return nil, fmt.Errorf("participant %s: invalid age %q", id, ages[row])
		}

		mims := make([]float64, bands.MinutesPerDay)
		for m := range bands.MinutesPerDay {
			value, err := strconv.ParseFloat(strings.TrimSpace(minutes[m][row]), 64)
			if err != nil {
				return nil, fmt.Errorf("participant %s: invalid value %q at minute %d", id, minutes[m][row], m+1)
			}
			mims[m] = value
		}

		participants = append(participants, Participant{
			ID:     id,
			Gender: gender,
			Age:    age,
			MIMS:   mims,
		})
	}

	if len(participants) == 0 {
		return nil, fmt.Errorf("dataset contains no participants")
	}
	return participants, nil
}

// parseGender accepts both the labelled and the NHANES-coded forms
// (1 = male, 2 = female).
func parseGender(raw string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "m", "male":
		return Male, nil
	case "2", "f", "female":
		return Female, nil
	default:
		return "", fmt.Errorf("invalid gender %q", raw)
	}
}
