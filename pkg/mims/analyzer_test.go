package mims

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wristlab/mims/pkg/bands"
	"github.com/wristlab/mims/pkg/dataset"
)

func writeTestDataset(t *testing.T) string {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("SEQN,gender,age")
	for minute := 1; minute <= bands.MinutesPerDay; minute++ {
		fmt.Fprintf(&sb, ",min_%d", minute)
	}
	sb.WriteString("\n")
	for _, row := range []struct {
		id     string
		gender string
		age    float64
		value  float64
	}{
		{"1001", "male", 25, 20},
		{"1002", "female", 25, 26},
		{"1003", "female", 70, 8},
	} {
		fmt.Fprintf(&sb, "%s,%s,%g", row.id, row.gender, row.age)
		for minute := 1; minute <= bands.MinutesPerDay; minute++ {
			fmt.Fprintf(&sb, ",%g", row.value)
		}
		sb.WriteString("\n")
	}

	path := filepath.Join(t.TempDir(), "cohort.csv")
	if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
}

func TestAnalyzeEndToEnd(t *testing.T) {
	ctx := context.Background()
	analyzer := NewWithLogger(ctx, testLogger(),
		WithDataPath(writeTestDataset(t)),
		WithNoCache(),
	)
	defer analyzer.Close() //nolint:errcheck // no cache configured

	data, err := analyzer.Analyze(ctx)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if data.Cohort.Participants != 3 || data.Cohort.Males != 1 || data.Cohort.Females != 2 {
		t.Errorf("unexpected cohort: %+v", data.Cohort)
	}
	if data.Cohort.AgeMin != 25 || data.Cohort.AgeMax != 70 {
		t.Errorf("unexpected age range: %+v", data.Cohort)
	}

	// 4 bands x 2 genders present.
	if len(data.TimeBandGender) != 8 {
		t.Errorf("time band rows = %d, want 8", len(data.TimeBandGender))
	}
	for _, row := range data.TimeBandGender {
		var want float64
		switch row.Gender {
		case dataset.Male:
			want = 20
		case dataset.Female:
			want = 17 // (26 + 8) / 2
		}
		if row.Summary.Mean != want {
			t.Errorf("%s %s mean = %v, want %v", row.TimeBand, row.Gender, row.Summary.Mean, want)
		}
	}

	// Constant-activity cohort: smoothed profile means equal the raw values.
	if len(data.Windows) != 2*bands.WindowsPerDay {
		t.Errorf("window points = %d, want %d", len(data.Windows), 2*bands.WindowsPerDay)
	}
	for _, pt := range data.Windows {
		if pt.Gender == dataset.Male && pt.Mean != 20 {
			t.Errorf("male window %d mean = %v, want exactly 20", pt.Window, pt.Mean)
		}
	}

	// The two 25-year-olds pair up for the gap view: 26 - 20 = 6 in every band.
	gapCount := 0
	for _, gap := range data.GenderGap {
		if gap.Age == 25 {
			gapCount++
			if gap.Gap != 6 {
				t.Errorf("age 25 %s gap = %v, want 6", gap.TimeBand, gap.Gap)
			}
		}
	}
	if gapCount != 4 {
		t.Errorf("age 25 gap points = %d, want 4", gapCount)
	}
}

func TestAnalyzeWithoutSource(t *testing.T) {
	ctx := context.Background()
	analyzer := NewWithLogger(ctx, testLogger(), WithNoCache())
	defer analyzer.Close() //nolint:errcheck // no cache configured

	if _, err := analyzer.Analyze(ctx); err == nil {
		t.Error("expected error with no dataset configured, got nil")
	}
}

func TestNarrateRequiresCredentials(t *testing.T) {
	ctx := context.Background()
	analyzer := NewWithLogger(ctx, testLogger(), WithNoCache())
	defer analyzer.Close() //nolint:errcheck // no cache configured

	if _, err := analyzer.Narrate(ctx, nil); err == nil {
		t.Error("expected error without Gemini credentials, got nil")
	}
}
