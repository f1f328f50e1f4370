package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/wristlab/mims/pkg/bands"
	"github.com/wristlab/mims/pkg/dataset"
	"github.com/wristlab/mims/pkg/reshape"
	"github.com/wristlab/mims/pkg/stats"
)

func testData(t *testing.T) *Data {
	t.Helper()

	mims := make([]float64, bands.MinutesPerDay)
	for i := range mims {
		mims[i] = 20
	}
	participants := []dataset.Participant{
		{ID: "a", Gender: dataset.Male, Age: 30, MIMS: mims},
		{ID: "b", Gender: dataset.Female, Age: 64, MIMS: mims},
	}

	samples, err := reshape.Long(participants)
	if err != nil {
		t.Fatal(err)
	}
	means, err := stats.DailyMeans(participants)
	if err != nil {
		t.Fatal(err)
	}
	windows, err := stats.SmoothedProfile(participants)
	if err != nil {
		t.Fatal(err)
	}
	trend := stats.AgeTrend(samples)

	return &Data{
		Title:       "Wrist activity report",
		GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Cohort: Cohort{
			Participants: 2,
			Males:        1,
			Females:      1,
			AgeMin:       30,
			AgeMax:       64,
		},
		TimeBandGender: stats.ByTimeBandGender(samples),
		AgeBandGender:  stats.ByAgeBandGender(means),
		Windows:        windows,
		Hourly:         stats.HourlyProfile(samples),
		AgeTrend:       trend,
		GenderGap:      stats.GenderGap(trend),
	}
}

func TestWriteHTML(t *testing.T) {
	data := testData(t)

	var buf bytes.Buffer
	if err := WriteHTML(&buf, data); err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		"Wrist activity report",
		"Mean MIMS by time of day",
		"Daily mean MIMS by age group",
		"20.00", // the constant cohort mean must appear in the tables
		"echarts",
		"Activity around the clock",
		"Gender difference in activity",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("report HTML missing %q", want)
		}
	}

	// Tables must come inside the document body, not be appended after it.
	if strings.Index(html, "Mean MIMS by time of day") > strings.Index(html, "</body>") {
		t.Error("summary tables landed outside the document body")
	}
}

func TestMarkdownDigest(t *testing.T) {
	out, err := Markdown(testData(t))
	if err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}

	for _, want := range []string{"Wrist activity report", "20.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown digest missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<table>") {
		t.Error("markdown digest still contains raw HTML tables")
	}
}
