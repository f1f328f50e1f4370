package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wristlab/mims/pkg/bands"
	"github.com/wristlab/mims/pkg/dlcache"
)

// buildCSV renders a minimal dataset: header plus one row per entry, with the
// given constant MIMS value repeated across all 1440 minute columns.
func buildCSV(rows []struct {
	id     string
	gender string
	age    string
	value  float64
}) string {
	var sb strings.Builder
	sb.WriteString("SEQN,gender,age")
	for minute := 1; minute <= bands.MinutesPerDay; minute++ {
		fmt.Fprintf(&sb, ",min_%d", minute)
	}
	sb.WriteString("\n")
	for _, row := range rows {
		fmt.Fprintf(&sb, "%s,%s,%s", row.id, row.gender, row.age)
		for minute := 1; minute <= bands.MinutesPerDay; minute++ {
			fmt.Fprintf(&sb, ",%g", row.value)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func TestReadParsesParticipants(t *testing.T) {
	csv := buildCSV([]struct {
		id     string
		gender string
		age    string
		value  float64
	}{
		{"62161", "male", "22", 12.5},
		{"62162", "2", "7.5", 3},
	})

	participants, err := Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(participants))
	}

	first := participants[0]
	if first.ID != "62161" || first.Gender != Male || first.Age != 22 {
		t.Errorf("unexpected first participant: %+v", first)
	}
	if len(first.MIMS) != bands.MinutesPerDay {
		t.Fatalf("expected %d minute values, got %d", bands.MinutesPerDay, len(first.MIMS))
	}
	for minute, value := range first.MIMS {
		if value != 12.5 {
			t.Fatalf("minute %d: got %v, want 12.5", minute+1, value)
		}
	}

	// NHANES-coded gender (2 = female) must parse too.
	if participants[1].Gender != Female {
		t.Errorf("coded gender 2 parsed as %q, want female", participants[1].Gender)
	}
}

func TestReadRejectsBadInput(t *testing.T) {
	good := struct {
		id     string
		gender string
		age    string
		value  float64
	}{"1001", "female", "40", 5}

	tests := []struct {
		name string
		csv  string
	}{
		{
			"missing minute column",
			"SEQN,gender,age,min_1\n1001,female,40,5\n",
		},
		{
			"invalid gender",
			buildCSV([]struct {
				id     string
				gender string
				age    string
				value  float64
			}{{"1001", "unknown", "40", 5}}),
		},
		{
			"negative age",
			buildCSV([]struct {
				id     string
				gender string
				age    string
				value  float64
			}{{"1001", "female", "-3", 5}}),
		},
		{
			"duplicate participant",
			buildCSV([]struct {
				id     string
				gender string
				age    string
				value  float64
			}{good, good}),
		},
		{
			"empty dataset",
			buildCSV(nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(tt.csv)); err == nil {
				t.Errorf("expected error, got nil")
			}
		})
	}
}

func TestReadRejectsNonNumericValue(t *testing.T) {
	csv := buildCSV([]struct {
		id     string
		gender string
		age    string
		value  float64
	}{{"1001", "male", "30", 1}})
	csv = strings.Replace(csv, ",1,", ",oops,", 1)

	if _, err := Read(strings.NewReader(csv)); err == nil {
		t.Error("expected error for non-numeric minute value, got nil")
	}
}

func TestFetchRetriesAndCaches(t *testing.T) {
	csv := buildCSV([]struct {
		id     string
		gender string
		age    string
		value  float64
	}{{"1001", "male", "30", 20}})

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, csv)
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	cache := dlcache.NewMemoryOnly(time.Hour, logger)
	fetcher := NewFetcher(cache, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	participants, err := fetcher.Fetch(ctx, srv.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(participants) != 1 || participants[0].ID != "1001" {
		t.Fatalf("unexpected participants: %+v", participants)
	}
	if requests != 2 {
		t.Errorf("expected 2 requests (one retry), got %d", requests)
	}

	// Second fetch must come from cache without touching the server.
	if _, err := fetcher.Fetch(ctx, srv.URL); err != nil {
		t.Fatalf("cached Fetch failed: %v", err)
	}
	if requests != 2 {
		t.Errorf("cached fetch hit the server: %d requests", requests)
	}
}
