// Package report renders the analysis document: summary tables plus the five
// exploratory chart views, as a single HTML page or a markdown digest.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wristlab/mims/pkg/stats"
)

// Cohort describes the loaded participants.
type Cohort struct {
	Participants int
	Males        int
	Females      int
	AgeMin       float64
	AgeMax       float64
}

// Data carries everything the report renders.
type Data struct {
	Title       string
	GeneratedAt time.Time
	Cohort      Cohort

	TimeBandGender []stats.TimeBandGenderRow
	AgeBandGender  []stats.AgeBandGenderRow
	Windows        []stats.WindowPoint
	Hourly         []stats.HourPoint
	AgeTrend       []stats.AgeTrendPoint
	GenderGap      []stats.GenderGapPoint
}

// WriteHTML renders the full report document to w.
func WriteHTML(w io.Writer, data *Data) error {
	tables, err := renderTables(data)
	if err != nil {
		return fmt.Errorf("rendering summary tables: %w", err)
	}

	page := buildPage(data)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("rendering chart page: %w", err)
	}

	// The chart page template has no slot for non-chart content, so the
	// summary tables are spliced in at the top of the body.
	html := strings.Replace(buf.String(), "<body>", "<body>\n"+tables, 1)
	if _, err := io.WriteString(w, html); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
