package report

import (
	"bytes"
	"fmt"
	"html/template"
)

// tablesTemplate is the non-chart head of the report: cohort summary plus the
// two grouped summary tables.
const tablesTemplate = `<div class="summary">
<h1>{{.Title}}</h1>
<p>Generated {{.GeneratedAt.Format "2006-01-02 15:04"}}.
{{.Cohort.Participants}} participants
({{.Cohort.Males}} male, {{.Cohort.Females}} female),
ages {{printf "%.0f" .Cohort.AgeMin}}&ndash;{{printf "%.0f" .Cohort.AgeMax}}.</p>

<h2>Mean MIMS by time of day and gender</h2>
<table>
<thead><tr><th>Time band</th><th>Gender</th><th>Minutes</th><th>Mean</th><th>Median</th></tr></thead>
<tbody>
{{- range .TimeBandGender}}
<tr><td>{{.TimeBand}}</td><td>{{.Gender}}</td><td>{{.Summary.Count}}</td><td>{{fmt .Summary.Mean}}</td><td>{{fmt .Summary.Median}}</td></tr>
{{- end}}
</tbody>
</table>

<h2>Daily mean MIMS by age group and gender</h2>
<table>
<thead><tr><th>Age group</th><th>Gender</th><th>Participants</th><th>Mean</th><th>P2.5</th><th>Median</th><th>P97.5</th></tr></thead>
<tbody>
{{- range .AgeBandGender}}
<tr><td>{{.AgeBand}}</td><td>{{.Gender}}</td><td>{{.Summary.Count}}</td><td>{{fmt .Summary.Mean}}</td><td>{{fmt .Summary.Lower}}</td><td>{{fmt .Summary.Median}}</td><td>{{fmt .Summary.Upper}}</td></tr>
{{- end}}
</tbody>
</table>
</div>
`

var tablesTmpl = template.Must(template.New("tables").Funcs(template.FuncMap{
	"fmt": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}).Parse(tablesTemplate))

func renderTables(data *Data) (string, error) {
	var buf bytes.Buffer
	if err := tablesTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
