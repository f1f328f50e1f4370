package report

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/wristlab/mims/pkg/bands"
	"github.com/wristlab/mims/pkg/dataset"
	"github.com/wristlab/mims/pkg/stats"
)

// buildPage assembles the five chart views into one page.
func buildPage(data *Data) *components.Page {
	page := components.NewPage()
	page.PageTitle = data.Title
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		radialChart(data.Hourly),
		profileChart(data.Windows),
		distributionChart(data.AgeBandGender),
		trendChart(data.AgeTrend),
		gapChart(data.GenderGap),
	)
	return page
}

// windowLabel formats the clock time at which a 10-minute window starts.
func windowLabel(window int) string {
	startMinute := (window - 1) * 10
	return fmt.Sprintf("%02d:%02d", startMinute/60, startMinute%60)
}

// radialChart is the radar view of mean activity per clock hour.
func radialChart(points []stats.HourPoint) *charts.Radar {
	byGender := make(map[dataset.Gender][]float64)
	for _, gender := range dataset.Genders() {
		byGender[gender] = make([]float64, 24)
	}
	maxMean := 0.0
	for _, pt := range points {
		byGender[pt.Gender][pt.Hour] = pt.Mean
		if pt.Mean > maxMean {
			maxMean = pt.Mean
		}
	}

	indicators := make([]*opts.Indicator, 24)
	for hour := range 24 {
		indicators[hour] = &opts.Indicator{
			Name: fmt.Sprintf("%02d:00", hour),
			Max:  float32(maxMean * 1.1),
		}
	}

	radar := charts.NewRadar()
	radar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Activity around the clock",
			Subtitle: "Mean MIMS per hour of day",
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithRadarComponentOpts(opts.RadarComponent{Indicator: indicators}),
	)
	for _, gender := range dataset.Genders() {
		radar.AddSeries(string(gender), []opts.RadarData{
			{Name: string(gender), Value: byGender[gender]},
		})
	}
	return radar
}

// profileChart is the linear time-of-day view: smoothed gender means with a
// 2.5/97.5 percentile envelope.
func profileChart(points []stats.WindowPoint) *charts.Line {
	type series struct {
		mean  []opts.LineData
		lower []opts.LineData
		upper []opts.LineData
	}
	perGender := make(map[dataset.Gender]*series)
	for _, gender := range dataset.Genders() {
		perGender[gender] = &series{
			mean:  make([]opts.LineData, bands.WindowsPerDay),
			lower: make([]opts.LineData, bands.WindowsPerDay),
			upper: make([]opts.LineData, bands.WindowsPerDay),
		}
	}
	for _, pt := range points {
		s := perGender[pt.Gender]
		s.mean[pt.Window-1] = opts.LineData{Value: pt.Mean}
		s.lower[pt.Window-1] = opts.LineData{Value: pt.Lower}
		s.upper[pt.Window-1] = opts.LineData{Value: pt.Upper}
	}

	labels := make([]string, bands.WindowsPerDay)
	for w := range labels {
		labels[w] = windowLabel(w + 1)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Daily activity profile",
			Subtitle: "10-minute smoothed mean MIMS with 2.5/97.5 percentile envelope",
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "time of day"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "MIMS"}),
	)
	line.SetXAxis(labels)
	for _, gender := range dataset.Genders() {
		s := perGender[gender]
		line.AddSeries(string(gender), s.mean,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		line.AddSeries(string(gender)+" p2.5", s.lower,
			charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed", Opacity: 0.4}))
		line.AddSeries(string(gender)+" p97.5", s.upper,
			charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed", Opacity: 0.4}))
	}
	return line
}

// distributionChart shows the spread of per-participant daily means by age
// group and gender. The box whiskers carry the 2.5th and 97.5th percentiles,
// standing in for the violin view of the source analysis.
func distributionChart(rows []stats.AgeBandGenderRow) *charts.BoxPlot {
	type key struct {
		band   bands.AgeBand
		gender dataset.Gender
	}
	byKey := make(map[key]stats.Summary, len(rows))
	for _, row := range rows {
		byKey[key{row.AgeBand, row.Gender}] = row.Summary
	}

	labels := make([]string, 0, len(bands.AgeBands()))
	for _, band := range bands.AgeBands() {
		labels = append(labels, string(band))
	}

	box := charts.NewBoxPlot()
	box.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Daily activity by age group",
			Subtitle: "Per-participant daily mean MIMS (whiskers at p2.5/p97.5)",
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "age group"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "daily mean MIMS"}),
	)
	box.SetXAxis(labels)
	for _, gender := range dataset.Genders() {
		items := make([]opts.BoxPlotData, 0, len(bands.AgeBands()))
		for _, band := range bands.AgeBands() {
			summary, ok := byKey[key{band, gender}]
			if !ok {
				items = append(items, opts.BoxPlotData{})
				continue
			}
			items = append(items, opts.BoxPlotData{
				Value: []float64{summary.Lower, summary.Q1, summary.Median, summary.Q3, summary.Upper},
			})
		}
		box.AddSeries(string(gender), items)
	}
	return box
}

// trendChart is the faceted age-trend view: one series per (gender, time band).
func trendChart(points []stats.AgeTrendPoint) *charts.Line {
	ages := make([]int, 0)
	seen := make(map[int]bool)
	for _, pt := range points {
		if !seen[pt.Age] {
			seen[pt.Age] = true
			ages = append(ages, pt.Age)
		}
	}

	type key struct {
		age    int
		band   bands.TimeBand
		gender dataset.Gender
	}
	byKey := make(map[key]float64, len(points))
	for _, pt := range points {
		byKey[key{pt.Age, pt.TimeBand, pt.Gender}] = pt.Mean
	}

	labels := make([]string, len(ages))
	for i, age := range ages {
		labels[i] = fmt.Sprintf("%d", age)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Activity across the lifespan",
			Subtitle: "Mean MIMS by age, per time band and gender",
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "age"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "MIMS"}),
	)
	line.SetXAxis(labels)
	for _, gender := range dataset.Genders() {
		for _, band := range bands.TimeBands() {
			items := make([]opts.LineData, len(ages))
			for i, age := range ages {
				if mean, ok := byKey[key{age, band, gender}]; ok {
					items[i] = opts.LineData{Value: mean}
				}
			}
			line.AddSeries(fmt.Sprintf("%s %s", gender, band), items)
		}
	}
	return line
}

// gapChart is the paired-difference view: female minus male mean per age year,
// one series per time band.
func gapChart(points []stats.GenderGapPoint) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Gender difference in activity",
			Subtitle: "Female minus male mean MIMS per age year",
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "age", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "MIMS difference"}),
	)
	for _, band := range bands.TimeBands() {
		items := make([]opts.ScatterData, 0)
		for _, pt := range points {
			if pt.TimeBand != band {
				continue
			}
			items = append(items, opts.ScatterData{Value: []any{pt.Age, pt.Gap}})
		}
		scatter.AddSeries(string(band), items)
	}
	return scatter
}
