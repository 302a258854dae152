package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var riskColors = []string{"#28a745", "#ffc107", "#fd7e14", "#dc3545"}

// WriteChartPage renders the board's datasets as an ECharts HTML page.
func WriteChartPage(w io.Writer, b Board) error {
	page := components.NewPage()
	page.PageTitle = "Surgery Dashboard"

	if ds, ok := b.Charts[ChartRisk]; ok {
		page.AddCharts(riskChart(ds))
	}
	if ds, ok := b.Charts[ChartASA]; ok {
		page.AddCharts(asaChart(ds))
	}
	if ds, ok := b.Charts[ChartWeekly]; ok {
		page.AddCharts(weeklyChart(ds))
	}

	return page.Render(w)
}

// WriteChartFile rewrites path atomically with the current chart page.
func WriteChartFile(path string, b Board) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".charts-*.html")
	if err != nil {
		return fmt.Errorf("error creating chart file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteChartPage(tmp, b); err != nil {
		tmp.Close()
		return fmt.Errorf("error rendering charts: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing chart file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

func riskChart(ds Dataset) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Risk distribution"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
	)

	items := make([]opts.PieData, 0, len(ds.Values))
	for i, v := range ds.Values {
		item := opts.PieData{Name: label(ds, i), Value: v}
		if i < len(riskColors) {
			item.ItemStyle = &opts.ItemStyle{Color: riskColors[i]}
		}
		items = append(items, item)
	}

	pie.AddSeries("risk", items, charts.WithPieChartOpts(opts.PieChart{
		Radius: []string{"50%", "75%"},
	}))
	return pie
}

func asaChart(ds Dataset) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "ASA distribution"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	items := make([]opts.BarData, 0, len(ds.Values))
	for _, v := range ds.Values {
		items = append(items, opts.BarData{Value: v})
	}
	bar.SetXAxis(ds.Labels).AddSeries("Patients", items,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#2B4570"}),
	)
	return bar
}

func weeklyChart(ds Dataset) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Surgeries per week"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	items := make([]opts.LineData, 0, len(ds.Values))
	for _, v := range ds.Values {
		items = append(items, opts.LineData{Value: v})
	}
	line.SetXAxis(ds.Labels).AddSeries("Surgeries", items,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
	)
	return line
}

func label(ds Dataset, i int) string {
	if i < len(ds.Labels) {
		return ds.Labels[i]
	}
	return fmt.Sprintf("#%d", i+1)
}
