package charts

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-gota/gota/dataframe"

	"agri-dashboard/internal/models"
	"agri-dashboard/internal/services"
)

// BarChartID is the DOM id of the top regions chart.
const BarChartID = "top_regions"

// MakeBarChart draws the first TopN rows of a sorted year view as horizontal
// bars, one per area, with bar length and color taken from metric. The
// longest bar is on top.
func MakeBarChart(sorted dataframe.DataFrame, metric string, o BarOptions) (*charts.Bar, error) {
	if o.TopN <= 0 {
		o.TopN = DefaultBarOptions().TopN
	}
	areas, values, err := topBars(sorted, metric, o.TopN)
	if err != nil {
		return nil, err
	}

	items := make([]opts.BarData, len(values))
	for i, v := range values {
		items[i] = opts.BarData{Name: areas[i], Value: chartValue(v)}
	}
	lo, hi := valueRange(values)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID:    BarChartID,
			Width:      pixels(o.Width, "800px"),
			Height:     pixels(o.Height, "600px"),
			AssetsHost: o.AssetsHost,
		}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Top Regions by %s", metric)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithGridOpts(opts.Grid{Left: "20%", Right: "12%"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: AxisTitle(metric)}),
		// Largest value on top.
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: "Region", Inverse: opts.Bool(true)}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Dimension:  "0",
			Min:        float32(lo),
			Max:        float32(hi),
			Right:      "0",
			Orient:     "vertical",
			InRange:    &opts.VisualMapInRange{Color: BluesRamp},
		}),
	)
	bar.SetXAxis(areas).
		AddSeries(AxisTitle(metric), items).
		XYReversal()
	return bar, nil
}

// topBars picks the first n rows of a sorted year view and orders them by
// metric, largest first.
func topBars(sorted dataframe.DataFrame, metric string, n int) (areas []string, values []float64, err error) {
	top := services.TopN(sorted, n)
	if top.Nrow() == 0 {
		return nil, nil, ErrEmptyView
	}
	top, err = services.SortByMetric(top, metric)
	if err != nil {
		return nil, nil, err
	}
	if areas, err = services.StringColumn(top, models.ColArea); err != nil {
		return nil, nil, err
	}
	if values, err = services.FloatColumn(top, metric); err != nil {
		return nil, nil, err
	}
	return areas, values, nil
}
