package charts

import (
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-gota/gota/dataframe"
	"golang.org/x/exp/slices"

	"agri-dashboard/internal/models"
	"agri-dashboard/internal/services"
)

// HeatmapChartID is the DOM id of the year by area heat map.
const HeatmapChartID = "year_area_heatmap"

// yearAreaGrid is the full table pivoted to one cell per (area, year).
type yearAreaGrid struct {
	areas []string // first-seen order
	years []int    // ascending
	// cells[y][a] is the value for years[y] and areas[a], NaN when absent.
	cells [][]float64
}

// pivotYearArea builds the grid for metric. When a cell occurs more than once
// the later row wins, as it is drawn last.
func pivotYearArea(full dataframe.DataFrame, metric string) (*yearAreaGrid, error) {
	if full.Nrow() == 0 {
		return nil, ErrEmptyView
	}
	areaCol, err := services.StringColumn(full, models.ColArea)
	if err != nil {
		return nil, err
	}
	values, err := services.FloatColumn(full, metric)
	if err != nil {
		return nil, err
	}
	yearCol, err := full.Col(models.ColYear).Int()
	if err != nil {
		return nil, err
	}

	g := &yearAreaGrid{}
	areaIdx := map[string]int{}
	for _, a := range areaCol {
		if _, ok := areaIdx[a]; !ok {
			areaIdx[a] = len(g.areas)
			g.areas = append(g.areas, a)
		}
	}
	for _, y := range yearCol {
		if !slices.Contains(g.years, y) {
			g.years = append(g.years, y)
		}
	}
	slices.Sort(g.years)

	g.cells = make([][]float64, len(g.years))
	for i := range g.cells {
		row := make([]float64, len(g.areas))
		for j := range row {
			row[j] = math.NaN()
		}
		g.cells[i] = row
	}
	for i, v := range values {
		y, _ := slices.BinarySearch(g.years, yearCol[i])
		g.cells[y][areaIdx[areaCol[i]]] = v
	}
	return g, nil
}

func (g *yearAreaGrid) values() []float64 {
	var out []float64
	for _, row := range g.cells {
		out = append(out, row...)
	}
	return out
}

// MakeHeatmap shows metric for every area and year of the full table. It does
// not depend on the selected year.
func MakeHeatmap(full dataframe.DataFrame, metric string, o HeatmapOptions) (*charts.HeatMap, error) {
	g, err := pivotYearArea(full, metric)
	if err != nil {
		return nil, err
	}

	yearLabels := make([]string, len(g.years))
	for i, y := range g.years {
		yearLabels[i] = services.FormatYear(y)
	}
	var items []opts.HeatMapData
	for y, row := range g.cells {
		for a, v := range row {
			items = append(items, opts.HeatMapData{
				Name:  g.areas[a],
				Value: []interface{}{a, y, chartValue(v)},
			})
		}
	}
	lo, hi := valueRange(g.values())

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID:    HeatmapChartID,
			Width:      pixels(o.Width, "900px"),
			Height:     pixels(o.Height, "500px"),
			AssetsHost: o.AssetsHost,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithGridOpts(opts.Grid{Bottom: "30%"}),
		// HeatMap ignores SetXAxis, the categories go on the axis itself.
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			Name:      "Area",
			Data:      g.areas,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
			AxisLabel: &opts.AxisLabel{Rotate: 90, Interval: "0"},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Name:      "Year",
			Data:      yearLabels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Show:       opts.Bool(false),
			Min:        float32(lo),
			Max:        float32(hi),
			InRange:    &opts.VisualMapInRange{Color: ViridisRamp},
		}),
	)
	hm.AddSeries(AxisTitle(metric), items,
		charts.WithItemStyleOpts(opts.ItemStyle{BorderColor: "black", BorderWidth: 0.25}),
	)
	return hm, nil
}
