package charts

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/go-gota/gota/dataframe"

	"agri-dashboard/internal/models"
	"agri-dashboard/internal/services"
)

// ChoroplethChartID is the DOM id of the map.
const ChoroplethChartID = "choropleth"

// RegionNamer resolves a country code to the region name used by the map.
type RegionNamer interface {
	MapName(code string) string
}

// MakeChoropleth colors every row of a filtered year view on a Europe-centered
// world map. Each row becomes one map datum keyed by its country code; the
// tooltip shows the row's area.
func MakeChoropleth(filtered dataframe.DataFrame, metric string, year int, namer RegionNamer, o MapOptions) (*charts.Map, error) {
	if filtered.Nrow() == 0 {
		return nil, ErrEmptyView
	}
	codes, err := services.StringColumn(filtered, models.ColCountryCode)
	if err != nil {
		return nil, err
	}
	areas, err := services.StringColumn(filtered, models.ColArea)
	if err != nil {
		return nil, err
	}
	values, err := services.FloatColumn(filtered, metric)
	if err != nil {
		return nil, err
	}

	items := make([]opts.MapData, len(values))
	hover := make(map[string]string, len(values))
	for i, v := range values {
		name := codes[i]
		if namer != nil {
			name = namer.MapName(codes[i])
		}
		items[i] = opts.MapData{Name: name, Value: chartValue(v)}
		if _, ok := hover[name]; !ok {
			hover[name] = areas[i]
		}
	}
	formatter, err := areaFormatter(hover)
	if err != nil {
		return nil, err
	}
	lo, hi := valueRange(values)

	zoom := o.Zoom
	if zoom <= 0 {
		zoom = DefaultMapOptions().Zoom
	}

	m := charts.NewMap()
	m.RegisterMapType(services.MapTypeWorld)
	m.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID:    ChoroplethChartID,
			Width:      pixels(o.Width, "1000px"),
			Height:     pixels(o.Height, "800px"),
			AssetsHost: o.AssetsHost,
		}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s in %d", metric, year)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item", Formatter: formatter}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			Text:       []string{AxisTitle(metric), ""},
			Left:       "left",
			Bottom:     "5%",
			InRange:    &opts.VisualMapInRange{Color: PlasmaRamp},
		}),
	)
	m.AddSeries(AxisTitle(metric), items,
		charts.WithSeriesOpts(func(s *charts.SingleSeries) {
			// echarts takes [lon, lat]
			s.Center = []float64{o.CenterLon, o.CenterLat}
			s.Roam = opts.Bool(false)
		}),
		charts.WithItemStyleOpts(opts.ItemStyle{BorderColor: "#999999", BorderWidth: 0.5}),
	)
	// The map series has no zoom option in the builder; apply it once the
	// option is set.
	m.AddJSFuncStrs(types.FuncStr(
		"%MY_ECHARTS%.setOption({series:[{zoom:" + strconv.FormatFloat(zoom, 'f', -1, 64) + "}]});",
	))
	return m, nil
}

// areaFormatter returns a tooltip callback that labels a region with its area
// name from the table.
func areaFormatter(areas map[string]string) (types.FuncStr, error) {
	lookup, err := json.Marshal(areas)
	if err != nil {
		return "", fmt.Errorf("error encoding area names: %w", err)
	}
	return opts.FuncOpts("function (p) { var areas = " + string(lookup) + ";" +
		" var v = (p.value === undefined || p.value === null || isNaN(p.value)) ? '-' : p.value;" +
		" return (areas[p.name] || p.name) + '<br/>' + p.seriesName + ': ' + v; }"), nil
}
