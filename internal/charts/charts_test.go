package charts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agri-dashboard/internal/models"
	"agri-dashboard/internal/services"
)

var (
	testCodes  = []string{"FRA", "DEU", "ITA", "ESP", "POL", "ROU", "NLD", "BEL", "AUT", "PRT", "GRC", "SWE"}
	testValues = []string{"100", "80", "80", "120", "55", "70", "NA", "30", "80", "25", "40", "35"}
)

func testDataset(t *testing.T) *services.DatasetService {
	t.Helper()
	records := [][]string{{"country_code", "area", "year", "agriculture_value", "yield"}}
	for _, year := range []string{"2019", "2020"} {
		for i, code := range testCodes {
			records = append(records, []string{code, "Area " + code, year, testValues[i], fmt.Sprint(i)})
		}
	}
	ds, err := services.NewDatasetService(records)
	require.NoError(t, err)
	return ds
}

type codeNamer map[string]string

func (n codeNamer) MapName(code string) string {
	if name, ok := n[code]; ok {
		return name
	}
	return code
}

func TestMakeBarChartTopTen(t *testing.T) {
	ds := testDataset(t)
	_, sorted, err := ds.YearView(2020)
	require.NoError(t, err)

	bar, err := MakeBarChart(sorted, models.ColPrimary, DefaultBarOptions())
	require.NoError(t, err)
	bar.Validate()

	areas, err := services.StringColumn(sorted, models.ColArea)
	require.NoError(t, err)

	data, ok := bar.MultiSeries[0].Data.([]opts.BarData)
	require.True(t, ok)
	require.Len(t, data, 10)
	for i, d := range data {
		assert.Equal(t, areas[i], d.Name)
	}
	assert.Equal(t, 120.0, data[0].Value)
	assert.Equal(t, areas[:10], bar.YAxisList[0].Data)
	assert.Nil(t, bar.XAxisList[0].Data)
	assert.Equal(t, "Top Regions by agriculture_value", bar.Title.Title)
	assert.Equal(t, "Agriculture_value", bar.XAxisList[0].Name)
	assert.Equal(t, "Region", bar.YAxisList[0].Name)
}

func TestMakeBarChartMetricAndShortView(t *testing.T) {
	ds := testDataset(t)
	_, sorted, err := ds.YearView(2019)
	require.NoError(t, err)

	bar, err := MakeBarChart(services.TopN(sorted, 3), "yield", BarOptions{TopN: 10})
	require.NoError(t, err)
	data := bar.MultiSeries[0].Data.([]opts.BarData)
	require.Len(t, data, 3)
	// ESP, FRA, DEU lead the primary ranking; the bars are ordered by yield.
	assert.Equal(t, []interface{}{3.0, 1.0, 0.0}, []interface{}{data[0].Value, data[1].Value, data[2].Value})
	assert.Equal(t, []string{"Area ESP", "Area DEU", "Area FRA"}, bar.YAxisList[0].Data)
}

func TestMakeBarChartOrdersBySelectedMetric(t *testing.T) {
	ds, err := services.NewDatasetService([][]string{
		{"country_code", "area", "year", "agriculture_value", "yield"},
		{"FRA", "France", "2020", "100", "1"},
		{"DEU", "Germany", "2020", "80", "9"},
		{"ITA", "Italy", "2020", "60", "5"},
		{"ESP", "Spain", "2020", "40", ""},
	})
	require.NoError(t, err)
	_, sorted, err := ds.YearView(2020)
	require.NoError(t, err)

	bar, err := MakeBarChart(sorted, "yield", DefaultBarOptions())
	require.NoError(t, err)
	bar.Validate()

	data := bar.MultiSeries[0].Data.([]opts.BarData)
	names := make([]string, len(data))
	for i, d := range data {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"Germany", "Italy", "France", "Spain"}, names)
	assert.Equal(t, names, bar.YAxisList[0].Data)
	assert.Nil(t, data[3].Value)

	var buf bytes.Buffer
	require.NoError(t, WriteBarPNG(&buf, sorted, "yield", 10))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestMakeBarChartErrors(t *testing.T) {
	ds := testDataset(t)
	_, sorted, err := ds.YearView(2020)
	require.NoError(t, err)

	_, err = MakeBarChart(sorted, "nope", DefaultBarOptions())
	assert.ErrorIs(t, err, services.ErrUnknownColumn)

	_, err = MakeBarChart(sorted, models.ColArea, DefaultBarOptions())
	assert.ErrorIs(t, err, services.ErrNonNumericColumn)

	empty, err := ds.FilterByYear(1900)
	require.NoError(t, err)
	_, err = MakeBarChart(empty, models.ColPrimary, DefaultBarOptions())
	assert.ErrorIs(t, err, ErrEmptyView)
}

func TestMakeChoropleth(t *testing.T) {
	ds := testDataset(t)
	filtered, err := ds.FilterByYear(2020)
	require.NoError(t, err)

	namer := codeNamer{"FRA": "France", "DEU": "Germany"}
	m, err := MakeChoropleth(filtered, models.ColPrimary, 2020, namer, DefaultMapOptions())
	require.NoError(t, err)

	data, ok := m.MultiSeries[0].Data.([]opts.MapData)
	require.True(t, ok)
	assert.Len(t, data, filtered.Nrow())
	assert.Equal(t, "France", data[0].Name)
	assert.Equal(t, "Germany", data[1].Name)
	assert.Equal(t, "ITA", data[2].Name)
	// NLD has no value.
	assert.Nil(t, data[6].Value)

	assert.Equal(t, "world", m.MultiSeries[0].MapType)
	assert.Equal(t, []float64{10, 55}, m.MultiSeries[0].Center)
	assert.Equal(t, "agriculture_value in 2020", m.Title.Title)
	require.Len(t, m.JSFunctions.Fns, 1)
	assert.Contains(t, string(m.JSFunctions.Fns[0]), "zoom:1.5")

	out, err := json.Marshal(Options(m))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"map":"world"`)

	// Hovering a region shows the area name from the table.
	formatter := string(m.Tooltip.Formatter)
	assert.Contains(t, formatter, `"France":"Area FRA"`)
	assert.Contains(t, formatter, `"ITA":"Area ITA"`)
	assert.Contains(t, string(out), "Area FRA")
}

func TestMakeChoroplethEmpty(t *testing.T) {
	ds := testDataset(t)
	filtered, err := ds.FilterByYear(1900)
	require.NoError(t, err)
	_, err = MakeChoropleth(filtered, models.ColPrimary, 1900, nil, DefaultMapOptions())
	assert.ErrorIs(t, err, ErrEmptyView)
}

func TestMakeHeatmapUsesFullTable(t *testing.T) {
	ds := testDataset(t)

	hm, err := MakeHeatmap(ds.Frame(), models.ColPrimary, DefaultHeatmapOptions())
	require.NoError(t, err)

	areas := hm.XAxisList[0].Data.([]string)
	assert.Len(t, areas, len(testCodes))
	assert.Equal(t, "Area FRA", areas[0])
	assert.Equal(t, []string{"2019", "2020"}, hm.YAxisList[0].Data)

	data := hm.MultiSeries[0].Data.([]opts.HeatMapData)
	assert.Len(t, data, len(testCodes)*2)
	assert.Equal(t, []interface{}{3, 1, 120.0}, data[len(testCodes)+3].Value)

	again, err := MakeHeatmap(ds.Frame(), models.ColPrimary, DefaultHeatmapOptions())
	require.NoError(t, err)
	first, err := json.Marshal(hm.MultiSeries)
	require.NoError(t, err)
	second, err := json.Marshal(again.MultiSeries)
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
}

func TestMakeHeatmapLaterRowWins(t *testing.T) {
	ds, err := services.NewDatasetService([][]string{
		{"country_code", "area", "year", "agriculture_value"},
		{"FRA", "France", "2020", "1"},
		{"FRA", "France", "2020", "2"},
		{"DEU", "Germany", "2019", "3"},
	})
	require.NoError(t, err)

	g, err := pivotYearArea(ds.Frame(), models.ColPrimary)
	require.NoError(t, err)
	assert.Equal(t, []string{"France", "Germany"}, g.areas)
	assert.Equal(t, []int{2019, 2020}, g.years)
	assert.Equal(t, 2.0, g.cells[1][0])
	assert.Equal(t, 3.0, g.cells[0][1])
}

func TestRenderSnippets(t *testing.T) {
	ds := testDataset(t)
	filtered, sorted, err := ds.YearView(2020)
	require.NoError(t, err)

	bar, err := MakeBarChart(sorted, models.ColPrimary, DefaultBarOptions())
	require.NoError(t, err)
	m, err := MakeChoropleth(filtered, models.ColPrimary, 2020, nil, DefaultMapOptions())
	require.NoError(t, err)

	snippets, assets := RenderSnippets(bar, m)
	require.Len(t, snippets, 2)
	assert.Contains(t, string(snippets[0].Element), `id="`+BarChartID+`"`)
	assert.Contains(t, string(snippets[1].Script), "goecharts_"+ChoroplethChartID+".setOption({series:[{zoom:1.5}]});")
	assert.Len(t, assets, 2)
	assert.True(t, strings.HasSuffix(assets[1], "maps/world.js"))
}

func TestWritePage(t *testing.T) {
	ds := testDataset(t)
	hm, err := MakeHeatmap(ds.Frame(), models.ColPrimary, DefaultHeatmapOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePage(&buf, "Charts", "", hm))
	assert.Contains(t, buf.String(), "<title>Charts</title>")
	assert.Contains(t, buf.String(), HeatmapChartID)
}

func TestWritePNGs(t *testing.T) {
	ds := testDataset(t)
	_, sorted, err := ds.YearView(2020)
	require.NoError(t, err)

	var bar bytes.Buffer
	require.NoError(t, WriteBarPNG(&bar, sorted, models.ColPrimary, 10))
	assert.True(t, bytes.HasPrefix(bar.Bytes(), []byte("\x89PNG")))

	var heat bytes.Buffer
	require.NoError(t, WriteHeatmapPNG(&heat, ds.Frame(), models.ColPrimary))
	assert.True(t, bytes.HasPrefix(heat.Bytes(), []byte("\x89PNG")))

	empty, err := ds.FilterByYear(1900)
	require.NoError(t, err)
	assert.ErrorIs(t, WriteBarPNG(&bar, empty, models.ColPrimary, 10), ErrEmptyView)
}

func TestAxisTitle(t *testing.T) {
	assert.Equal(t, "Agriculture_value", AxisTitle("agriculture_value"))
	assert.Equal(t, "Yield", AxisTitle("YIELD"))
	assert.Equal(t, "", AxisTitle(""))
}
