package export

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"agri-dashboard/internal/models"
)

func sampleWorkbook() Workbook {
	return Workbook{
		Selection: models.Selection{Metric: "cropland_share", Year: 2020},
		YearMax:   100,
		Ranked: []models.RankedRow{
			{Rank: 1, Area: "France", CountryCode: "FRA", Year: 2020, Value: 100, Metric: 52.1, Share: 1},
			{Rank: 2, Area: "Germany", CountryCode: "DEU", Year: 2020, Value: 80, Metric: 47.3, Share: 0.8},
			{Rank: 3, Area: "Netherlands", CountryCode: "NLD", Year: 2020, Value: models.Number(math.NaN()), Metric: 12},
		},
		ChangeMetric: models.ColPrimary,
		Changes: []models.ChangeRow{
			{Area: "France", CountryCode: "FRA", Current: 100, Previous: 90, Delta: 10, PreviousYear: 2019, HasPrevious: true},
			{Area: "Germany", CountryCode: "DEU", Current: 80},
		},
	}
}

func TestWorkbookWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleWorkbook().Write(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Ranking 2020", "Change"}, f.GetSheetList())

	rows, err := f.GetRows("Ranking 2020", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Rank", "Area", "Country code", "Year", "agriculture_value", "cropland_share"}, rows[0])
	assert.Equal(t, []string{"1", "France", "FRA", "2020", "100", "52.1"}, rows[1])
	assert.Equal(t, "", rows[3][4])

	formats, err := f.GetConditionalFormats("Ranking 2020")
	require.NoError(t, err)
	bars, ok := formats["E2:E4"]
	require.True(t, ok)
	require.Len(t, bars, 1)
	assert.Equal(t, "data_bar", bars[0].Type)
	assert.Equal(t, "0", bars[0].MinValue)
	assert.Equal(t, "100", bars[0].MaxValue)

	panes, err := f.GetPanes("Ranking 2020")
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)

	changes, err := f.GetRows("Change", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, changes, 3)
	assert.Equal(t, []string{"France", "FRA", "agriculture_value", "100", "90", "2019", "10"}, changes[1])
	assert.Equal(t, []string{"Germany", "DEU", "agriculture_value", "80"}, changes[2])
}

func TestWorkbookPrimaryOnly(t *testing.T) {
	wb := sampleWorkbook()
	wb.Selection.Metric = models.ColPrimary
	wb.Changes = nil

	path := filepath.Join(t.TempDir(), "table.xlsx")
	require.NoError(t, wb.SaveAs(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Ranking 2020"}, f.GetSheetList())
	rows, err := f.GetRows("Ranking 2020", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Len(t, rows[0], 5)
}

func TestWorkbookEmptyYear(t *testing.T) {
	wb := Workbook{Selection: models.Selection{Metric: models.ColPrimary, Year: 1999}}

	f, err := wb.Build()
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(RankingSheetName(1999))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
