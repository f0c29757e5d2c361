package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/exp/slices"

	"agri-dashboard/internal/models"
)

var (
	// ErrMalformedDataset is wrapped by every load failure caused by the table contents.
	ErrMalformedDataset = errors.New("malformed dataset")
	// ErrUnknownColumn is returned when a view asks for a column the table does not have.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrNonNumericColumn is returned when a chart or ranking asks for a text column.
	ErrNonNumericColumn = errors.New("column is not numeric")
)

var requiredColumns = []string{models.ColCountryCode, models.ColArea, models.ColYear, models.ColPrimary}

// DatasetService holds the in-memory table and derives year views from it.
// The stored frame is never modified after load.
type DatasetService struct {
	source  string
	frame   dataframe.DataFrame
	index   []string
	metrics []string
	numeric []string
	years   []int
}

// LoadDataset reads the table at path once. CSV is the default format,
// .xlsx files are read with sheet (or the first sheet when empty).
func LoadDataset(path, sheet string) (*DatasetService, error) {
	startTime := time.Now()

	records, err := readRecords(path, sheet)
	if err != nil {
		return nil, err
	}
	ds, err := NewDatasetService(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ds.source = path

	log.Printf("[dataset] loaded %d rows, %d columns from %s in %v", ds.frame.Nrow(), ds.frame.Ncol(), path, time.Since(startTime))
	if len(ds.index) > 0 {
		log.Printf("[dataset] ignoring index columns: %s", strings.Join(ds.index, ", "))
	}
	return ds, nil
}

// NewDatasetService builds the service from raw records, header first.
func NewDatasetService(records [][]string) (*DatasetService, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: need a header and at least one row", ErrMalformedDataset)
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		header[i] = name
	}
	for _, col := range requiredColumns {
		switch n := countOf(header, col); {
		case n == 0:
			return nil, fmt.Errorf("%w: missing required column %q", ErrMalformedDataset, col)
		case n > 1:
			return nil, fmt.Errorf("%w: duplicate column %q", ErrMalformedDataset, col)
		}
	}
	for i, row := range records[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("%w: row %d has %d fields, header has %d", ErrMalformedDataset, i+2, len(row), len(header))
		}
	}

	withHeader := make([][]string, 0, len(records))
	withHeader = append(withHeader, header)
	withHeader = append(withHeader, records[1:]...)

	types := map[string]series.Type{
		models.ColCountryCode: series.String,
		models.ColArea:        series.String,
		models.ColYear:        series.Int,
		models.ColPrimary:     series.Float,
	}
	for _, name := range header {
		if isIndexColumn(name) {
			types[name] = series.String
		}
	}

	frame := dataframe.LoadRecords(withHeader,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.WithTypes(types),
	)
	if frame.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, frame.Err)
	}

	yearCol := frame.Col(models.ColYear)
	if yearCol.HasNaN() {
		return nil, fmt.Errorf("%w: column %q contains non-integer values", ErrMalformedDataset, models.ColYear)
	}

	// Duplicate headers come back renamed (Unnamed: 0_0, Unnamed: 0_1), so
	// index columns are read off the frame.
	var index []string
	for _, name := range frame.Names() {
		if isIndexColumn(name) {
			index = append(index, name)
		}
	}

	ds := &DatasetService{frame: frame, index: index}
	ds.metrics, ds.numeric = classifyColumns(frame, index)

	years, err := yearCol.Int()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}
	ds.years = distinctDescending(years)
	return ds, nil
}

func countOf(names []string, name string) int {
	n := 0
	for _, v := range names {
		if v == name {
			n++
		}
	}
	return n
}

// isIndexColumn reports whether name is a leftover row-index column.
func isIndexColumn(name string) bool {
	return strings.HasPrefix(name, "Unnamed:")
}

func isIdentifier(name string) bool {
	return name == models.ColCountryCode || name == models.ColArea || name == models.ColYear
}

func isNumeric(t series.Type) bool {
	return t == series.Int || t == series.Float
}

// classifyColumns returns the selectable metrics (numeric, no identifiers or
// index columns) and the numeric columns offered for change comparison
// (numeric, excluding year and country_code).
func classifyColumns(frame dataframe.DataFrame, index []string) (metrics, numeric []string) {
	types := frame.Types()
	for i, name := range frame.Names() {
		if !isNumeric(types[i]) || slices.Contains(index, name) {
			continue
		}
		if name != models.ColYear && name != models.ColCountryCode {
			numeric = append(numeric, name)
		}
		if !isIdentifier(name) {
			metrics = append(metrics, name)
		}
	}
	return metrics, numeric
}

func distinctDescending(values []int) []int {
	seen := make(map[int]bool, len(values))
	var out []int
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b int) int { return b - a })
	return out
}

// Source returns the path the table was loaded from.
func (s *DatasetService) Source() string {
	return s.source
}

// Frame returns a copy of the full table.
func (s *DatasetService) Frame() dataframe.DataFrame {
	return s.frame.Copy()
}

// Rows returns the number of rows in the full table.
func (s *DatasetService) Rows() int {
	return s.frame.Nrow()
}

// MetricColumns lists the selectable metric columns in header order.
func (s *DatasetService) MetricColumns() []string {
	return slices.Clone(s.metrics)
}

// NumericColumns lists numeric columns other than year and country_code.
func (s *DatasetService) NumericColumns() []string {
	return slices.Clone(s.numeric)
}

// IndexColumns lists the columns recognised as row indexes.
func (s *DatasetService) IndexColumns() []string {
	return slices.Clone(s.index)
}

// Years lists the distinct years, most recent first.
func (s *DatasetService) Years() []int {
	return slices.Clone(s.years)
}

// HasYear reports whether year occurs in the table.
func (s *DatasetService) HasYear(year int) bool {
	return slices.Contains(s.years, year)
}

// FilterByYear returns the rows whose year equals year, in table order.
func (s *DatasetService) FilterByYear(year int) (dataframe.DataFrame, error) {
	filtered := s.frame.Filter(dataframe.F{
		Colname:    models.ColYear,
		Comparator: series.Eq,
		Comparando: year,
	})
	if filtered.Err != nil {
		return filtered, fmt.Errorf("error filtering year %d: %w", year, filtered.Err)
	}
	return filtered, nil
}

// SortByPrimary orders df by agriculture_value, largest first. The sort is
// stable, so ties keep table order. NaN values go last.
func SortByPrimary(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if df.Nrow() == 0 {
		return df, nil
	}
	sorted := df.Arrange(dataframe.RevSort(models.ColPrimary))
	if sorted.Err != nil {
		return sorted, fmt.Errorf("error sorting by %s: %w", models.ColPrimary, sorted.Err)
	}
	return sorted, nil
}

// SortByMetric orders df by metric, largest first. Ties keep their order and
// missing values go last.
func SortByMetric(df dataframe.DataFrame, metric string) (dataframe.DataFrame, error) {
	values, err := FloatColumn(df, metric)
	if err != nil {
		return df, err
	}
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		va, vb := values[a], values[b]
		switch aNaN, bNaN := math.IsNaN(va), math.IsNaN(vb); {
		case aNaN && bNaN:
			return 0
		case aNaN:
			return 1
		case bNaN:
			return -1
		case va > vb:
			return -1
		case va < vb:
			return 1
		}
		return 0
	})
	if len(order) == 0 {
		return df, nil
	}
	sorted := df.Subset(order)
	if sorted.Err != nil {
		return sorted, fmt.Errorf("error sorting by %s: %w", metric, sorted.Err)
	}
	return sorted, nil
}

// YearView returns the rows of year in table order and sorted by the primary metric.
func (s *DatasetService) YearView(year int) (filtered, sorted dataframe.DataFrame, err error) {
	filtered, err = s.FilterByYear(year)
	if err != nil {
		return filtered, sorted, err
	}
	sorted, err = SortByPrimary(filtered)
	return filtered, sorted, err
}

// TopN returns the first n rows of df, or all of them when df is shorter.
func TopN(df dataframe.DataFrame, n int) dataframe.DataFrame {
	if n >= df.Nrow() {
		return df
	}
	if n <= 0 {
		return df.Subset([]int{})
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return df.Subset(idx)
}

// MaxPrimary returns the largest agriculture_value in df, ignoring NaN. An
// empty view yields 0.
func MaxPrimary(df dataframe.DataFrame) float64 {
	values, err := FloatColumn(df, models.ColPrimary)
	if err != nil {
		return 0
	}
	best := math.Inf(-1)
	for _, v := range values {
		if !math.IsNaN(v) && v > best {
			best = v
		}
	}
	if math.IsInf(best, -1) {
		return 0
	}
	return best
}

// RankedRows converts a sorted year view into table rows. metric is carried
// alongside the primary value.
func RankedRows(sorted dataframe.DataFrame, metric string) ([]models.RankedRow, error) {
	if sorted.Nrow() == 0 {
		return []models.RankedRow{}, nil
	}
	areas, err := StringColumn(sorted, models.ColArea)
	if err != nil {
		return nil, err
	}
	codes, err := StringColumn(sorted, models.ColCountryCode)
	if err != nil {
		return nil, err
	}
	primary, err := FloatColumn(sorted, models.ColPrimary)
	if err != nil {
		return nil, err
	}
	metricValues, err := FloatColumn(sorted, metric)
	if err != nil {
		return nil, err
	}
	years, err := sorted.Col(models.ColYear).Int()
	if err != nil {
		return nil, fmt.Errorf("error reading years: %w", err)
	}

	yearMax := MaxPrimary(sorted)
	rows := make([]models.RankedRow, len(areas))
	for i := range areas {
		share := 0.0
		if yearMax > 0 && !math.IsNaN(primary[i]) {
			share = math.Max(0, math.Min(1, primary[i]/yearMax))
		}
		rows[i] = models.RankedRow{
			Rank:        i + 1,
			Area:        areas[i],
			CountryCode: codes[i],
			Year:        years[i],
			Value:       models.Number(primary[i]),
			Metric:      models.Number(metricValues[i]),
			Share:       share,
		}
	}
	return rows, nil
}

// MetricChange compares metric for every country of year against the nearest
// earlier year in the table. Rows follow the sorted year view.
func (s *DatasetService) MetricChange(year int, metric string) ([]models.ChangeRow, error) {
	if !slices.Contains(s.numeric, metric) {
		return nil, fmt.Errorf("%w: %q", ErrNonNumericColumn, metric)
	}
	_, sorted, err := s.YearView(year)
	if err != nil {
		return nil, err
	}

	previousYear, hasPrevious := 0, false
	for _, y := range s.years {
		if y < year {
			previousYear, hasPrevious = y, true
			break
		}
	}

	previous := map[string]float64{}
	if hasPrevious {
		prevFrame, err := s.FilterByYear(previousYear)
		if err != nil {
			return nil, err
		}
		codes, err := StringColumn(prevFrame, models.ColCountryCode)
		if err != nil {
			return nil, err
		}
		values, err := FloatColumn(prevFrame, metric)
		if err != nil {
			return nil, err
		}
		for i, code := range codes {
			if _, dup := previous[code]; !dup {
				previous[code] = values[i]
			}
		}
	}

	areas, err := StringColumn(sorted, models.ColArea)
	if err != nil {
		return nil, err
	}
	codes, err := StringColumn(sorted, models.ColCountryCode)
	if err != nil {
		return nil, err
	}
	current, err := FloatColumn(sorted, metric)
	if err != nil {
		return nil, err
	}

	rows := make([]models.ChangeRow, len(areas))
	for i := range areas {
		row := models.ChangeRow{Area: areas[i], CountryCode: codes[i], Current: models.Number(current[i])}
		if prev, ok := previous[codes[i]]; ok {
			row.Previous = models.Number(prev)
			row.PreviousYear = previousYear
			row.HasPrevious = true
			row.Delta = models.Number(current[i] - prev)
		}
		rows[i] = row
	}
	return rows, nil
}

// StringColumn returns the named column of df as strings.
func StringColumn(df dataframe.DataFrame, name string) ([]string, error) {
	if !slices.Contains(df.Names(), name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return df.Col(name).Records(), nil
}

// FloatColumn returns the named numeric column of df. Missing values are NaN.
func FloatColumn(df dataframe.DataFrame, name string) ([]float64, error) {
	names := df.Names()
	idx := slices.Index(names, name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	if !isNumeric(df.Types()[idx]) {
		return nil, fmt.Errorf("%w: %q", ErrNonNumericColumn, name)
	}
	return df.Col(name).Float(), nil
}

// FormatYear renders a year for axis labels.
func FormatYear(year int) string {
	return strconv.Itoa(year)
}
