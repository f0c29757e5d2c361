package models

import (
	"math"
	"strconv"

	"github.com/twpayne/go-geom"
)

// Column names the dashboard relies on.
const (
	ColCountryCode = "country_code"
	ColArea        = "area"
	ColYear        = "year"
	ColPrimary     = "agriculture_value"
)

// Number is a metric value. Missing values are NaN and encode as JSON null.
type Number float64

// IsMissing reports whether n holds no value.
func (n Number) IsMissing() bool {
	return math.IsNaN(float64(n)) || math.IsInf(float64(n), 0)
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	if n.IsMissing() {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(n), 'g', -1, 64), nil
}

// Selection is the user's current choice of metric column and year.
type Selection struct {
	Metric string `json:"metric"`
	Year   int    `json:"year"`
}

// RankedRow is one line of the ranked table for a year.
type RankedRow struct {
	Rank        int    `json:"rank"`
	Area        string `json:"area"`
	CountryCode string `json:"countryCode"`
	Year        int    `json:"year"`
	Value       Number `json:"agricultureValue"`
	Metric      Number `json:"metric"`
	// Share is Value relative to the year's maximum, in [0,1].
	Share float64 `json:"share"`
}

// ChangeRow compares a metric for one country against the nearest earlier year.
type ChangeRow struct {
	Area         string `json:"area"`
	CountryCode  string `json:"countryCode"`
	Current      Number `json:"current"`
	Previous     Number `json:"previous"`
	Delta        Number `json:"delta"`
	PreviousYear int    `json:"previousYear,omitempty"`
	HasPrevious  bool   `json:"hasPrevious"`
}

// Region is a catalog entry used to place a country_code on the map.
type Region struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	MapName string  `json:"mapName"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// ToGeomPoint converts the region center to a go-geom Point
func (r Region) ToGeomPoint() *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{r.Lon, r.Lat})
}

// Source is a dataset attribution shown in the About panel.
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Sources credits the upstream data providers.
var Sources = []Source{
	{Name: "FAOSTAT Crops and livestock products", URL: "https://www.fao.org/faostat/en/#data/QCL"},
	{Name: "Our World in Data", URL: "https://ourworldindata.org/"},
}

// Options lists the choices offered by the sidebar selectors.
type Options struct {
	Metrics       []string  `json:"metrics"`
	Years         []int     `json:"years"`
	ChangeMetrics []string  `json:"changeMetrics"`
	Defaults      Selection `json:"defaults"`
}

// MapView fixes the choropleth camera.
type MapView struct {
	CenterLat float64 `json:"centerLat"`
	CenterLon float64 `json:"centerLon"`
	Zoom      float64 `json:"zoom"`
}

// ViewResponse is the JSON rendition of one dashboard view.
type ViewResponse struct {
	Selection   Selection                 `json:"selection"`
	YearMax     float64                   `json:"yearMax"`
	RowCount    int                       `json:"rowCount"`
	Ranked      []RankedRow               `json:"ranked"`
	Top         []RankedRow               `json:"top"`
	Changes     []ChangeRow               `json:"changes,omitempty"`
	MapView     MapView                   `json:"mapView"`
	Charts      map[string]map[string]any `json:"charts"`
	Sources     []Source                  `json:"sources"`
	ProcessedIn string                    `json:"processedIn"`
}

// ErrorResponse is returned by the JSON API on failure
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Rows    int    `json:"rows"`
}
