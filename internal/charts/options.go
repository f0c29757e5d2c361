package charts

import (
	"errors"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrEmptyView is returned when a builder is handed a table with no rows.
var ErrEmptyView = errors.New("no rows to chart")

// Color ramps, low to high.
var (
	BluesRamp   = []string{"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b"}
	PlasmaRamp  = []string{"#0d0887", "#46039f", "#7201a8", "#9c179e", "#bd3786", "#d8576b", "#ed7953", "#fb9f3a", "#fdca26", "#f0f921"}
	ViridisRamp = []string{"#440154", "#482878", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}
)

// BarOptions configures MakeBarChart.
type BarOptions struct {
	TopN       int
	Width      string
	Height     string
	AssetsHost string
}

// DefaultBarOptions mirrors the dashboard layout.
func DefaultBarOptions() BarOptions {
	return BarOptions{TopN: 10, Width: "800px", Height: "600px"}
}

// MapOptions configures MakeChoropleth.
type MapOptions struct {
	CenterLat  float64
	CenterLon  float64
	Zoom       float64
	Width      string
	Height     string
	AssetsHost string
}

// DefaultMapOptions centers the map on Europe.
func DefaultMapOptions() MapOptions {
	return MapOptions{CenterLat: 55, CenterLon: 10, Zoom: 1.5, Width: "1000px", Height: "800px"}
}

// HeatmapOptions configures MakeHeatmap.
type HeatmapOptions struct {
	Width      string
	Height     string
	AssetsHost string
}

// DefaultHeatmapOptions mirrors the dashboard layout.
func DefaultHeatmapOptions() HeatmapOptions {
	return HeatmapOptions{Width: "900px", Height: "500px"}
}

// AxisTitle upper-cases the first letter of a column name and lower-cases
// the rest, so "agriculture_value" becomes "Agriculture_value".
func AxisTitle(column string) string {
	if column == "" {
		return ""
	}
	runes := []rune(column)
	head := cases.Upper(language.English).String(string(runes[:1]))
	tail := cases.Lower(language.English).String(string(runes[1:]))
	return head + tail
}

// chartValue turns a missing value into nil so it renders as a gap.
func chartValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

// valueRange returns the finite min and max of values, or 0,0 when there are none.
func valueRange(values []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	if lo == hi {
		// visualMap needs a non-empty domain
		hi = lo + 1
	}
	return lo, hi
}

func pixels(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
