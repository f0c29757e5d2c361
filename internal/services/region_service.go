package services

import (
	"fmt"
	"strings"

	geom2 "github.com/peterstace/simplefeatures/geom"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkt"
	"golang.org/x/exp/slices"

	"agri-dashboard/internal/models"
)

// Europe extent shown by the choropleth, in degrees.
const (
	europeMinLon = -25.0
	europeMinLat = 34.0
	europeMaxLon = 45.0
	europeMaxLat = 72.0
)

// europeOutline is a coarse lon/lat outline of the mapped countries. It keeps
// the Mediterranean coast of Africa and the Levant out of the view.
const europeOutline = "POLYGON((-25 36, -10 36, -5 36.2, 11 37.5, 15 35, 32 34, 36 35.5, 45 40, 45 72, -25 72, -25 36))"

// MapTypeWorld is the echarts map every region name refers to.
const MapTypeWorld = "world"

// defaultRegions maps ISO alpha-3 codes onto the names used by the echarts
// world map, with an approximate center for each country.
var defaultRegions = []models.Region{
	{Code: "ALB", Name: "Albania", MapName: "Albania", Lat: 41, Lon: 20},
	{Code: "AUT", Name: "Austria", MapName: "Austria", Lat: 47, Lon: 14},
	{Code: "BEL", Name: "Belgium", MapName: "Belgium", Lat: 50, Lon: 4},
	{Code: "BGR", Name: "Bulgaria", MapName: "Bulgaria", Lat: 42, Lon: 25},
	{Code: "BIH", Name: "Bosnia and Herzegovina", MapName: "Bosnia and Herz.", Lat: 43, Lon: 17},
	{Code: "BLR", Name: "Belarus", MapName: "Belarus", Lat: 53, Lon: 27},
	{Code: "CHE", Name: "Switzerland", MapName: "Switzerland", Lat: 46, Lon: 8},
	{Code: "CYP", Name: "Cyprus", MapName: "Cyprus", Lat: 35, Lon: 33},
	{Code: "CZE", Name: "Czechia", MapName: "Czech Rep.", Lat: 49, Lon: 15},
	{Code: "DEU", Name: "Germany", MapName: "Germany", Lat: 51, Lon: 10},
	{Code: "DNK", Name: "Denmark", MapName: "Denmark", Lat: 56, Lon: 9},
	{Code: "ESP", Name: "Spain", MapName: "Spain", Lat: 40, Lon: -3},
	{Code: "EST", Name: "Estonia", MapName: "Estonia", Lat: 58, Lon: 25},
	{Code: "FIN", Name: "Finland", MapName: "Finland", Lat: 61, Lon: 25},
	{Code: "FRA", Name: "France", MapName: "France", Lat: 46, Lon: 2},
	{Code: "GBR", Name: "United Kingdom", MapName: "United Kingdom", Lat: 55, Lon: -3},
	{Code: "GRC", Name: "Greece", MapName: "Greece", Lat: 39, Lon: 21},
	{Code: "HRV", Name: "Croatia", MapName: "Croatia", Lat: 45, Lon: 15},
	{Code: "HUN", Name: "Hungary", MapName: "Hungary", Lat: 47, Lon: 19},
	{Code: "IRL", Name: "Ireland", MapName: "Ireland", Lat: 53, Lon: -8},
	{Code: "ISL", Name: "Iceland", MapName: "Iceland", Lat: 64, Lon: -19},
	{Code: "ITA", Name: "Italy", MapName: "Italy", Lat: 41, Lon: 12},
	{Code: "LTU", Name: "Lithuania", MapName: "Lithuania", Lat: 55, Lon: 23},
	{Code: "LUX", Name: "Luxembourg", MapName: "Luxembourg", Lat: 49, Lon: 6},
	{Code: "LVA", Name: "Latvia", MapName: "Latvia", Lat: 56, Lon: 24},
	{Code: "MDA", Name: "Moldova", MapName: "Moldova", Lat: 47, Lon: 28},
	{Code: "MKD", Name: "North Macedonia", MapName: "Macedonia", Lat: 41, Lon: 21},
	{Code: "MLT", Name: "Malta", MapName: "Malta", Lat: 35.9, Lon: 14.4},
	{Code: "MNE", Name: "Montenegro", MapName: "Montenegro", Lat: 42, Lon: 19},
	{Code: "NLD", Name: "Netherlands", MapName: "Netherlands", Lat: 52, Lon: 5},
	{Code: "NOR", Name: "Norway", MapName: "Norway", Lat: 60, Lon: 8},
	{Code: "POL", Name: "Poland", MapName: "Poland", Lat: 51, Lon: 19},
	{Code: "PRT", Name: "Portugal", MapName: "Portugal", Lat: 39, Lon: -8},
	{Code: "ROU", Name: "Romania", MapName: "Romania", Lat: 45, Lon: 24},
	{Code: "RUS", Name: "Russian Federation", MapName: "Russia", Lat: 61, Lon: 105},
	{Code: "SRB", Name: "Serbia", MapName: "Serbia", Lat: 44, Lon: 21},
	{Code: "SVK", Name: "Slovakia", MapName: "Slovakia", Lat: 48, Lon: 19},
	{Code: "SVN", Name: "Slovenia", MapName: "Slovenia", Lat: 46, Lon: 14},
	{Code: "SWE", Name: "Sweden", MapName: "Sweden", Lat: 60, Lon: 18},
	{Code: "TUR", Name: "Turkey", MapName: "Turkey", Lat: 39, Lon: 35},
	{Code: "UKR", Name: "Ukraine", MapName: "Ukraine", Lat: 48, Lon: 31},
	{Code: "XKX", Name: "Kosovo", MapName: "Kosovo", Lat: 42, Lon: 20},
}

// RegionService resolves country codes to map regions and knows which of
// them fall inside the fixed Europe view.
type RegionService struct {
	regions map[string]models.Region
	codes   []string
	bounds  *geom.Bounds
	europe  geom2.Geometry
}

// NewRegionService builds the service over the default catalog.
func NewRegionService() (*RegionService, error) {
	return NewRegionServiceWith(defaultRegions)
}

// NewRegionServiceWith builds the service over a custom catalog.
func NewRegionServiceWith(catalog []models.Region) (*RegionService, error) {
	bounds := geom.NewBounds(geom.XY).Set(europeMinLon, europeMinLat, europeMaxLon, europeMaxLat)

	europe, err := geom2.UnmarshalWKT(europeOutline)
	if err != nil {
		return nil, fmt.Errorf("error parsing Europe outline: %v", err)
	}

	s := &RegionService{
		regions: make(map[string]models.Region, len(catalog)),
		bounds:  bounds,
		europe:  europe,
	}
	for _, r := range catalog {
		code := strings.ToUpper(strings.TrimSpace(r.Code))
		if code == "" {
			return nil, fmt.Errorf("region %q has no code", r.Name)
		}
		if _, dup := s.regions[code]; dup {
			return nil, fmt.Errorf("duplicate region code %q", code)
		}
		r.Code = code
		s.regions[code] = r
		s.codes = append(s.codes, code)
	}
	slices.Sort(s.codes)
	return s, nil
}

// Lookup returns the catalog entry for an ISO alpha-3 code.
func (s *RegionService) Lookup(code string) (models.Region, bool) {
	r, ok := s.regions[strings.ToUpper(strings.TrimSpace(code))]
	return r, ok
}

// MapName returns the echarts map region name for code, or the code itself
// when the catalog does not know it.
func (s *RegionService) MapName(code string) string {
	if r, ok := s.Lookup(code); ok {
		return r.MapName
	}
	return code
}

// Codes lists the catalog codes in sorted order.
func (s *RegionService) Codes() []string {
	return slices.Clone(s.codes)
}

// Bounds returns the Europe extent as lon/lat bounds.
func (s *RegionService) Bounds() *geom.Bounds {
	return s.bounds.Clone()
}

// InView reports whether the center of code lies inside the Europe outline.
// Unknown codes are never in view.
func (s *RegionService) InView(code string) bool {
	r, ok := s.Lookup(code)
	if !ok {
		return false
	}
	pointWKT, err := wkt.Marshal(r.ToGeomPoint())
	if err != nil {
		return false
	}
	point, err := geom2.UnmarshalWKT(pointWKT)
	if err != nil {
		return false
	}
	contains, err := geom2.Contains(s.europe, point)
	if err != nil {
		return false
	}
	return contains
}

// FeatureCollection returns the centers of codes as GeoJSON points. Unknown
// codes are skipped; an empty codes slice selects the whole catalog.
func (s *RegionService) FeatureCollection(codes []string) *geojson.FeatureCollection {
	if len(codes) == 0 {
		codes = s.codes
	}
	fc := &geojson.FeatureCollection{BBox: s.Bounds()}
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		r, ok := s.Lookup(code)
		if !ok || seen[r.Code] {
			continue
		}
		seen[r.Code] = true
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       r.Code,
			Geometry: r.ToGeomPoint(),
			Properties: map[string]interface{}{
				"name":    r.Name,
				"mapName": r.MapName,
				"inView":  s.InView(r.Code),
			},
		})
	}
	return fc
}
