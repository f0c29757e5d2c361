package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"agri-dashboard/internal/models"
)

func TestRegionLookup(t *testing.T) {
	regions, err := NewRegionService()
	require.NoError(t, err)

	r, ok := regions.Lookup("fra")
	require.True(t, ok)
	assert.Equal(t, "France", r.Name)
	assert.Equal(t, "FRA", r.Code)

	assert.Equal(t, "Czech Rep.", regions.MapName("CZE"))
	assert.Equal(t, "Germany", regions.MapName("DEU"))
	assert.Equal(t, "ZZZ", regions.MapName("ZZZ"))
}

func TestRegionInView(t *testing.T) {
	regions, err := NewRegionService()
	require.NoError(t, err)

	assert.True(t, regions.InView("FRA"))
	assert.True(t, regions.InView("ISL"))
	// The Russian center sits in Siberia, outside the Europe extent.
	assert.False(t, regions.InView("RUS"))
	assert.False(t, regions.InView("ZZZ"))
}

func TestRegionInViewFollowsOutline(t *testing.T) {
	regions, err := NewRegionServiceWith([]models.Region{
		{Code: "MLT", Name: "Malta", MapName: "Malta", Lat: 35.9, Lon: 14.4},
		{Code: "CYP", Name: "Cyprus", MapName: "Cyprus", Lat: 35, Lon: 33},
		{Code: "TUR", Name: "Turkey", MapName: "Turkey", Lat: 39, Lon: 35},
		{Code: "TUN", Name: "Tunisia", MapName: "Tunisia", Lat: 36.8, Lon: 10.2},
		{Code: "DZA", Name: "Algeria", MapName: "Algeria", Lat: 36.7, Lon: 3},
		{Code: "SYR", Name: "Syria", MapName: "Syria", Lat: 35, Lon: 38},
	})
	require.NoError(t, err)

	bounds := regions.Bounds()
	for _, code := range []string{"MLT", "CYP", "TUR"} {
		assert.True(t, regions.InView(code), code)
	}
	// Inside the rectangular extent, outside the outline.
	for _, code := range []string{"TUN", "DZA", "SYR"} {
		r, _ := regions.Lookup(code)
		require.True(t, bounds.OverlapsPoint(geom.XY, geom.Coord{r.Lon, r.Lat}), code)
		assert.False(t, regions.InView(code), code)
	}
}

func TestRegionCatalogValidation(t *testing.T) {
	_, err := NewRegionServiceWith([]models.Region{{Name: "Nowhere"}})
	assert.Error(t, err)

	_, err = NewRegionServiceWith([]models.Region{
		{Code: "FRA", Name: "France"},
		{Code: "fra", Name: "France again"},
	})
	assert.Error(t, err)
}

func TestRegionFeatureCollection(t *testing.T) {
	regions, err := NewRegionService()
	require.NoError(t, err)

	fc := regions.FeatureCollection([]string{"DEU", "FRA", "DEU", "ZZZ"})
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "DEU", fc.Features[0].ID)

	data, err := json.Marshal(fc)
	require.NoError(t, err)

	var decoded struct {
		Type     string    `json:"type"`
		BBox     []float64 `json:"bbox"`
		Features []struct {
			ID       string `json:"id"`
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "FeatureCollection", decoded.Type)
	assert.Equal(t, []float64{-25, 34, 45, 72}, decoded.BBox)
	assert.Equal(t, "Point", decoded.Features[1].Geometry.Type)
	assert.Equal(t, []float64{2, 46}, decoded.Features[1].Geometry.Coordinates)
	assert.Equal(t, "France", decoded.Features[1].Properties["name"])
	assert.Equal(t, true, decoded.Features[1].Properties["inView"])

	all := regions.FeatureCollection(nil)
	assert.Len(t, all.Features, len(regions.Codes()))
}
