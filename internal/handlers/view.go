package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-gota/gota/dataframe"

	"agri-dashboard/internal/charts"
	"agri-dashboard/internal/config"
	"agri-dashboard/internal/models"
	"agri-dashboard/internal/services"
)

// Deps is what the handlers read from. Everything in it is read-only after startup.
type Deps struct {
	Dataset   *services.DatasetService
	Selection *services.SelectionService
	Regions   *services.RegionService
	Dashboard config.DashboardConfig
	Version   string
}

// yearView is one selection worked out against the table.
type yearView struct {
	sel      models.Selection
	filtered dataframe.DataFrame
	sorted   dataframe.DataFrame
	yearMax  float64
	ranked   []models.RankedRow
}

// chartSet holds the three dashboard charts for a view.
type chartSet struct {
	bar     charts.Chart
	mapping charts.Chart
	heatmap charts.Chart
}

// selectionFrom resolves the metric and year query parameters.
func (d Deps) selectionFrom(q url.Values) (models.Selection, error) {
	return d.Selection.Resolve(q.Get("metric"), q.Get("year"))
}

func (d Deps) yearView(sel models.Selection) (*yearView, error) {
	filtered, sorted, err := d.Dataset.YearView(sel.Year)
	if err != nil {
		return nil, err
	}
	ranked, err := services.RankedRows(sorted, sel.Metric)
	if err != nil {
		return nil, err
	}
	return &yearView{
		sel:      sel,
		filtered: filtered,
		sorted:   sorted,
		yearMax:  services.MaxPrimary(sorted),
		ranked:   ranked,
	}, nil
}

func (d Deps) topN() int {
	if d.Dashboard.TopN > 0 {
		return d.Dashboard.TopN
	}
	return charts.DefaultBarOptions().TopN
}

// top returns the rows shown in the bar chart.
func (v *yearView) top(n int) []models.RankedRow {
	if n > len(v.ranked) {
		n = len(v.ranked)
	}
	return v.ranked[:n]
}

func (d Deps) buildCharts(v *yearView) (*chartSet, error) {
	cfg := d.Dashboard

	barOpts := charts.DefaultBarOptions()
	barOpts.TopN = d.topN()
	barOpts.AssetsHost = cfg.AssetsHost
	bar, err := charts.MakeBarChart(v.sorted, v.sel.Metric, barOpts)
	if err != nil {
		return nil, fmt.Errorf("error building bar chart: %w", err)
	}

	mapOpts := charts.DefaultMapOptions()
	mapOpts.CenterLat, mapOpts.CenterLon = cfg.MapCenterLat, cfg.MapCenterLon
	if cfg.MapZoom > 0 {
		mapOpts.Zoom = cfg.MapZoom
	}
	mapOpts.AssetsHost = cfg.AssetsHost
	choropleth, err := charts.MakeChoropleth(v.filtered, v.sel.Metric, v.sel.Year, d.Regions, mapOpts)
	if err != nil {
		return nil, fmt.Errorf("error building choropleth: %w", err)
	}

	heatOpts := charts.DefaultHeatmapOptions()
	heatOpts.AssetsHost = cfg.AssetsHost
	heatmap, err := charts.MakeHeatmap(d.Dataset.Frame(), v.sel.Metric, heatOpts)
	if err != nil {
		return nil, fmt.Errorf("error building heatmap: %w", err)
	}
	return &chartSet{bar: bar, mapping: choropleth, heatmap: heatmap}, nil
}

func (d Deps) mapView() models.MapView {
	return models.MapView{
		CenterLat: d.Dashboard.MapCenterLat,
		CenterLon: d.Dashboard.MapCenterLon,
		Zoom:      d.Dashboard.MapZoom,
	}
}

// statusFor maps a view error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrUnknownMetric),
		errors.Is(err, services.ErrUnknownYear),
		errors.Is(err, services.ErrInvalidYear),
		errors.Is(err, services.ErrUnknownColumn),
		errors.Is(err, services.ErrNonNumericColumn):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
