package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"agri-dashboard/internal/models"
)

var (
	ErrNoMetrics     = errors.New("dataset has no numeric metric columns")
	ErrNoYears       = errors.New("dataset has no years")
	ErrUnknownMetric = errors.New("unknown metric")
	ErrUnknownYear   = errors.New("year not present in dataset")
	ErrInvalidYear   = errors.New("invalid year")
)

// SelectionService resolves selector input against the choices present in the data.
type SelectionService struct {
	metrics       []string
	years         []int
	changeMetrics []string
}

// NewSelectionService captures the metric and year lists of ds. Both lists
// must be non-empty, otherwise there is no valid default selection.
func NewSelectionService(ds *DatasetService) (*SelectionService, error) {
	metrics := ds.MetricColumns()
	if len(metrics) == 0 {
		return nil, ErrNoMetrics
	}
	years := ds.Years()
	if len(years) == 0 {
		return nil, ErrNoYears
	}
	return &SelectionService{
		metrics:       metrics,
		years:         years,
		changeMetrics: ds.NumericColumns(),
	}, nil
}

// Defaults returns the first metric and the most recent year.
func (s *SelectionService) Defaults() models.Selection {
	return models.Selection{Metric: s.metrics[0], Year: s.years[0]}
}

// Options returns everything the sidebar needs to render its selectors.
func (s *SelectionService) Options() models.Options {
	return models.Options{
		Metrics:       slices.Clone(s.metrics),
		Years:         slices.Clone(s.years),
		ChangeMetrics: slices.Clone(s.changeMetrics),
		Defaults:      s.Defaults(),
	}
}

// Resolve turns raw selector values into a Selection. Empty values fall back
// to the defaults.
func (s *SelectionService) Resolve(metric, year string) (models.Selection, error) {
	sel := s.Defaults()

	if metric = strings.TrimSpace(metric); metric != "" {
		if !slices.Contains(s.metrics, metric) {
			return sel, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
		}
		sel.Metric = metric
	}

	if year = strings.TrimSpace(year); year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			return sel, fmt.Errorf("%w: %q", ErrInvalidYear, year)
		}
		if !slices.Contains(s.years, y) {
			return sel, fmt.Errorf("%w: %d", ErrUnknownYear, y)
		}
		sel.Year = y
	}
	return sel, nil
}

// ResolveChangeMetric validates the metric used by the change panel. An empty
// value selects the primary metric when it is numeric.
func (s *SelectionService) ResolveChangeMetric(metric string) (string, error) {
	metric = strings.TrimSpace(metric)
	if metric == "" {
		if slices.Contains(s.changeMetrics, models.ColPrimary) {
			return models.ColPrimary, nil
		}
		if len(s.changeMetrics) == 0 {
			return "", ErrNoMetrics
		}
		return s.changeMetrics[0], nil
	}
	if !slices.Contains(s.changeMetrics, metric) {
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	return metric, nil
}
