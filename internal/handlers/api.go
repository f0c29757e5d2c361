package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"agri-dashboard/internal/charts"
	"agri-dashboard/internal/models"
)

// APIHandler serves the JSON endpoints.
type APIHandler struct {
	deps Deps
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(deps Deps) *APIHandler {
	return &APIHandler{deps: deps}
}

// HandleOptions lists the metric and year choices.
func (h *APIHandler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Selection.Options())
}

// HandleView returns the ranked table and chart options for a selection.
func (h *APIHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	if !allowGet(w, r) {
		return
	}

	q := r.URL.Query()
	sel, err := h.deps.selectionFrom(q)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	v, err := h.deps.yearView(sel)
	if err != nil {
		log.Printf("[api] error computing view %+v: %v", sel, err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	resp := models.ViewResponse{
		Selection: sel,
		YearMax:   v.yearMax,
		RowCount:  len(v.ranked),
		Ranked:    v.ranked,
		Top:       v.top(h.deps.topN()),
		MapView:   h.deps.mapView(),
		Sources:   models.Sources,
	}

	if change := q.Get("change"); change != "" {
		metric, err := h.deps.Selection.ResolveChangeMetric(change)
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		if resp.Changes, err = h.deps.Dataset.MetricChange(sel.Year, metric); err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
	}

	if q.Get("charts") != "false" {
		set, err := h.deps.buildCharts(v)
		if err != nil {
			log.Printf("[api] %v", err)
			writeError(w, statusFor(err), err.Error())
			return
		}
		resp.Charts = map[string]map[string]any{
			"bar":        charts.Options(set.bar),
			"choropleth": charts.Options(set.mapping),
			"heatmap":    charts.Options(set.heatmap),
		}
	}

	resp.ProcessedIn = time.Since(startTime).String()
	writeJSON(w, http.StatusOK, resp)
	log.Printf("Request processed in %v\n", time.Since(startTime))
}

// HandleRegions returns the region catalog as GeoJSON. An optional comma
// separated codes parameter narrows it down.
func (h *APIHandler) HandleRegions(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	var codes []string
	if raw := strings.TrimSpace(r.URL.Query().Get("codes")); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				codes = append(codes, c)
			}
		}
	}
	fc := h.deps.Regions.FeatureCollection(codes)
	w.Header().Set("Content-Type", "application/geo+json")
	body, err := fc.MarshalJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error encoding regions")
		return
	}
	if _, err := w.Write(body); err != nil {
		log.Printf("[api] error writing regions: %v", err)
	}
}

// HandleHealth reports liveness.
func (h *APIHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:  "ok",
		Version: h.deps.Version,
		Rows:    h.deps.Dataset.Rows(),
	})
}
