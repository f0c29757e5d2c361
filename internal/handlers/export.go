package handlers

import (
	"bytes"
	"fmt"
	"log"
	"net/http"

	"agri-dashboard/internal/charts"
	"agri-dashboard/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves downloadable renditions of a view.
type ExportHandler struct {
	deps Deps
}

// NewExportHandler creates a new export handler
func NewExportHandler(deps Deps) *ExportHandler {
	return &ExportHandler{deps: deps}
}

// HandleTable streams the ranked table for the selection as a workbook.
func (h *ExportHandler) HandleTable(w http.ResponseWriter, r *http.Request) {
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
		writeError(w, statusFor(err), err.Error())
		return
	}
	wb := export.Workbook{Selection: sel, YearMax: v.yearMax, Ranked: v.ranked}
	if change := q.Get("change"); change != "" {
		metric, err := h.deps.Selection.ResolveChangeMetric(change)
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		if wb.Changes, err = h.deps.Dataset.MetricChange(sel.Year, metric); err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		wb.ChangeMetric = metric
	}

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		log.Printf("[export] %v", err)
		writeError(w, http.StatusInternalServerError, "error building workbook")
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="table_%d.xlsx"`, sel.Year))
	writeBody(w, buf.Bytes())
}

// HandleBarPNG renders the top regions chart as an image.
func (h *ExportHandler) HandleBarPNG(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	sel, err := h.deps.selectionFrom(r.URL.Query())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	v, err := h.deps.yearView(sel)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	var buf bytes.Buffer
	if err := charts.WriteBarPNG(&buf, v.sorted, sel.Metric, h.deps.topN()); err != nil {
		log.Printf("[export] %v", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	writeBody(w, buf.Bytes())
}

// HandleHeatmapPNG renders the year by area heat map as an image. Only the
// metric parameter matters.
func (h *ExportHandler) HandleHeatmapPNG(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	sel, err := h.deps.selectionFrom(r.URL.Query())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	var buf bytes.Buffer
	if err := charts.WriteHeatmapPNG(&buf, h.deps.Dataset.Frame(), sel.Metric); err != nil {
		log.Printf("[export] %v", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	writeBody(w, buf.Bytes())
}

func writeBody(w http.ResponseWriter, body []byte) {
	if _, err := w.Write(body); err != nil {
		log.Printf("[export] error writing response: %v", err)
	}
}
