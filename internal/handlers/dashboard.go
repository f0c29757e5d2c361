package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"agri-dashboard/internal/charts"
	"agri-dashboard/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// DashboardHandler renders the HTML dashboard.
type DashboardHandler struct {
	deps    Deps
	tmpl    *template.Template
	printer *message.Printer
}

// NewDashboardHandler parses the page template.
func NewDashboardHandler(deps Deps) (*DashboardHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, err
	}
	return &DashboardHandler{
		deps:    deps,
		tmpl:    tmpl,
		printer: message.NewPrinter(language.English),
	}, nil
}

const missingValue = "-"

type tableRow struct {
	Rank    int
	Area    string
	Code    string
	Value   string
	Metric  string
	Percent float64
}

type changeRow struct {
	Area     string
	Current  string
	Previous string
	Delta    string
	Up       bool
	Down     bool
}

type pageData struct {
	Title        string
	PageTitle    string
	Options      models.Options
	Selection    models.Selection
	ShowMetric   bool
	ChangeMetric string
	YearMax      string
	Rows         []tableRow
	Changes      []changeRow
	PreviousYear int
	Bar          charts.Snippet
	Map          charts.Snippet
	Heatmap      charts.Snippet
	Assets       []string
	Sources      []models.Source
	Exports      map[string]string
}

// HandleIndex renders the dashboard for the metric, year, and change query parameters.
func (h *DashboardHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !allowGet(w, r) {
		return
	}

	q := r.URL.Query()
	sel, err := h.deps.selectionFrom(q)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	changeMetric, err := h.deps.Selection.ResolveChangeMetric(q.Get("change"))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	v, err := h.deps.yearView(sel)
	if err != nil {
		log.Printf("[dashboard] error computing view %+v: %v", sel, err)
		http.Error(w, "Error processing request", statusFor(err))
		return
	}
	set, err := h.deps.buildCharts(v)
	if err != nil {
		log.Printf("[dashboard] %v", err)
		http.Error(w, "Error processing request", http.StatusInternalServerError)
		return
	}
	changes, err := h.deps.Dataset.MetricChange(sel.Year, changeMetric)
	if err != nil {
		log.Printf("[dashboard] error computing change for %s: %v", changeMetric, err)
		http.Error(w, "Error processing request", statusFor(err))
		return
	}

	snippets, assets := charts.RenderSnippets(set.bar, set.mapping, set.heatmap)
	data := pageData{
		Title:        h.deps.Dashboard.Title,
		PageTitle:    h.deps.Dashboard.PageTitle,
		Options:      h.deps.Selection.Options(),
		Selection:    sel,
		ShowMetric:   sel.Metric != models.ColPrimary,
		ChangeMetric: changeMetric,
		YearMax:      h.number(models.Number(v.yearMax)),
		Bar:          snippets[0],
		Map:          snippets[1],
		Heatmap:      snippets[2],
		Assets:       assets,
		Sources:      models.Sources,
		Exports:      h.exportLinks(sel, changeMetric),
	}
	for _, row := range v.ranked {
		data.Rows = append(data.Rows, tableRow{
			Rank:    row.Rank,
			Area:    row.Area,
			Code:    row.CountryCode,
			Value:   h.number(row.Value),
			Metric:  h.number(row.Metric),
			Percent: row.Share * 100,
		})
	}
	for _, c := range changes {
		cr := changeRow{Area: c.Area, Current: h.number(c.Current), Previous: missingValue, Delta: missingValue}
		if c.HasPrevious {
			data.PreviousYear = c.PreviousYear
			cr.Previous = h.number(c.Previous)
			if !c.Delta.IsMissing() {
				cr.Delta = h.printer.Sprintf("%+.2f", float64(c.Delta))
				cr.Up = c.Delta > 0
				cr.Down = c.Delta < 0
			}
		}
		data.Changes = append(data.Changes, cr)
	}

	// Render to a buffer so a template failure can still become a 500.
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "dashboard.html", data); err != nil {
		log.Printf("[dashboard] error rendering template: %v", err)
		http.Error(w, "Error rendering dashboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[dashboard] error writing response: %v", err)
	}
	log.Printf("Request processed in %v\n", time.Since(startTime))
}

// HandleCharts renders the three charts alone on a go-echarts page.
func (h *DashboardHandler) HandleCharts(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	sel, err := h.deps.selectionFrom(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	v, err := h.deps.yearView(sel)
	if err != nil {
		http.Error(w, "Error processing request", statusFor(err))
		return
	}
	set, err := h.deps.buildCharts(v)
	if err != nil {
		log.Printf("[dashboard] %v", err)
		http.Error(w, "Error processing request", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := charts.WritePage(&buf, h.deps.Dashboard.PageTitle, h.deps.Dashboard.AssetsHost, set.bar, set.mapping, set.heatmap); err != nil {
		log.Printf("[dashboard] error rendering charts page: %v", err)
		http.Error(w, "Error rendering charts", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[dashboard] error writing response: %v", err)
	}
}

func (h *DashboardHandler) number(n models.Number) string {
	if n.IsMissing() {
		return missingValue
	}
	return h.printer.Sprintf("%.2f", float64(n))
}

func (h *DashboardHandler) exportLinks(sel models.Selection, changeMetric string) map[string]string {
	q := url.Values{}
	q.Set("metric", sel.Metric)
	q.Set("year", strconv.Itoa(sel.Year))
	withChange := url.Values{}
	for k, v := range q {
		withChange[k] = v
	}
	withChange.Set("change", changeMetric)
	return map[string]string{
		"table":   "/export/table.xlsx?" + withChange.Encode(),
		"bar":     "/export/bar.png?" + q.Encode(),
		"heatmap": "/export/heatmap.png?metric=" + url.QueryEscape(sel.Metric),
		"json":    "/api/view?" + withChange.Encode(),
		"charts":  "/charts?" + q.Encode(),
	}
}
