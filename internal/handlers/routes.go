package handlers

import "net/http"

// NewRouter wires every route behind the middleware chain.
func NewRouter(deps Deps) (http.Handler, error) {
	dashboard, err := NewDashboardHandler(deps)
	if err != nil {
		return nil, err
	}
	api := NewAPIHandler(deps)
	exports := NewExportHandler(deps)

	mux := http.NewServeMux()
	mux.HandleFunc("/", dashboard.HandleIndex)
	mux.HandleFunc("/charts", dashboard.HandleCharts)
	mux.HandleFunc("/api/options", api.HandleOptions)
	mux.HandleFunc("/api/view", api.HandleView)
	mux.HandleFunc("/api/regions", api.HandleRegions)
	mux.HandleFunc("/healthz", api.HandleHealth)
	mux.HandleFunc("/export/table.xlsx", exports.HandleTable)
	mux.HandleFunc("/export/bar.png", exports.HandleBarPNG)
	mux.HandleFunc("/export/heatmap.png", exports.HandleHeatmapPNG)

	return Chain(mux), nil
}
