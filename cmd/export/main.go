package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"agri-dashboard/internal/charts"
	"agri-dashboard/internal/config"
	"agri-dashboard/internal/export"
	"agri-dashboard/internal/services"
)

func main() {
	metric := flag.String("metric", "", "metric column (default: first metric)")
	year := flag.String("year", "", "year (default: most recent)")
	change := flag.String("change", "", "metric compared against the previous year in the workbook")
	out := flag.String("out", ".", "output directory")
	flag.Parse()

	if err := run(*metric, *year, *change, *out); err != nil {
		log.Fatalf("Error exporting: %v", err)
	}
}

func run(metric, year, change, out string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	dataset, err := services.LoadDataset(cfg.DataFilePath(), cfg.Data.Sheet)
	if err != nil {
		return err
	}
	selection, err := services.NewSelectionService(dataset)
	if err != nil {
		return err
	}
	sel, err := selection.Resolve(metric, year)
	if err != nil {
		return err
	}
	changeMetric, err := selection.ResolveChangeMetric(change)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("error creating %s: %w", out, err)
	}

	_, sorted, err := dataset.YearView(sel.Year)
	if err != nil {
		return err
	}
	ranked, err := services.RankedRows(sorted, sel.Metric)
	if err != nil {
		return err
	}
	changes, err := dataset.MetricChange(sel.Year, changeMetric)
	if err != nil {
		return err
	}

	suffix := strconv.Itoa(sel.Year)
	tablePath := filepath.Join(out, "table_"+suffix+".xlsx")
	wb := export.Workbook{
		Selection:    sel,
		YearMax:      services.MaxPrimary(sorted),
		Ranked:       ranked,
		Changes:      changes,
		ChangeMetric: changeMetric,
	}
	if err := wb.SaveAs(tablePath); err != nil {
		return err
	}
	log.Printf("Wrote %s", tablePath)

	barPath := filepath.Join(out, "bar_"+suffix+".png")
	if err := writeFile(barPath, func(f *os.File) error {
		return charts.WriteBarPNG(f, sorted, sel.Metric, cfg.Dashboard.TopN)
	}); err != nil {
		return err
	}
	log.Printf("Wrote %s", barPath)

	heatPath := filepath.Join(out, "heatmap.png")
	if err := writeFile(heatPath, func(f *os.File) error {
		return charts.WriteHeatmapPNG(f, dataset.Frame(), sel.Metric)
	}); err != nil {
		return err
	}
	log.Printf("Wrote %s", heatPath)
	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return f.Close()
}
