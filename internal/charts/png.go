package charts

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"agri-dashboard/internal/services"
)

// WriteBarPNG writes the first topN rows of a sorted year view as a
// horizontal bar chart image, longest bar on top.
func WriteBarPNG(w io.Writer, sorted dataframe.DataFrame, metric string, topN int) error {
	areas, values, err := topBars(sorted, metric, topN)
	if err != nil {
		return err
	}

	// Bars are laid out bottom-up, reverse so the first row sits on top.
	n := len(values)
	bars := make(plotter.Values, n)
	names := make([]string, n)
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		bars[n-1-i] = v
		names[n-1-i] = areas[i]
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Top Regions by %s", metric)
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = AxisTitle(metric)
	p.Y.Label.Text = "Region"

	chart, err := plotter.NewBarChart(bars, vg.Points(20))
	if err != nil {
		return fmt.Errorf("error creating bar chart: %w", err)
	}
	chart.Horizontal = true
	chart.Color = color.RGBA{R: 33, G: 113, B: 181, A: 255}
	chart.LineStyle.Width = vg.Length(0)

	p.Add(plotter.NewGrid())
	p.Add(chart)
	p.NominalY(names...)
	p.Y.Tick.Label.XAlign = draw.XRight

	return writePNG(w, p, 10*vg.Inch, 7*vg.Inch)
}

// heatGrid adapts yearAreaGrid to plotter.GridXYZ with areas on X and years on Y.
type heatGrid struct {
	g *yearAreaGrid
}

func (h heatGrid) Dims() (c, r int)   { return len(h.g.areas), len(h.g.years) }
func (h heatGrid) Z(c, r int) float64 { return h.g.cells[r][c] }
func (h heatGrid) X(c int) float64    { return float64(c) }
func (h heatGrid) Y(r int) float64    { return float64(r) }

// WriteHeatmapPNG writes the year by area heat map of the full table as an image.
func WriteHeatmapPNG(w io.Writer, full dataframe.DataFrame, metric string) error {
	g, err := pivotYearArea(full, metric)
	if err != nil {
		return err
	}
	lo, hi := valueRange(g.values())

	pal, err := brewer.GetPalette(brewer.TypeSequential, "YlGnBu", 9)
	if err != nil {
		return fmt.Errorf("error loading palette: %w", err)
	}
	hm := plotter.NewHeatMap(heatGrid{g: g}, pal)
	hm.Min, hm.Max = lo, hi
	hm.NaN = color.Transparent

	yearLabels := make([]string, len(g.years))
	for i, y := range g.years {
		yearLabels[i] = services.FormatYear(y)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s by year and area", AxisTitle(metric))
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = "Area"
	p.Y.Label.Text = "Year"
	p.Add(hm)
	p.NominalX(g.areas...)
	p.NominalY(yearLabels...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	width := vg.Length(math.Max(8, float64(len(g.areas))*0.35)) * vg.Inch
	return writePNG(w, p, width, 6*vg.Inch)
}

func writePNG(w io.Writer, p *plot.Plot, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("error rendering plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("error writing png: %w", err)
	}
	return nil
}
