package charts

import (
	"html/template"
	"io"

	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/render"
	"golang.org/x/exp/slices"
)

// Chart is what every builder in this package returns.
type Chart interface {
	components.Charter
	RenderSnippet() render.ChartSnippet
	JSON() map[string]interface{}
}

// Snippet is a chart ready to be placed in a page.
type Snippet struct {
	Element template.HTML
	Script  template.HTML
}

// RenderSnippets renders each chart as an element and a script, and returns
// the JS assets they need in first-seen order.
func RenderSnippets(cs ...Chart) ([]Snippet, []string) {
	snippets := make([]Snippet, 0, len(cs))
	var assets []string
	for _, c := range cs {
		s := c.RenderSnippet()
		snippets = append(snippets, Snippet{
			Element: template.HTML(s.Element),
			Script:  template.HTML(s.Script),
		})
		for _, a := range c.GetAssets().JSAssets.Values {
			if !slices.Contains(assets, a) {
				assets = append(assets, a)
			}
		}
	}
	return snippets, assets
}

// Options returns the echarts option object of c.
func Options(c Chart) map[string]interface{} {
	c.Validate()
	return c.JSON()
}

// WritePage renders the charts on a standalone go-echarts page.
func WritePage(w io.Writer, title, assetsHost string, cs ...Chart) error {
	page := components.NewPage()
	page.SetPageTitle(title)
	if assetsHost != "" {
		page.SetAssetsHost(assetsHost)
	}
	page.SetLayout(components.PageFlexLayout)
	for _, c := range cs {
		page.AddCharts(c)
	}
	return page.Render(w)
}
