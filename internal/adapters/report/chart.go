// Package report renders manifest data as a standalone HTML page.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kamal-hamza/sri-cli/internal/core/domain"
)

// ChartRenderer draws the vendored asset sizes
type ChartRenderer struct {
	Title string
}

// NewChartRenderer creates a renderer with the given page title
func NewChartRenderer(title string) *ChartRenderer {
	if title == "" {
		title = "Vendored assets"
	}
	return &ChartRenderer{Title: title}
}

// Render writes a page with a per-file size bar chart and a per-kind pie
func (r *ChartRenderer) Render(m *domain.Manifest, w io.Writer) error {
	if m == nil || len(m.Records) == 0 {
		return fmt.Errorf("manifest has no records to chart")
	}

	page := components.NewPage()
	page.PageTitle = r.Title
	page.AddCharts(r.sizeBar(m), r.kindPie(m))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

func (r *ChartRenderer) sizeBar(m *domain.Manifest) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    r.Title,
			Subtitle: fmt.Sprintf("run %s, %d files", m.RunID, len(m.Records)),
		}),
	)

	names := make([]string, 0, len(m.Records))
	scripts := make([]opts.BarData, 0, len(m.Records))
	styles := make([]opts.BarData, 0, len(m.Records))
	for _, rec := range m.Records {
		names = append(names, rec.RelPath)
		// One bar per file; the other series gets a blank slot
		if rec.Kind == domain.KindStylesheet {
			scripts = append(scripts, opts.BarData{Value: "-"})
			styles = append(styles, opts.BarData{Value: rec.Size})
		} else {
			scripts = append(scripts, opts.BarData{Value: rec.Size})
			styles = append(styles, opts.BarData{Value: "-"})
		}
	}

	bar.SetXAxis(names).
		AddSeries(string(domain.KindScript), scripts).
		AddSeries(string(domain.KindStylesheet), styles)
	return bar
}

func (r *ChartRenderer) kindPie(m *domain.Manifest) *charts.Pie {
	totals := map[domain.AssetKind]int64{}
	for _, rec := range m.Records {
		totals[rec.Kind] += rec.Size
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Bytes by kind"}))

	items := make([]opts.PieData, 0, len(totals))
	for _, kind := range []domain.AssetKind{domain.KindScript, domain.KindStylesheet} {
		if n, ok := totals[kind]; ok {
			items = append(items, opts.PieData{Name: string(kind), Value: n})
		}
	}
	pie.AddSeries("bytes", items)
	return pie
}
