// Package render draws panel frames as SVG and the side-by-side comparison
// page as HTML.
package render

import (
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/climate-choropleth/internal/panel"
	"github.com/couchcryptid/climate-choropleth/internal/scale"
)

var funcs = template.FuncMap{
	"num":          num,
	"points":       points,
	"add":          func(a, b int) int { return a + b },
	"list":         func(v ...panelData) []panelData { return v },
	"swatchY":      func() int { return scale.SwatchY },
	"swatchHeight": func() int { return scale.SwatchHeight },
	"axisY":        func() int { return scale.AxisY },
	"tickSize":     func() int { return scale.TickSize },
}

var (
	svgTmpl  = template.Must(template.New("svg").Funcs(funcs).Parse(panelSVG))
	pageTmpl = template.Must(template.Must(svgTmpl.Clone()).New("html").Parse(pageHTML))
)

// SVG writes one panel as a standalone SVG document: the map on top and
// the legend below it.
func SVG(w io.Writer, f panel.Frame) error {
	if err := svgTmpl.ExecuteTemplate(w, "panel", svgData(f)); err != nil {
		return fmt.Errorf("render panel %s: %w", f.Panel, err)
	}
	return nil
}

// PageData is the comparison page model.
type PageData struct {
	Title   string
	Left    panel.Frame
	Right   panel.Frame
	Tooltip panel.TooltipView
}

// Page writes the HTML comparison page with both panels inline.
func Page(w io.Writer, d PageData) error {
	data := struct {
		PageData
		LeftSVG, RightSVG panelData
	}{d, svgData(d.Left), svgData(d.Right)}
	if err := pageTmpl.ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

type panelData struct {
	panel.Frame
	ViewWidth  int
	ViewHeight int
}

func svgData(f panel.Frame) panelData {
	width := f.Width
	if f.Legend != nil && f.Legend.Width > width {
		width = f.Legend.Width
	}
	return panelData{Frame: f, ViewWidth: width, ViewHeight: f.Height + scale.LegendHeight}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func points(pts [3]scale.Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = num(p.X) + "," + num(p.Y)
	}
	return strings.Join(parts, " ")
}
