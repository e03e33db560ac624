// Package chart draws the daily price chart as SVG.
//
// The chart is two SVGs side by side: a fixed y-axis strip and a plot that
// scrolls horizontally once the date range is longer than one screen.
package chart

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
)

// NoDataMessage is shown instead of a chart when nothing can be plotted
const NoDataMessage = "グラフ: データがありません"

// Options controls chart geometry
type Options struct {
	BaseWidth     int // plot width for up to DaysPerScreen days
	Height        int
	DaysPerScreen int
	AxisWidth     int
	MarginTop     int
	MarginBottom  int
	InsetLeft     int
	InsetRight    int
	Ticks         int // y tick intervals
}

// DefaultOptions returns the geometry used by the report
func DefaultOptions() Options {
	return Options{
		BaseWidth:     1100,
		Height:        480,
		DaysPerScreen: 30,
		AxisWidth:     45,
		MarginTop:     20,
		MarginBottom:  50,
		InsetLeft:     5,
		InsetRight:    20,
		Ticks:         8,
	}
}

// Renderer turns chart input into SVG markup
type Renderer struct {
	opts Options
	tmpl *template.Template
}

// NewRenderer creates a Renderer. Zero-valued options fall back to the defaults.
func NewRenderer(opts Options) *Renderer {
	if opts == (Options{}) {
		opts = DefaultOptions()
	}
	tmpl := template.Must(template.New("chart").Funcs(template.FuncMap{
		"f2": fmtCoord,
		"num": func(v float64) string {
			return strconv.FormatFloat(v, 'f', -1, 64)
		},
	}).Parse(chartTemplates))
	return &Renderer{opts: opts, tmpl: tmpl}
}

// Render returns the chart as an HTML fragment, or a placeholder paragraph when
// there is nothing to plot.
func (r *Renderer) Render(in Input) (template.HTML, error) {
	layout, ok := r.Layout(in)
	if !ok {
		return template.HTML(`<p class="muted">` + template.HTMLEscapeString(NoDataMessage) + `</p>`), nil
	}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "fragment", layout); err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}
	// produced by html/template, so already escaped
	return template.HTML(buf.String()), nil
}

// RenderStandalone returns a single SVG document with the axis and plot combined.
// The placeholder range is drawn when there is no data.
func (r *Renderer) RenderStandalone(in Input) ([]byte, error) {
	layout, _ := r.Layout(in)
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "standalone", layout); err != nil {
		return nil, fmt.Errorf("failed to render standalone chart: %w", err)
	}
	return buf.Bytes(), nil
}

const chartTemplates = `
{{- define "axis-body" -}}
<rect x="0" y="0" width="{{.AxisWidth}}" height="{{.Height}}" fill="white"/>
{{- range .Ticks}}
<text x="{{$.AxisLabelX}}" y="{{f2 .TextY}}" text-anchor="end" font-size="11" fill="#666">{{.Label}}</text>
{{- end}}
<line x1="{{.AxisLineX}}" y1="{{.MarginTop}}" x2="{{.AxisLineX}}" y2="{{.PlotBottom}}" stroke="#999"/>
{{- end -}}

{{- define "plot-body" -}}
<rect x="0" y="0" width="{{.Width}}" height="{{.Height}}" fill="white" pointer-events="none"/>
{{- range .Ticks}}
<line x1="{{$.InsetLeft}}" y1="{{f2 .Y}}" x2="{{$.PlotRight}}" y2="{{f2 .Y}}" stroke="#eee" pointer-events="none"/>
{{- end}}
<line x1="{{.InsetLeft}}" y1="{{.PlotBottom}}" x2="{{.PlotRight}}" y2="{{.PlotBottom}}" stroke="#999" pointer-events="none"/>
{{- range .Labels}}
<line x1="{{f2 .X}}" y1="{{$.MarginTop}}" x2="{{f2 .X}}" y2="{{$.PlotBottom}}" stroke="#f3f4f6" pointer-events="none"/>
<text x="{{f2 .X}}" y="{{$.LabelY}}" text-anchor="middle" font-size="9" fill="{{.Color}}" pointer-events="none">{{.Text}}</text>
{{- end}}
{{- range .Series}}{{$s := .}}{{range .Segments}}
<polyline fill="none" stroke="{{$s.Color}}" stroke-width="{{num $s.Width}}"{{if $s.Dash}} stroke-dasharray="{{$s.Dash}}"{{end}} points="{{.Points}}" pointer-events="none" data-series="{{$s.Key}}"/>
{{- end}}{{end}}
{{- end -}}

{{- define "fragment" -}}
<div class="chart" style="display: flex; align-items: stretch;">
<svg viewBox="0 0 {{.AxisWidth}} {{.Height}}" width="{{.AxisWidth}}" height="{{.Height}}" style="flex-shrink: 0;">
{{template "axis-body" .}}
</svg>
<div style="overflow-x: auto; -webkit-overflow-scrolling: touch; flex: 1;">
<svg viewBox="0 0 {{.Width}} {{.Height}}" width="{{.Width}}" height="{{.Height}}" role="img" aria-label="日別価格グラフ">
{{template "plot-body" .}}
{{- range .Markers}}
<circle cx="{{f2 .X}}" cy="{{f2 .Y}}" r="3.6" fill="#2563eb" stroke="white" stroke-width="1" class="chart-point" data-date="{{.ISODate}}" data-tooltip-date="{{.Date}}" data-tooltip-avg="{{.Avg}}" data-tooltip-median="{{.Median}}" data-tooltip-p25="{{.P25}}" data-tooltip-p75="{{.P75}}" data-tooltip-min="{{.Min}}" data-tooltip-max="{{.Max}}" data-tooltip-count="{{.Count}}" data-tooltip-x="{{f2 .X}}" data-tooltip-y="{{f2 .Y}}"></circle>
{{- end}}
</svg>
</div>
</div>
{{- end -}}

{{- define "standalone" -}}
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 {{.TotalWidth}} {{.Height}}" width="{{.TotalWidth}}" height="{{.Height}}">
<rect x="0" y="0" width="{{.TotalWidth}}" height="{{.Height}}" fill="white"/>
{{template "axis-body" .}}
<g transform="translate({{.AxisWidth}},0)">
{{template "plot-body" .}}
{{- range .Markers}}
<circle cx="{{f2 .X}}" cy="{{f2 .Y}}" r="3.6" fill="#2563eb" stroke="white" stroke-width="1"/>
{{- end}}
</g>
</svg>
{{- end -}}
`
