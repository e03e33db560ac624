package chart

import (
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/samber/lo"

	"airbnb-report/holiday"
	"airbnb-report/models"
	"airbnb-report/stats"
	"airbnb-report/utils"
)

const (
	placeholderMin = 0
	placeholderMax = 20000
)

// Input is one chart's data. Rows are summary rows in date order; Stats and
// Holidays may be nil.
type Input struct {
	Rows     []models.SummaryRow
	Stats    map[civil.Date]models.DayStats
	Holidays holiday.Set
}

// Point is an SVG coordinate
type Point struct {
	X, Y float64
}

// Segment is one unbroken run of a series
type Segment []Point

// Points renders the segment for a polyline points attribute
func (s Segment) Points() string {
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = fmtCoord(p.X) + "," + fmtCoord(p.Y)
	}
	return strings.Join(parts, " ")
}

// Series is a styled line split at missing values
type Series struct {
	Key      string
	Color    string
	Width    float64
	Dash     string
	Segments []Segment
}

// Tick is a horizontal grid line with its price label
type Tick struct {
	Value int
	Y     float64
	Label string
}

// TextY is the baseline of the tick label
func (t Tick) TextY() float64 { return t.Y + 4 }

// DateLabel is an x-axis label colored by day class
type DateLabel struct {
	X     float64
	Text  string
	Color string
}

// Marker is the hover point placed on each priced average, with its tooltip text
type Marker struct {
	X, Y                                   float64
	ISODate                                string
	Date                                   string
	Avg, Median, P25, P75, Min, Max, Count string
}

// Layout is the computed geometry of a chart
type Layout struct {
	Width        int // plot area, excluding the y-axis strip
	Height       int
	AxisWidth    int
	MarginTop    int
	MarginBottom int
	InsetLeft    int
	InsetRight   int
	YMin, YMax   int
	Ticks        []Tick
	Labels       []DateLabel
	Series       []Series
	Markers      []Marker
}

// TotalWidth is the width of the standalone document
func (l *Layout) TotalWidth() int { return l.AxisWidth + l.Width }

// PlotBottom is the y of the x axis
func (l *Layout) PlotBottom() int { return l.Height - l.MarginBottom }

// PlotRight is the x where grid lines end
func (l *Layout) PlotRight() int { return l.Width - l.InsetRight }

// LabelY is the baseline of date labels
func (l *Layout) LabelY() int { return l.Height - 12 }

// AxisLabelX is the right edge of tick labels
func (l *Layout) AxisLabelX() int { return l.AxisWidth - 2 }

// AxisLineX is the x of the vertical axis line
func (l *Layout) AxisLineX() int { return l.AxisWidth - 1 }

var seriesStyles = []Series{
	{Key: "avg", Color: "#2563eb", Width: 3.5},
	{Key: "median", Color: "#8b5cf6", Width: 2.8},
	{Key: "p25", Color: "#10b981", Width: 2.2, Dash: "4,2"},
	{Key: "p75", Color: "#f59e0b", Width: 2.2, Dash: "4,2"},
}

// Layout maps the input onto chart coordinates. It reports false when no series
// has a single value; the returned layout then spans the placeholder range.
func (r *Renderer) Layout(in Input) (*Layout, bool) {
	o := r.opts
	n := len(in.Rows)

	width := o.BaseWidth
	if n > o.DaysPerScreen {
		width = o.BaseWidth * n / o.DaysPerScreen
	}

	l := &Layout{
		Width:        width,
		Height:       o.Height,
		AxisWidth:    o.AxisWidth,
		MarginTop:    o.MarginTop,
		MarginBottom: o.MarginBottom,
		InsetLeft:    o.InsetLeft,
		InsetRight:   o.InsetRight,
	}

	all := make([]int, 0, n*4)
	var p25s, p75s []int
	for _, row := range in.Rows {
		if row.AvgPrice != nil {
			all = append(all, *row.AvgPrice)
		}
		if st, ok := in.Stats[row.CheckIn]; ok {
			all = append(all, st.Median, st.P25, st.P75)
			p25s = append(p25s, st.P25)
			p75s = append(p75s, st.P75)
		}
	}

	ok := len(all) > 0
	switch {
	case len(p25s) > 0:
		l.YMin, l.YMax = lo.Min(p25s), lo.Max(p75s)
	case ok:
		l.YMin, _ = stats.Quantile(all, 0.25)
		l.YMax, _ = stats.Quantile(all, 0.75)
	default:
		l.YMin, l.YMax = placeholderMin, placeholderMax
	}

	plotW := float64(width - o.InsetLeft - o.InsetRight)
	plotH := float64(o.Height - o.MarginTop - o.MarginBottom)

	xAt := func(i int) float64 {
		if n <= 1 {
			return float64(o.InsetLeft) + plotW/2
		}
		return float64(o.InsetLeft) + plotW*float64(i)/float64(n-1)
	}
	yAt := func(v int) float64 {
		if l.YMax == l.YMin {
			return float64(o.MarginTop) + plotH/2
		}
		return float64(o.MarginTop) + plotH*float64(l.YMax-v)/float64(l.YMax-l.YMin)
	}

	for t := 0; t <= o.Ticks; t++ {
		v := stats.Round(float64(l.YMin) + float64(l.YMax-l.YMin)*float64(t)/float64(o.Ticks))
		l.Ticks = append(l.Ticks, Tick{Value: v, Y: yAt(v), Label: utils.FormatYenInt(v)})
	}

	for i, row := range in.Rows {
		l.Labels = append(l.Labels, DateLabel{
			X:     xAt(i),
			Text:  utils.FormatMD(row.CheckIn),
			Color: in.Holidays.Classify(row.CheckIn).Color(),
		})
	}

	for _, style := range seriesStyles {
		s := style
		var cur Segment
		for i, row := range in.Rows {
			v, has := seriesValue(row, in.Stats, s.Key)
			if !has {
				if len(cur) >= 2 {
					s.Segments = append(s.Segments, cur)
				}
				cur = nil
				continue
			}
			cur = append(cur, Point{X: xAt(i), Y: yAt(v)})
		}
		if len(cur) >= 2 {
			s.Segments = append(s.Segments, cur)
		}
		l.Series = append(l.Series, s)
	}

	for i, row := range in.Rows {
		if row.AvgPrice == nil {
			continue
		}
		m := Marker{
			X:       xAt(i),
			Y:       yAt(*row.AvgPrice),
			ISODate: row.CheckIn.String(),
			Date:    utils.FormatMonthDayWeekday(row.CheckIn),
			Avg:     utils.FormatYen(row.AvgPrice),
			Median:  "-", P25: "-", P75: "-", Min: "-", Max: "-",
			Count: strconv.Itoa(row.Count),
		}
		if st, ok := in.Stats[row.CheckIn]; ok {
			m.Median = utils.FormatYenInt(st.Median)
			m.P25 = utils.FormatYenInt(st.P25)
			m.P75 = utils.FormatYenInt(st.P75)
			m.Min = utils.FormatYenInt(st.Min)
			m.Max = utils.FormatYenInt(st.Max)
		}
		l.Markers = append(l.Markers, m)
	}

	return l, ok
}

func seriesValue(row models.SummaryRow, byDay map[civil.Date]models.DayStats, key string) (int, bool) {
	if key == "avg" {
		if row.AvgPrice == nil {
			return 0, false
		}
		return *row.AvgPrice, true
	}
	st, ok := byDay[row.CheckIn]
	if !ok {
		return 0, false
	}
	switch key {
	case "median":
		return st.Median, true
	case "p25":
		return st.P25, true
	case "p75":
		return st.P75, true
	}
	return 0, false
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
