// Package report assembles the self-contained HTML price report.
//
// All markup goes through html/template. The chart fragment and the day payload
// are produced by their own encoders and handed to the page template as trusted
// values; nothing else is ever marked safe.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"cloud.google.com/go/civil"

	"airbnb-report/chart"
	"airbnb-report/holiday"
	"airbnb-report/models"
	"airbnb-report/stats"
	"airbnb-report/utils"
)

//go:embed templates/*.tmpl assets/*
var files embed.FS

const (
	generatedAtFormat   = "2006-01-02 15:04"
	listingURLMaxRunes  = 40
	summaryMissingText  = "平均CSVが見つからないか、読み込めませんでした。"
	detailsMissingText  = "明細CSVが見つからないため、▶から明細を開けません。"
	defaultOverviewNote = "日別平均は各日の掲載価格の平均、月別の値は日別の値の平均です。"
)

// Data is the input of one report run
type Data struct {
	Title        string
	Note         string // shown under the overview heading; empty uses a default
	GeneratedAt  time.Time
	Summary      []models.SummaryRow // sorted by date
	Details      []models.DetailRow  // sorted by date, price
	Stats        map[civil.Date]models.DayStats
	Holidays     holiday.Set
	Insights     *models.InsightReport
	Search       SearchParams
	ListingView  bool // include the legacy per-day listing tables
	DetailsLimit int  // rows per day in the listing view, 0 = all
}

// Renderer renders report pages
type Renderer struct {
	chart *chart.Renderer
	tmpl  *template.Template
	css   template.CSS
	js    template.JS
}

// NewRenderer parses the embedded page template and assets
func NewRenderer(c *chart.Renderer) (*Renderer, error) {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"yen":    utils.FormatYen,
		"yenInt": utils.FormatYenInt,
	}).ParseFS(files, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	css, err := files.ReadFile("assets/report.css")
	if err != nil {
		return nil, fmt.Errorf("failed to read report stylesheet: %w", err)
	}
	js, err := files.ReadFile("assets/report.js")
	if err != nil {
		return nil, fmt.Errorf("failed to read report script: %w", err)
	}
	return &Renderer{
		chart: c,
		tmpl:  tmpl,
		// static assets compiled into the binary
		css: template.CSS(css),
		js:  template.JS(js),
	}, nil
}

// Render builds the complete document in memory
func (r *Renderer) Render(d *Data) ([]byte, error) {
	p, err := r.buildPage(d)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "page", p); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

type page struct {
	Title          string
	Note           string
	GeneratedAt    string
	RangeFrom      string
	RangeTo        string
	HasSummary     bool
	HasDetails     bool
	SummaryMissing string
	DetailsMissing string
	Insights       *models.InsightReport
	Headline       []headlineItem
	Months         []monthView
	Chart          template.HTML
	Days           []dayView
	ListingView    bool
	Listing        []listingDay
	Payload        template.JS
	CSS            template.CSS
	Script         template.JS
}

type headlineItem struct {
	Label string
	Value string
}

type monthView struct {
	Label                            string
	Days                             int
	Mean, Median, P25, P75, Min, Max *int
}

type dayView struct {
	ISO        string
	Date       string
	Weekday    string
	Class      string
	Avg        *int
	Median     *int
	P25        *int
	P75        *int
	Count      int
	Min        *int
	Max        *int
	HasDetails bool
	SearchURL  string
}

type listingDay struct {
	ISO     string
	Date    string
	Weekday string
	Class   string
	Summary string
	Rows    []listingRow
	Total   int
	Limited bool
	Limit   int
}

type listingRow struct {
	N        int
	Price    int
	URL      string
	URLShort string
	Label    string
}

func (r *Renderer) buildPage(d *Data) (*page, error) {
	insights := d.Insights
	if insights == nil {
		insights = &models.InsightReport{}
	}

	p := &page{
		Title:          d.Title,
		Note:           d.Note,
		GeneratedAt:    d.GeneratedAt.Format(generatedAtFormat),
		HasSummary:     len(d.Summary) > 0,
		HasDetails:     len(d.Details) > 0,
		SummaryMissing: summaryMissingText,
		DetailsMissing: detailsMissingText,
		Insights:       insights,
		ListingView:    d.ListingView && len(d.Details) > 0,
		CSS:            r.css,
		Script:         r.js,
	}
	if p.Note == "" {
		p.Note = defaultOverviewNote
	}
	if p.HasSummary {
		p.RangeFrom = utils.FormatDateJPWithWeekday(d.Summary[0].CheckIn)
		p.RangeTo = utils.FormatDateJPWithWeekday(d.Summary[len(d.Summary)-1].CheckIn)
	}

	p.Headline = headline(insights)

	for _, m := range insights.Months {
		p.Months = append(p.Months, monthView{
			Label:  fmt.Sprintf("%d年%d月", m.Year, m.Month),
			Days:   m.Days,
			Mean:   m.Mean,
			Median: m.Median,
			P25:    m.P25,
			P75:    m.P75,
			Min:    m.Min,
			Max:    m.Max,
		})
	}

	if p.HasSummary {
		html, err := r.chart.Render(chart.Input{Rows: d.Summary, Stats: d.Stats, Holidays: d.Holidays})
		if err != nil {
			return nil, err
		}
		p.Chart = html
	}

	for _, row := range d.Summary {
		v := dayView{
			ISO:       row.CheckIn.String(),
			Date:      utils.FormatDateJP(row.CheckIn),
			Weekday:   utils.WeekdayJP(row.CheckIn),
			Class:     string(d.Holidays.Classify(row.CheckIn)),
			Avg:       row.AvgPrice,
			Count:     row.Count,
			Min:       row.MinPrice,
			Max:       row.MaxPrice,
			SearchURL: d.Search.URLFor(row),
		}
		if st, ok := d.Stats[row.CheckIn]; ok {
			v.HasDetails = true
			v.Median = models.IntPtr(st.Median)
			v.P25 = models.IntPtr(st.P25)
			v.P75 = models.IntPtr(st.P75)
		}
		p.Days = append(p.Days, v)
	}

	if p.ListingView {
		p.Listing = listingDays(d.Details, d.Holidays, d.DetailsLimit)
	}

	payload, err := BuildPayload(d.Details, d.Holidays).JSON()
	if err != nil {
		return nil, err
	}
	// encoding/json output with <, > and & escaped
	p.Payload = template.JS(payload)

	return p, nil
}

func headline(in *models.InsightReport) []headlineItem {
	items := []headlineItem{
		{"日数", fmt.Sprintf("%d日（価格あり %d日）", in.DayCount, in.PricedDays)},
		{"明細件数", fmt.Sprintf("%d件（物件 %d件）", in.TotalListings, in.UniqueListings)},
		{"日別平均の平均", utils.FormatYen(in.OverallMean)},
		{"日別平均の中央値", utils.FormatYen(in.OverallMedian)},
	}
	if in.Cheapest != nil {
		items = append(items, headlineItem{"最安日", utils.FormatDateJPWithWeekday(in.Cheapest.CheckIn) + " " + utils.FormatYen(in.Cheapest.AvgPrice)})
	}
	if in.MostExpensive != nil {
		items = append(items, headlineItem{"最高日", utils.FormatDateJPWithWeekday(in.MostExpensive.CheckIn) + " " + utils.FormatYen(in.MostExpensive.AvgPrice)})
	}
	return items
}

// listingDays builds the legacy per-day tables. Details must be sorted by date then price.
func listingDays(details []models.DetailRow, hols holiday.Set, limit int) []listingDay {
	var out []listingDay
	for start := 0; start < len(details); {
		end := start
		for end < len(details) && details[end].CheckIn == details[start].CheckIn {
			end++
		}
		rows := details[start:end]
		d := rows[0].CheckIn

		prices := make([]int, len(rows))
		for i, r := range rows {
			prices[i] = r.Price
		}
		summary := stats.Summarize(prices)
		mean, _ := stats.Mean(prices)

		day := listingDay{
			ISO:     d.String(),
			Date:    utils.FormatDateJP(d),
			Weekday: utils.WeekdayJP(d),
			Class:   string(hols.Classify(d)),
			Summary: "件数=" + strconv.Itoa(len(rows)) +
				"  平均=" + utils.FormatYenInt(mean) +
				"  中央=" + utils.FormatYenInt(summary.Median) +
				"  最小=" + utils.FormatYenInt(summary.Min) +
				"  最大=" + utils.FormatYenInt(summary.Max) +
				"  下位25%点=" + utils.FormatYenInt(summary.P25) +
				"  上位25%点=" + utils.FormatYenInt(summary.P75),
			Total: len(rows),
			Limit: limit,
		}

		shown := rows
		if limit > 0 && len(rows) > limit {
			shown = rows[:limit]
			day.Limited = true
		}
		for i, r := range shown {
			day.Rows = append(day.Rows, listingRow{
				N:        i + 1,
				Price:    r.Price,
				URL:      r.ListingURL,
				URLShort: shortenURL(r.ListingURL),
				Label:    r.RawLabel,
			})
		}
		out = append(out, day)
		start = end
	}
	return out
}

func shortenURL(u string) string {
	runes := []rune(u)
	if len(runes) <= listingURLMaxRunes {
		return u
	}
	return string(runes[:listingURLMaxRunes]) + "…"
}
