package services

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/samber/lo"

	"airbnb-report/models"
	"airbnb-report/stats"
	"airbnb-report/utils"
)

// InsightService computes the headline figures of a report run
type InsightService struct {
	logger *utils.Logger
}

// NewInsightService creates a new InsightService
func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate computes overview figures from sorted summary rows, detail rows and per-day stats
func (s *InsightService) Generate(summary []models.SummaryRow, details []models.DetailRow, dayStats map[civil.Date]models.DayStats) *models.InsightReport {
	report := &models.InsightReport{
		DayCount:      len(summary),
		TotalListings: len(details),
	}
	for i := range report.Weekdays {
		report.Weekdays[i] = models.WeekdayStat{
			Label: utils.WeekdaysJP[i],
			Class: weekdayClass(i),
		}
	}

	report.UniqueListings = len(lo.Uniq(lo.FilterMap(details, func(r models.DetailRow, _ int) (string, bool) {
		return r.ListingURL, r.ListingURL != ""
	})))

	if len(summary) == 0 {
		s.logger.Warn("No summary rows to generate insights from")
		return report
	}

	first, last := summary[0].CheckIn, summary[len(summary)-1].CheckIn
	report.FirstDay, report.LastDay = &first, &last

	var averages []int
	byWeekday := make(map[int][]int)
	for i := range summary {
		row := &summary[i]
		if row.AvgPrice == nil {
			continue
		}
		avg := *row.AvgPrice
		averages = append(averages, avg)
		wd := utils.MondayIndex(row.CheckIn)
		byWeekday[wd] = append(byWeekday[wd], avg)

		// first strict minimum and maximum win
		if report.Cheapest == nil || avg < *report.Cheapest.AvgPrice {
			report.Cheapest = row
		}
		if report.MostExpensive == nil || avg > *report.MostExpensive.AvgPrice {
			report.MostExpensive = row
		}
	}

	report.PricedDays = len(averages)
	report.OverallMean = stats.Ptr(stats.Mean(averages))
	report.OverallMedian = stats.Ptr(stats.Median(averages))

	for i := range report.Weekdays {
		report.Weekdays[i].Days = len(byWeekday[i])
		report.Weekdays[i].Mean = stats.Ptr(stats.Mean(byWeekday[i]))
	}

	report.Months = MonthlyRollup(summary, dayStats)

	s.logger.Debug("Insights: %d days (%d priced), %d listings", report.DayCount, report.PricedDays, report.TotalListings)
	return report
}

// MonthlyRollup buckets summary rows by calendar month. Average, median and quartile
// figures are means of the daily values; min and max are taken over the daily extremes.
func MonthlyRollup(summary []models.SummaryRow, dayStats map[civil.Date]models.DayStats) []models.MonthRollup {
	type monthKey struct {
		year  int
		month time.Month
	}
	groups := lo.GroupBy(summary, func(r models.SummaryRow) monthKey {
		return monthKey{r.CheckIn.Year, r.CheckIn.Month}
	})

	keys := lo.Keys(groups)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	out := make([]models.MonthRollup, 0, len(keys))
	for _, k := range keys {
		rows := groups[k]
		var avgs, medians, p25s, p75s, mins, maxs []int
		for _, r := range rows {
			if r.AvgPrice != nil {
				avgs = append(avgs, *r.AvgPrice)
			}
			st, ok := dayStats[r.CheckIn]
			if !ok {
				continue
			}
			medians = append(medians, st.Median)
			p25s = append(p25s, st.P25)
			p75s = append(p75s, st.P75)
			mins = append(mins, st.Min)
			maxs = append(maxs, st.Max)
		}

		m := models.MonthRollup{
			Year:   k.year,
			Month:  int(k.month),
			Days:   len(rows),
			Mean:   stats.Ptr(stats.Mean(avgs)),
			Median: stats.Ptr(stats.Mean(medians)),
			P25:    stats.Ptr(stats.Mean(p25s)),
			P75:    stats.Ptr(stats.Mean(p75s)),
		}
		if len(mins) > 0 {
			m.Min = models.IntPtr(lo.Min(mins))
			m.Max = models.IntPtr(lo.Max(maxs))
		}
		out = append(out, m)
	}
	return out
}

func weekdayClass(mondayIndex int) string {
	switch mondayIndex {
	case 5:
		return "sat"
	case 6:
		return "sun"
	}
	return "weekday"
}
