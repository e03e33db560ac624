package services

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airbnb-report/models"
	"airbnb-report/stats"
)

func ymd(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func summaryRow(d civil.Date, avg *int, count int) models.SummaryRow {
	return models.SummaryRow{CheckIn: d, AvgPrice: avg, Count: count}
}

func TestInsightServiceGenerate(t *testing.T) {
	summary := []models.SummaryRow{
		summaryRow(ymd(2026, 1, 23), models.IntPtr(10000), 2), // Fri
		summaryRow(ymd(2026, 1, 24), models.IntPtr(12000), 5), // Sat
		summaryRow(ymd(2026, 1, 25), nil, 0),                  // Sun
		summaryRow(ymd(2026, 1, 30), models.IntPtr(10000), 1), // Fri
		summaryRow(ymd(2026, 2, 1), models.IntPtr(15000), 3),  // Sun
	}
	details := []models.DetailRow{
		{CheckIn: ymd(2026, 1, 23), Price: 9000, ListingURL: "https://example.com/rooms/1"},
		{CheckIn: ymd(2026, 1, 23), Price: 11000, ListingURL: "https://example.com/rooms/2"},
		{CheckIn: ymd(2026, 1, 24), Price: 12000, ListingURL: "https://example.com/rooms/1"},
		{CheckIn: ymd(2026, 2, 1), Price: 15000},
	}

	svc := NewInsightService(quietLogger())
	report := svc.Generate(summary, details, stats.ByDay(details))

	assert.Equal(t, 5, report.DayCount)
	assert.Equal(t, 4, report.PricedDays)
	assert.Equal(t, 4, report.TotalListings)
	assert.Equal(t, 2, report.UniqueListings, "empty URLs are not counted")
	assert.Equal(t, ymd(2026, 1, 23), *report.FirstDay)
	assert.Equal(t, ymd(2026, 2, 1), *report.LastDay)

	// averages 10000, 12000, 10000, 15000
	assert.Equal(t, 11750, *report.OverallMean)
	assert.Equal(t, 11000, *report.OverallMedian)

	require.NotNil(t, report.Cheapest)
	assert.Equal(t, ymd(2026, 1, 23), report.Cheapest.CheckIn, "first of equal minimums wins")
	require.NotNil(t, report.MostExpensive)
	assert.Equal(t, ymd(2026, 2, 1), report.MostExpensive.CheckIn)

	fri := report.Weekdays[4]
	assert.Equal(t, "金", fri.Label)
	assert.Equal(t, "weekday", fri.Class)
	assert.Equal(t, 2, fri.Days)
	assert.Equal(t, 10000, *fri.Mean)

	sat := report.Weekdays[5]
	assert.Equal(t, "sat", sat.Class)
	assert.Equal(t, 12000, *sat.Mean)

	sun := report.Weekdays[6]
	assert.Equal(t, "sun", sun.Class)
	assert.Equal(t, 1, sun.Days, "days without an average are not counted")

	mon := report.Weekdays[0]
	assert.Equal(t, 0, mon.Days)
	assert.Nil(t, mon.Mean)

	require.Len(t, report.Months, 2)
	assert.Equal(t, 2026, report.Months[0].Year)
	assert.Equal(t, 1, report.Months[0].Month)
	assert.Equal(t, 2, report.Months[1].Month)
}

func TestInsightServiceGenerateEmpty(t *testing.T) {
	svc := NewInsightService(quietLogger())
	report := svc.Generate(nil, nil, nil)

	assert.Equal(t, 0, report.DayCount)
	assert.Nil(t, report.FirstDay)
	assert.Nil(t, report.OverallMean)
	assert.Nil(t, report.Cheapest)
	assert.Empty(t, report.Months)
	assert.Equal(t, "月", report.Weekdays[0].Label)
	assert.Equal(t, "日", report.Weekdays[6].Label)
}

func TestMonthlyRollupIsMeanOfDailyFigures(t *testing.T) {
	summary := []models.SummaryRow{
		summaryRow(ymd(2026, 3, 1), models.IntPtr(10000), 1),
		summaryRow(ymd(2026, 3, 2), models.IntPtr(20001), 3),
		summaryRow(ymd(2026, 3, 3), nil, 0),
	}
	dayStats := map[civil.Date]models.DayStats{
		ymd(2026, 3, 1): {Median: 10000, P25: 10000, P75: 10000, Min: 10000, Max: 10000},
		ymd(2026, 3, 2): {Median: 20000, P25: 15000, P75: 25000, Min: 12000, Max: 30000},
	}

	months := MonthlyRollup(summary, dayStats)
	require.Len(t, months, 1)
	m := months[0]

	assert.Equal(t, 3, m.Days, "days without prices still count toward the month")
	assert.Equal(t, 15001, *m.Mean, "mean of daily averages, rounded half up")
	assert.Equal(t, 15000, *m.Median)
	assert.Equal(t, 12500, *m.P25)
	assert.Equal(t, 17500, *m.P75)
	assert.Equal(t, 10000, *m.Min)
	assert.Equal(t, 30000, *m.Max)
}

func TestMonthlyRollupOrdersAcrossYears(t *testing.T) {
	summary := []models.SummaryRow{
		summaryRow(ymd(2026, 1, 5), nil, 0),
		summaryRow(ymd(2025, 12, 31), nil, 0),
		summaryRow(ymd(2025, 11, 30), nil, 0),
	}

	months := MonthlyRollup(summary, nil)
	require.Len(t, months, 3)
	assert.Equal(t, []int{2025, 2025, 2026}, []int{months[0].Year, months[1].Year, months[2].Year})
	assert.Equal(t, []int{11, 12, 1}, []int{months[0].Month, months[1].Month, months[2].Month})
	assert.Nil(t, months[0].Mean)
	assert.Nil(t, months[0].Min)
}
