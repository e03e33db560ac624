package models

import "cloud.google.com/go/civil"

// InsightReport holds the headline figures computed from a report run
type InsightReport struct {
	FirstDay       *civil.Date
	LastDay        *civil.Date
	DayCount       int
	PricedDays     int  // days with an average price
	TotalListings  int  // detail rows
	UniqueListings int  // distinct listing URLs across all dates
	OverallMean    *int // mean of daily averages
	OverallMedian  *int // median of daily averages
	Cheapest       *SummaryRow
	MostExpensive  *SummaryRow
	Weekdays       [7]WeekdayStat // Monday first
	Months         []MonthRollup
}

// WeekdayStat aggregates daily averages for one day of the week
type WeekdayStat struct {
	Label string // 月, 火, ...
	Class string // weekday, sat or sun
	Days  int
	Mean  *int
}

// MonthRollup aggregates one calendar month of daily figures.
// Every value is a mean (or min/max) of per-day values, not a pooled recomputation.
type MonthRollup struct {
	Year   int
	Month  int
	Days   int
	Mean   *int
	Median *int
	P25    *int
	P75    *int
	Min    *int
	Max    *int
}
