package services

import (
	"fmt"
	"io"
	"strings"

	"airbnb-report/models"
	"airbnb-report/utils"
)

// PrintInsightReport formats the insight report for the terminal
func PrintInsightReport(w io.Writer, report *models.InsightReport) {
	border := strings.Repeat("═", 55)
	thin := strings.Repeat("─", 55)

	fmt.Fprintf(w, "\n╔%s╗\n", border)
	fmt.Fprintf(w, "║%s║\n", center("NIGHTLY RATE REPORT", 55))
	fmt.Fprintf(w, "╚%s╝\n", border)

	fmt.Fprintf(w, "\n OVERVIEW\n%s\n", thin)
	if report.FirstDay != nil && report.LastDay != nil {
		fmt.Fprintf(w, "  Check-in Range          : %s .. %s\n", report.FirstDay, report.LastDay)
	}
	fmt.Fprintf(w, "  Days                    : %d (%d priced)\n", report.DayCount, report.PricedDays)
	fmt.Fprintf(w, "  Listings Observed       : %d (%d distinct)\n", report.TotalListings, report.UniqueListings)
	fmt.Fprintf(w, "  Mean of Daily Averages  : %s\n", utils.FormatYen(report.OverallMean))
	fmt.Fprintf(w, "  Median of Daily Averages: %s\n", utils.FormatYen(report.OverallMedian))

	if report.Cheapest != nil {
		fmt.Fprintf(w, "\n CHEAPEST / MOST EXPENSIVE DAY\n%s\n", thin)
		fmt.Fprintf(w, "  Cheapest  : %s  %s\n", report.Cheapest.CheckIn, utils.FormatYen(report.Cheapest.AvgPrice))
		fmt.Fprintf(w, "  Priciest  : %s  %s\n", report.MostExpensive.CheckIn, utils.FormatYen(report.MostExpensive.AvgPrice))
	}

	if report.PricedDays > 0 {
		fmt.Fprintf(w, "\n BY WEEKDAY\n%s\n", thin)
		maxMean := 0
		for _, wd := range report.Weekdays {
			if wd.Mean != nil && *wd.Mean > maxMean {
				maxMean = *wd.Mean
			}
		}
		for _, wd := range report.Weekdays {
			fmt.Fprintf(w, "  %s  %3d days  %10s  %s\n", wd.Label, wd.Days, utils.FormatYen(wd.Mean), bar(wd.Mean, maxMean, 20))
		}
	}

	if len(report.Months) > 0 {
		fmt.Fprintf(w, "\n BY MONTH\n%s\n", thin)
		for _, m := range report.Months {
			fmt.Fprintf(w, "  %04d-%02d  %3d days  avg %10s  min %10s  max %10s\n",
				m.Year, m.Month, m.Days, utils.FormatYen(m.Mean), utils.FormatYen(m.Min), utils.FormatYen(m.Max))
		}
	}

	fmt.Fprintf(w, "\n%s\n\n", border)
}

// bar scales v against max into at most width blocks
func bar(v *int, max, width int) string {
	if v == nil || max <= 0 {
		return ""
	}
	n := *v * width / max
	if n < 1 {
		n = 1
	}
	return strings.Repeat("▓", n)
}

func center(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	pad := (width - len(runes)) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-len(runes)-pad)
}
