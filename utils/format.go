package utils

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dustin/go-humanize"
)

// WeekdaysJP is indexed Monday first
var WeekdaysJP = [7]string{"月", "火", "水", "木", "金", "土", "日"}

// Weekday returns the day of the week of d
func Weekday(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}

// MondayIndex maps d to 0 (Monday) .. 6 (Sunday)
func MondayIndex(d civil.Date) int {
	return (int(Weekday(d)) + 6) % 7
}

// WeekdayJP returns the single-character Japanese weekday of d
func WeekdayJP(d civil.Date) string {
	return WeekdaysJP[MondayIndex(d)]
}

// FormatYen renders a price as "¥12,345", or "-" when absent
func FormatYen(v *int) string {
	if v == nil {
		return "-"
	}
	return FormatYenInt(*v)
}

func FormatYenInt(v int) string {
	return "¥" + humanize.Comma(int64(v))
}

// FormatDateJP renders "2026年01月23日"
func FormatDateJP(d civil.Date) string {
	return fmt.Sprintf("%04d年%02d月%02d日", d.Year, int(d.Month), d.Day)
}

// FormatDateJPWithWeekday renders "2026年01月23日（金）"
func FormatDateJPWithWeekday(d civil.Date) string {
	return FormatDateJP(d) + "（" + WeekdayJP(d) + "）"
}

// FormatMonthDayWeekday renders "1月23日（金）"
func FormatMonthDayWeekday(d civil.Date) string {
	return fmt.Sprintf("%d月%d日（%s）", int(d.Month), d.Day, WeekdayJP(d))
}

// FormatMD renders "1/23" for axis labels
func FormatMD(d civil.Date) string {
	return fmt.Sprintf("%d/%d", int(d.Month), d.Day)
}
