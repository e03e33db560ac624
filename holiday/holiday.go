// Package holiday approximates the Japanese public-holiday calendar.
//
// The rules cover fixed-date holidays, Happy Monday holidays, both equinox days,
// substitute holidays and citizen's holidays. It is not an authoritative legal
// calendar: one-off holidays and historical rule changes are not modelled, and the
// equinox formula is only accurate for 1980-2099.
package holiday

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"
)

// Set is a set of holiday dates
type Set map[civil.Date]struct{}

// Contains reports whether d is a holiday
func (s Set) Contains(d civil.Date) bool {
	_, ok := s[d]
	return ok
}

func (s Set) add(d civil.Date) {
	s[d] = struct{}{}
}

// Sorted returns the dates in ascending order
func (s Set) Sorted() []civil.Date {
	out := make([]civil.Date, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

var fixedDates = []struct {
	month time.Month
	day   int
}{
	{time.January, 1},   // 元日
	{time.February, 11}, // 建国記念の日
	{time.February, 23}, // 天皇誕生日
	{time.April, 29},    // 昭和の日
	{time.May, 3},       // 憲法記念日
	{time.May, 4},       // みどりの日
	{time.May, 5},       // こどもの日
	{time.August, 11},   // 山の日
	{time.November, 3},  // 文化の日
	{time.November, 23}, // 勤労感謝の日
}

var happyMondays = []struct {
	month time.Month
	n     int
}{
	{time.January, 2},   // 成人の日
	{time.July, 3},      // 海の日
	{time.September, 3}, // 敬老の日
	{time.October, 2},   // スポーツの日
}

// ForYear returns every holiday of the given year
func ForYear(year int) Set {
	hols := seed(year)
	for d := range substitutes(hols) {
		hols.add(d)
	}
	for d := range citizensHolidays(hols, year) {
		hols.add(d)
	}
	return hols
}

// ForRange returns the holidays within the closed interval [start, end]
func ForRange(start, end civil.Date) Set {
	out := Set{}
	if end.Before(start) {
		return out
	}
	for y := start.Year; y <= end.Year; y++ {
		for d := range ForYear(y) {
			if !d.Before(start) && !d.After(end) {
				out.add(d)
			}
		}
	}
	return out
}

func seed(year int) Set {
	hols := Set{}
	for _, f := range fixedDates {
		hols.add(civil.Date{Year: year, Month: f.month, Day: f.day})
	}
	for _, m := range happyMondays {
		hols.add(NthWeekday(year, m.month, time.Monday, m.n))
	}
	hols.add(VernalEquinox(year))
	hols.add(AutumnalEquinox(year))
	return hols
}

// substitutes moves each Sunday holiday to the next day that is neither a holiday
// nor already taken by an earlier substitute.
func substitutes(hols Set) Set {
	added := Set{}
	for _, h := range hols.Sorted() {
		if weekday(h) != time.Sunday {
			continue
		}
		d := h
		for {
			d = d.AddDays(1)
			if !hols.Contains(d) && !added.Contains(d) {
				added.add(d)
				break
			}
		}
	}
	return added
}

// citizensHolidays finds non-Sunday days of the year sandwiched between two holidays
func citizensHolidays(hols Set, year int) Set {
	added := Set{}
	end := civil.Date{Year: year, Month: time.December, Day: 31}
	for d := (civil.Date{Year: year, Month: time.January, Day: 1}); !d.After(end); d = d.AddDays(1) {
		if hols.Contains(d) || weekday(d) == time.Sunday {
			continue
		}
		if hols.Contains(d.AddDays(-1)) && hols.Contains(d.AddDays(1)) {
			added.add(d)
		}
	}
	return added
}

// NthWeekday returns the n-th occurrence of wd in the month
func NthWeekday(year int, month time.Month, wd time.Weekday, n int) civil.Date {
	first := civil.Date{Year: year, Month: month, Day: 1}
	offset := (int(wd) - int(weekday(first)) + 7) % 7
	return first.AddDays(offset + 7*(n-1))
}

// VernalEquinox approximates 春分の日
func VernalEquinox(year int) civil.Date {
	return civil.Date{Year: year, Month: time.March, Day: equinoxDay(20.8431, year)}
}

// AutumnalEquinox approximates 秋分の日
func AutumnalEquinox(year int) civil.Date {
	return civil.Date{Year: year, Month: time.September, Day: equinoxDay(23.2488, year)}
}

func equinoxDay(base float64, year int) int {
	y := year - 1980
	return int(base + 0.242194*float64(y) - float64(int(float64(y)/4)))
}

func weekday(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}
