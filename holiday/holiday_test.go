package holiday

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func TestForYear2026(t *testing.T) {
	want := []civil.Date{
		date(2026, time.January, 1),
		date(2026, time.January, 12), // 成人の日
		date(2026, time.February, 11),
		date(2026, time.February, 23),
		date(2026, time.March, 20), // 春分の日
		date(2026, time.April, 29),
		date(2026, time.May, 3), // Sunday
		date(2026, time.May, 4),
		date(2026, time.May, 5),
		date(2026, time.May, 6), // substitute for May 3, chained past 4 and 5
		date(2026, time.July, 20),
		date(2026, time.August, 11),
		date(2026, time.September, 21), // 敬老の日
		date(2026, time.September, 22), // citizen's holiday
		date(2026, time.September, 23), // 秋分の日
		date(2026, time.October, 12),
		date(2026, time.November, 3),
		date(2026, time.November, 23),
	}
	assert.Equal(t, want, ForYear(2026).Sorted())
}

func TestForYear2025Substitutes(t *testing.T) {
	hols := ForYear(2025)

	// 天皇誕生日 falls on Sunday 2025-02-23
	assert.True(t, hols.Contains(date(2025, time.February, 24)))
	// みどりの日 falls on Sunday 2025-05-04; the 5th is taken, so the 6th substitutes
	assert.True(t, hols.Contains(date(2025, time.May, 6)))
	assert.False(t, hols.Contains(date(2025, time.May, 7)))
}

func TestSubstitutes(t *testing.T) {
	t.Run("single sunday holiday moves to monday", func(t *testing.T) {
		seeded := Set{}
		seeded.add(date(2026, time.January, 4)) // Sunday
		got := substitutes(seeded)
		assert.Equal(t, []civil.Date{date(2026, time.January, 5)}, got.Sorted())
	})

	t.Run("consecutive sundays resolve independently", func(t *testing.T) {
		seeded := Set{}
		seeded.add(date(2026, time.January, 4))
		seeded.add(date(2026, time.January, 11))
		got := substitutes(seeded)
		assert.Equal(t, []civil.Date{
			date(2026, time.January, 5),
			date(2026, time.January, 12),
		}, got.Sorted())
	})

	t.Run("chain skips existing holidays", func(t *testing.T) {
		seeded := Set{}
		seeded.add(date(2026, time.January, 4))
		seeded.add(date(2026, time.January, 5))
		seeded.add(date(2026, time.January, 6))
		got := substitutes(seeded)
		assert.Equal(t, []civil.Date{date(2026, time.January, 7)}, got.Sorted())
	})

	t.Run("earlier substitute counts as taken", func(t *testing.T) {
		seeded := Set{}
		seeded.add(date(2026, time.January, 4))  // Sunday -> 5th
		seeded.add(date(2026, time.January, 10)) // Saturday, no substitute
		seeded.add(date(2026, time.January, 11)) // Sunday -> 12th
		got := substitutes(seeded)
		assert.Len(t, got, 2)
		assert.True(t, got.Contains(date(2026, time.January, 5)))
		assert.True(t, got.Contains(date(2026, time.January, 12)))
	})

	t.Run("weekday holidays produce nothing", func(t *testing.T) {
		seeded := Set{}
		seeded.add(date(2026, time.January, 1))
		assert.Empty(t, substitutes(seeded))
	})
}

func TestCitizensHolidays(t *testing.T) {
	t.Run("weekday between two holidays is promoted", func(t *testing.T) {
		hols := Set{}
		hols.add(date(2026, time.June, 8))  // Monday
		hols.add(date(2026, time.June, 10)) // Wednesday
		got := citizensHolidays(hols, 2026)
		assert.Equal(t, []civil.Date{date(2026, time.June, 9)}, got.Sorted())
	})

	t.Run("sunday between two holidays is not promoted", func(t *testing.T) {
		hols := Set{}
		hols.add(date(2026, time.June, 6)) // Saturday
		hols.add(date(2026, time.June, 8)) // Monday
		assert.Empty(t, citizensHolidays(hols, 2026))
	})

	t.Run("existing holiday is not re-added", func(t *testing.T) {
		hols := Set{}
		hols.add(date(2026, time.June, 8))
		hols.add(date(2026, time.June, 9))
		hols.add(date(2026, time.June, 10))
		assert.Empty(t, citizensHolidays(hols, 2026))
	})
}

func TestNthWeekday(t *testing.T) {
	assert.Equal(t, date(2026, time.January, 12), NthWeekday(2026, time.January, time.Monday, 2))
	assert.Equal(t, date(2026, time.July, 20), NthWeekday(2026, time.July, time.Monday, 3))
	assert.Equal(t, date(2026, time.June, 1), NthWeekday(2026, time.June, time.Monday, 1))
	assert.Equal(t, date(2026, time.February, 28), NthWeekday(2026, time.February, time.Saturday, 4))
}

func TestEquinoxes(t *testing.T) {
	tests := []struct {
		year     int
		vernal   int
		autumnal int
	}{
		{2024, 20, 22},
		{2025, 20, 23},
		{2026, 20, 23},
		{2027, 21, 23},
	}
	for _, tt := range tests {
		assert.Equal(t, date(tt.year, time.March, tt.vernal), VernalEquinox(tt.year), "vernal %d", tt.year)
		assert.Equal(t, date(tt.year, time.September, tt.autumnal), AutumnalEquinox(tt.year), "autumnal %d", tt.year)
	}
}

func TestForRange(t *testing.T) {
	got := ForRange(date(2025, time.December, 20), date(2026, time.January, 15))
	assert.Equal(t, []civil.Date{
		date(2026, time.January, 1),
		date(2026, time.January, 12),
	}, got.Sorted())

	assert.Empty(t, ForRange(date(2026, time.January, 2), date(2026, time.January, 1)))

	single := ForRange(date(2026, time.May, 6), date(2026, time.May, 6))
	require.Len(t, single, 1)
	assert.True(t, single.Contains(date(2026, time.May, 6)))
}

func TestClassify(t *testing.T) {
	hols := Set{}
	hols.add(date(2026, time.January, 24)) // a Saturday, made a holiday for the test

	tests := []struct {
		name string
		d    civil.Date
		want DayClass
	}{
		{"holiday beats saturday", date(2026, time.January, 24), ClassHoliday},
		{"saturday", date(2026, time.January, 31), ClassSaturday},
		{"sunday", date(2026, time.January, 25), ClassSunday},
		{"weekday", date(2026, time.January, 23), ClassWeekday},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hols.Classify(tt.d))
		})
	}

	assert.Equal(t, "#16a34a", ClassHoliday.Color())
	assert.Equal(t, "#2563eb", ClassSaturday.Color())
	assert.Equal(t, "#dc2626", ClassSunday.Color())
	assert.Equal(t, "#666", ClassWeekday.Color())
}
