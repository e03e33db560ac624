package stats

import (
	"math"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airbnb-report/models"
)

func TestRound(t *testing.T) {
	assert.Equal(t, 3, Round(2.5))
	assert.Equal(t, 4, Round(3.5))
	assert.Equal(t, 2, Round(2.4999))
	assert.Equal(t, 18, Round(17.5))
	assert.Equal(t, 0, Round(0))
}

func TestMean(t *testing.T) {
	_, ok := Mean(nil)
	assert.False(t, ok)

	tests := []struct {
		name   string
		values []int
		want   int
	}{
		{"single", []int{7}, 7},
		{"exact", []int{10000, 12000}, 11000},
		{"half rounds up", []int{1, 2}, 2},
		{"below half rounds down", []int{1, 1, 2}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Mean(tt.values)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMedian(t *testing.T) {
	_, ok := Median([]int{})
	assert.False(t, ok)

	tests := []struct {
		name   string
		values []int
		want   int
	}{
		{"odd", []int{5, 1, 3}, 3},
		{"even rounds half up", []int{1, 2, 3, 4}, 3},
		{"even exact", []int{9000, 11000}, 10000},
		{"unsorted input", []int{40, 10, 30, 20}, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Median(tt.values)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuantile(t *testing.T) {
	_, ok := Quantile(nil, 0.5)
	assert.False(t, ok)

	for _, p := range []float64{0, 0.25, 0.5, 0.75, 1} {
		got, ok := Quantile([]int{10}, p)
		require.True(t, ok)
		assert.Equal(t, 10, got, "single element at p=%v", p)
	}

	tests := []struct {
		name   string
		values []int
		p      float64
		want   int
	}{
		{"midpoint of two", []int{10, 20}, 0.5, 15},
		{"lower quartile of four", []int{10, 20, 30, 40}, 0.25, 18}, // rank 0.75 -> 17.5 -> 18
		{"upper quartile of four", []int{40, 30, 20, 10}, 0.75, 33}, // rank 2.25 -> 32.5 -> 33
		{"p25 of two", []int{9000, 11000}, 0.25, 9500},
		{"p75 of two", []int{9000, 11000}, 0.75, 10500},
		{"p0 is min", []int{3, 1, 2}, 0, 1},
		{"p1 is max", []int{3, 1, 2}, 1, 3},
		{"p clamped above", []int{3, 1, 2}, 1.5, 3},
		{"p clamped below", []int{3, 1, 2}, -0.5, 1},
		{"NaN p is min", []int{3, 1, 2}, math.NaN(), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Quantile(tt.values, tt.p)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuantileDoesNotReorderInput(t *testing.T) {
	values := []int{30, 10, 20}
	_, _ = Quantile(values, 0.5)
	_, _ = Median(values)
	assert.Equal(t, []int{30, 10, 20}, values)
}

func TestByDay(t *testing.T) {
	d1 := civil.Date{Year: 2026, Month: time.January, Day: 23}
	d2 := civil.Date{Year: 2026, Month: time.January, Day: 24}
	d3 := civil.Date{Year: 2026, Month: time.January, Day: 25}

	details := []models.DetailRow{
		{CheckIn: d1, Price: 11000},
		{CheckIn: d1, Price: 9000},
		{CheckIn: d3, Price: 0},
	}

	got := ByDay(details)
	require.Len(t, got, 2)

	assert.Equal(t, models.DayStats{Median: 10000, P25: 9500, P75: 10500, Min: 9000, Max: 11000}, got[d1])
	assert.Equal(t, models.DayStats{Median: 0, P25: 0, P75: 0, Min: 0, Max: 0}, got[d3])

	_, ok := got[d2]
	assert.False(t, ok, "a date without detail rows has no entry")
}

func TestPtr(t *testing.T) {
	assert.Nil(t, Ptr(Mean(nil)))
	v := Ptr(Mean([]int{2, 4}))
	require.NotNil(t, v)
	assert.Equal(t, 3, *v)
}
