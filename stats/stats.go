// Package stats computes price distribution figures over whole-yen values.
//
// All results are rounded half-up (floor(x+0.5)) so that the same input always
// yields the same integer, independent of how ties fall.
package stats

import (
	"math"
	"sort"

	"cloud.google.com/go/civil"
	"github.com/samber/lo"

	"airbnb-report/models"
)

// Round rounds half-up to the nearest integer
func Round(x float64) int {
	return int(math.Floor(x + 0.5))
}

// Mean returns the rounded arithmetic mean, or false for empty input
func Mean(values []int) (int, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return Round(float64(sum) / float64(len(values))), true
}

// Median returns the middle value; for even lengths the rounded mean of the two middle values
func Median(values []int) (int, bool) {
	if len(values) == 0 {
		return 0, false
	}
	xs := sorted(values)
	m := len(xs) / 2
	if len(xs)%2 == 1 {
		return xs[m], true
	}
	return Round(float64(xs[m-1]+xs[m]) / 2), true
}

// Quantile linearly interpolates between the order statistics bracketing rank (n-1)*p.
// p is clamped to [0, 1]; NaN is treated as 0.
func Quantile(values []int, p float64) (int, bool) {
	if len(values) == 0 {
		return 0, false
	}
	xs := sorted(values)
	if len(xs) == 1 {
		return xs[0], true
	}
	if math.IsNaN(p) {
		p = 0
	}
	p = math.Min(math.Max(p, 0), 1)
	rank := float64(len(xs)-1) * p
	low := int(rank)
	high := low + 1
	if high > len(xs)-1 {
		high = len(xs) - 1
	}
	w := rank - float64(low)
	return Round(float64(xs[low])*(1-w) + float64(xs[high])*w), true
}

// Ptr adapts a (value, ok) result into an optional value
func Ptr(v int, ok bool) *int {
	if !ok {
		return nil
	}
	return &v
}

// ByDay groups detail prices by check-in date and computes their distribution.
// Dates without detail rows have no entry.
func ByDay(details []models.DetailRow) map[civil.Date]models.DayStats {
	groups := lo.GroupBy(details, func(r models.DetailRow) civil.Date { return r.CheckIn })

	out := make(map[civil.Date]models.DayStats, len(groups))
	for d, rows := range groups {
		prices := lo.Map(rows, func(r models.DetailRow, _ int) int { return r.Price })
		out[d] = Summarize(prices)
	}
	return out
}

// Summarize computes DayStats for a non-empty price list
func Summarize(prices []int) models.DayStats {
	median, _ := Median(prices)
	p25, _ := Quantile(prices, 0.25)
	p75, _ := Quantile(prices, 0.75)
	return models.DayStats{
		Median: median,
		P25:    p25,
		P75:    p75,
		Min:    lo.Min(prices),
		Max:    lo.Max(prices),
	}
}

func sorted(values []int) []int {
	xs := make([]int, len(values))
	copy(xs, values)
	sort.Ints(xs)
	return xs
}
