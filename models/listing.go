package models

import "cloud.google.com/go/civil"

// RawRecord is one CSV row keyed by header name, exactly as read from disk
type RawRecord map[string]string

// SummaryRow is one check-in date's aggregate, as produced upstream by the scraper
type SummaryRow struct {
	CheckIn  civil.Date
	AvgPrice *int // absent when no listing qualified
	Count    int
	MinPrice *int
	MaxPrice *int
	URL      string // search URL, may be empty
}

// DetailRow is a single listing observed for a check-in date
type DetailRow struct {
	CheckIn      civil.Date
	Price        int
	ListingURL   string
	RawLabel     string // text scraped from the search card, e.g. "¥12,000 1泊"
	Title        string
	Guests       *int
	Bedrooms     *int
	Beds         *int
	ReviewsCount *int
	Rating       *float64
	Subtitle     *string
}

// DayStats holds the price distribution of one date's detail rows.
// A date only has DayStats when it has at least one detail row.
type DayStats struct {
	Median int
	P25    int
	P75    int
	Min    int
	Max    int
}

// IntPtr returns a pointer to v. Handy for building rows in code and tests.
func IntPtr(v int) *int {
	return &v
}
