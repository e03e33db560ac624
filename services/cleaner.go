package services

import (
	"cmp"
	"math"
	"sort"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"

	"airbnb-report/models"
	"airbnb-report/utils"
)

// DropReason says why a raw row did not become a typed row
type DropReason string

const (
	DropBadDate   DropReason = "bad_date"
	DropBadPrice  DropReason = "bad_price"
	DropDuplicate DropReason = "duplicate"
)

// CleanStats counts what happened to a table's raw rows
type CleanStats struct {
	Read    int
	Kept    int
	Dropped map[DropReason]int
}

func newCleanStats(read int) CleanStats {
	return CleanStats{Read: read, Dropped: make(map[DropReason]int)}
}

// RecordCleaner turns raw CSV records into typed, sorted rows.
// It never fails: a row without a usable key is dropped, an unreadable optional cell becomes absent.
type RecordCleaner struct {
	logger *utils.Logger
}

// NewRecordCleaner creates a new RecordCleaner
func NewRecordCleaner(logger *utils.Logger) *RecordCleaner {
	return &RecordCleaner{logger: logger}
}

// CleanSummary converts summary records, sorted by check-in with one row per date.
// When a date repeats, the later row wins.
func (c *RecordCleaner) CleanSummary(raw []models.RawRecord) ([]models.SummaryRow, CleanStats) {
	st := newCleanStats(len(raw))
	byDate := make(map[civil.Date]int)
	var rows []models.SummaryRow

	for i, r := range raw {
		d, ok := ParseDate(r["checkin"])
		if !ok {
			c.logger.Debug("Skipping summary row %d: bad checkin %q", i+1, r["checkin"])
			st.Dropped[DropBadDate]++
			continue
		}

		row := models.SummaryRow{
			CheckIn:  d,
			AvgPrice: ParseOptInt(r["avg_price_yen"]),
			Count:    parseCount(r["count"]),
			MinPrice: ParseOptInt(r["min_price_yen"]),
			MaxPrice: ParseOptInt(r["max_price_yen"]),
			URL:      strings.TrimSpace(r["url"]),
		}

		if idx, seen := byDate[d]; seen {
			c.logger.Warn("Duplicate summary row for %s, keeping the later one", d)
			rows[idx] = row
			st.Dropped[DropDuplicate]++
			continue
		}
		byDate[d] = len(rows)
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].CheckIn.Before(rows[j].CheckIn) })

	st.Kept = len(rows)
	c.logger.Info("Cleaned %d summary rows from %d raw records", st.Kept, st.Read)
	return rows, st
}

// CleanDetails converts detail records, sorted by (check-in, price, listing URL)
func (c *RecordCleaner) CleanDetails(raw []models.RawRecord) ([]models.DetailRow, CleanStats) {
	st := newCleanStats(len(raw))
	var rows []models.DetailRow

	for i, r := range raw {
		d, ok := ParseDate(r["checkin"])
		if !ok {
			c.logger.Debug("Skipping detail row %d: bad checkin %q", i+1, r["checkin"])
			st.Dropped[DropBadDate]++
			continue
		}
		price := ParseOptInt(r["price_yen"])
		if price == nil || *price < 0 {
			c.logger.Debug("Skipping detail row %d: bad price_yen %q", i+1, r["price_yen"])
			st.Dropped[DropBadPrice]++
			continue
		}

		row := models.DetailRow{
			CheckIn:      d,
			Price:        *price,
			ListingURL:   strings.TrimSpace(r["listing_url"]),
			RawLabel:     strings.TrimSpace(r["raw_label"]),
			Title:        strings.TrimSpace(r["title"]),
			Guests:       ParseOptInt(r["guests"]),
			Bedrooms:     ParseOptInt(r["bedrooms"]),
			Beds:         ParseOptInt(r["beds"]),
			ReviewsCount: ParseOptInt(r["reviews_count"]),
			Rating:       ParseOptFloat(r["rating"]),
		}
		if s := strings.TrimSpace(r["subtitle"]); s != "" {
			row.Subtitle = &s
		}
		rows = append(rows, row)
	}

	SortDetails(rows)

	st.Kept = len(rows)
	c.logger.Info("Cleaned %d detail rows from %d raw records", st.Kept, st.Read)
	return rows, st
}

// SortDetails orders rows by check-in, price and listing URL, then by title and label
// so that the order never depends on input order.
func SortDetails(rows []models.DetailRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return compareDetails(rows[i], rows[j]) < 0
	})
}

// compareDetails orders by date, price, then every remaining field so that
// equal-priced rows never depend on file order. Absent values sort first.
func compareDetails(a, b models.DetailRow) int {
	switch {
	case a.CheckIn.Before(b.CheckIn):
		return -1
	case a.CheckIn.After(b.CheckIn):
		return 1
	}
	for _, c := range []int{
		cmp.Compare(a.Price, b.Price),
		cmp.Compare(a.ListingURL, b.ListingURL),
		cmp.Compare(a.Title, b.Title),
		cmp.Compare(a.RawLabel, b.RawLabel),
		compareOpt(a.Guests, b.Guests),
		compareOpt(a.Bedrooms, b.Bedrooms),
		compareOpt(a.Beds, b.Beds),
		compareOpt(a.ReviewsCount, b.ReviewsCount),
		compareOpt(a.Rating, b.Rating),
		compareOpt(a.Subtitle, b.Subtitle),
	} {
		if c != 0 {
			return c
		}
	}
	return 0
}

func compareOpt[T cmp.Ordered](a, b *T) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return cmp.Compare(*a, *b)
}

// ParseDate accepts strict YYYY-MM-DD
func ParseDate(raw string) (civil.Date, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return civil.Date{}, false
	}
	d, err := civil.ParseDate(v)
	if err != nil || !d.IsValid() {
		return civil.Date{}, false
	}
	return d, true
}

// ParseOptInt returns nil for empty, "none" (any case) or unparseable text
func ParseOptInt(raw string) *int {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, "none") {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

// ParseOptFloat returns nil for empty, "none", unparseable or non-finite text
func ParseOptFloat(raw string) *float64 {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, "none") {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// parseCount defaults to 0: a count is a completed aggregate, never absent
func parseCount(raw string) int {
	n := ParseOptInt(raw)
	if n == nil || *n < 0 {
		return 0
	}
	return *n
}
