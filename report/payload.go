package report

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/samber/lo"

	"airbnb-report/holiday"
	"airbnb-report/models"
	"airbnb-report/utils"
)

// ListingPayload is one listing as shown in the day modal
type ListingPayload struct {
	Price        int      `json:"price"`
	URL          string   `json:"url"`
	Label        string   `json:"label"`
	Title        string   `json:"title"`
	Guests       *int     `json:"guests"`
	Bedrooms     *int     `json:"bedrooms"`
	Beds         *int     `json:"beds"`
	ReviewsCount *int     `json:"reviews_count"`
	Rating       *float64 `json:"rating"`
	Subtitle     *string  `json:"subtitle"`
}

// DayPayload is everything the modal needs for one date. It carries text only;
// the page script builds markup from it.
type DayPayload struct {
	Label   string           `json:"label"`   // 2026年01月23日
	Weekday string           `json:"weekday"` // 金
	Class   string           `json:"wcls"`
	Rows    []ListingPayload `json:"rows"`
}

// Payload maps ISO dates to their listings
type Payload map[string]DayPayload

// BuildPayload groups detail rows by date, cheapest first. Dates without
// detail rows are absent.
func BuildPayload(details []models.DetailRow, hols holiday.Set) Payload {
	groups := lo.GroupBy(details, func(r models.DetailRow) string { return r.CheckIn.String() })

	out := make(Payload, len(groups))
	for iso, rows := range groups {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Price < rows[j].Price })
		d := rows[0].CheckIn
		out[iso] = DayPayload{
			Label:   utils.FormatDateJP(d),
			Weekday: utils.WeekdayJP(d),
			Class:   string(hols.Classify(d)),
			Rows: lo.Map(rows, func(r models.DetailRow, _ int) ListingPayload {
				return ListingPayload{
					Price:        r.Price,
					URL:          r.ListingURL,
					Label:        r.RawLabel,
					Title:        r.Title,
					Guests:       r.Guests,
					Bedrooms:     r.Bedrooms,
					Beds:         r.Beds,
					ReviewsCount: r.ReviewsCount,
					Rating:       r.Rating,
					Subtitle:     r.Subtitle,
				}
			}),
		}
	}
	return out
}

// JSON encodes the payload with keys in date order. encoding/json escapes
// <, > and & so the result is safe inside a script element.
func (p Payload) JSON() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode day payload: %w", err)
	}
	return data, nil
}
