package report

import (
	"net/url"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"

	"airbnb-report/models"
)

// SearchParams are the fixed search conditions used to rebuild a day's search link
type SearchParams struct {
	BaseURL     string
	Destination string
	Adults      int
	Children    int
	Infants     int
	Pets        int
	PriceMin    string // empty when unset
	PriceMax    string
}

// DefaultSearchParams mirrors the scraper's defaults
func DefaultSearchParams() SearchParams {
	return SearchParams{
		BaseURL:     "https://www.airbnb.jp",
		Destination: "大阪市 此花区",
		Adults:      4,
	}
}

// URL builds a search link for a stay from checkin to checkout.
// Query parameters are always emitted in the same order.
func (p SearchParams) URL(checkin, checkout civil.Date) string {
	params := [][2]string{
		{"checkin", checkin.String()},
		{"checkout", checkout.String()},
		{"adults", strconv.Itoa(p.Adults)},
		{"children", strconv.Itoa(p.Children)},
		{"infants", strconv.Itoa(p.Infants)},
		{"pets", strconv.Itoa(p.Pets)},
	}
	if p.PriceMin != "" {
		params = append(params, [2]string{"price_min", p.PriceMin})
	}
	if p.PriceMax != "" {
		params = append(params, [2]string{"price_max", p.PriceMax})
	}

	query := make([]string, len(params))
	for i, kv := range params {
		query[i] = kv[0] + "=" + url.QueryEscape(kv[1])
	}
	base := strings.TrimRight(p.BaseURL, "/")
	return base + "/s/" + url.PathEscape(p.Destination) + "/homes?" + strings.Join(query, "&")
}

// URLFor returns the row's own search URL when it already carries the stay
// conditions, otherwise a rebuilt one-night search.
func (p SearchParams) URLFor(row models.SummaryRow) string {
	if row.URL != "" && strings.Contains(row.URL, "checkin=") && strings.Contains(row.URL, "adults=") {
		return row.URL
	}
	return p.URL(row.CheckIn, row.CheckIn.AddDays(1))
}
