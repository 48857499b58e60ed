package realtor

import (
	"fmt"
	"strings"
)

// newestFirst is the site's path token for sorting by list date, newest first.
const newestFirst = "sby-6"

// Slug converts a free-text location into the site's path form:
// "Miami-Dade County, FL" → "Miami-Dade-County_FL".
func Slug(location string) string {
	parts := strings.Split(location, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Join(strings.Fields(p), "-")
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "_")
}

// SearchURL builds the results URL for page (1-based) of q.
func SearchURL(baseURL string, q Query, page int) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(baseURL, "/"))

	if q.ListingType == ForRent {
		b.WriteString("/apartments/")
	} else {
		b.WriteString("/realestateandhomes-search/")
	}
	b.WriteString(Slug(q.Location))

	switch q.ListingType {
	case Sold:
		b.WriteString("/show-recently-sold")
	case Pending:
		b.WriteString("/show-pending")
	}

	if q.SortBy == "list_date" && q.SortDirection != "asc" {
		b.WriteString("/" + newestFirst)
	}
	if page > 1 {
		fmt.Fprintf(&b, "/pg-%d", page)
	}
	return b.String()
}

// DetailURL builds a property detail URL from its permalink.
func DetailURL(baseURL, permalink string) string {
	if permalink == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/realestateandhomes-detail/" + permalink
}
