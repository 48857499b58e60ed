package realtor

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"property-harvester/models"
)

var (
	// ErrUnsupportedListingType is returned for listing types other than
	// for_sale, for_rent, sold and pending.
	ErrUnsupportedListingType = errors.New("unsupported listing type")
	// ErrInvalidLimit is returned when the result limit is not positive.
	ErrInvalidLimit = errors.New("limit must be positive")
	// ErrNoPageData is returned when a page carries no embedded listing data.
	ErrNoPageData = errors.New("no __NEXT_DATA__ payload on page")
)

const (
	ForSale = "for_sale"
	ForRent = "for_rent"
	Sold    = "sold"
	Pending = "pending"
)

// Query describes one search against the listing source.
type Query struct {
	Location          string
	ListingType       string
	Limit             int
	SortBy            string
	SortDirection     string
	ReturnType        string
	ExtraPropertyData bool
}

// NewQuery returns a Query with the harvest defaults: newest listings first,
// raw records, extra property data requested.
func NewQuery(location, listingType string, limit int) Query {
	return Query{
		Location:          location,
		ListingType:       listingType,
		Limit:             limit,
		SortBy:            "list_date",
		SortDirection:     "desc",
		ReturnType:        "raw",
		ExtraPropertyData: true,
	}
}

// Validate checks the query can be executed.
func (q Query) Validate() error {
	switch q.ListingType {
	case ForSale, ForRent, Sold, Pending:
	default:
		return fmt.Errorf("realtor: %w: %q", ErrUnsupportedListingType, q.ListingType)
	}
	if q.Limit <= 0 {
		return fmt.Errorf("realtor: %w: %d", ErrInvalidLimit, q.Limit)
	}
	if q.Location == "" {
		return errors.New("realtor: location is required")
	}
	return nil
}

// Fetcher retrieves raw listings for a query.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) ([]*models.RawListing, error)
}

// finalize orders listings per the query and truncates to its limit.
func finalize(listings []*models.RawListing, q Query) []*models.RawListing {
	if q.SortBy == "list_date" {
		desc := q.SortDirection != "asc"
		sort.SliceStable(listings, func(i, j int) bool {
			a, b := listings[i].ListDate.String(), listings[j].ListDate.String()
			if desc {
				return a > b
			}
			return a < b
		})
	}
	if len(listings) > q.Limit {
		listings = listings[:q.Limit]
	}
	return listings
}
