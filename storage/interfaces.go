package storage

import "property-harvester/models"

// ListingWriter is the interface any storage backend must satisfy.
type ListingWriter interface {
	Write(listings []*models.Listing) error
	Close() error
}

// RawListingWriter is the interface for persisting unprocessed scraped data.
type RawListingWriter interface {
	WriteRaw(listings []*models.RawListing) error
	Close() error
}

// ListingReader loads previously stored listings.
type ListingReader interface {
	FetchAll() ([]*models.Listing, error)
}

var (
	_ ListingWriter    = (*JSONWriter)(nil)
	_ ListingWriter    = (*PostgresWriter)(nil)
	_ RawListingWriter = (*CSVWriter)(nil)
	_ ListingReader    = (*JSONStore)(nil)
	_ ListingReader    = (*PostgresWriter)(nil)
)
