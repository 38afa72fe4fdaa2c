package storage

import (
	"context"

	"property-recommender/models"
)

// RawListingWriter is the interface any crawl sink must satisfy.
type RawListingWriter interface {
	WriteRaw(listings []*models.RawListing) error
	Close() error
}

// RawListingStore is a crawl sink that can also be read back.
type RawListingStore interface {
	RawListingWriter
	FetchAll(ctx context.Context) ([]*models.RawListing, error)
}
