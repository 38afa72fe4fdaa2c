package models

import (
	"time"

	"github.com/goccy/go-json"
)

// Field is the textual form of one catalog cell. Valid is false when the cell
// is empty, NaN-like, or its column is missing from the catalog entirely.
type Field struct {
	Value string
	Valid bool
}

// Text builds a Field, treating empty and NaN-like cells as absent.
func Text(s string) Field {
	switch s {
	case "", "nan", "NaN", "NULL", "null", "None":
		return Field{}
	}
	return Field{Value: s, Valid: true}
}

// MarshalJSON renders an absent field as null.
func (f Field) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// ListingRecord is one row of the property catalog.
type ListingRecord struct {
	ID          int64             `json:"item_id"`
	HasElevator Field             `json:"has_elevator"`
	RoomQty     Field             `json:"room_qty"`
	PropertyAge Field             `json:"property_age"`
	ImageURL    string            `json:"imageurl"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// VisitEvent is one row of the user activity log.
type VisitEvent struct {
	ItemID int64
}

// SortKey selects how the filtered set is ordered.
type SortKey string

const (
	SortByIdentifier SortKey = "identifier"
	SortByPopularity SortKey = "popularity"
)

// QuerySpec carries the parameters of one recommendation request.
type QuerySpec struct {
	Keywords string
	Location string
	Page     int
	// PageSize of zero defers to the recommender's configured page sizer.
	PageSize int
	SortKey  SortKey
}

// ResultPage is the output of one recommendation request.
type ResultPage struct {
	Items      []ListingRecord `json:"recommendations"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	Count      int             `json:"num_recommendations"`
	Matched    int             `json:"matched"`
	PageSize   int             `json:"page_size"`
}

// NoRecommendations reports whether the filtered set was empty. An
// out-of-range page over a non-empty set is not a "no recommendations" case.
func (p *ResultPage) NoRecommendations() bool {
	return p.Matched == 0
}

// PopularListing pairs a catalog record with its visit count.
type PopularListing struct {
	ListingRecord
	VisitCount int `json:"visit_count"`
}

// RawListing holds one search-result card scraped by the crawl job.
type RawListing struct {
	Address   string
	Price     string
	URL       string
	ScrapedAt time.Time
}

// InsightReport summarises the loaded catalog and activity log.
type InsightReport struct {
	TotalListings   int
	VisitedListings int
	TotalVisits     int
	OrphanVisits    int
	TopVisited      []PopularListing
	ListingsByRooms map[string]int
}
