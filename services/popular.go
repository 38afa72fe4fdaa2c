package services

import (
	"slices"

	"property-recommender/models"
)

// MostVisited joins the popularity index with the catalog, ordered by visit
// count descending and then by identifier ascending. Visits to identifiers
// missing from the catalog are dropped.
func MostVisited(catalog []models.ListingRecord, idx PopularityIndex) []models.PopularListing {
	out := make([]models.PopularListing, 0, len(idx))
	for _, rec := range catalog {
		if n := idx.Count(rec.ID); n > 0 {
			out = append(out, models.PopularListing{ListingRecord: rec, VisitCount: n})
		}
	}

	slices.SortFunc(out, func(a, b models.PopularListing) int {
		if a.VisitCount != b.VisitCount {
			return b.VisitCount - a.VisitCount
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}
