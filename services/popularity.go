package services

import "property-recommender/models"

// PopularityIndex maps a listing identifier to its visit count. Listings with
// no recorded visit are absent, never stored as zero.
type PopularityIndex map[int64]int

// BuildPopularityIndex counts every visit event per identifier. There is no
// decay and no deduplication of repeat visits.
func BuildPopularityIndex(events []models.VisitEvent) PopularityIndex {
	idx := make(PopularityIndex)
	for _, e := range events {
		idx[e.ItemID]++
	}
	return idx
}

// Count returns the visit count for id, zero when it was never visited.
func (p PopularityIndex) Count(id int64) int {
	return p[id]
}

// Contains reports whether id has at least one recorded visit.
func (p PopularityIndex) Contains(id int64) bool {
	_, ok := p[id]
	return ok
}
