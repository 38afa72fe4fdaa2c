package services

import (
	"slices"

	"property-recommender/models"
)

// ParseSortKey maps a user-supplied value to a SortKey, falling back to
// SortByIdentifier for anything unrecognised.
func ParseSortKey(s string) models.SortKey {
	if models.SortKey(s) == models.SortByPopularity {
		return models.SortByPopularity
	}
	return models.SortByIdentifier
}

// Rank returns a sorted copy of records, descending by key. Popularity ties
// are broken by identifier, also descending.
func Rank(records []models.ListingRecord, idx PopularityIndex, key models.SortKey) []models.ListingRecord {
	out := slices.Clone(records)

	byID := func(a, b models.ListingRecord) int {
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	}

	if key == models.SortByPopularity {
		slices.SortStableFunc(out, func(a, b models.ListingRecord) int {
			if ca, cb := idx.Count(a.ID), idx.Count(b.ID); ca != cb {
				return cb - ca
			}
			return byID(a, b)
		})
		return out
	}

	slices.SortStableFunc(out, byID)
	return out
}
