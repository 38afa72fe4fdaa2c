package services

import (
	"strings"

	"property-recommender/models"
)

// FieldName names a filterable catalog attribute.
type FieldName string

const (
	FieldHasElevator FieldName = "has_elevator"
	FieldRoomQty     FieldName = "room_qty"
	FieldPropertyAge FieldName = "property_age"
)

// Lookup returns the named field of rec. Unknown names are absent.
func (f FieldName) Lookup(rec models.ListingRecord) models.Field {
	switch f {
	case FieldHasElevator:
		return rec.HasElevator
	case FieldRoomQty:
		return rec.RoomQty
	case FieldPropertyAge:
		return rec.PropertyAge
	}
	return models.Field{}
}

// Predicate decides whether a catalog record is kept.
type Predicate interface {
	Matches(rec models.ListingRecord) bool
}

// PredicateFunc adapts a plain function to Predicate.
type PredicateFunc func(rec models.ListingRecord) bool

func (f PredicateFunc) Matches(rec models.ListingRecord) bool { return f(rec) }

type substring struct {
	field  FieldName
	needle string
}

// Substring matches records whose field contains needle, ignoring case. An
// absent field never matches; an empty needle matches any present value.
func Substring(field FieldName, needle string) Predicate {
	return substring{field: field, needle: strings.ToLower(needle)}
}

func (s substring) Matches(rec models.ListingRecord) bool {
	v := s.field.Lookup(rec)
	if !v.Valid {
		return false
	}
	return strings.Contains(strings.ToLower(v.Value), s.needle)
}

// Visited matches records with at least one recorded visit.
func Visited(idx PopularityIndex) Predicate {
	return PredicateFunc(func(rec models.ListingRecord) bool {
		return idx.Contains(rec.ID)
	})
}

// All matches when every predicate matches.
func All(preds ...Predicate) Predicate {
	return PredicateFunc(func(rec models.ListingRecord) bool {
		for _, p := range preds {
			if !p.Matches(rec) {
				return false
			}
		}
		return true
	})
}

// Select returns the records matching pred, in catalog order.
func Select(catalog []models.ListingRecord, pred Predicate) []models.ListingRecord {
	out := make([]models.ListingRecord, 0)
	for _, rec := range catalog {
		if pred.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// ApplyFilter keeps visited records whose has_elevator contains keywords and
// whose room_qty contains location. The keyword/location to field pairing is
// the one the listing site has always used.
func ApplyFilter(catalog []models.ListingRecord, idx PopularityIndex, keywords, location string) []models.ListingRecord {
	return Select(catalog, All(
		Substring(FieldHasElevator, keywords),
		Substring(FieldRoomQty, location),
		Visited(idx),
	))
}
