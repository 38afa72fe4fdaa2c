package services

import "property-recommender/models"

// DefaultImageURL is the placeholder shown when a listing image cannot be resolved.
const DefaultImageURL = "https://media.rightmove.co.uk:443/dir/crop/10:9-16:9/105k/104704/129326042/" +
	"104704_BRC_BRT_LFSYCL_300_456168009_IMG_00_0000_max_476x317.jpeg"

// ImageLookupMode selects how a page's image references are resolved.
type ImageLookupMode string

const (
	// ImageLookupLiteral builds a lookup keyed by each image reference on the
	// page and queries it with the record's property_age. Keys rarely line up,
	// so most records end up with DefaultImageURL. This is what the listing
	// site has always rendered.
	ImageLookupLiteral ImageLookupMode = "literal"
	// ImageLookupSelf keeps a record's own image reference when it has one.
	ImageLookupSelf ImageLookupMode = "self"
)

// ParseImageLookupMode falls back to ImageLookupLiteral for unknown values.
func ParseImageLookupMode(s string) ImageLookupMode {
	if ImageLookupMode(s) == ImageLookupSelf {
		return ImageLookupSelf
	}
	return ImageLookupLiteral
}

// ImageResolver guarantees every record of a page carries an image reference.
type ImageResolver struct {
	Mode     ImageLookupMode
	Fallback string
}

// NewImageResolver returns a resolver using DefaultImageURL as fallback.
func NewImageResolver(mode ImageLookupMode) *ImageResolver {
	return &ImageResolver{Mode: mode, Fallback: DefaultImageURL}
}

// Resolve returns copies of items with ImageURL set. The input is not modified.
func (r *ImageResolver) Resolve(items []models.ListingRecord) []models.ListingRecord {
	fallback := r.Fallback
	if fallback == "" {
		fallback = DefaultImageURL
	}

	lookup := make(map[string]string, len(items))
	for _, rec := range items {
		if rec.ImageURL != "" {
			lookup[rec.ImageURL] = rec.ImageURL
		}
	}

	out := make([]models.ListingRecord, len(items))
	for i, rec := range items {
		var resolved string
		switch r.Mode {
		case ImageLookupSelf:
			resolved = rec.ImageURL
		default:
			if rec.PropertyAge.Valid {
				resolved = lookup[rec.PropertyAge.Value]
			}
		}
		if resolved == "" {
			resolved = fallback
		}
		rec.ImageURL = resolved
		out[i] = rec
	}
	return out
}
