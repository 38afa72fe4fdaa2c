package services

import (
	"property-recommender/models"
	"property-recommender/storage"
	"property-recommender/utils"
)

// RecommenderOptions configures a Recommender.
type RecommenderOptions struct {
	// PageSizer is used when a query does not carry its own page size.
	PageSizer PageSizer
	// MaxPageSize caps caller-supplied page sizes. Zero means no cap.
	MaxPageSize int
	// DefaultSort applies when a query leaves SortKey empty.
	DefaultSort models.SortKey
	ImageLookup ImageLookupMode
}

// Recommender answers recommendation queries over an immutable snapshot.
// It holds no mutable state of its own and is safe for concurrent use as
// long as its PageSizer is.
type Recommender struct {
	snapshot *storage.Snapshot
	index    PopularityIndex
	opts     RecommenderOptions
	images   *ImageResolver
	logger   *utils.Logger
}

// NewRecommender builds the popularity index once from the snapshot.
func NewRecommender(snapshot *storage.Snapshot, opts RecommenderOptions, logger *utils.Logger) *Recommender {
	if opts.PageSizer == nil {
		opts.PageSizer = FixedPageSize(LegacyMinPageSize)
	}
	if opts.DefaultSort == "" {
		opts.DefaultSort = models.SortByIdentifier
	}

	index := BuildPopularityIndex(snapshot.Activity)
	logger.Info("[recommender] Popularity index built: %d visited listings from %d events",
		len(index), len(snapshot.Activity))

	return &Recommender{
		snapshot: snapshot,
		index:    index,
		opts:     opts,
		images:   NewImageResolver(opts.ImageLookup),
		logger:   logger,
	}
}

// Index returns the popularity index. Callers must not modify it.
func (r *Recommender) Index() PopularityIndex {
	return r.index
}

// Snapshot returns the catalog and activity log the recommender serves.
func (r *Recommender) Snapshot() *storage.Snapshot {
	return r.snapshot
}

// Recommend filters, ranks, paginates and resolves images for one query. It
// never fails: an empty filter result is reported through
// ResultPage.NoRecommendations and an out-of-range page yields no items.
func (r *Recommender) Recommend(q models.QuerySpec) *models.ResultPage {
	page := q.Page
	if page < 1 {
		page = 1
	}
	sortKey := q.SortKey
	if sortKey == "" {
		sortKey = r.opts.DefaultSort
	}

	filtered := ApplyFilter(r.snapshot.Catalog, r.index, q.Keywords, q.Location)
	if len(filtered) == 0 {
		r.logger.Debug("[recommender] No matches for keywords=%q location=%q", q.Keywords, q.Location)
		return &models.ResultPage{Items: []models.ListingRecord{}, Page: page}
	}

	size := r.pageSize(q.PageSize)
	ranked := Rank(filtered, r.index, sortKey)
	items, totalPages := Paginate(ranked, page, size)
	items = r.images.Resolve(items)

	return &models.ResultPage{
		Items:      items,
		Page:       page,
		TotalPages: totalPages,
		Count:      len(items),
		Matched:    len(filtered),
		PageSize:   size,
	}
}

func (r *Recommender) pageSize(requested int) int {
	if requested < 1 {
		return r.opts.PageSizer.PageSize()
	}
	if r.opts.MaxPageSize > 0 && requested > r.opts.MaxPageSize {
		return r.opts.MaxPageSize
	}
	return requested
}

// MostVisited returns the visited catalog listings with their visit counts.
func (r *Recommender) MostVisited() []models.PopularListing {
	return MostVisited(r.snapshot.Catalog, r.index)
}
