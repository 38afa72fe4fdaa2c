package services

import (
	"math/rand"
	"sync"

	"property-recommender/models"
)

// Bounds of the per-request random page size the listing site historically
// drew. Kept for compatibility fixtures only.
const (
	LegacyMinPageSize = 10
	LegacyMaxPageSize = 900000000
)

// PageSizer supplies the page size for one request.
type PageSizer interface {
	PageSize() int
}

// FixedPageSize always returns the same size.
type FixedPageSize int

func (f FixedPageSize) PageSize() int { return max(int(f), 1) }

// RandomPageSize draws a size uniformly from [Min, Max] using a seeded source.
type RandomPageSize struct {
	Min, Max int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomPageSize creates a seeded RandomPageSize. Equal seeds yield equal
// sequences of sizes.
func NewRandomPageSize(minSize, maxSize int, seed int64) *RandomPageSize {
	minSize = max(minSize, 1)
	maxSize = max(maxSize, minSize)
	return &RandomPageSize{Min: minSize, Max: maxSize, rng: rand.New(rand.NewSource(seed))}
}

func (r *RandomPageSize) PageSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Min + r.rng.Intn(r.Max-r.Min+1)
}

// Paginate returns the records of the given 1-based page and the total page
// count. A page past the end yields an empty slice; pageSize below 1 is
// treated as 1.
func Paginate(ranked []models.ListingRecord, page, pageSize int) ([]models.ListingRecord, int) {
	pageSize = max(pageSize, 1)
	n := len(ranked)
	totalPages := n / pageSize
	if n%pageSize != 0 {
		totalPages++
	}

	if page < 1 || page > totalPages {
		return []models.ListingRecord{}, totalPages
	}
	// page <= totalPages keeps start below n, so neither product nor sum overflows.
	start := (page - 1) * pageSize
	end := start + min(pageSize, n-start)
	return ranked[start:end], totalPages
}
