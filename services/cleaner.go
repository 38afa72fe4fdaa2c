package services

import (
	"strings"
	"unicode"

	"property-recommender/models"
	"property-recommender/utils"
)

// Cleaner normalises crawled search-result rows before they are stored.
type Cleaner struct {
	baseURL string
	logger  *utils.Logger
}

// NewCleaner creates a Cleaner that resolves relative detail links against baseURL.
func NewCleaner(baseURL string, logger *utils.Logger) *Cleaner {
	return &Cleaner{baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// Clean trims and collapses whitespace, makes detail URLs absolute, drops
// rows without a URL and removes duplicate URLs (first one wins).
func (c *Cleaner) Clean(raw []*models.RawListing) []*models.RawListing {
	seen := make(map[string]struct{})
	result := make([]*models.RawListing, 0, len(raw))

	for _, r := range raw {
		url := c.absoluteURL(strings.TrimSpace(r.URL))
		if url == "" {
			c.logger.Warn("[cleaner] Dropping listing with empty URL: %s", r.Address)
			continue
		}

		if _, dup := seen[url]; dup {
			c.logger.Debug("[cleaner] Duplicate URL skipped: %s", url)
			continue
		}
		seen[url] = struct{}{}

		result = append(result, &models.RawListing{
			Address:   normaliseText(r.Address),
			Price:     normaliseText(r.Price),
			URL:       url,
			ScrapedAt: r.ScrapedAt,
		})
	}

	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

func (c *Cleaner) absoluteURL(u string) string {
	if u == "" || strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return c.baseURL + u
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
