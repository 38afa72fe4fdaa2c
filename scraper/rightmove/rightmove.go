package rightmove

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/goccy/go-json"

	"property-recommender/config"
	"property-recommender/models"
	"property-recommender/utils"
)

const (
	// BaseURL resolves the relative detail links on result cards.
	BaseURL = "https://www.rightmove.co.uk"
	// resultsPerPage is the step of the search "index" query parameter.
	resultsPerPage = 24
)

// extractCardsJS serialises every search result card on the page.
const extractCardsJS = `
	(function() {
		var out = [];
		var cards = document.querySelectorAll('div.l-searchResult');
		for (var i = 0; i < cards.length; i++) {
			var card = cards[i];
			var address = card.querySelector('address.propertyCard-address');
			var price = card.querySelector('div.propertyCard-priceValue');
			var link = card.querySelector('a.propertyCard-link');
			out.push({
				address: address ? address.textContent : '',
				price:   price ? price.textContent : '',
				url:     link ? (link.getAttribute('href') || '') : ''
			});
		}
		return JSON.stringify(out);
	})()
`

type card struct {
	Address string `json:"address"`
	Price   string `json:"price"`
	URL     string `json:"url"`
}

// Scraper crawls listing search result pages into raw catalog rows.
type Scraper struct {
	cfg        *config.Config
	logger     *utils.Logger
	pool       *utils.WorkerPool
	visitedURL *utils.URLSet
	retry      *utils.RetryConfig

	mu       sync.Mutex
	listings map[int][]*models.RawListing
}

// New creates a ready-to-use Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:        cfg,
		logger:     logger,
		pool:       utils.NewWorkerPool(cfg.MaxConcurrency, time.Duration(cfg.RateLimitMs)*time.Millisecond),
		visitedURL: utils.NewURLSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		listings: make(map[int][]*models.RawListing),
	}
}

// Scrape loads every configured result page and returns the cards in page
// order. Pages that fail after retries are logged and skipped.
func (s *Scraper) Scrape(ctx context.Context) ([]*models.RawListing, error) {
	pages, err := PageURLs(s.cfg.CrawlURL, s.cfg.PagesToScrape)
	if err != nil {
		return nil, err
	}
	s.logger.Info("[rightmove] Starting crawl: %d pages from %s", len(pages), s.cfg.CrawlURL)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if bin := findChromeBinary(s.cfg.ChromeBin); bin != "" {
		s.logger.Info("[rightmove] Using browser binary: %s", bin)
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()
	// Start the browser before tabs are opened concurrently.
	if err := chromedp.Run(browserCtx); err != nil {
		return nil, fmt.Errorf("rightmove: start browser: %w", err)
	}

	for i, pageURL := range pages {
		pageNum, target := i+1, pageURL
		s.pool.Submit(browserCtx, func(ctx context.Context) {
			rows, err := s.scrapePage(ctx, target, pageNum)
			if err != nil {
				s.logger.Error("[rightmove] Page %d failed: %v", pageNum, err)
				return
			}
			s.mu.Lock()
			s.listings[pageNum] = rows
			s.mu.Unlock()
			s.logger.Info("[rightmove] Page %d done: %d listings", pageNum, len(rows))
		})
	}
	s.pool.Wait()

	result := s.collect()
	s.logger.Info("[rightmove] Crawl complete: %d raw listings", len(result))
	return result, ctx.Err()
}

func (s *Scraper) collect() []*models.RawListing {
	s.mu.Lock()
	defer s.mu.Unlock()

	nums := make([]int, 0, len(s.listings))
	for n := range s.listings {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	var out []*models.RawListing
	for _, n := range nums {
		out = append(out, s.listings[n]...)
	}
	return out
}

// scrapePage opens one result page in a new tab and extracts its cards.
func (s *Scraper) scrapePage(browserCtx context.Context, pageURL string, pageNum int) ([]*models.RawListing, error) {
	var rows []*models.RawListing

	err := s.retry.Do(browserCtx, "scrape-page-"+strconv.Itoa(pageNum), func(ctx context.Context) error {
		tabCtx, cancel := chromedp.NewContext(ctx)
		defer cancel()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, 60*time.Second)
		defer cancelTimeout()

		var payload string
		err := chromedp.Run(tabCtx,
			chromedp.Navigate(pageURL),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.Sleep(3*time.Second),
			chromedp.Evaluate(extractCardsJS, &payload),
		)
		if err != nil {
			return fmt.Errorf("chromedp page scrape: %w", err)
		}

		cards, err := parseCards(payload)
		if err != nil {
			return err
		}
		s.logger.Debug("[rightmove] Page %d: found %d cards", pageNum, len(cards))

		rows = rows[:0]
		now := time.Now()
		for _, c := range cards {
			if c.URL == "" {
				continue
			}
			if !s.visitedURL.Add(c.URL) {
				s.logger.Debug("[rightmove] Skipping duplicate: %s", c.URL)
				continue
			}
			rows = append(rows, &models.RawListing{
				Address:   c.Address,
				Price:     c.Price,
				URL:       c.URL,
				ScrapedAt: now,
			})
		}
		return nil
	})

	return rows, err
}

func parseCards(payload string) ([]card, error) {
	if payload == "" {
		return nil, nil
	}
	var cards []card
	if err := json.Unmarshal([]byte(payload), &cards); err != nil {
		return nil, fmt.Errorf("rightmove: decode cards: %w", err)
	}
	return cards, nil
}

// PageURLs expands a search URL into the URLs of its first n result pages.
func PageURLs(searchURL string, n int) ([]string, error) {
	u, err := url.Parse(searchURL)
	if err != nil {
		return nil, fmt.Errorf("rightmove: parse search url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("rightmove: search url %q is not absolute", searchURL)
	}

	n = max(n, 1)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		q := u.Query()
		if i == 0 {
			q.Del("index")
		} else {
			q.Set("index", strconv.Itoa(i*resultsPerPage))
		}
		page := *u
		page.RawQuery = q.Encode()
		out = append(out, page.String())
	}
	return out, nil
}

// findChromeBinary locates Chrome/Chromium, preferring the configured path.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
