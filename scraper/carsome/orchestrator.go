package carsome

import (
	"context"
	"time"

	"carsome-scraper/config"
	"carsome-scraper/models"
	"carsome-scraper/utils"
)

// AllPages asks the orchestrator to scrape every discovered page.
const AllPages = -1

// ResultCache is the persistent query→result mapping. Lookup returns
// (nil, nil) on a miss; Store replaces any prior entry for the key.
type ResultCache interface {
	Lookup(ctx context.Context, key string) (*models.ResultSet, error)
	Store(ctx context.Context, key string, rs *models.ResultSet) error
}

// Orchestrator sequences cache lookup, pagination discovery, and the
// sequential per-page extraction loop. One run at a time; page fetches
// never overlap.
type Orchestrator struct {
	cfg     *config.Config
	oracle  PageCountOracle
	scraper PageScraper
	cache   ResultCache
}

func NewOrchestrator(cfg *config.Config, oracle PageCountOracle, scraper PageScraper, cache ResultCache) *Orchestrator {
	return &Orchestrator{cfg: cfg, oracle: oracle, scraper: scraper, cache: cache}
}

// Run answers a search, serving from the cache when the same normalized
// query has been scraped before. requestedPages is 1..PageCount or
// AllPages; asking for more pages than exist clamps to what the site
// has. A cache hit returns immediately without touching the browser or
// the extraction service.
func (o *Orchestrator) Run(ctx context.Context, query models.SearchQuery, requestedPages int) (*models.ResultSet, error) {
	if requestedPages != AllPages && requestedPages < 1 {
		return nil, ErrInvalidSelection
	}

	key := query.CanonicalURL(o.cfg.BaseURL)

	cached, err := o.cache.Lookup(ctx, key)
	if err != nil {
		utils.Warn("Cache lookup failed, scraping fresh: %v", err)
	}
	if cached != nil {
		utils.Success("Cache hit for %s (%d listings)", key, len(cached.Listings))
		cached.FromCache = true
		return cached, nil
	}

	return o.RunFresh(ctx, query, requestedPages)
}

// RunFresh always scrapes, bypassing the cache lookup. The fresh result
// still lands in the cache on success.
func (o *Orchestrator) RunFresh(ctx context.Context, query models.SearchQuery, requestedPages int) (*models.ResultSet, error) {
	if requestedPages != AllPages && requestedPages < 1 {
		return nil, ErrInvalidSelection
	}

	key := query.CanonicalURL(o.cfg.BaseURL)

	pageCount, err := o.oracle.DiscoverPages(ctx, key)
	if err != nil {
		return nil, err
	}

	startedAt := time.Now().UTC()
	if pageCount == 0 {
		return &models.ResultSet{ScrapedAt: startedAt}, nil
	}

	pages := requestedPages
	if pages == AllPages {
		pages = pageCount
	} else if pages > pageCount {
		utils.Warn("Requested %d pages but only %d exist, clamping", pages, pageCount)
		pages = pageCount
	}

	rs := o.scrapePages(ctx, key, pages, startedAt)

	if len(rs.Listings) > 0 {
		if err := o.cache.Store(ctx, key, rs); err != nil {
			// degraded, not fatal: the scraped data is already in hand
			utils.Error("Cache write failed: %v", err)
		} else {
			utils.Success("Cached %d listings under %s", len(rs.Listings), key)
		}
	}

	return rs, nil
}

// scrapePages runs the sequential page loop. A page that fails both
// extraction attempts contributes zero records and is named in
// FailedPages; the remaining pages still run. Concatenation preserves
// page order and within-page order, then rows are numbered 1..N and
// stamped with the run start time.
func (o *Orchestrator) scrapePages(ctx context.Context, searchURL string, pages int, startedAt time.Time) *models.ResultSet {
	rs := &models.ResultSet{ScrapedAt: startedAt}

	for page := 1; page <= pages; page++ {
		pageURL := models.PageURL(searchURL, page)
		utils.Info("Scraping page %d/%d", page, pages)

		var slice []models.CarListing
		err := utils.Retry(o.cfg.MaxAttempts, func() error {
			var scrapeErr error
			slice, scrapeErr = o.scraper.ScrapePage(ctx, pageURL)
			return scrapeErr
		})
		if err != nil {
			utils.Error("Page %d failed after %d attempts: %v", page, o.cfg.MaxAttempts, err)
			rs.FailedPages = append(rs.FailedPages, page)
			continue
		}

		utils.Success("Page %d: %d listings", page, len(slice))
		rs.Listings = append(rs.Listings, slice...)
	}

	for i := range rs.Listings {
		rs.Listings[i].RowNumber = i + 1
		rs.Listings[i].ScrapedAt = startedAt
	}

	return rs
}
