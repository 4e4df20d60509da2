package carsome

import (
	"context"
	"errors"
	"time"

	"carsome-scraper/config"
	"carsome-scraper/utils"

	"github.com/chromedp/chromedp"
)

// PageCountOracle answers "how many result pages does this search
// have". The production implementation drives a headless browser; tests
// substitute a deterministic stub.
type PageCountOracle interface {
	DiscoverPages(ctx context.Context, searchURL string) (int, error)
}

// Discoverer is the chromedp-backed PageCountOracle. The true page
// count only exists after the site's scripts render the pagination
// control, so it has to be read from a live browser, never from the
// raw HTML.
type Discoverer struct {
	cfg         *config.Config
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewDiscoverer prepares the browser allocator. Chrome itself only
// launches on the first DiscoverPages call, so a cache-served query
// never touches the browser.
func NewDiscoverer(cfg *config.Config) *Discoverer {
	allocCtx, allocCancel := chromedp.NewExecAllocator(
		context.Background(),
		utils.BrowserOpts(cfg.Headless)...,
	)
	return &Discoverer{
		cfg:         cfg,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
	}
}

func (d *Discoverer) Close() {
	d.allocCancel()
}

// renderWait bounds how long the results region may take to render,
// leaving the rest of the browser budget for navigation and reading
// the pagination state.
func (d *Discoverer) renderWait() time.Duration {
	return d.cfg.BrowserTimeout / 3
}

// pageState is what the readiness script reports once the results
// region has rendered.
type pageState struct {
	HasResults bool `json:"hasResults"`
	NoResults  bool `json:"noResults"`
	MaxPage    int  `json:"maxPage"`
}

const readySel = `document.querySelector('[class*="list-card"], .mod-card') !== null ||
	document.querySelector('.mod-no-result, [class*="no-result"], [class*="empty"]') !== null`

// The pagination control may render a partial list ("1 2 3 … 17"), so
// the highest numbered item is what counts, not how many items show.
const readStateJS = `(() => {
	const items = Array.from(document.querySelectorAll(
		"nav[aria-label='Pagination Navigation'] li, ul.v-pagination li"
	));
	const numbers = items
		.map(el => parseInt((el.textContent || '').trim(), 10))
		.filter(n => Number.isFinite(n) && n > 0);
	return {
		hasResults: document.querySelector('[class*="list-card"], .mod-card') !== null,
		noResults: document.querySelector('.mod-no-result, [class*="no-result"], [class*="empty"]') !== null,
		maxPage: numbers.length ? Math.max(...numbers) : 0,
	};
})()`

// DiscoverPages navigates to the canonical search URL and reads the
// highest page index from the pagination control. Brand, model, and
// mileage filters ride on the URL itself, so no form filling is needed.
// Returns 0 when the search has no results, 1 when results exist but
// no pagination control does. The browser tab is released on every
// exit path.
func (d *Discoverer) DiscoverPages(ctx context.Context, searchURL string) (int, error) {
	utils.Info("Launching Chrome to count result pages...")
	tabCtx, tabCancel := chromedp.NewContext(d.allocCtx)
	defer tabCancel()

	runCtx, cancel := context.WithTimeout(tabCtx, d.cfg.BrowserTimeout)
	defer cancel()
	go func() {
		// propagate caller cancellation into the chromedp run
		select {
		case <-ctx.Done():
			cancel()
		case <-runCtx.Done():
		}
	}()

	if err := chromedp.Run(runCtx, chromedp.Navigate(searchURL)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, &PaginationError{Kind: PaginationTimeout, URL: searchURL, Err: err}
		}
		return 0, &PaginationError{Kind: PaginationNavigation, URL: searchURL, Err: err}
	}

	var ready bool
	err := chromedp.Run(runCtx,
		chromedp.Poll(readySel, &ready, chromedp.WithPollingTimeout(d.renderWait())),
	)
	if err != nil {
		if errors.Is(err, chromedp.ErrPollingTimeout) {
			return 0, &PaginationError{Kind: PaginationElementNotFound, URL: searchURL, Err: err}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, &PaginationError{Kind: PaginationTimeout, URL: searchURL, Err: err}
		}
		return 0, &PaginationError{Kind: PaginationNavigation, URL: searchURL, Err: err}
	}

	// give late-arriving pagination a moment after the cards render
	var state pageState
	err = chromedp.Run(runCtx,
		chromedp.Sleep(2*time.Second),
		chromedp.Evaluate(readStateJS, &state),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, &PaginationError{Kind: PaginationTimeout, URL: searchURL, Err: err}
		}
		return 0, &PaginationError{Kind: PaginationNavigation, URL: searchURL, Err: err}
	}

	switch {
	case state.NoResults && !state.HasResults:
		utils.Warn("No results for %s", searchURL)
		return 0, nil
	case state.MaxPage > 0:
		utils.Success("Found %d result pages", state.MaxPage)
		return state.MaxPage, nil
	case state.HasResults:
		utils.Success("Results fit on a single page")
		return 1, nil
	default:
		return 0, &PaginationError{
			Kind: PaginationElementNotFound,
			URL:  searchURL,
			Err:  errors.New("neither results nor an empty-state marker rendered"),
		}
	}
}
