package models

import "time"

// CarListing is one used-car record as returned by the extraction
// service, plus the fields the orchestrator attaches after the final
// merge (RowNumber, ScrapedAt).
type CarListing struct {
	RowNumber int
	Brand     string
	Model     string
	Year      int
	Mileage   int
	Price     float64
	URL       string
	ScrapedAt time.Time
}

// ResultSet is the ordered outcome of one scrape run: every listing
// collected across the selected pages, in page order, plus the pages
// that failed both extraction attempts. FromCache marks a set served
// from the cache store rather than freshly scraped.
type ResultSet struct {
	Listings    []CarListing
	FailedPages []int
	ScrapedAt   time.Time
	FromCache   bool
}
