package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidQuery means the user-supplied search input cannot form a
// canonical query. No scrape is attempted for an invalid query.
var ErrInvalidQuery = errors.New("invalid query")

// SearchQuery is the normalized search identity. Two semantically equal
// inputs always normalize to the same SearchQuery, so the canonical URL
// derived from it is a stable cache key.
type SearchQuery struct {
	Brand      string
	Model      string
	MaxMileage int // valid only when HasMileage
	HasMileage bool
}

// NormalizeQuery trims and lowercases the brand and model and validates
// the optional mileage cap (nil means no cap). It is pure: equal inputs,
// including whitespace and case variants, yield an identical query.
func NormalizeQuery(brand, model string, maxMileage *int) (SearchQuery, error) {
	q := SearchQuery{
		Brand: strings.ToLower(strings.TrimSpace(brand)),
		Model: strings.ToLower(strings.TrimSpace(model)),
	}

	if q.Brand == "" {
		return SearchQuery{}, fmt.Errorf("%w: brand is required", ErrInvalidQuery)
	}
	if q.Model == "" {
		return SearchQuery{}, fmt.Errorf("%w: model is required", ErrInvalidQuery)
	}
	if maxMileage != nil {
		if *maxMileage < 0 {
			return SearchQuery{}, fmt.Errorf("%w: max mileage must be >= 0, got %d", ErrInvalidQuery, *maxMileage)
		}
		q.MaxMileage = *maxMileage
		q.HasMileage = true
	}

	return q, nil
}

// CanonicalURL builds the search URL for the marketplace under baseURL
// (e.g. "https://www.carsome.my/buy-car"). The URL doubles as the cache
// key: it is one-to-one with the normalized query.
func (q SearchQuery) CanonicalURL(baseURL string) string {
	u := fmt.Sprintf("%s/%s/%s",
		strings.TrimRight(baseURL, "/"),
		url.PathEscape(q.Brand),
		url.PathEscape(q.Model),
	)
	if q.HasMileage {
		u += fmt.Sprintf("?mileage=0,%d", q.MaxMileage)
	}
	return u
}

// PageURL appends the page index to a canonical search URL. Page 1 is
// the first result page.
func PageURL(canonicalURL string, page int) string {
	sep := "?"
	if strings.Contains(canonicalURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spageNo=%d", canonicalURL, sep, page)
}
