package carsome

import (
	"errors"
	"fmt"
)

// ErrInvalidSelection means the requested number of pages is outside
// 1..PageCount. Surfaced before any page is scraped.
var ErrInvalidSelection = errors.New("invalid page selection")

// PaginationKind classifies why page-count discovery failed, so the
// caller can tell "site structure changed" from "network/timeout".
type PaginationKind string

const (
	PaginationElementNotFound PaginationKind = "element_not_found"
	PaginationTimeout         PaginationKind = "timeout"
	PaginationNavigation      PaginationKind = "navigation"
)

// PaginationError is fatal to a run: page selection depends on a valid
// page count, so discovery failures abort before any scraping starts.
type PaginationError struct {
	Kind PaginationKind
	URL  string
	Err  error
}

func (e *PaginationError) Error() string {
	switch e.Kind {
	case PaginationElementNotFound:
		return fmt.Sprintf("pagination discovery: expected element missing on %s (site structure may have changed): %v", e.URL, e.Err)
	case PaginationTimeout:
		return fmt.Sprintf("pagination discovery: timed out waiting for %s to render: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("pagination discovery: could not navigate to %s: %v", e.URL, e.Err)
	}
}

func (e *PaginationError) Unwrap() error { return e.Err }

// ExtractionKind classifies a single-page extraction failure.
type ExtractionKind string

const (
	ExtractionSchemaMismatch ExtractionKind = "schema_mismatch"
	ExtractionService        ExtractionKind = "service"
	ExtractionEmptyPage      ExtractionKind = "empty_page"
)

// ExtractionError is local to one page. The orchestrator retries it
// once and then records the page as failed without aborting the run.
type ExtractionError struct {
	Kind ExtractionKind
	URL  string
	Err  error
}

func (e *ExtractionError) Error() string {
	switch e.Kind {
	case ExtractionSchemaMismatch:
		return fmt.Sprintf("extraction: response for %s did not match the listing schema: %v", e.URL, e.Err)
	case ExtractionEmptyPage:
		return fmt.Sprintf("extraction: no usable records on %s", e.URL)
	default:
		return fmt.Sprintf("extraction service failed for %s: %v", e.URL, e.Err)
	}
}

func (e *ExtractionError) Unwrap() error { return e.Err }
