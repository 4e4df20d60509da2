package utils

import (
	"fmt"
	"time"
)

// Retry runs fn up to maxAttempts times, waiting longer between each
// failed attempt (2s, 4s, 8s...). It stops on the first nil return and
// otherwise reports the last error after all attempts are spent.
//
// Usage:
//
//	err := utils.Retry(2, func() error {
//	    return scraper.ScrapePage(url)
//	})
func Retry(maxAttempts int, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt < maxAttempts {
			wait := time.Duration(1<<uint(attempt)) * time.Second
			Warn("Attempt %d/%d failed: %v — retrying in %v", attempt, maxAttempts, lastErr, wait)
			time.Sleep(wait)
		}
	}

	return fmt.Errorf("all %d attempts failed — last error: %w", maxAttempts, lastErr)
}
