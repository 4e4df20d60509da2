package utils

import (
	"github.com/chromedp/chromedp"
)

// BrowserOpts returns the Chrome launch options used for pagination
// discovery. The browser only reads the pagination control, so the
// options stay minimal: container-safe flags plus a desktop-sized
// window so the site serves its desktop layout.
func BrowserOpts(headless bool) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(1920, 1080),
	}

	if headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	}

	return opts
}
