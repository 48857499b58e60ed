package realtor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"property-harvester/config"
	"property-harvester/models"
	"property-harvester/utils"
)

const nextDataScript = `(function() {
	var el = document.getElementById('__NEXT_DATA__');
	return el ? el.textContent : '';
})()`

// BrowserFetcher renders search and detail pages in headless Chrome. Use it
// when the site serves a challenge page to plain HTTP clients.
type BrowserFetcher struct {
	cfg    *config.Config
	logger *utils.Logger
}

// NewBrowserFetcher creates a BrowserFetcher.
func NewBrowserFetcher(cfg *config.Config, logger *utils.Logger) *BrowserFetcher {
	return &BrowserFetcher{cfg: cfg, logger: logger}
}

// Fetch starts a browser for the duration of the query.
func (b *BrowserFetcher) Fetch(ctx context.Context, q Query) ([]*models.RawListing, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	chromeBin := findChromeBinary(b.cfg.ChromeBin)
	b.logger.Info("[realtor] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(b.cfg.UserAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	p := &pager{
		loader:   &browserLoader{browserCtx: browserCtx, timeout: time.Duration(b.cfg.TimeoutSec) * time.Second},
		baseURL:  b.cfg.SearchBaseURL,
		maxPages: b.cfg.MaxPages,
		logger:   b.logger,
		throttle: utils.NewThrottle(b.cfg.RateLimitMs),
		retry: &utils.RetryConfig{
			MaxAttempts: b.cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      b.logger,
		},
		now: time.Now,
	}
	return p.fetch(ctx, q)
}

type browserLoader struct {
	browserCtx context.Context
	timeout    time.Duration
}

func (l *browserLoader) loadNextData(ctx context.Context, pageURL string) ([]byte, error) {
	tabCtx, cancel := chromedp.NewContext(l.browserCtx)
	defer cancel()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, l.timeout)
	defer cancelTimeout()

	// Stop the tab when the caller gives up.
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	var payload string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(nextDataScript, &payload),
	)
	if err != nil {
		return nil, fmt.Errorf("realtor: render %s: %w", pageURL, err)
	}
	if payload == "" {
		return nil, ErrNoPageData
	}
	return []byte(payload), nil
}

// findChromeBinary locates a Chrome/Chromium binary, preferring configured.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
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
