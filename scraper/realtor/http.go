package realtor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/publicsuffix"

	"property-harvester/config"
	"property-harvester/models"
	"property-harvester/utils"
)

// HTTPFetcher reads search and detail pages over plain HTTP.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	pager     *pager
}

// NewHTTPFetcher builds an HTTPFetcher from cfg.
func NewHTTPFetcher(cfg *config.Config, logger *utils.Logger) (*HTTPFetcher, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("realtor: cookie jar: %w", err)
	}

	f := &HTTPFetcher{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
			Jar:     jar,
		},
		userAgent: cfg.UserAgent,
	}
	f.pager = &pager{
		loader:   f,
		baseURL:  cfg.SearchBaseURL,
		maxPages: cfg.MaxPages,
		logger:   logger,
		throttle: utils.NewThrottle(cfg.RateLimitMs),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		now: time.Now,
	}
	return f, nil
}

// Fetch pages through search results until q.Limit listings are collected.
func (f *HTTPFetcher) Fetch(ctx context.Context, q Query) ([]*models.RawListing, error) {
	return f.pager.fetch(ctx, q)
}

func (f *HTTPFetcher) loadNextData(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("realtor: build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("realtor: get %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("realtor: get %s: status %d", pageURL, resp.StatusCode)
	}
	return ExtractNextData(resp.Body)
}
