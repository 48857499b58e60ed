package realtor

import (
	"context"
	"fmt"
	"time"

	"property-harvester/models"
	"property-harvester/utils"
)

// pageLoader returns the __NEXT_DATA__ payload of a page.
type pageLoader interface {
	loadNextData(ctx context.Context, pageURL string) ([]byte, error)
}

// pager walks search result pages through a pageLoader and optionally
// enriches listings from their detail pages.
type pager struct {
	loader   pageLoader
	baseURL  string
	maxPages int
	logger   *utils.Logger
	throttle *utils.Throttle
	retry    *utils.RetryConfig
	now      func() time.Time
}

func (p *pager) collect(ctx context.Context, q Query) ([]*models.RawListing, error) {
	seen := utils.NewIDSet()
	listings := make([]*models.RawListing, 0, q.Limit)

	for page := 1; len(listings) < q.Limit && page <= p.maxPages; page++ {
		pageURL := SearchURL(p.baseURL, q, page)
		p.logger.Info("[realtor] Fetching page %d: %s", page, pageURL)

		var pageListings []*models.RawListing
		var total int
		err := p.retry.Do(ctx, fmt.Sprintf("search-page-%d", page), func() error {
			payload, err := p.load(ctx, pageURL)
			if err != nil {
				return err
			}
			pageListings, total, err = ParseSearchPage(payload, p.baseURL, p.now())
			return err
		})
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("realtor: first page: %w", err)
			}
			p.logger.Error("[realtor] Page %d failed, keeping %d listings: %v", page, len(listings), err)
			break
		}

		if len(pageListings) == 0 {
			p.logger.Warn("[realtor] Page %d returned 0 listings, stopping", page)
			break
		}

		for _, l := range pageListings {
			id := l.PropertyID.String()
			if id != "" && !seen.Add(id) {
				p.logger.Debug("[realtor] Skipping duplicate: %s", id)
				continue
			}
			listings = append(listings, l)
		}

		p.logger.Info("[realtor] Page %d done, collected %d listings so far", page, len(listings))
		if total > 0 && len(listings) >= total {
			break
		}
	}

	return listings, nil
}

// enrich visits the detail page of listings missing a description or agent.
// Failures are logged and leave the listing as it was.
func (p *pager) enrich(ctx context.Context, listings []*models.RawListing) {
	for _, l := range listings {
		if l.PropertyURL == "" {
			continue
		}
		hasText := l.Description != nil && l.Description.Text != ""
		if hasText && l.AgentName != "" {
			continue
		}

		var detail *models.RawListing
		err := p.retry.Do(ctx, "detail-page", func() error {
			payload, err := p.load(ctx, l.PropertyURL.String())
			if err != nil {
				return err
			}
			detail, err = ParseDetailPage(payload, p.baseURL, p.now())
			return err
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("[realtor] Detail page failed for %s: %v", l.PropertyURL, err)
			continue
		}

		mergeDetail(l, detail)
		p.logger.Debug("[realtor] Enriched: %s", l.PropertyID)
	}
}

func (p *pager) load(ctx context.Context, pageURL string) ([]byte, error) {
	if err := p.throttle.Wait(ctx); err != nil {
		return nil, err
	}
	return p.loader.loadNextData(ctx, pageURL)
}

func (p *pager) fetch(ctx context.Context, q Query) ([]*models.RawListing, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	listings, err := p.collect(ctx, q)
	if err != nil {
		return nil, err
	}
	listings = finalize(listings, q)
	if q.ExtraPropertyData {
		p.enrich(ctx, listings)
	}

	p.logger.Info("[realtor] Fetch complete, total raw listings: %d", len(listings))
	return listings, nil
}
