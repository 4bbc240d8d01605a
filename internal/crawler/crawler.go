package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fxwire-hq/fxwire-news-harvester/internal/domain"
	"github.com/fxwire-hq/fxwire-news-harvester/internal/logger"
)

const (
	// baseURL is the fixed origin article links are resolved against.
	baseURL = "https://www.investing.com"
	// listingURLFormat takes the currency-pair symbol and a 1-based page index.
	listingURLFormat = baseURL + "/currencies/%s-news/%d"
)

// PageFetcher is the fetch-capable session the crawler drives. Start
// acquires the underlying session, FetchHTML returns the rendered markup of
// one page, Stop releases the session. Stop is safe to call even when Start
// failed partway; a stopped session is not reusable.
type PageFetcher interface {
	Start(ctx context.Context) error
	FetchHTML(ctx context.Context, url string) (string, error)
	Stop() error
}

// Crawler walks listing pages for a symbol and turns every reachable
// article into a domain.NewsRecord. All fetches run sequentially over the
// one injected session; ordering of the output follows discovery order.
type Crawler struct {
	fetcher PageFetcher
	log     logger.Logger
}

// New creates a Crawler around the given fetch session and logger.
func New(fetcher PageFetcher, log logger.Logger) *Crawler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Crawler{fetcher: fetcher, log: log}
}

// Crawl fetches pageCount listing pages for symbol, then every article they
// link to, and returns the fully populated records. Failed pages and
// articles are logged and skipped; only a session that cannot start aborts
// the call. The session is released exactly once on every path.
func (c *Crawler) Crawl(ctx context.Context, symbol string, pageCount int) ([]domain.NewsRecord, error) {
	if c.fetcher == nil {
		return nil, errors.New("crawler has no page fetcher configured")
	}
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, errors.New("symbol is empty")
	}
	if pageCount <= 0 {
		return []domain.NewsRecord{}, nil
	}

	if err := c.fetcher.Start(ctx); err != nil {
		if stopErr := c.fetcher.Stop(); stopErr != nil {
			c.log.WarnObj("fetch session stop after failed start", "session_stop_error", map[string]any{
				"error": stopErr.Error(),
			})
		}
		return nil, fmt.Errorf("start fetch session: %w", err)
	}
	defer func() {
		if err := c.fetcher.Stop(); err != nil {
			c.log.WarnObj("fetch session stop failed", "session_stop_error", map[string]any{
				"error": err.Error(),
			})
		}
	}()

	links := c.collectListingLinks(ctx, symbol, pageCount)
	return c.collectRecords(ctx, symbol, links), nil
}

// collectListingLinks walks listing pages 1..pageCount in order and
// aggregates every link they expose. A page that fails to fetch or parse
// contributes nothing and the walk continues.
func (c *Crawler) collectListingLinks(ctx context.Context, symbol string, pageCount int) []domain.ListingLink {
	var links []domain.ListingLink
	for page := 1; page <= pageCount; page++ {
		if ctx.Err() != nil {
			break
		}

		url := fmt.Sprintf(listingURLFormat, symbol, page)
		html, err := c.fetcher.FetchHTML(ctx, url)
		if err != nil {
			c.log.WarnObj("listing page fetch failed", "listing_fetch_error", map[string]any{
				"symbol": symbol,
				"page":   page,
				"error":  err.Error(),
			})
			continue
		}

		pageLinks, err := extractListingLinks(html)
		if err != nil {
			c.log.WarnObj("listing page parse failed", "listing_parse_error", map[string]any{
				"symbol": symbol,
				"page":   page,
				"error":  err.Error(),
			})
			continue
		}

		c.log.DebugObj("listing page scraped", "listing_page_done", map[string]any{
			"symbol": symbol,
			"page":   page,
			"links":  len(pageLinks),
		})
		links = append(links, pageLinks...)
	}
	return links
}

// collectRecords visits each listing link in order and assembles the final
// records. Any per-article failure (fetch, missing body, missing title,
// unparsable timestamp) drops that one record and the loop continues.
func (c *Crawler) collectRecords(ctx context.Context, symbol string, links []domain.ListingLink) []domain.NewsRecord {
	records := make([]domain.NewsRecord, 0, len(links))
	for _, link := range links {
		if ctx.Err() != nil {
			break
		}

		html, err := c.fetcher.FetchHTML(ctx, baseURL+link.URL)
		if err != nil {
			c.log.WarnObj("article fetch failed", "article_fetch_error", map[string]any{
				"symbol": symbol,
				"url":    link.URL,
				"error":  err.Error(),
			})
			continue
		}

		content, err := extractArticleContent(html)
		if err != nil {
			event := "article_parse_error"
			if errors.Is(err, ErrMissingTitle) {
				event = "article_missing_title"
			}
			c.log.WarnObj("article extraction failed", event, map[string]any{
				"symbol": symbol,
				"url":    link.URL,
				"error":  err.Error(),
			})
			continue
		}
		if content == nil {
			c.log.DebugObj("article body not found, skipping", "article_no_body", map[string]any{
				"symbol": symbol,
				"url":    link.URL,
			})
			continue
		}

		millis, err := normalizeTimestamp(link.PublishedAt)
		if err != nil {
			c.log.WarnObj("publish time normalization failed", "timestamp_parse_error", map[string]any{
				"symbol": symbol,
				"url":    link.URL,
				"raw":    link.PublishedAt,
				"error":  err.Error(),
			})
			continue
		}

		records = append(records, domain.NewsRecord{
			Symbol:          symbol,
			URL:             link.URL,
			Title:           content.Title,
			Content:         content.Body,
			TimestampMillis: millis,
		})
	}
	return records
}
