package news

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"watchlist-news/internal/logger"
	"watchlist-news/internal/types"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Enricher fills ImageURL for items that arrived without one by reading the
// article page's og:image / twitter:image meta tags.
type Enricher struct {
	timeout   time.Duration
	maxItems  int
	userAgent string
	delay     time.Duration
}

// NewEnricher creates an enricher that visits at most maxItems pages per call.
func NewEnricher(timeout time.Duration, maxItems int, userAgent string) *Enricher {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Enricher{
		timeout:   timeout,
		maxItems:  maxItems,
		userAgent: userAgent,
		delay:     200 * time.Millisecond,
	}
}

// Enrich returns a copy of items with missing images filled where possible.
func (e *Enricher) Enrich(ctx context.Context, items []types.NewsItem) []types.NewsItem {
	enriched := make([]types.NewsItem, len(items))
	copy(enriched, items)

	visited := 0
	for i := range enriched {
		if enriched[i].ImageURL != "" || enriched[i].URL == "" {
			continue
		}
		if visited >= e.maxItems || ctx.Err() != nil {
			break
		}
		if visited > 0 {
			time.Sleep(e.delay)
		}
		visited++

		if img := e.fetchImage(ctx, enriched[i].URL); img != "" {
			enriched[i].ImageURL = img
		}
	}

	if visited > 0 {
		logger.Debug(ctx, "Image enrichment completed", "visited", visited)
	}
	return enriched
}

// fetchImage returns the absolute og:image URL of a page, or "".
func (e *Enricher) fetchImage(ctx context.Context, articleURL string) string {
	c := colly.NewCollector(
		colly.MaxDepth(1),
		colly.Async(false),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(e.timeout)

	var image string
	c.OnHTML(`meta[property="og:image"], meta[name="og:image"], meta[name="twitter:image"]`, func(el *colly.HTMLElement) {
		if image != "" {
			return
		}
		if content := strings.TrimSpace(el.Attr("content")); content != "" {
			image = el.Request.AbsoluteURL(content)
		}
	})

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", e.userAgent)
	})

	if err := c.Visit(articleURL); err != nil {
		logger.Debug(ctx, "Failed to fetch article page", "url", redact(articleURL), "error", err)
		return ""
	}
	c.Wait()

	return image
}

// redact drops the query string, which sometimes carries tracking tokens.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	u.RawQuery = ""
	return u.String()
}
