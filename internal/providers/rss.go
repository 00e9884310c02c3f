package providers

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"watchlist-news/internal/api"
	"watchlist-news/internal/interfaces"
	"watchlist-news/internal/logger"
	"watchlist-news/internal/newstime"
	"watchlist-news/internal/types"
)

const (
	rssSymbolRelevance = 0.7
	rssTextRelevance   = 0.6
	rssSentiment       = 0.5
	symbolPlaceholder  = "{symbol}"
)

// RSS reads plain RSS/Atom feeds. A feed URL containing {symbol} is fetched
// once per target symbol, sequentially; other URLs are fetched once. No key
// is required.
type RSS struct {
	client     *api.Client
	feeds      []string
	maxSymbols int
}

var _ interfaces.Provider = (*RSS)(nil)

func NewRSS(client *api.Client, feeds []string, maxSymbols int) *RSS {
	if maxSymbols <= 0 {
		maxSymbols = 5
	}
	return &RSS{client: client, feeds: feeds, maxSymbols: maxSymbols}
}

func (p *RSS) Name() string { return types.ProviderRSS }

func (p *RSS) Fetch(ctx context.Context, _ string, watchlist []types.Ticker, industryMap types.WatchlistIndustryMap) ([]types.NewsItem, error) {
	if len(p.feeds) == 0 {
		return nil, nil
	}

	symbols := Targets(watchlist, industryMap, p.maxSymbols)
	candidates := Candidates(watchlist, industryMap)
	if len(watchlist) == 0 {
		candidates = symbols
	}

	items := []types.NewsItem{}
	requests, failed := 0, 0
	var lastErr error

	fetch := func(feedURL string, symbol types.Ticker) {
		requests++
		feed, err := p.parse(ctx, feedURL)
		if err != nil {
			failed++
			lastErr = err
			logger.Warn(ctx, "RSS feed fetch failed", "feed", feedURL, "error", err)
			return
		}
		items = append(items, p.normalize(feed, symbol, candidates, watchlist, industryMap, len(items))...)
	}

	for _, tmpl := range p.feeds {
		if !strings.Contains(tmpl, symbolPlaceholder) {
			fetch(tmpl, "")
			continue
		}
		for _, s := range symbols {
			if ctx.Err() != nil {
				break
			}
			fetch(strings.ReplaceAll(tmpl, symbolPlaceholder, s), s)
		}
	}

	if requests > 0 && failed == requests {
		return nil, fmt.Errorf("%s: %w: all %d feeds failed: %v", p.Name(), ErrProviderResponse, failed, lastErr)
	}
	return filterRelevant(items, watchlist, industryMap), nil
}

func (p *RSS) parse(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	resp, err := p.client.GET(ctx, feedURL, nil, map[string]string{
		"Accept": "application/rss+xml, application/atom+xml, application/xml, text/xml",
	})
	if err != nil {
		return nil, classify(p.Name(), err)
	}
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return feed, nil
}

func (p *RSS) normalize(feed *gofeed.Feed, symbol types.Ticker, candidates, watchlist []types.Ticker, industryMap types.WatchlistIndustryMap, offset int) []types.NewsItem {
	out := make([]types.NewsItem, 0, len(feed.Items))
	for i, it := range feed.Items {
		if it == nil || it.Title == "" {
			continue
		}
		description := stripHTML(it.Description)
		publishedAt := itemTime(it)

		var sentiments []types.TickerSentiment
		if symbol != "" {
			sentiments = []types.TickerSentiment{{Ticker: symbol, RelevanceScore: rssSymbolRelevance, SentimentScore: rssSentiment}}
		} else {
			sentiments = TickersFromText(it.Title+" "+description, candidates, rssTextRelevance, rssSentiment)
		}

		out = append(out, types.NewsItem{
			ID:               fmt.Sprintf("rss-%s-%d", newstime.Compact(publishedAt), offset+i),
			Title:            strings.TrimSpace(it.Title),
			Summary:          summaryOrTitle(description, it.Title),
			URL:              it.Link,
			TimePublished:    newstime.Compact(publishedAt),
			PublishedAt:      publishedAt,
			TickerSentiments: sentiments,
			SourceName:       feed.Title,
			ImageURL:         itemImage(it),
			ProviderName:     p.Name(),
			IndustryRelated:  relatedByCompetitors(sentiments, watchlist, industryMap),
		})
	}
	return out
}

func itemTime(it *gofeed.Item) time.Time {
	switch {
	case it.PublishedParsed != nil:
		return it.PublishedParsed.UTC()
	case it.UpdatedParsed != nil:
		return it.UpdatedParsed.UTC()
	}
	return newstime.ParseOrZero(it.Published)
}

func itemImage(it *gofeed.Item) string {
	if it.Image != nil && it.Image.URL != "" {
		return it.Image.URL
	}
	for _, enc := range it.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}
