package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
	"golang.org/x/time/rate"

	"watchlist-news/internal/interfaces"
	"watchlist-news/internal/logger"
	"watchlist-news/internal/newstime"
	"watchlist-news/internal/types"
)

const (
	finnhubRelevance = 0.9
	marketRelevance  = 0.8
	finnhubSentiment = 0.5
	finnhubDateFmt   = "2006-01-02"
)

// FinnhubConfig bounds the per-symbol company-news loop.
type FinnhubConfig struct {
	BaseURL         string
	Timeout         time.Duration
	MaxTargets      int
	MaxSymbols      int
	Lookback        time.Duration
	PerSymbolItems  int
	RequestInterval time.Duration
}

// Finnhub issues one company-news request per symbol, sequentially and
// paced, over a short lookback window. Auth is the X-Finnhub-Token header.
// Requests are already symbol-targeted, so the relevance filter is not applied.
type Finnhub struct {
	cfg        FinnhubConfig
	httpClient *http.Client
	now        func() time.Time
}

var _ interfaces.Provider = (*Finnhub)(nil)

func NewFinnhub(cfg FinnhubConfig, httpClient *http.Client) *Finnhub {
	if cfg.MaxSymbols <= 0 {
		cfg.MaxSymbols = 5
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 12 * time.Hour
	}
	if cfg.PerSymbolItems <= 0 {
		cfg.PerSymbolItems = 10
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Finnhub{cfg: cfg, httpClient: httpClient, now: time.Now}
}

func (p *Finnhub) Name() string { return types.ProviderFinnhub }

// Symbols returns the capped, ordered symbol list a Fetch would query.
func (p *Finnhub) Symbols(watchlist []types.Ticker, industryMap types.WatchlistIndustryMap) []types.Ticker {
	targets := Targets(watchlist, industryMap, p.cfg.MaxTargets)
	return capTickers(targets, p.cfg.MaxSymbols)
}

func (p *Finnhub) Fetch(ctx context.Context, apiKey string, watchlist []types.Ticker, industryMap types.WatchlistIndustryMap) ([]types.NewsItem, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %w", p.Name(), ErrMissingKey)
	}

	client := newFinnhubClient(apiKey, p.cfg.BaseURL, p.httpClient)
	symbols := p.Symbols(watchlist, industryMap)

	now := p.now().UTC()
	from := now.Add(-p.cfg.Lookback).Format(finnhubDateFmt)
	to := now.Format(finnhubDateFmt)

	// One request per RequestInterval; a zero interval disables pacing.
	limiter := rate.NewLimiter(rate.Every(p.cfg.RequestInterval), 1)

	items := []types.NewsItem{}
	failed := 0
	var lastErr error
	for i, symbol := range symbols {
		if err := limiter.Wait(ctx); err != nil {
			// Remaining symbols are never requested once ctx is done.
			lastErr = err
			failed += len(symbols) - i
			break
		}

		news, err := p.companyNews(ctx, client, symbol, from, to)
		if err != nil {
			failed++
			lastErr = err
			logger.Warn(ctx, "Finnhub company news failed", "symbol", symbol, "error", err)
			continue
		}
		items = append(items, p.normalize(symbol, news, watchlist)...)
	}

	if len(symbols) > 0 && failed == len(symbols) {
		return nil, fmt.Errorf("%s: %w: all %d symbol requests failed: %v", p.Name(), ErrProviderResponse, failed, lastErr)
	}
	return items, nil
}

func (p *Finnhub) companyNews(ctx context.Context, client *finnhub.DefaultApiService, symbol, from, to string) ([]finnhub.CompanyNews, error) {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}
	res, _, err := client.CompanyNews(ctx).Symbol(symbol).From(from).To(to).Execute()
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Finnhub) normalize(symbol types.Ticker, news []finnhub.CompanyNews, watchlist []types.Ticker) []types.NewsItem {
	if len(news) > p.cfg.PerSymbolItems {
		news = news[:p.cfg.PerSymbolItems]
	}

	related := len(watchlist) > 0 && !contains(watchlist, symbol)

	out := make([]types.NewsItem, 0, len(news))
	for i, n := range news {
		var datetime int64
		var publishedAt time.Time
		if n.Datetime != nil && *n.Datetime > 0 {
			datetime = *n.Datetime
			publishedAt = newstime.FromUnix(datetime)
		}
		headline := deref(n.Headline)

		out = append(out, types.NewsItem{
			ID:            fmt.Sprintf("finnhub-%s-%d-%d", symbol, datetime, i),
			Title:         headline,
			Summary:       summaryOrTitle(deref(n.Summary), headline),
			URL:           deref(n.Url),
			TimePublished: newstime.Compact(publishedAt),
			PublishedAt:   publishedAt,
			TickerSentiments: []types.TickerSentiment{{
				Ticker:         symbol,
				RelevanceScore: finnhubRelevance,
				SentimentScore: finnhubSentiment,
			}},
			SourceName:      deref(n.Source),
			ImageURL:        deref(n.Image),
			ProviderName:    p.Name(),
			IndustryRelated: related,
		})
	}
	return out
}

// DefaultMarketNewsLimit caps the general market feed.
const DefaultMarketNewsLimit = 20

// MarketNews returns the newest items of Finnhub's general market feed.
// Each item carries up to three tickers from its related field.
func (p *Finnhub) MarketNews(ctx context.Context, apiKey string, limit int) ([]types.NewsItem, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %w", p.Name(), ErrMissingKey)
	}
	if limit <= 0 {
		limit = DefaultMarketNewsLimit
	}
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	client := newFinnhubClient(apiKey, p.cfg.BaseURL, p.httpClient)
	news, _, err := client.MarketNews(ctx).Category("general").Execute()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", p.Name(), ErrProviderResponse, err)
	}
	if len(news) > limit {
		news = news[:limit]
	}

	out := make([]types.NewsItem, 0, len(news))
	for i, n := range news {
		var datetime int64
		var publishedAt time.Time
		if n.Datetime != nil && *n.Datetime > 0 {
			datetime = *n.Datetime
			publishedAt = newstime.FromUnix(datetime)
		}
		headline := deref(n.Headline)

		out = append(out, types.NewsItem{
			ID:               fmt.Sprintf("finnhub-market-%d-%d", datetime, i),
			Title:            headline,
			Summary:          summaryOrTitle(deref(n.Summary), headline),
			URL:              deref(n.Url),
			TimePublished:    newstime.Compact(publishedAt),
			PublishedAt:      publishedAt,
			TickerSentiments: relatedSentiments(deref(n.Related)),
			SourceName:       deref(n.Source),
			ImageURL:         deref(n.Image),
			ProviderName:     p.Name(),
		})
	}
	return out, nil
}

func relatedSentiments(related string) []types.TickerSentiment {
	out := []types.TickerSentiment{}
	for _, t := range strings.Split(related, ",") {
		if len(out) == 3 {
			break
		}
		t = types.NormalizeTicker(t)
		if t == "" {
			continue
		}
		out = append(out, types.TickerSentiment{
			Ticker:         t,
			RelevanceScore: marketRelevance,
			SentimentScore: finnhubSentiment,
		})
	}
	return out
}

func newFinnhubClient(apiKey, baseURL string, httpClient *http.Client) *finnhub.DefaultApiService {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	cfg.HTTPClient = httpClient
	if baseURL != "" {
		cfg.Servers = finnhub.ServerConfigurations{{URL: strings.TrimRight(baseURL, "/")}}
	}
	return finnhub.NewAPIClient(cfg).DefaultApi
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
