package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"watchlist-news/internal/api"
	"watchlist-news/internal/interfaces"
	"watchlist-news/internal/logger"
	"watchlist-news/internal/newstime"
	"watchlist-news/internal/types"
)

// AlphaVantage queries the NEWS_SENTIMENT endpoint with every target in a
// single batched request. Auth is a query-string token.
type AlphaVantage struct {
	client     *api.Client
	maxTargets int
	limit      int
}

var _ interfaces.Provider = (*AlphaVantage)(nil)

func NewAlphaVantage(client *api.Client, maxTargets, limit int) *AlphaVantage {
	if limit <= 0 {
		limit = 100
	}
	return &AlphaVantage{client: client, maxTargets: maxTargets, limit: limit}
}

func (p *AlphaVantage) Name() string { return types.ProviderAlphaVantage }

func (p *AlphaVantage) Fetch(ctx context.Context, apiKey string, watchlist []types.Ticker, industryMap types.WatchlistIndustryMap) ([]types.NewsItem, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %w", p.Name(), ErrMissingKey)
	}

	targets := Targets(watchlist, industryMap, p.maxTargets)

	q := url.Values{}
	q.Set("function", "NEWS_SENTIMENT")
	q.Set("tickers", strings.Join(targets, ","))
	q.Set("limit", strconv.Itoa(p.limit))
	q.Set("apikey", apiKey)

	var raw avNewsResponse
	if err := p.client.GetJSON(ctx, "/query", q, &raw); err != nil {
		return nil, classify(p.Name(), err)
	}
	if msg := raw.errorMessage(); msg != "" {
		return nil, fmt.Errorf("%s: %w: %s", p.Name(), ErrProviderResponse, msg)
	}

	items := make([]types.NewsItem, 0, len(raw.Feed))
	for i, f := range raw.Feed {
		publishedAt := newstime.ParseOrZero(f.TimePublished)

		sentiments := make([]types.TickerSentiment, 0, len(f.TickerSentiment))
		for _, ts := range f.TickerSentiment {
			if ts.Ticker == "" {
				continue
			}
			sentiments = append(sentiments, types.TickerSentiment{
				Ticker:         types.NormalizeTicker(ts.Ticker),
				RelevanceScore: float64(ts.RelevanceScore),
				SentimentScore: float64(ts.SentimentScore),
			})
		}

		items = append(items, types.NewsItem{
			ID:               fmt.Sprintf("av-%s-%d", f.TimePublished, i),
			Title:            f.Title,
			Summary:          summaryOrTitle(f.Summary, f.Title),
			URL:              f.URL,
			TimePublished:    newstime.Compact(publishedAt),
			PublishedAt:      publishedAt,
			TickerSentiments: sentiments,
			SourceName:       f.Source,
			ImageURL:         f.BannerImage,
			ProviderName:     p.Name(),
			IndustryRelated:  relatedByTargets(sentiments, watchlist, targets),
		})
	}

	filtered := filterRelevant(items, watchlist, industryMap)
	logger.Debug(ctx, "Alpha Vantage feed normalized", "targets", len(targets), "raw", len(items), "relevant", len(filtered))
	return filtered, nil
}

type avNewsResponse struct {
	Feed         []avFeedItem `json:"feed"`
	ErrorMessage string       `json:"Error Message"`
	Note         string       `json:"Note"`
	Information  string       `json:"Information"`
}

// errorMessage returns the provider's error or rate-limit note, if any.
func (r avNewsResponse) errorMessage() string {
	switch {
	case r.ErrorMessage != "":
		return r.ErrorMessage
	case r.Note != "":
		return r.Note
	case r.Information != "" && len(r.Feed) == 0:
		return r.Information
	}
	return ""
}

type avFeedItem struct {
	Title           string              `json:"title"`
	Summary         string              `json:"summary"`
	URL             string              `json:"url"`
	Source          string              `json:"source"`
	BannerImage     string              `json:"banner_image"`
	TimePublished   string              `json:"time_published"`
	TickerSentiment []avTickerSentiment `json:"ticker_sentiment"`
}

type avTickerSentiment struct {
	Ticker         string    `json:"ticker"`
	RelevanceScore flexFloat `json:"relevance_score"`
	SentimentScore flexFloat `json:"ticker_sentiment_score"`
}

// flexFloat accepts both JSON numbers and numeric strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid score %q: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}
