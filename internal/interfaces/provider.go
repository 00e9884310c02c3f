package interfaces

import (
	"context"

	"watchlist-news/internal/types"
)

// Provider fetches and normalizes articles from one news source. The error
// only feeds per-source status; callers treat any error as an empty result.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, apiKey string, watchlist []types.Ticker, industryMap types.WatchlistIndustryMap) ([]types.NewsItem, error)
}
