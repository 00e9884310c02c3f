package interfaces

import (
	"context"

	"watchlist-news/internal/types"
)

// Aggregator merges all providers into one ranked feed. It has no error
// return: provider failures show up in AggregatedFeed.PerSourceStatus.
type Aggregator interface {
	Aggregate(ctx context.Context, keys types.APIKeys, watchlist []types.Ticker) types.AggregatedFeed
}
