package providerobs

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"watchlist-news/internal/interfaces"
	"watchlist-news/internal/logger"
	"watchlist-news/internal/trace"
	"watchlist-news/internal/types"
)

// observableProvider wraps a Provider with observability (logging & tracing)
type observableProvider struct {
	provider interfaces.Provider
}

// Compile-time interface check
var _ interfaces.Provider = (*observableProvider)(nil)

// Wrap wraps a provider with observability middleware
func Wrap(provider interfaces.Provider) interfaces.Provider {
	return &observableProvider{
		provider: provider,
	}
}

func (op *observableProvider) Name() string {
	return op.provider.Name()
}

// Fetch fetches provider news inside a span named after the provider
func (op *observableProvider) Fetch(
	ctx context.Context,
	apiKey string,
	watchlist []types.Ticker,
	industryMap types.WatchlistIndustryMap,
) ([]types.NewsItem, error) {
	name := op.provider.Name()
	ctx, span := trace.StartSpan(ctx, "provider."+name+".Fetch")
	defer span.End()

	span.SetAttributes(
		attribute.String("provider", name),
		attribute.Int("watchlist_size", len(watchlist)),
		attribute.Bool("has_key", apiKey != ""),
	)

	logger.DebugSkip(ctx, 1, "Fetching provider news",
		"provider", name,
		"watchlist", watchlist,
	)

	start := time.Now()
	items, err := op.provider.Fetch(ctx, apiKey, watchlist, industryMap)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.WarnSkip(ctx, 1, "Provider fetch failed",
			"provider", name,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	span.SetAttributes(attribute.Int("items", len(items)))
	logger.DebugSkip(ctx, 1, "Provider news received",
		"provider", name,
		"items", len(items),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return items, nil
}
