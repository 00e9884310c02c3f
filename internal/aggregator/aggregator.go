package aggregator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"watchlist-news/internal/interfaces"
	"watchlist-news/internal/logger"
	"watchlist-news/internal/types"
)

// DefaultFeedCap is the maximum number of items in an AggregatedFeed.
const DefaultFeedCap = 80

// ResolverFactory builds the industry resolver for one cycle. The Finnhub
// key comes from the request, so the resolver cannot be shared.
type ResolverFactory func(finnhubKey string) interfaces.Resolver

// Config bounds an aggregation cycle.
type Config struct {
	FeedCap         int
	ProviderTimeout time.Duration
	// Timeouts overrides ProviderTimeout per provider name.
	Timeouts map[string]time.Duration
}

// Aggregator fans out to every provider, isolates their failures and merges
// the results into one deduplicated, time-ordered feed.
type Aggregator struct {
	providers []interfaces.Provider
	resolver  ResolverFactory
	cfg       Config
	now       func() time.Time
}

var _ interfaces.Aggregator = (*Aggregator)(nil)

// New creates an aggregator. Provider order is significant: it fixes the
// order of PerSourceStatus and which duplicate wins during dedup.
func New(providers []interfaces.Provider, resolver ResolverFactory, cfg Config) *Aggregator {
	if cfg.FeedCap <= 0 {
		cfg.FeedCap = DefaultFeedCap
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 30 * time.Second
	}
	return &Aggregator{
		providers: providers,
		resolver:  resolver,
		cfg:       cfg,
		now:       time.Now,
	}
}

type providerResult struct {
	items    []types.NewsItem
	err      error
	duration time.Duration
}

// Aggregate never fails. Provider errors, panics and timeouts are recorded
// in PerSourceStatus and contribute no items.
func (a *Aggregator) Aggregate(ctx context.Context, keys types.APIKeys, watchlist []types.Ticker) types.AggregatedFeed {
	cycleID := uuid.NewString()
	watchlist = normalizeWatchlist(watchlist)

	timer := logger.StartOperation(ctx, "aggregator.Aggregate",
		"cycle_id", cycleID,
		"watchlist_size", len(watchlist),
	)
	ctx = timer.GetContext()

	industryMap := types.WatchlistIndustryMap{}
	if len(watchlist) > 0 && a.resolver != nil {
		industryMap = a.resolver(keys.Finnhub).BuildMap(ctx, watchlist)
	}

	results := a.fanOut(ctx, keys, watchlist, industryMap)

	statuses := make([]types.SourceStatus, len(a.providers))
	all := []types.NewsItem{}
	for i, p := range a.providers {
		r := results[i]
		status := types.SourceStatus{
			ProviderName: p.Name(),
			Succeeded:    r.err == nil,
			DurationMs:   r.duration.Milliseconds(),
		}
		if r.err != nil {
			status.Error = r.err.Error()
		} else {
			status.Count = len(r.items)
			all = append(all, r.items...)
		}
		statuses[i] = status

		logger.Provider(ctx, status.ProviderName, status.Succeeded, status.Count,
			"cycle_id", cycleID,
			"duration_ms", status.DurationMs,
			"error", status.Error,
		)
	}

	unique := Dedupe(all)
	SortByTime(unique)

	industryRelated := 0
	for _, it := range unique {
		if it.IndustryRelated {
			industryRelated++
		}
	}

	items := unique
	if len(items) > a.cfg.FeedCap {
		items = items[:a.cfg.FeedCap]
	}

	feed := types.AggregatedFeed{
		CycleID:         cycleID,
		Items:           items,
		PerSourceStatus: statuses,
		Timestamp:       a.now().UTC(),
		Total:           len(unique),
		IndustryRelated: industryRelated,
		Watchlist:       watchlist,
		IndustryMap:     industryMap.Tickers(watchlist),
	}

	logger.Feed(ctx, feed.Total, feed.IndustryRelated,
		"cycle_id", cycleID,
		"returned", len(feed.Items),
		"degraded", feed.Degraded(),
	)
	timer.End("items", len(feed.Items))
	return feed
}

// fanOut runs every provider concurrently. Each task always returns nil so
// one failure never cancels the others; outcomes land in their own slot.
func (a *Aggregator) fanOut(ctx context.Context, keys types.APIKeys, watchlist []types.Ticker, industryMap types.WatchlistIndustryMap) []providerResult {
	results := make([]providerResult, len(a.providers))

	var g errgroup.Group
	for i, p := range a.providers {
		i, p := i, p
		g.Go(func() error {
			start := time.Now()
			items, err := a.callProvider(ctx, p, keys.For(p.Name()), watchlist, industryMap)
			results[i] = providerResult{items: items, err: err, duration: time.Since(start)}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// callProvider bounds one provider by its deadline. A provider that ignores
// ctx is abandoned once the deadline passes.
func (a *Aggregator) callProvider(ctx context.Context, p interfaces.Provider, apiKey string, watchlist []types.Ticker, industryMap types.WatchlistIndustryMap) ([]types.NewsItem, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeoutFor(p.Name()))
	defer cancel()

	type outcome struct {
		items []types.NewsItem
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- outcome{err: fmt.Errorf("provider %s panicked: %v", p.Name(), rec)}
			}
		}()
		items, err := p.Fetch(ctx, apiKey, watchlist, industryMap)
		done <- outcome{items: items, err: err}
	}()

	select {
	case o := <-done:
		return o.items, o.err
	case <-ctx.Done():
		return nil, fmt.Errorf("provider %s: %w", p.Name(), ctx.Err())
	}
}

func (a *Aggregator) timeoutFor(name string) time.Duration {
	if d, ok := a.cfg.Timeouts[name]; ok && d > 0 {
		return d
	}
	return a.cfg.ProviderTimeout
}

// Dedupe keeps the first occurrence of each GlobalID, preserving order.
func Dedupe(items []types.NewsItem) []types.NewsItem {
	seen := make(map[string]bool, len(items))
	out := make([]types.NewsItem, 0, len(items))
	for _, it := range items {
		id := GlobalID(it)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, it)
	}
	return out
}

// SortByTime orders items newest first. Ties keep encounter order; items
// with no parseable time sort last.
func SortByTime(items []types.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
}

func normalizeWatchlist(watchlist []types.Ticker) []types.Ticker {
	out := make([]types.Ticker, 0, len(watchlist))
	seen := map[types.Ticker]bool{}
	for _, t := range watchlist {
		t = types.NormalizeTicker(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
