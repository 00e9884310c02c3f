package main

import (
	"context"
	"strings"

	"watchlist-news/internal/feedstate"
	"watchlist-news/internal/logger"
	"watchlist-news/internal/store"
	"watchlist-news/internal/types"
)

// initializeFeedState opens the read store and loads the read set
func initializeFeedState(ctx context.Context, cfg *store.Config) (*feedstate.Manager, error) {
	rs, err := feedstate.NewStore(cfg)
	if err != nil {
		return nil, err
	}

	mgr := feedstate.NewManager(rs, cfg.Window())
	if err := mgr.Load(ctx); err != nil {
		logger.Warn(ctx, "Failed to load read items, starting empty", "error", err)
	}
	logger.Info(ctx, "Feed state ready", "store", cfg.FeedState.Store, "read", mgr.ReadCount())
	return mgr, nil
}

// resolveWatchlist prefers the -watchlist flag over the config list
func resolveWatchlist(flagValue string, cfg *store.Config) []types.Ticker {
	if strings.TrimSpace(flagValue) == "" {
		return cfg.WatchlistTickers()
	}
	var out []types.Ticker
	seen := map[types.Ticker]bool{}
	for _, t := range strings.Split(flagValue, ",") {
		n := types.NormalizeTicker(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
