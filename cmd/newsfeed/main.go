package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"watchlist-news/internal/app"
	"watchlist-news/internal/feedstate"
	"watchlist-news/internal/logger"
	"watchlist-news/internal/news"
	"watchlist-news/internal/store"
	"watchlist-news/internal/types"
	"watchlist-news/internal/ui"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	watchlistFlag := flag.String("watchlist", "", "comma separated tickers (overrides config)")
	tickerFilter := flag.String("ticker", "", "only show news tagged with this ticker")
	sortOrder := flag.String("sort", "newest", "sort order: newest or oldest")
	once := flag.Bool("once", false, "fetch one cycle and exit")
	markAll := flag.Bool("mark-all-read", false, "mark every shown item read after printing")
	flag.Parse()

	if err := app.InitializeSystem(); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := app.LoadConfig(ctx, *configPath)
	if err != nil {
		log.Fatal(err)
	}

	mgr, err := initializeFeedState(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	svc := app.NewsService(ctx, cfg)
	journal := app.AttachJournal(ctx, cfg, svc)
	keys := store.APIKeysFromEnv()
	watchlist := resolveWatchlist(*watchlistFlag, cfg)
	filter := types.NormalizeTicker(*tickerFilter)
	order := feedstate.SortOrder(*sortOrder)

	logger.Info(ctx, "News feed started", "watchlist", watchlist, "poll_seconds", cfg.PollSeconds)

	cycle := func() {
		snap := mgr.Apply(ctx, svc.Refresh(ctx, keys, watchlist), time.Now())
		entries := feedstate.Sort(feedstate.FilterTicker(snap.Entries, filter), order)
		tickers := feedstate.WatchlistTickers(snap.Entries, watchlist)

		fmt.Println(ui.Feed(snap, entries, tickers, filter))

		if *markAll && len(entries) > 0 {
			if err := mgr.MarkAllRead(ctx, entries); err != nil {
				logger.ErrorWithErr(ctx, "Failed to mark items read", err)
			}
		}
	}

	cycle()
	if !*once {
		poll(ctx, cfg, svc, cycle)
	}

	app.WriteDigest(ctx, journal)
	app.Shutdown(context.Background())
}

func poll(ctx context.Context, cfg *store.Config, svc *news.Service, cycle func()) {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	tick := time.NewTicker(time.Duration(cfg.PollSeconds) * time.Second)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			cycle()
		case <-sigc:
			logger.Info(ctx, "Shutting down...", "cached_feeds", len(svc.GetCachedKeys()))
			return
		case <-ctx.Done():
			return
		}
	}
}
