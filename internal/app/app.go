// Package app builds the aggregation pipeline from a loaded config.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"watchlist-news/internal/aggregator"
	"watchlist-news/internal/api"
	"watchlist-news/internal/cyclelog"
	"watchlist-news/internal/industry"
	"watchlist-news/internal/interfaces"
	"watchlist-news/internal/logger"
	"watchlist-news/internal/news"
	"watchlist-news/internal/providers"
	"watchlist-news/internal/providers/providerobs"
	"watchlist-news/internal/store"
	"watchlist-news/internal/trace"
	"watchlist-news/internal/types"
)

// InitializeSystem loads .env and initializes the logger and tracer.
func InitializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// Shutdown flushes pending spans.
func Shutdown(ctx context.Context) {
	_ = trace.Shutdown(ctx)
}

// LoadConfig reads path, logging failures.
func LoadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

func newClient(cfg *store.Config, baseURL string) *api.Client {
	return api.NewClient(
		api.WithBaseURL(baseURL),
		api.WithTimeout(cfg.HTTPTimeout()),
		api.WithHeader("User-Agent", cfg.HTTP.UserAgent),
		api.WithLogging(logger.IsDebugEnabled()),
	)
}

// Providers builds the enabled adapters in declared order, each wrapped
// with observability.
func Providers(ctx context.Context, cfg *store.Config) []interfaces.Provider {
	pc := cfg.Providers
	var out []interfaces.Provider

	if pc.AlphaVantage.Enabled {
		out = append(out, providerobs.Wrap(providers.NewAlphaVantage(
			newClient(cfg, pc.AlphaVantage.BaseURL),
			pc.AlphaVantage.MaxTargets,
			pc.AlphaVantage.Limit,
		)))
	}

	if pc.NewsAPI.Enabled {
		out = append(out, providerobs.Wrap(providers.NewNewsAPI(
			newClient(cfg, pc.NewsAPI.BaseURL),
			pc.NewsAPI.Domains,
			pc.NewsAPI.PageSize,
			pc.NewsAPI.MaxTerms,
		)))
	}

	if pc.Finnhub.Enabled {
		out = append(out, providerobs.Wrap(Finnhub(cfg)))
	}

	if pc.RSS.Enabled && len(pc.RSS.Feeds) > 0 {
		out = append(out, providerobs.Wrap(providers.NewRSS(
			newClient(cfg, ""),
			pc.RSS.Feeds,
			pc.RSS.MaxSymbols,
		)))
	}

	names := make([]string, 0, len(out))
	for _, p := range out {
		names = append(names, p.Name())
	}
	logger.Info(ctx, "Providers configured", "providers", names)

	return out
}

// Finnhub builds the Finnhub adapter from config. It also serves the
// general market feed.
func Finnhub(cfg *store.Config) *providers.Finnhub {
	fc := cfg.Providers.Finnhub
	return providers.NewFinnhub(providers.FinnhubConfig{
		BaseURL:         fc.BaseURL,
		Timeout:         cfg.HTTPTimeout(),
		MaxTargets:      fc.MaxTargets,
		MaxSymbols:      fc.MaxSymbols,
		Lookback:        time.Duration(fc.LookbackHours) * time.Hour,
		PerSymbolItems:  fc.PerSymbolItems,
		RequestInterval: time.Duration(fc.RequestIntervalMs) * time.Millisecond,
	}, nil)
}

// ResolverFactory builds a Finnhub-backed resolver per request key.
func ResolverFactory(cfg *store.Config) aggregator.ResolverFactory {
	timeout := cfg.HTTPTimeout()
	baseURL := cfg.Providers.Finnhub.BaseURL
	return func(finnhubKey string) interfaces.Resolver {
		return industry.NewFinnhubResolver(finnhubKey, baseURL, timeout)
	}
}

// Aggregator builds the aggregator. The per-symbol adapter gets a deadline
// covering its whole sequential loop.
func Aggregator(ctx context.Context, cfg *store.Config) *aggregator.Aggregator {
	perSymbol := cfg.HTTPTimeout() * time.Duration(cfg.Providers.Finnhub.MaxSymbols+1)

	return aggregator.New(Providers(ctx, cfg), ResolverFactory(cfg), aggregator.Config{
		FeedCap:         cfg.FeedCap,
		ProviderTimeout: cfg.HTTPTimeout() * 2,
		Timeouts: map[string]time.Duration{
			types.ProviderFinnhub: perSymbol,
			types.ProviderRSS:     cfg.HTTPTimeout() * time.Duration(cfg.Providers.RSS.MaxSymbols+1),
		},
	})
}

// NewsService builds the cached feed service over a fresh aggregator.
func NewsService(ctx context.Context, cfg *store.Config) *news.Service {
	return news.NewService(Aggregator(ctx, cfg), news.ServiceConfigFromStore(cfg))
}

// KeyTester builds the key tester against the configured provider hosts.
func KeyTester(cfg *store.Config) *providers.KeyTester {
	return &providers.KeyTester{
		AlphaVantage: newClient(cfg, cfg.Providers.AlphaVantage.BaseURL),
		NewsAPI:      newClient(cfg, cfg.Providers.NewsAPI.BaseURL),
		FinnhubURL:   cfg.Providers.Finnhub.BaseURL,
		HTTPClient:   &http.Client{Timeout: cfg.HTTPTimeout()},
	}
}

// AttachJournal enables cycle journaling on svc when configured, first
// compressing journal files past retention. Returns nil when disabled.
func AttachJournal(ctx context.Context, cfg *store.Config, svc *news.Service) *cyclelog.Journal {
	if !cfg.Journal.Enabled {
		return nil
	}

	j := cyclelog.New(cfg.Journal.Dir)
	if n, err := j.CompressOlder(cfg.Journal.RetentionDays); err != nil {
		logger.Warn(ctx, "Failed to compress old journal files", "error", err)
	} else if n > 0 {
		logger.Info(ctx, "Compressed old journal files", "count", n)
	}

	svc.SetJournal(j)
	return j
}

// WriteDigest summarizes today's journal, if any.
func WriteDigest(ctx context.Context, j *cyclelog.Journal) {
	if j == nil {
		return
	}
	p, err := j.SummarizeDay(time.Now())
	if err != nil {
		logger.Warn(ctx, "Failed to write cycle digest", "error", err)
		return
	}
	if p != "" {
		logger.Info(ctx, "Cycle digest written", "path", p)
	}
}
