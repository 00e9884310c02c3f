package news

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"

	"watchlist-news/internal/interfaces"
	"watchlist-news/internal/logger"
	"watchlist-news/internal/store"
	"watchlist-news/internal/trace"
	"watchlist-news/internal/types"
)

// Service wraps the aggregator with a short-lived cache so frequent polls
// share one aggregation cycle, and optionally fills missing images.
type Service struct {
	aggregator interfaces.Aggregator
	enricher   *Enricher
	journal    Journal
	cache      *feedCache
	cfg        *ServiceConfig
}

// Journal records each aggregation cycle.
type Journal interface {
	Append(feed types.AggregatedFeed) error
}

// ServiceConfig configures the news feed service
type ServiceConfig struct {
	CacheDuration  time.Duration // How long an aggregated feed stays fresh
	EnrichEnabled  bool          // Whether to fetch og:image for items without one
	EnrichMaxItems int           // Maximum items enriched per cycle
	EnrichTimeout  time.Duration // Timeout for each article page fetch
	UserAgent      string
}

// DefaultServiceConfig returns default configuration
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		CacheDuration:  30 * time.Second,
		EnrichEnabled:  false,
		EnrichMaxItems: 10,
		EnrichTimeout:  10 * time.Second,
	}
}

// ServiceConfigFromStore maps the loaded config onto a ServiceConfig.
func ServiceConfigFromStore(cfg *store.Config) *ServiceConfig {
	sc := DefaultServiceConfig()
	sc.CacheDuration = cfg.CacheTTL()
	sc.EnrichEnabled = cfg.Enrich.Enabled
	sc.EnrichMaxItems = cfg.Enrich.MaxItems
	sc.EnrichTimeout = cfg.HTTPTimeout()
	sc.UserAgent = cfg.HTTP.UserAgent
	return sc
}

// feedCache stores aggregated feeds temporarily
type feedCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
}

type cacheEntry struct {
	feed      types.AggregatedFeed
	timestamp time.Time
}

func newFeedCache(ttl time.Duration) *feedCache {
	return &feedCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
	}
}

// get retrieves a cached feed if still fresh
func (c *feedCache) get(key string) (types.AggregatedFeed, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[key]
	if !exists {
		return types.AggregatedFeed{}, false
	}

	if time.Since(entry.timestamp) > c.ttl {
		return types.AggregatedFeed{}, false
	}

	return entry.feed, true
}

// set stores a feed, dropping expired entries on the way
func (c *feedCache) set(key string, feed types.AggregatedFeed) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.evictExpired(now)

	c.data[key] = &cacheEntry{
		feed:      feed,
		timestamp: now,
	}
}

// cleanup removes expired entries
func (c *feedCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictExpired(time.Now())
}

// evictExpired must be called with c.mu held.
func (c *feedCache) evictExpired(now time.Time) {
	for k, entry := range c.data {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.data, k)
		}
	}
}

// NewService creates a feed service around an aggregator
func NewService(aggregator interfaces.Aggregator, cfg *ServiceConfig) *Service {
	if cfg == nil {
		cfg = DefaultServiceConfig()
	}

	svc := &Service{
		aggregator: aggregator,
		cache:      newFeedCache(cfg.CacheDuration),
		cfg:        cfg,
	}
	if cfg.EnrichEnabled {
		svc.enricher = NewEnricher(cfg.EnrichTimeout, cfg.EnrichMaxItems, cfg.UserAgent)
	}
	return svc
}

// CacheKey identifies a feed by watchlist and credentials. Keys are hashed
// so no credential is held in memory as a map key.
func CacheKey(keys types.APIKeys, watchlist []types.Ticker) string {
	tickers := make([]string, 0, len(watchlist))
	for _, t := range watchlist {
		if n := types.NormalizeTicker(t); n != "" {
			tickers = append(tickers, n)
		}
	}
	sort.Strings(tickers)

	h := sha256.Sum256([]byte(keys.AlphaVantage + "\x00" + keys.NewsAPI + "\x00" + keys.Finnhub))
	return strings.Join(tickers, ",") + "|" + hex.EncodeToString(h[:6])
}

// GetFeed returns a cached feed when fresh, otherwise aggregates a new one
func (s *Service) GetFeed(ctx context.Context, keys types.APIKeys, watchlist []types.Ticker) types.AggregatedFeed {
	ctx, span := trace.StartSpan(ctx, "news.GetFeed")
	defer span.End()

	key := CacheKey(keys, watchlist)
	if cached, ok := s.cache.get(key); ok {
		logger.Info(ctx, "Using cached feed", "watchlist", watchlist, "age_seconds",
			time.Since(cached.Timestamp).Seconds())
		return cached
	}

	logger.Info(ctx, "Aggregating fresh feed", "watchlist", watchlist)
	return s.refresh(ctx, key, keys, watchlist)
}

// Refresh forces a new aggregation cycle (bypasses cache)
func (s *Service) Refresh(ctx context.Context, keys types.APIKeys, watchlist []types.Ticker) types.AggregatedFeed {
	return s.refresh(ctx, CacheKey(keys, watchlist), keys, watchlist)
}

func (s *Service) refresh(ctx context.Context, key string, keys types.APIKeys, watchlist []types.Ticker) types.AggregatedFeed {
	feed := s.aggregator.Aggregate(ctx, keys, watchlist)

	if s.enricher != nil && len(feed.Items) > 0 {
		feed.Items = s.enricher.Enrich(ctx, feed.Items)
	}

	if s.journal != nil {
		if err := s.journal.Append(feed); err != nil {
			logger.Warn(ctx, "Failed to journal cycle", "cycle_id", feed.CycleID, "error", err)
		}
	}

	// Degraded feeds are cached too.
	s.cache.set(key, feed)
	return feed
}

// SetJournal records every fresh cycle to j. Cache hits are not journaled.
func (s *Service) SetJournal(j Journal) {
	s.journal = j
}

// ClearCache removes all cached feeds
func (s *Service) ClearCache() {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	s.cache.data = make(map[string]*cacheEntry)
}

// GetCachedKeys returns the cache keys currently held
func (s *Service) GetCachedKeys() []string {
	s.cache.mu.RLock()
	defer s.cache.mu.RUnlock()

	keys := make([]string, 0, len(s.cache.data))
	for k := range s.cache.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
