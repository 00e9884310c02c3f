package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"watchlist-news/internal/aggregator"
	"watchlist-news/internal/feedstate"
	"watchlist-news/internal/logger"
	"watchlist-news/internal/providers"
	"watchlist-news/internal/types"
)

// Request headers carrying per-request credentials and the watchlist.
const (
	HeaderAlphaVantageKey = "x-api-key-alpha_vantage"
	HeaderNewsAPIKey      = "x-api-key-newsapi"
	HeaderFinnhubKey      = "x-api-key-finnhub"
	HeaderWatchlist       = "x-watchlist"
)

type FeedService interface {
	GetFeed(ctx context.Context, keys types.APIKeys, watchlist []types.Ticker) types.AggregatedFeed
}

// MarketNewsSource serves the general market feed.
type MarketNewsSource interface {
	MarketNews(ctx context.Context, apiKey string, limit int) ([]types.NewsItem, error)
}

type KeyTester interface {
	Test(ctx context.Context, provider, key string) (providers.KeyTestResult, error)
}

type Handler struct {
	feeds     FeedService
	resolver  aggregator.ResolverFactory
	keyTester KeyTester
	readStore feedstate.ReadStore
	envKeys   types.APIKeys
	market    MarketNewsSource
}

func NewHandler(feeds FeedService, resolver aggregator.ResolverFactory, keyTester KeyTester, readStore feedstate.ReadStore, envKeys types.APIKeys) *Handler {
	return &Handler{
		feeds:     feeds,
		resolver:  resolver,
		keyTester: keyTester,
		readStore: readStore,
		envKeys:   envKeys,
	}
}

// GetNewsFeed aggregates all providers for the caller's watchlist. Header
// keys take precedence over the server's environment keys.
func (h *Handler) GetNewsFeed(c *gin.Context) {
	ctx := c.Request.Context()

	watchlist, err := parseWatchlist(c)
	if err != nil {
		logger.Warn(ctx, "invalid watchlist header", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid watchlist"})
		return
	}

	keys := h.requestKeys(c)
	feed := h.feeds.GetFeed(ctx, keys, watchlist)

	c.JSON(http.StatusOK, toFeedResponse(feed))
}

func (h *Handler) requestKeys(c *gin.Context) types.APIKeys {
	pick := func(header, fallback string) string {
		if v := strings.TrimSpace(c.GetHeader(header)); v != "" {
			return v
		}
		return fallback
	}
	return types.APIKeys{
		AlphaVantage: pick(HeaderAlphaVantageKey, h.envKeys.AlphaVantage),
		NewsAPI:      pick(HeaderNewsAPIKey, h.envKeys.NewsAPI),
		Finnhub:      pick(HeaderFinnhubKey, h.envKeys.Finnhub),
	}
}

// parseWatchlist reads a JSON array from the watchlist header, or a comma
// separated "watchlist" query parameter. Neither present means no watchlist.
func parseWatchlist(c *gin.Context) ([]types.Ticker, error) {
	var raw []string
	if header := strings.TrimSpace(c.GetHeader(HeaderWatchlist)); header != "" && header != "null" {
		if err := json.Unmarshal([]byte(header), &raw); err != nil {
			return nil, err
		}
	} else if q := c.Query("watchlist"); q != "" {
		raw = strings.Split(q, ",")
	}

	out := make([]types.Ticker, 0, len(raw))
	for _, t := range raw {
		n := types.NormalizeTicker(t)
		if n == "" {
			continue
		}
		if len(n) > 5 {
			return nil, errors.New("ticker longer than 5 characters: " + n)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// SetMarketNews enables GET /market-news.
func (h *Handler) SetMarketNews(src MarketNewsSource) {
	h.market = src
}

// GetMarketNews returns the general market feed, newest provider order kept.
func (h *Handler) GetMarketNews(c *gin.Context) {
	ctx := c.Request.Context()
	if h.market == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Market news not configured"})
		return
	}

	key := h.envKeys.Finnhub
	if v := strings.TrimSpace(c.GetHeader(HeaderFinnhubKey)); v != "" {
		key = v
	}
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Finnhub API key required"})
		return
	}

	items, err := h.market.MarketNews(ctx, key, providers.DefaultMarketNewsLimit)
	if err != nil {
		logger.Warn(ctx, "market news failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Market news unavailable"})
		return
	}

	c.JSON(http.StatusOK, MarketNewsResponse{Feed: toItemResponses(items)})
}

// GetTickerIndustry resolves one ticker. Resolution never fails, unknown
// tickers get the generic profile.
func (h *Handler) GetTickerIndustry(c *gin.Context) {
	ticker := types.NormalizeTicker(c.Query("ticker"))
	if ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ticker parameter required"})
		return
	}

	key := h.envKeys.Finnhub
	if v := strings.TrimSpace(c.GetHeader(HeaderFinnhubKey)); v != "" {
		key = v
	}

	profile := h.resolver(key).Resolve(c.Request.Context(), ticker)

	c.JSON(http.StatusOK, IndustryResponse{
		Ticker:      ticker,
		Industry:    profile.Industry,
		Competitors: profile.Competitors,
		Keywords:    profile.Keywords,
	})
}

func (h *Handler) TestKey(c *gin.Context) {
	provider := c.Query("provider")
	key := c.Query("key")

	if provider == "" || key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing provider or key"})
		return
	}

	res, err := h.keyTester.Test(c.Request.Context(), provider, key)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Unknown provider"})
		return
	}

	out := TestKeyResponse{Success: res.Success, Provider: res.Provider}
	if !res.Success {
		msg := res.Error
		out.Error = &msg
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetReadItems(c *gin.Context) {
	ids, err := h.readStore.Load(c.Request.Context())
	if err != nil {
		logger.ErrorWithErr(c.Request.Context(), "error loading read items", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Read store error"})
		return
	}
	c.JSON(http.StatusOK, ReadItemsResponse{IDs: ids, Count: len(ids)})
}

func (h *Handler) MarkRead(c *gin.Context) {
	var req ReadItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids required"})
		return
	}

	if err := h.readStore.Add(c.Request.Context(), req.IDs...); err != nil {
		logger.ErrorWithErr(c.Request.Context(), "error saving read items", err, "count", len(req.IDs))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Read store error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": len(req.IDs)})
}

func (h *Handler) GetHealth(c *gin.Context) {
	if p, ok := h.readStore.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"readStore": "disconnected",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"readStore": "connected",
	})
}
