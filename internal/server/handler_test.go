package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"

	"watchlist-news/internal/feedstate"
	"watchlist-news/internal/interfaces"
	"watchlist-news/internal/providers"
	"watchlist-news/internal/types"
)

type fakeFeeds struct {
	feed      types.AggregatedFeed
	keys      types.APIKeys
	watchlist []types.Ticker
	calls     int
}

func (f *fakeFeeds) GetFeed(ctx context.Context, keys types.APIKeys, watchlist []types.Ticker) types.AggregatedFeed {
	f.calls++
	f.keys = keys
	f.watchlist = watchlist
	return f.feed
}

type fakeResolver struct {
	key string
}

func (r *fakeResolver) Resolve(ctx context.Context, ticker types.Ticker) types.IndustryProfile {
	return types.IndustryProfile{
		Industry:    "Electric Vehicles & Clean Energy",
		Competitors: []types.Ticker{"RIVN", "LCID"},
		Keywords:    []string{"ev", "battery"},
	}
}

func (r *fakeResolver) BuildMap(ctx context.Context, tickers []types.Ticker) types.WatchlistIndustryMap {
	return types.WatchlistIndustryMap{}
}

type fakeKeyTester struct {
	result providers.KeyTestResult
	err    error
}

func (k *fakeKeyTester) Test(ctx context.Context, provider, key string) (providers.KeyTestResult, error) {
	res := k.result
	res.Provider = provider
	return res, k.err
}

type fakeMarket struct {
	items []types.NewsItem
	err   error
	key   string
	limit int
}

func (m *fakeMarket) MarketNews(ctx context.Context, apiKey string, limit int) ([]types.NewsItem, error) {
	m.key = apiKey
	m.limit = limit
	return m.items, m.err
}

type testDeps struct {
	feeds    *fakeFeeds
	resolver *fakeResolver
	tester   *fakeKeyTester
	store    feedstate.ReadStore
	market   *fakeMarket
}

func newTestRouter(t *testing.T, d *testDeps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if d.feeds == nil {
		d.feeds = &fakeFeeds{}
	}
	if d.resolver == nil {
		d.resolver = &fakeResolver{}
	}
	if d.tester == nil {
		d.tester = &fakeKeyTester{}
	}
	if d.store == nil {
		d.store = feedstate.NewFileStore(filepath.Join(t.TempDir(), "read.json"))
	}

	factory := func(key string) interfaces.Resolver {
		d.resolver.key = key
		return d.resolver
	}
	env := types.APIKeys{AlphaVantage: "env-av", NewsAPI: "env-news", Finnhub: "env-fh"}
	h := NewHandler(d.feeds, factory, d.tester, d.store, env)
	if d.market != nil {
		h.SetMarketNews(d.market)
	}
	return NewRouter(h, []string{"http://localhost:3000"})
}

func sampleFeed() types.AggregatedFeed {
	return types.AggregatedFeed{
		CycleID: "cycle-1",
		Items: []types.NewsItem{
			{
				ID:           "av-1",
				Title:        "Tesla expands",
				URL:          "https://www.reuters.com/tsla?utm=x",
				PublishedAt:  time.Date(2026, 2, 26, 7, 0, 0, 0, time.UTC),
				ProviderName: types.ProviderAlphaVantage,
			},
		},
		PerSourceStatus: []types.SourceStatus{
			{ProviderName: types.ProviderAlphaVantage, Succeeded: true, Count: 1},
			{ProviderName: types.ProviderNewsAPI, Succeeded: false, Error: "missing key"},
		},
		Timestamp:       time.Date(2026, 2, 26, 8, 0, 0, 0, time.UTC),
		Total:           1,
		IndustryRelated: 0,
		Watchlist:       []types.Ticker{"TSLA"},
		IndustryMap:     []types.Ticker{"TSLA"},
	}
}

func TestGetNewsFeed_ReturnsFeed(t *testing.T) {
	d := &testDeps{feeds: &fakeFeeds{feed: sampleFeed()}}
	r := newTestRouter(t, d)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/news-aggregator", nil)
	req.Header.Set(HeaderWatchlist, `["tsla"," aapl "]`)
	req.Header.Set(HeaderNewsAPIKey, "header-news")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []types.Ticker{"TSLA", "AAPL"}, d.feeds.watchlist)
	assert.Equal(t, "header-news", d.feeds.keys.NewsAPI)
	assert.Equal(t, "env-av", d.feeds.keys.AlphaVantage)
	assert.Equal(t, "env-fh", d.feeds.keys.Finnhub)

	var res FeedResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 1, len(res.Feed))
	assert.Equal(t, "url-www.reuters.com-tsla", res.Feed[0].GlobalID)
	assert.Equal(t, "Tesla expands", res.Feed[0].Title)
	assert.Equal(t, "fulfilled", res.Sources[0].Status)
	assert.Equal(t, "rejected", res.Sources[1].Status)
	assert.Equal(t, 0, res.Sources[1].Count)
	assert.Equal(t, true, res.Degraded)
	assert.Equal(t, "2026-02-26T08:00:00Z", res.Timestamp)
	assert.Equal(t, "cycle-1", res.CycleID)
}

func TestGetNewsFeed_NoWatchlist(t *testing.T) {
	d := &testDeps{}
	r := newTestRouter(t, d)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/news-aggregator", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, d.feeds.calls)
	assert.Equal(t, 0, len(d.feeds.watchlist))

	var res map[string]any
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, []any{}, res["feed"])
	assert.Equal(t, []any{}, res["watchlist"])
}

func TestGetNewsFeed_WatchlistQuery(t *testing.T) {
	d := &testDeps{}
	r := newTestRouter(t, d)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/news-aggregator?watchlist=nvda,,amd", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []types.Ticker{"NVDA", "AMD"}, d.feeds.watchlist)
}

func TestGetNewsFeed_InvalidWatchlist(t *testing.T) {
	d := &testDeps{}
	r := newTestRouter(t, d)

	for _, header := range []string{`not json`, `["TOOLONGTICKER"]`} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/news-aggregator", nil)
		req.Header.Set(HeaderWatchlist, header)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	assert.Equal(t, 0, d.feeds.calls)
}

func TestGetTickerIndustry(t *testing.T) {
	d := &testDeps{}
	r := newTestRouter(t, d)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ticker-industry?ticker=tsla", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "env-fh", d.resolver.key)

	var res IndustryResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "TSLA", res.Ticker)
	assert.Equal(t, "Electric Vehicles & Clean Energy", res.Industry)
	assert.Equal(t, []types.Ticker{"RIVN", "LCID"}, res.Competitors)
}

func TestGetTickerIndustry_MissingTicker(t *testing.T) {
	r := newTestRouter(t, &testDeps{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ticker-industry", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMarketNews(t *testing.T) {
	d := &testDeps{market: &fakeMarket{items: []types.NewsItem{
		{Title: "Stocks rally on rate hopes", URL: "https://news.example.com/rally"},
	}}}
	r := newTestRouter(t, d)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/market-news", nil)
	req.Header.Set(HeaderFinnhubKey, "header-fh")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "header-fh", d.market.key)
	assert.Equal(t, providers.DefaultMarketNewsLimit, d.market.limit)

	var res MarketNewsResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 1, len(res.Feed))
	assert.Equal(t, "url-news.example.com-rally", res.Feed[0].GlobalID)
}

func TestGetMarketNews_Errors(t *testing.T) {
	tests := []struct {
		name   string
		market *fakeMarket
		want   int
	}{
		{"not configured", nil, http.StatusServiceUnavailable},
		{"upstream failure", &fakeMarket{err: errors.New("HTTP 429")}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, &testDeps{market: tt.market})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", "/market-news", nil))

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestTestKey_Success(t *testing.T) {
	d := &testDeps{tester: &fakeKeyTester{result: providers.KeyTestResult{Success: true}}}
	r := newTestRouter(t, d)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test-key?provider=finnhub&key=abc", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res map[string]any
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, true, res["success"])
	assert.Equal(t, "finnhub", res["provider"])
	assert.Equal(t, nil, res["error"])
}

func TestTestKey_Rejected(t *testing.T) {
	d := &testDeps{tester: &fakeKeyTester{result: providers.KeyTestResult{Error: "Invalid API key"}}}
	r := newTestRouter(t, d)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test-key?provider=newsapi&key=bad", nil)
	r.ServeHTTP(w, req)

	var res TestKeyResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, false, res.Success)
	assert.Equal(t, "Invalid API key", *res.Error)
}

func TestTestKey_BadRequests(t *testing.T) {
	d := &testDeps{tester: &fakeKeyTester{err: errors.New("unknown provider 'x'")}}
	r := newTestRouter(t, d)

	for _, target := range []string{"/test-key", "/test-key?provider=finnhub", "/test-key?provider=x&key=k"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", target, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestReadItems_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rs, err := feedstate.NewRedisStore(mr.Addr(), "test:read")
	if err != nil {
		t.Fatal(err)
	}
	defer rs.Close()

	r := newTestRouter(t, &testDeps{store: rs})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/read-items", strings.NewReader(`{"ids":["url-a.com-1","url-a.com-2"]}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/read-items", nil)
	r.ServeHTTP(w, req)

	var res ReadItemsResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, []string{"url-a.com-1", "url-a.com-2"}, res.IDs)
}

func TestReadItems_EmptyBody(t *testing.T) {
	r := newTestRouter(t, &testDeps{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/read-items", strings.NewReader(`{"ids":[]}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetHealth(t *testing.T) {
	mr := miniredis.RunT(t)
	rs, err := feedstate.NewRedisStore(mr.Addr(), "")
	if err != nil {
		t.Fatal(err)
	}
	defer rs.Close()

	r := newTestRouter(t, &testDeps{store: rs})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	mr.Close()

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var res map[string]string
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "unhealthy", res["status"])
}

func TestCORSAllowsKeyHeaders(t *testing.T) {
	r := newTestRouter(t, &testDeps{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/news-aggregator", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Header.Set("Access-Control-Request-Headers", "x-watchlist")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
