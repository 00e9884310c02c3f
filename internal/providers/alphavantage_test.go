package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"watchlist-news/internal/api"
	"watchlist-news/internal/types"
)

const avPayload = `{
  "items": "3",
  "feed": [
    {
      "title": "Tesla deliveries beat estimates",
      "url": "https://example.com/tesla-deliveries",
      "time_published": "20260226T075324",
      "summary": "Tesla delivered more vehicles than expected.",
      "banner_image": "https://example.com/tsla.png",
      "source": "Reuters",
      "ticker_sentiment": [
        {"ticker": "TSLA", "relevance_score": "0.91", "ticker_sentiment_score": "0.21"}
      ]
    },
    {
      "title": "Rivian expands production",
      "url": "https://example.com/rivian",
      "time_published": "20260226T060000",
      "summary": "",
      "source": "Bloomberg",
      "ticker_sentiment": [
        {"ticker": "RIVN", "relevance_score": "0.7", "ticker_sentiment_score": "-0.1"}
      ]
    },
    {
      "title": "Weather turns cold",
      "url": "https://example.com/weather",
      "time_published": "20260226T050000",
      "summary": "Snow expected.",
      "source": "Local",
      "ticker_sentiment": []
    }
  ]
}`

func TestAlphaVantageFetch(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"function": q.Get("function"),
			"tickers":  q.Get("tickers"),
			"limit":    q.Get("limit"),
			"apikey":   q.Get("apikey"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(avPayload))
	}))
	defer srv.Close()

	p := NewAlphaVantage(api.NewClient(api.WithBaseURL(srv.URL)), 20, 100)
	items, err := p.Fetch(context.Background(), "test-key", []types.Ticker{"TSLA"}, evMap)

	assert.Equal(t, nil, err)
	assert.Equal(t, "NEWS_SENTIMENT", gotQuery["function"])
	assert.Equal(t, "TSLA,RIVN,LCID,NIO", gotQuery["tickers"])
	assert.Equal(t, "100", gotQuery["limit"])
	assert.Equal(t, "test-key", gotQuery["apikey"])

	assert.Equal(t, 2, len(items))

	first := items[0]
	assert.Equal(t, "av-20260226T075324-0", first.ID)
	assert.Equal(t, "Tesla deliveries beat estimates", first.Title)
	assert.Equal(t, "https://example.com/tsla.png", first.ImageURL)
	assert.Equal(t, types.ProviderAlphaVantage, first.ProviderName)
	assert.Equal(t, 0.91, first.TickerSentiments[0].RelevanceScore)
	assert.Equal(t, 0.21, first.TickerSentiments[0].SentimentScore)
	assert.Equal(t, true, first.PublishedAt.Equal(time.Date(2026, 2, 26, 7, 53, 24, 0, time.UTC)))
	assert.Equal(t, false, first.IndustryRelated)

	second := items[1]
	assert.Equal(t, "Rivian expands production...", second.Summary)
	assert.Equal(t, true, second.IndustryRelated)
}

func TestAlphaVantageNoWatchlistSkipsFilter(t *testing.T) {
	var tickers string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tickers = r.URL.Query().Get("tickers")
		w.Write([]byte(avPayload))
	}))
	defer srv.Close()

	p := NewAlphaVantage(api.NewClient(api.WithBaseURL(srv.URL)), 20, 100)
	items, err := p.Fetch(context.Background(), "k", nil, nil)

	assert.Equal(t, nil, err)
	assert.Equal(t, "TSLA,AAPL,MSFT", tickers)
	assert.Equal(t, 3, len(items))
	for _, it := range items {
		assert.Equal(t, false, it.IndustryRelated)
	}
}

func TestAlphaVantageRateLimitNote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`))
	}))
	defer srv.Close()

	p := NewAlphaVantage(api.NewClient(api.WithBaseURL(srv.URL)), 20, 100)
	items, err := p.Fetch(context.Background(), "k", []types.Ticker{"TSLA"}, evMap)

	assert.Equal(t, 0, len(items))
	assert.Equal(t, true, errors.Is(err, ErrProviderResponse))
}

func TestAlphaVantageServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewAlphaVantage(api.NewClient(api.WithBaseURL(srv.URL)), 20, 100)
	_, err := p.Fetch(context.Background(), "k", []types.Ticker{"TSLA"}, evMap)

	assert.Equal(t, true, errors.Is(err, ErrProviderResponse))
}

func TestAlphaVantageMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"feed": [`))
	}))
	defer srv.Close()

	p := NewAlphaVantage(api.NewClient(api.WithBaseURL(srv.URL)), 20, 100)
	items, err := p.Fetch(context.Background(), "k", []types.Ticker{"TSLA"}, evMap)

	assert.NotEqual(t, nil, err)
	assert.Equal(t, 0, len(items))
}

func TestAlphaVantageMissingKey(t *testing.T) {
	p := NewAlphaVantage(api.NewClient(), 20, 100)
	_, err := p.Fetch(context.Background(), "", []types.Ticker{"TSLA"}, evMap)
	assert.Equal(t, true, errors.Is(err, ErrMissingKey))
}
