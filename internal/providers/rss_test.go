package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/assert/v2"

	"watchlist-news/internal/api"
	"watchlist-news/internal/types"
)

const rssPayload = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Market Headlines</title>
    <link>https://example.com</link>
    <description>Headlines</description>
    <item>
      <title>Tesla recalls vehicles over software issue</title>
      <link>https://example.com/tesla-recall</link>
      <description>&lt;p&gt;The &lt;b&gt;recall&lt;/b&gt; covers 2M cars.&lt;/p&gt;</description>
      <pubDate>Thu, 26 Feb 2026 07:53:24 +0000</pubDate>
      <enclosure url="https://example.com/tsla.jpg" length="100" type="image/jpeg"/>
    </item>
    <item>
      <title>Markets close mixed</title>
      <link>https://example.com/markets</link>
      <description>Stocks ended flat.</description>
      <pubDate>Thu, 26 Feb 2026 06:00:00 +0000</pubDate>
    </item>
  </channel>
</rss>`

func TestRSSFetchPerSymbolFeed(t *testing.T) {
	var symbols []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbols = append(symbols, r.URL.Query().Get("s"))
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssPayload))
	}))
	defer srv.Close()

	p := NewRSS(api.NewClient(), []string{srv.URL + "/rss?s={symbol}"}, 5)
	items, err := p.Fetch(context.Background(), "", []types.Ticker{"TSLA"}, nil)

	assert.Equal(t, nil, err)
	assert.Equal(t, []string{"TSLA"}, symbols)
	assert.Equal(t, 2, len(items))

	first := items[0]
	assert.Equal(t, "Tesla recalls vehicles over software issue", first.Title)
	assert.Equal(t, "The recall covers 2M cars.", first.Summary)
	assert.Equal(t, "Market Headlines", first.SourceName)
	assert.Equal(t, "https://example.com/tsla.jpg", first.ImageURL)
	assert.Equal(t, "20260226T075324", first.TimePublished)
	assert.Equal(t, "TSLA", first.TickerSentiments[0].Ticker)
	assert.Equal(t, types.ProviderRSS, first.ProviderName)
}

func TestRSSFetchGeneralFeedTagsByText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssPayload))
	}))
	defer srv.Close()

	p := NewRSS(api.NewClient(), []string{srv.URL + "/general"}, 5)
	items, err := p.Fetch(context.Background(), "", []types.Ticker{"TSLA"}, nil)

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(items))
	assert.Equal(t, "TSLA", items[0].TickerSentiments[0].Ticker)
}

func TestRSSAllFeedsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewRSS(api.NewClient(), []string{srv.URL + "/missing"}, 5)
	_, err := p.Fetch(context.Background(), "", []types.Ticker{"TSLA"}, nil)

	assert.Equal(t, true, errors.Is(err, ErrProviderResponse))
}

func TestRSSNoFeedsConfigured(t *testing.T) {
	p := NewRSS(api.NewClient(), nil, 5)
	items, err := p.Fetch(context.Background(), "", []types.Ticker{"TSLA"}, nil)

	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(items))
}
