package types

import (
	"strings"
	"time"
)

// Ticker is an uppercase stock symbol such as "TSLA".
type Ticker = string

// NormalizeTicker trims and uppercases a symbol.
func NormalizeTicker(s string) Ticker {
	return strings.ToUpper(strings.TrimSpace(s))
}

// IndustryProfile describes a ticker's industry, its competitors and the
// keywords used for relevance matching. Profiles are never mutated after
// construction.
type IndustryProfile struct {
	Industry    string   `json:"industry" yaml:"industry"`
	Competitors []Ticker `json:"competitors" yaml:"competitors"`
	Keywords    []string `json:"keywords" yaml:"keywords"`
}

// WatchlistIndustryMap maps each watchlist ticker to its resolved profile.
// Built once per aggregation request and read-only afterwards.
type WatchlistIndustryMap map[Ticker]IndustryProfile

// Tickers returns the map's keys in the order of the given watchlist,
// followed by any remaining keys.
func (m WatchlistIndustryMap) Tickers(watchlist []Ticker) []Ticker {
	out := make([]Ticker, 0, len(m))
	seen := make(map[Ticker]bool, len(m))
	for _, t := range watchlist {
		if _, ok := m[t]; ok && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for t := range m {
		if !seen[t] {
			out = append(out, t)
		}
	}
	return out
}

// TickerSentiment is a per-ticker relevance/sentiment pair on a NewsItem.
type TickerSentiment struct {
	Ticker         Ticker  `json:"ticker"`
	RelevanceScore float64 `json:"relevance_score"`
	SentimentScore float64 `json:"ticker_sentiment_score"`
}

// NewsItem is the canonical, provider-independent article.
type NewsItem struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Summary          string            `json:"summary"`
	URL              string            `json:"url"`
	TimePublished    string            `json:"time_published"`
	PublishedAt      time.Time         `json:"published_at"`
	TickerSentiments []TickerSentiment `json:"ticker_sentiment"`
	SourceName       string            `json:"source"`
	ImageURL         string            `json:"image,omitempty"`
	ProviderName     string            `json:"provider"`
	IndustryRelated  bool              `json:"industry_related"`
}

// HasTicker reports whether the item's ticker sentiments mention t.
func (n NewsItem) HasTicker(t Ticker) bool {
	for _, ts := range n.TickerSentiments {
		if ts.Ticker == t {
			return true
		}
	}
	return false
}

// SourceStatus records the outcome of one provider in an aggregation cycle.
type SourceStatus struct {
	ProviderName string `json:"name"`
	Succeeded    bool   `json:"succeeded"`
	Count        int    `json:"count"`
	Error        string `json:"error,omitempty"`
	DurationMs   int64  `json:"duration_ms"`
}

// AggregatedFeed is the output of one aggregation cycle.
type AggregatedFeed struct {
	CycleID         string         `json:"cycleId"`
	Items           []NewsItem     `json:"feed"`
	PerSourceStatus []SourceStatus `json:"sources"`
	Timestamp       time.Time      `json:"timestamp"`
	Total           int            `json:"total"`
	IndustryRelated int            `json:"industryRelated"`
	Watchlist       []Ticker       `json:"watchlist"`
	IndustryMap     []Ticker       `json:"industryMap"`
}

// Degraded reports whether at least one provider failed in this cycle.
func (f AggregatedFeed) Degraded() bool {
	for _, s := range f.PerSourceStatus {
		if !s.Succeeded {
			return true
		}
	}
	return false
}

// APIKeys carries per-request provider credentials. Empty means absent.
type APIKeys struct {
	AlphaVantage string
	NewsAPI      string
	Finnhub      string
}

// For returns the key configured for the named provider.
func (k APIKeys) For(provider string) string {
	switch provider {
	case ProviderAlphaVantage:
		return k.AlphaVantage
	case ProviderNewsAPI:
		return k.NewsAPI
	case ProviderFinnhub:
		return k.Finnhub
	}
	return ""
}

// Provider names, also used as the providerName on each NewsItem.
const (
	ProviderAlphaVantage = "Alpha Vantage"
	ProviderNewsAPI      = "NewsAPI"
	ProviderFinnhub      = "Finnhub"
	ProviderRSS          = "RSS"
)
