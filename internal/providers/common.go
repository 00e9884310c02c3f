// Package providers holds the news provider adapters and the helpers they
// share: query targeting, ticker detection for free-text sources, summary
// cleanup and error classification.
package providers

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"watchlist-news/internal/api"
	"watchlist-news/internal/relevance"
	"watchlist-news/internal/types"
)

var (
	// ErrMissingKey means no credential was supplied for the provider.
	ErrMissingKey = errors.New("missing api key")
	// ErrProviderResponse covers non-2xx statuses and provider error payloads.
	ErrProviderResponse = errors.New("provider returned an error response")
)

// competitorsPerTicker bounds how many competitors of each watchlist ticker
// are added to a provider's query targets.
const competitorsPerTicker = 3

const summaryFallbackLen = 200

// DefaultTargets are queried when no watchlist is given.
var DefaultTargets = []types.Ticker{"TSLA", "AAPL", "MSFT"}

// DefaultSearchTerms are the keyword-query equivalent of DefaultTargets.
var DefaultSearchTerms = []string{"Tesla", "Apple", "Microsoft"}

// companyAliases lets free-text providers tag articles that name the
// company rather than the ticker. Read-only.
var companyAliases = map[types.Ticker][]string{
	"TSLA":  {"TESLA", "ELON MUSK"},
	"AAPL":  {"APPLE", "IPHONE", "IPAD", "MAC"},
	"MSFT":  {"MICROSOFT", "AZURE", "WINDOWS"},
	"GOOGL": {"GOOGLE", "ALPHABET", "YOUTUBE"},
	"AMZN":  {"AMAZON", "AWS"},
	"NVDA":  {"NVIDIA"},
	"META":  {"META", "FACEBOOK", "INSTAGRAM"},
}

// Targets returns the watchlist followed by up to three competitors per
// watchlist ticker, deduplicated and capped. An empty watchlist yields
// DefaultTargets.
func Targets(watchlist []types.Ticker, industryMap types.WatchlistIndustryMap, limit int) []types.Ticker {
	if len(watchlist) == 0 {
		return capTickers(append([]types.Ticker(nil), DefaultTargets...), limit)
	}

	out := []types.Ticker{}
	seen := map[types.Ticker]bool{}
	add := func(t types.Ticker) {
		t = types.NormalizeTicker(t)
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		out = append(out, t)
	}

	for _, t := range watchlist {
		add(t)
	}
	for _, t := range watchlist {
		comps := industryMap[t].Competitors
		if len(comps) > competitorsPerTicker {
			comps = comps[:competitorsPerTicker]
		}
		for _, c := range comps {
			add(c)
		}
	}
	return capTickers(out, limit)
}

func capTickers(ts []types.Ticker, limit int) []types.Ticker {
	if limit > 0 && len(ts) > limit {
		return ts[:limit]
	}
	return ts
}

// Candidates is every ticker a free-text article could be tagged with: the
// watchlist, the map's keys and all their competitors.
func Candidates(watchlist []types.Ticker, industryMap types.WatchlistIndustryMap) []types.Ticker {
	out := []types.Ticker{}
	seen := map[types.Ticker]bool{}
	add := func(t types.Ticker) {
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, t := range watchlist {
		add(t)
	}
	keys := industryMap.Tickers(watchlist)
	for _, t := range keys {
		add(t)
	}
	for _, t := range keys {
		for _, c := range industryMap[t].Competitors {
			add(c)
		}
	}
	return out
}

// TickersFromText tags text with every candidate whose symbol or a known
// company alias appears in it.
func TickersFromText(text string, candidates []types.Ticker, relevanceScore, sentimentScore float64) []types.TickerSentiment {
	lower := strings.ToLower(text)
	upper := strings.ToUpper(text)

	out := []types.TickerSentiment{}
	for _, t := range candidates {
		if !relevance.MentionsTicker(lower, t) && !mentionsAlias(upper, t) {
			continue
		}
		out = append(out, types.TickerSentiment{
			Ticker:         t,
			RelevanceScore: relevanceScore,
			SentimentScore: sentimentScore,
		})
	}
	return out
}

func mentionsAlias(upperText string, t types.Ticker) bool {
	for _, name := range companyAliases[t] {
		if strings.Contains(upperText, name) {
			return true
		}
	}
	return false
}

// relatedByTargets reports whether any tagged ticker is outside the
// watchlist but inside the query targets.
func relatedByTargets(sentiments []types.TickerSentiment, watchlist, targets []types.Ticker) bool {
	if len(watchlist) == 0 {
		return false
	}
	for _, ts := range sentiments {
		if !contains(watchlist, ts.Ticker) && contains(targets, ts.Ticker) {
			return true
		}
	}
	return false
}

// relatedByCompetitors reports whether any tagged ticker is outside the
// watchlist but listed as a competitor in the map.
func relatedByCompetitors(sentiments []types.TickerSentiment, watchlist []types.Ticker, industryMap types.WatchlistIndustryMap) bool {
	if len(watchlist) == 0 {
		return false
	}
	for _, ts := range sentiments {
		if contains(watchlist, ts.Ticker) {
			continue
		}
		for _, p := range industryMap {
			if contains(p.Competitors, ts.Ticker) {
				return true
			}
		}
	}
	return false
}

func contains(ts []types.Ticker, t types.Ticker) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}

// summaryOrTitle returns summary, or a truncated title when it is empty.
func summaryOrTitle(summary, title string) string {
	if s := strings.TrimSpace(summary); s != "" {
		return s
	}
	if utf8.RuneCountInString(title) > summaryFallbackLen {
		title = string([]rune(title)[:summaryFallbackLen])
	}
	return title + "..."
}

// stripHTML returns the visible text of an HTML fragment with whitespace
// collapsed. Plain text passes through unchanged.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// filterRelevant applies the relevance classifier when a watchlist is set.
func filterRelevant(items []types.NewsItem, watchlist []types.Ticker, industryMap types.WatchlistIndustryMap) []types.NewsItem {
	if len(watchlist) == 0 {
		return items
	}
	out := make([]types.NewsItem, 0, len(items))
	for _, it := range items {
		if relevance.IsRelevant(it, watchlist, industryMap) {
			out = append(out, it)
		}
	}
	return out
}

// classify wraps HTTP status failures in ErrProviderResponse.
func classify(provider string, err error) error {
	var se *api.StatusError
	if errors.As(err, &se) {
		return fmt.Errorf("%s: %w: %v", provider, ErrProviderResponse, err)
	}
	return fmt.Errorf("%s: %w", provider, err)
}
