// Package relevance decides whether a news item belongs in a watchlist feed.
// It is a boundary filter, not a scorer.
package relevance

import (
	"strings"
	"unicode"

	"watchlist-news/internal/types"
)

// minKeywordMatches is the number of distinct profile keywords that make an
// item relevant on its own.
const minKeywordMatches = 2

// IsRelevant applies, in order: direct watchlist mention, competitor mention,
// keyword density. The first rule that matches wins.
func IsRelevant(item types.NewsItem, watchlist []types.Ticker, industryMap types.WatchlistIndustryMap) bool {
	text := strings.ToLower(item.Title + " " + item.Summary)

	for _, t := range watchlist {
		if MentionsTicker(text, t) || item.HasTicker(t) {
			return true
		}
	}

	for _, t := range watchlist {
		profile, ok := industryMap[t]
		if !ok {
			continue
		}
		for _, c := range profile.Competitors {
			if MentionsTicker(text, c) || item.HasTicker(c) {
				return true
			}
		}
	}

	for _, t := range watchlist {
		profile, ok := industryMap[t]
		if !ok {
			continue
		}
		if KeywordMatches(text, profile.Keywords) >= minKeywordMatches {
			return true
		}
	}

	return false
}

// MentionsTicker reports whether lowercased text mentions ticker. Tickers of
// three or more letters match as substrings; shorter ones (F, GM, MA) must
// stand alone as a word.
func MentionsTicker(lowerText string, ticker types.Ticker) bool {
	t := strings.ToLower(ticker)
	if t == "" {
		return false
	}
	if len(t) >= 3 {
		return strings.Contains(lowerText, t)
	}
	return containsWord(lowerText, t)
}

// shortTermLen is the longest term that must match as a whole word.
const shortTermLen = 3

// ContainsTerm reports whether lowercased text contains term. Terms of up to
// three letters ("ai", "ev", "gpu") must stand alone as a word so they do
// not match inside "retail" or "revenue".
func ContainsTerm(lowerText, term string) bool {
	term = strings.ToLower(term)
	if term == "" {
		return false
	}
	if len(term) <= shortTermLen {
		return containsWord(lowerText, term)
	}
	return strings.Contains(lowerText, term)
}

// KeywordMatches counts distinct keywords contained in lowercased text.
func KeywordMatches(lowerText string, keywords []string) int {
	seen := make(map[string]bool, len(keywords))
	n := 0
	for _, k := range keywords {
		k = strings.ToLower(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		if ContainsTerm(lowerText, k) {
			n++
		}
	}
	return n
}

func containsWord(text, word string) bool {
	for i := 0; ; {
		j := strings.Index(text[i:], word)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(word)
		if boundary(text, start-1) && boundary(text, end) {
			return true
		}
		i = start + 1
	}
}

func boundary(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return true
	}
	r := rune(text[i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
