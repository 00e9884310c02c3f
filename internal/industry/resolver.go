package industry

import (
	"context"
	"fmt"
	"strings"

	"watchlist-news/internal/interfaces"
	"watchlist-news/internal/logger"
	"watchlist-news/internal/relevance"
	"watchlist-news/internal/trace"
	"watchlist-news/internal/types"
)

const maxSynthesizedCompetitors = 5

// Fallback returns the generic profile used when a ticker cannot be
// classified.
func Fallback() types.IndustryProfile {
	return types.IndustryProfile{
		Industry:    "Technology",
		Competitors: []types.Ticker{"AAPL", "MSFT", "GOOGL"},
		Keywords:    []string{"technology", "innovation", "digital"},
	}
}

// Resolver resolves tickers against the static table, then an optional
// external company profile lookup, then the generic fallback.
type Resolver struct {
	profiler interfaces.CompanyProfiler
}

var _ interfaces.Resolver = (*Resolver)(nil)

// NewResolver creates a resolver. profiler may be nil, in which case
// unknown tickers go straight to the fallback.
func NewResolver(profiler interfaces.CompanyProfiler) *Resolver {
	return &Resolver{profiler: profiler}
}

// Resolve never fails; any lookup error degrades to Fallback.
func (r *Resolver) Resolve(ctx context.Context, ticker types.Ticker) types.IndustryProfile {
	ticker = types.NormalizeTicker(ticker)

	if p, ok := lookupStatic(ticker); ok {
		return p
	}

	if r.profiler == nil {
		return Fallback()
	}

	ctx, span := trace.StartSpan(ctx, "industry.Resolve")
	defer span.End()

	profile, err := r.lookup(ctx, ticker)
	if err != nil {
		logger.Warn(ctx, "Company profile lookup failed, using fallback profile", "ticker", ticker, "error", err)
		return Fallback()
	}

	if p, ok := Classify(profile.Name + " " + profile.Industry + " " + profile.WebURL); ok {
		logger.Debug(ctx, "Classified ticker from company profile", "ticker", ticker, "industry", p.Industry)
		return p
	}
	return Fallback()
}

func (r *Resolver) lookup(ctx context.Context, ticker types.Ticker) (profile *interfaces.CompanyProfile, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("profile lookup panicked: %v", rec)
		}
	}()

	profile, err = r.profiler.Profile(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("empty profile for %s", ticker)
	}
	return profile, nil
}

// BuildMap resolves each ticker independently.
func (r *Resolver) BuildMap(ctx context.Context, tickers []types.Ticker) types.WatchlistIndustryMap {
	m := make(types.WatchlistIndustryMap, len(tickers))
	for _, t := range tickers {
		t = types.NormalizeTicker(t)
		if t == "" {
			continue
		}
		if _, done := m[t]; done {
			continue
		}
		m[t] = r.Resolve(ctx, t)
	}
	return m
}

// Classify matches a free-text company description against the category
// rules. Short keywords such as AI or EV only match as whole words. On a
// match, competitors are synthesized from static tickers whose industry
// label contains the category label.
func Classify(description string) (types.IndustryProfile, bool) {
	desc := strings.ToLower(description)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if !relevance.ContainsTerm(desc, kw) {
				continue
			}
			return types.IndustryProfile{
				Industry:    rule.label,
				Competitors: similarTickers(rule.label, maxSynthesizedCompetitors),
				Keywords:    append([]string(nil), rule.keywords...),
			}, true
		}
	}
	return types.IndustryProfile{}, false
}

func similarTickers(label string, limit int) []types.Ticker {
	label = strings.ToLower(label)
	out := []types.Ticker{}
	for _, e := range staticEntries {
		if len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(e.profile.Industry), label) {
			out = append(out, e.ticker)
		}
	}
	return out
}

// SearchTerms returns competitors and keywords across the map, deduplicated,
// in watchlist order.
func SearchTerms(m types.WatchlistIndustryMap, watchlist []types.Ticker) []string {
	terms := []string{}
	seen := map[string]bool{}
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		terms = append(terms, s)
	}
	for _, t := range m.Tickers(watchlist) {
		p := m[t]
		for _, c := range p.Competitors {
			add(c)
		}
		for _, k := range p.Keywords {
			add(k)
		}
	}
	return terms
}

func clone(p types.IndustryProfile) types.IndustryProfile {
	seen := make(map[string]bool, len(p.Competitors))
	comps := make([]types.Ticker, 0, len(p.Competitors))
	for _, c := range p.Competitors {
		if !seen[c] {
			seen[c] = true
			comps = append(comps, c)
		}
	}
	return types.IndustryProfile{
		Industry:    p.Industry,
		Competitors: comps,
		Keywords:    append([]string(nil), p.Keywords...),
	}
}
