package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"watchlist-news/internal/api"
	"watchlist-news/internal/industry"
	"watchlist-news/internal/interfaces"
	"watchlist-news/internal/logger"
	"watchlist-news/internal/newstime"
	"watchlist-news/internal/types"
)

const (
	newsAPIRelevance = 0.8
	newsAPISentiment = 0.5
	removedTitle     = "[Removed]"
)

// NewsAPI runs a single keyword-OR query against /v2/everything and tags
// articles by text matching. Auth is the X-Api-Key header.
type NewsAPI struct {
	client   *api.Client
	domains  []string
	pageSize int
	maxTerms int
}

var _ interfaces.Provider = (*NewsAPI)(nil)

func NewNewsAPI(client *api.Client, domains []string, pageSize, maxTerms int) *NewsAPI {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &NewsAPI{client: client, domains: domains, pageSize: pageSize, maxTerms: maxTerms}
}

func (p *NewsAPI) Name() string { return types.ProviderNewsAPI }

func (p *NewsAPI) Fetch(ctx context.Context, apiKey string, watchlist []types.Ticker, industryMap types.WatchlistIndustryMap) ([]types.NewsItem, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %w", p.Name(), ErrMissingKey)
	}

	terms := p.searchTerms(watchlist, industryMap)

	q := url.Values{}
	q.Set("q", buildQuery(terms))
	q.Set("domains", strings.Join(p.domains, ","))
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", strconv.Itoa(p.pageSize))

	var raw newsAPIResponse
	err := p.client.GetJSON(ctx, "/v2/everything", q, &raw, map[string]string{"X-Api-Key": apiKey})
	if err != nil {
		return nil, classify(p.Name(), err)
	}
	if raw.Code != "" || raw.Status != "ok" {
		msg := raw.Message
		if msg == "" {
			msg = "status " + raw.Status
		}
		return nil, fmt.Errorf("%s: %w: %s", p.Name(), ErrProviderResponse, msg)
	}

	candidates := Candidates(watchlist, industryMap)

	items := make([]types.NewsItem, 0, len(raw.Articles))
	for i, a := range raw.Articles {
		if a.Title == "" || a.Title == removedTitle {
			continue
		}
		description := stripHTML(a.Description)
		sentiments := TickersFromText(a.Title+" "+description, candidates, newsAPIRelevance, newsAPISentiment)
		publishedAt := newstime.ParseOrZero(a.PublishedAt)

		source := a.Source.Name
		if source == "" {
			source = p.Name()
		}

		items = append(items, types.NewsItem{
			ID:               fmt.Sprintf("newsapi-%s-%d", a.PublishedAt, i),
			Title:            a.Title,
			Summary:          summaryOrTitle(description, a.Title),
			URL:              a.URL,
			TimePublished:    newstime.Compact(publishedAt),
			PublishedAt:      publishedAt,
			TickerSentiments: sentiments,
			SourceName:       source,
			ImageURL:         a.URLToImage,
			ProviderName:     p.Name(),
			IndustryRelated:  relatedByCompetitors(sentiments, watchlist, industryMap),
		})
	}

	filtered := filterRelevant(items, watchlist, industryMap)
	logger.Debug(ctx, "NewsAPI feed normalized", "terms", len(terms), "raw", len(items), "relevant", len(filtered))
	return filtered, nil
}

// searchTerms is the watchlist plus up to maxTerms industry terms, or the
// default company names when there is no watchlist.
func (p *NewsAPI) searchTerms(watchlist []types.Ticker, industryMap types.WatchlistIndustryMap) []string {
	if len(watchlist) == 0 {
		return append([]string(nil), DefaultSearchTerms...)
	}

	extra := industry.SearchTerms(industryMap, watchlist)
	if p.maxTerms > 0 && len(extra) > p.maxTerms {
		extra = extra[:p.maxTerms]
	}

	terms := []string{}
	seen := map[string]bool{}
	for _, t := range append(append([]string{}, watchlist...), extra...) {
		k := strings.ToLower(t)
		if t == "" || seen[k] {
			continue
		}
		seen[k] = true
		terms = append(terms, t)
	}
	return terms
}

// buildQuery joins terms with OR, quoting multi-word phrases.
func buildQuery(terms []string) string {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		if strings.ContainsAny(t, " \t") {
			t = `"` + t + `"`
		}
		parts = append(parts, t)
	}
	return strings.Join(parts, " OR ")
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}
