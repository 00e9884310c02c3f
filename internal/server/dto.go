package server

import (
	"time"

	"watchlist-news/internal/aggregator"
	"watchlist-news/internal/types"
)

type ItemResponse struct {
	types.NewsItem
	GlobalID string `json:"globalId"`
}

type SourceResponse struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Count      int    `json:"count"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

type FeedResponse struct {
	CycleID         string           `json:"cycleId"`
	Feed            []ItemResponse   `json:"feed"`
	Sources         []SourceResponse `json:"sources"`
	Timestamp       string           `json:"timestamp"`
	Total           int              `json:"total"`
	IndustryRelated int              `json:"industryRelated"`
	Watchlist       []types.Ticker   `json:"watchlist"`
	IndustryMap     []types.Ticker   `json:"industryMap"`
	Degraded        bool             `json:"degraded"`
}

type IndustryResponse struct {
	Ticker      types.Ticker   `json:"ticker"`
	Industry    string         `json:"industry"`
	Competitors []types.Ticker `json:"competitors"`
	Keywords    []string       `json:"keywords"`
}

type TestKeyResponse struct {
	Success  bool    `json:"success"`
	Provider string  `json:"provider"`
	Error    *string `json:"error"`
}

type ReadItemsRequest struct {
	IDs []string `json:"ids"`
}

type ReadItemsResponse struct {
	IDs   []string `json:"ids"`
	Count int      `json:"count"`
}

// sourceStatus mirrors the settled-promise vocabulary clients already use.
func sourceStatus(succeeded bool) string {
	if succeeded {
		return "fulfilled"
	}
	return "rejected"
}

type MarketNewsResponse struct {
	Feed []ItemResponse `json:"feed"`
}

func toItemResponses(in []types.NewsItem) []ItemResponse {
	items := make([]ItemResponse, 0, len(in))
	for _, it := range in {
		items = append(items, ItemResponse{NewsItem: it, GlobalID: aggregator.GlobalID(it)})
	}
	return items
}

func toFeedResponse(feed types.AggregatedFeed) FeedResponse {
	items := toItemResponses(feed.Items)

	sources := make([]SourceResponse, 0, len(feed.PerSourceStatus))
	for _, s := range feed.PerSourceStatus {
		sources = append(sources, SourceResponse{
			Name:       s.ProviderName,
			Status:     sourceStatus(s.Succeeded),
			Count:      s.Count,
			Error:      s.Error,
			DurationMs: s.DurationMs,
		})
	}

	watchlist := feed.Watchlist
	if watchlist == nil {
		watchlist = []types.Ticker{}
	}
	industryMap := feed.IndustryMap
	if industryMap == nil {
		industryMap = []types.Ticker{}
	}

	return FeedResponse{
		CycleID:         feed.CycleID,
		Feed:            items,
		Sources:         sources,
		Timestamp:       feed.Timestamp.UTC().Format(time.RFC3339),
		Total:           feed.Total,
		IndustryRelated: feed.IndustryRelated,
		Watchlist:       watchlist,
		IndustryMap:     industryMap,
		Degraded:        feed.Degraded(),
	}
}
