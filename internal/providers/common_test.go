package providers

import (
	"testing"

	"github.com/go-playground/assert/v2"

	"watchlist-news/internal/types"
)

var evMap = types.WatchlistIndustryMap{
	"TSLA": {
		Industry:    "Electric Vehicles & Clean Energy",
		Competitors: []types.Ticker{"RIVN", "LCID", "NIO", "XPEV"},
		Keywords:    []string{"electric vehicle", "EV", "battery", "charging"},
	},
	"AAPL": {
		Industry:    "Consumer Electronics",
		Competitors: []types.Ticker{"MSFT", "GOOGL", "AMZN", "META"},
		Keywords:    []string{"iPhone", "smartphone"},
	},
}

func TestTargetsAddsThreeCompetitorsPerTicker(t *testing.T) {
	got := Targets([]types.Ticker{"TSLA", "AAPL"}, evMap, 20)
	assert.Equal(t, []types.Ticker{"TSLA", "AAPL", "RIVN", "LCID", "NIO", "MSFT", "GOOGL", "AMZN"}, got)
}

func TestTargetsCapped(t *testing.T) {
	got := Targets([]types.Ticker{"TSLA", "AAPL"}, evMap, 5)
	assert.Equal(t, []types.Ticker{"TSLA", "AAPL", "RIVN", "LCID", "NIO"}, got)
}

func TestTargetsDedupes(t *testing.T) {
	m := types.WatchlistIndustryMap{
		"MSFT": {Competitors: []types.Ticker{"AAPL", "GOOGL"}},
		"AAPL": {Competitors: []types.Ticker{"MSFT", "GOOGL"}},
	}
	got := Targets([]types.Ticker{"MSFT", "AAPL"}, m, 0)
	assert.Equal(t, []types.Ticker{"MSFT", "AAPL", "GOOGL"}, got)
}

func TestTargetsDefaultWithoutWatchlist(t *testing.T) {
	got := Targets(nil, nil, 20)
	assert.Equal(t, []types.Ticker{"TSLA", "AAPL", "MSFT"}, got)
}

func TestTickersFromTextUsesAliases(t *testing.T) {
	got := TickersFromText("Elon Musk says deliveries rose; Nvidia rallies", []types.Ticker{"TSLA", "NVDA", "AMZN"}, 0.8, 0.5)
	assert.Equal(t, 2, len(got))
	assert.Equal(t, "TSLA", got[0].Ticker)
	assert.Equal(t, "NVDA", got[1].Ticker)
	assert.Equal(t, 0.8, got[0].RelevanceScore)
}

func TestSummaryOrTitle(t *testing.T) {
	assert.Equal(t, "body", summaryOrTitle("  body ", "title"))
	assert.Equal(t, "Short title...", summaryOrTitle("", "Short title"))

	long := make([]rune, 250)
	for i := range long {
		long[i] = 'x'
	}
	got := summaryOrTitle("", string(long))
	assert.Equal(t, 203, len(got))
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "Shares of Tesla rose 5%", stripHTML("<p>Shares of <b>Tesla</b>\n rose 5%</p>"))
	assert.Equal(t, "plain text", stripHTML(" plain text "))
	assert.Equal(t, "AT&T earnings", stripHTML("AT&amp;T earnings"))
}

func TestRelatedByCompetitors(t *testing.T) {
	related := relatedByCompetitors([]types.TickerSentiment{{Ticker: "RIVN"}}, []types.Ticker{"TSLA"}, evMap)
	assert.Equal(t, true, related)

	notRelated := relatedByCompetitors([]types.TickerSentiment{{Ticker: "TSLA"}}, []types.Ticker{"TSLA"}, evMap)
	assert.Equal(t, false, notRelated)

	noWatchlist := relatedByCompetitors([]types.TickerSentiment{{Ticker: "RIVN"}}, nil, evMap)
	assert.Equal(t, false, noWatchlist)
}
