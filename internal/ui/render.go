// Package ui renders feed snapshots for the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"watchlist-news/internal/feedstate"
	"watchlist-news/internal/types"
)

const (
	veryRecent      = 30 * time.Minute
	maxCardTickers  = 3
	summaryMaxRunes = 160
)

// TimeAgo formats t relative to now: "Just now", "12m ago", "3h ago", or
// a short date past one day.
func TimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return "Recent"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return t.Local().Format("Jan 2")
}

// IsVeryRecent reports whether t is within the last 30 minutes.
func IsVeryRecent(t, now time.Time) bool {
	return !t.IsZero() && now.Sub(t) < veryRecent
}

// Card renders one entry.
func Card(e feedstate.Entry, now time.Time) string {
	var title strings.Builder
	if IsVeryRecent(e.PublishedAt, now) {
		title.WriteString(RecentStyle.Render("⚡ "))
	}
	if e.IsNew {
		title.WriteString(NewStyle.Render("NEW "))
	}
	title.WriteString(TitleStyle.Render(e.Title))

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		title.String(),
		"  ",
		TimeStyle.Render(TimeAgo(e.PublishedAt, now)),
	)

	lines := []string{header}
	if s := truncate(e.Summary, summaryMaxRunes); s != "" {
		lines = append(lines, SummaryStyle.Render(s))
	}
	lines = append(lines, badges(e.NewsItem))
	if e.URL != "" {
		lines = append(lines, LinkStyle.Render(e.URL))
	}

	style := CardStyle
	if e.IsNew {
		style = NewCardStyle
	}
	return style.Render(strings.Join(lines, "\n"))
}

// badges shows up to three tickers plus the industry marker, or the source
// name when the item has no tickers.
func badges(it types.NewsItem) string {
	var parts []string
	for i, ts := range it.TickerSentiments {
		if i == maxCardTickers {
			break
		}
		parts = append(parts, TickerStyle.Render("$"+ts.Ticker))
	}
	if len(parts) > 0 {
		if it.IndustryRelated {
			parts = append(parts, IndustryStyle.Render("Industry"))
		}
	} else if it.SourceName != "" {
		parts = append(parts, SourceStyle.Render(it.SourceName))
	}
	parts = append(parts, SummaryStyle.Render("via "+it.ProviderName))
	return strings.Join(parts, " ")
}

// Sources renders the per-provider outcome line.
func Sources(statuses []types.SourceStatus) string {
	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		if s.Succeeded {
			parts = append(parts, OKStyle.Render(fmt.Sprintf("✓ %s (%d)", s.ProviderName, s.Count)))
		} else {
			parts = append(parts, ErrorStyle.Render(fmt.Sprintf("✗ %s", s.ProviderName)))
		}
	}
	return strings.Join(parts, "  ")
}

// Feed renders a header, the source line and every entry.
func Feed(snap feedstate.Snapshot, entries []feedstate.Entry, tickers []types.Ticker, filter types.Ticker) string {
	head := fmt.Sprintf("Watchlist news · %d items", len(entries))
	if snap.NewCount > 0 {
		head += fmt.Sprintf(" · %d new", snap.NewCount)
	}
	if filter != "" {
		head += " · $" + filter
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(head))
	b.WriteString("\n")
	b.WriteString(Sources(snap.Sources))
	if snap.Degraded {
		b.WriteString("  " + WarnStyle.Render("partial results"))
	}
	b.WriteString("\n")
	if len(tickers) > 0 {
		rendered := make([]string, 0, len(tickers))
		for _, t := range tickers {
			rendered = append(rendered, TickerStyle.Render("$"+t))
		}
		b.WriteString(SummaryStyle.Render("Tickers: ") + strings.Join(rendered, " "))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(entries) == 0 {
		b.WriteString(SummaryStyle.Render("No unread news in the last 24 hours."))
		b.WriteString("\n")
		return b.String()
	}

	for _, e := range entries {
		b.WriteString(Card(e, snap.UpdatedAt))
		b.WriteString("\n\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
