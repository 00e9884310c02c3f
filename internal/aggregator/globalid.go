package aggregator

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"watchlist-news/internal/newstime"
	"watchlist-news/internal/types"
)

const titleIDLen = 80

var (
	nonWord    = regexp.MustCompile(`[^\w]`)
	nonWordSep = regexp.MustCompile(`[^\w\s]`)
	spaces     = regexp.MustCompile(`\s+`)
)

// GlobalID is the cross-provider identity of an item, used for dedup and
// read tracking. It is "url-<host>-<path>" with the path's non-word
// characters removed, ignoring query and fragment. Items without a usable
// URL fall back to "title-<normalized title>-<YYYYMMDD>".
func GlobalID(item types.NewsItem) string {
	if id, ok := urlID(item.URL); ok {
		return id
	}
	return titleID(item.Title, item.PublishedAt)
}

func urlID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	return "url-" + host + "-" + nonWord.ReplaceAllString(u.Path, ""), true
}

func titleID(title string, publishedAt time.Time) string {
	t := strings.ToLower(title)
	t = nonWordSep.ReplaceAllString(t, " ")
	t = strings.TrimSpace(spaces.ReplaceAllString(t, " "))
	if len(t) > titleIDLen {
		t = strings.TrimSpace(t[:titleIDLen])
	}
	return "title-" + strings.ReplaceAll(t, " ", "-") + "-" + newstime.DayBucket(publishedAt)
}
