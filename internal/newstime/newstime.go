// Package newstime normalizes the timestamp formats used by news providers.
// Every adapter and the aggregator's sort go through Parse so ordering is
// consistent regardless of source.
package newstime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CompactLayout is the "20060102T150405" form used by Alpha Vantage and
// emitted as NewsItem.TimePublished.
const CompactLayout = "20060102T150405"

var layouts = []string{
	CompactLayout,
	"20060102T1504",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

// Parse converts a provider timestamp into an absolute UTC time. Accepted
// inputs are compact digit strings, ISO-8601 variants, RFC1123 and unix
// seconds.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	if isDigits(s) && len(s) <= 11 {
		secs, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return time.Unix(secs, 0).UTC(), nil
		}
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ParseOrZero is Parse with the zero time on failure. Items with a zero time
// sort last.
func ParseOrZero(s string) time.Time {
	t, _ := Parse(s)
	return t
}

// FromUnix converts unix seconds.
func FromUnix(secs int64) time.Time {
	return time.Unix(secs, 0).UTC()
}

// Compact formats t in CompactLayout (UTC).
func Compact(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(CompactLayout)
}

// DayBucket returns the UTC calendar date of t as YYYYMMDD.
func DayBucket(t time.Time) string {
	if t.IsZero() {
		return "00000000"
	}
	return t.UTC().Format("20060102")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
