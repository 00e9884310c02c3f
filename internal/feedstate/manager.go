// Package feedstate turns successive aggregated feeds into what a reader
// sees: items inside the display window, minus those already read, with a
// flag on items that appeared since the previous cycle.
package feedstate

import (
	"context"
	"sort"
	"sync"
	"time"

	"watchlist-news/internal/aggregator"
	"watchlist-news/internal/logger"
	"watchlist-news/internal/types"
)

// DefaultWindow is how far back items stay visible.
const DefaultWindow = 24 * time.Hour

// Entry is a displayed item with its global identity.
type Entry struct {
	types.NewsItem
	GlobalID string `json:"globalId"`
	IsNew    bool   `json:"isNew"`
}

// Snapshot is the reader-facing state after one cycle.
type Snapshot struct {
	Entries   []Entry              `json:"entries"`
	NewCount  int                  `json:"newCount"`
	Sources   []types.SourceStatus `json:"sources"`
	Degraded  bool                 `json:"degraded"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// Manager keeps the displayed list and the read set across cycles. It is
// safe for concurrent use.
type Manager struct {
	store  ReadStore
	window time.Duration

	mu      sync.Mutex
	loaded  bool
	read    map[string]bool
	entries []Entry
	cycles  int
}

// NewManager creates a manager persisting read ids to store. A zero window
// uses DefaultWindow.
func NewManager(store ReadStore, window time.Duration) *Manager {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Manager{
		store:  store,
		window: window,
		read:   make(map[string]bool),
	}
}

// Load reads the persisted read set. Apply calls it on first use; calling it
// up front surfaces store errors early.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked(ctx)
}

func (m *Manager) loadLocked(ctx context.Context) error {
	if m.loaded {
		return nil
	}
	if m.store != nil {
		ids, err := m.store.Load(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			m.read[id] = true
		}
	}
	m.loaded = true
	return nil
}

// Apply merges a new feed. Items outside the window or already read are
// dropped. On the first cycle the unread items replace the list and nothing
// is new; afterwards unseen items are prepended and flagged IsNew.
func (m *Manager) Apply(ctx context.Context, feed types.AggregatedFeed, now time.Time) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.loadLocked(ctx); err != nil {
		logger.Warn(ctx, "Failed to load read items, continuing with empty set", "error", err)
		m.loaded = true
	}

	incoming := make([]Entry, 0, len(feed.Items))
	for _, it := range feed.Items {
		if !m.inWindow(it, now) {
			continue
		}
		id := aggregator.GlobalID(it)
		if m.read[id] {
			continue
		}
		incoming = append(incoming, Entry{NewsItem: it, GlobalID: id})
	}

	newCount := 0
	if m.cycles == 0 {
		m.entries = incoming
	} else {
		existing := make(map[string]bool, len(m.entries))
		kept := make([]Entry, 0, len(m.entries))
		for _, e := range m.entries {
			if !m.inWindow(e.NewsItem, now) || m.read[e.GlobalID] {
				continue
			}
			e.IsNew = false
			existing[e.GlobalID] = true
			kept = append(kept, e)
		}

		fresh := []Entry{}
		for _, e := range incoming {
			if existing[e.GlobalID] {
				continue
			}
			existing[e.GlobalID] = true
			e.IsNew = true
			fresh = append(fresh, e)
		}
		newCount = len(fresh)
		m.entries = append(fresh, kept...)
	}
	m.cycles++

	sortEntries(m.entries)

	logger.Debug(ctx, "Feed state applied",
		"incoming", len(feed.Items),
		"visible", len(m.entries),
		"new", newCount,
		"read", len(m.read),
	)

	return Snapshot{
		Entries:   append([]Entry(nil), m.entries...),
		NewCount:  newCount,
		Sources:   feed.PerSourceStatus,
		Degraded:  feed.Degraded(),
		UpdatedAt: now,
	}
}

// inWindow drops items older than the window. Items with no usable time
// cannot be shown as recent and are dropped too.
func (m *Manager) inWindow(it types.NewsItem, now time.Time) bool {
	if it.PublishedAt.IsZero() {
		return false
	}
	return !it.PublishedAt.Before(now.Add(-m.window))
}

// MarkRead records ids as read, persists them and hides them from the list.
func (m *Manager) MarkRead(ctx context.Context, ids ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	added := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || m.read[id] {
			continue
		}
		m.read[id] = true
		added = append(added, id)
	}
	if len(added) == 0 {
		return nil
	}

	kept := m.entries[:0]
	for _, e := range m.entries {
		if !m.read[e.GlobalID] {
			kept = append(kept, e)
		}
	}
	m.entries = kept

	if m.store == nil {
		return nil
	}
	return m.store.Add(ctx, added...)
}

// MarkAllRead marks every given entry read, typically the currently
// filtered view.
func (m *Manager) MarkAllRead(ctx context.Context, entries []Entry) error {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.GlobalID)
	}
	return m.MarkRead(ctx, ids...)
}

// IsRead reports whether id is in the read set.
func (m *Manager) IsRead(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read[id]
}

// ReadCount is the size of the read set.
func (m *Manager) ReadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.read)
}

// Entries returns the current list.
func (m *Manager) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}

// FilterTicker keeps entries tagged with ticker. An empty ticker keeps all.
func FilterTicker(entries []Entry, ticker types.Ticker) []Entry {
	if ticker == "" {
		return entries
	}
	ticker = types.NormalizeTicker(ticker)
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.HasTicker(ticker) {
			out = append(out, e)
		}
	}
	return out
}

// WatchlistTickers returns the watchlist tickers that appear in the entries'
// ticker tags, sorted.
func WatchlistTickers(entries []Entry, watchlist []types.Ticker) []types.Ticker {
	want := make(map[types.Ticker]bool, len(watchlist))
	for _, t := range watchlist {
		want[types.NormalizeTicker(t)] = true
	}
	found := map[types.Ticker]bool{}
	for _, e := range entries {
		for _, ts := range e.TickerSentiments {
			if want[ts.Ticker] {
				found[ts.Ticker] = true
			}
		}
	}
	out := make([]types.Ticker, 0, len(found))
	for t := range found {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// SortOrder selects the display order of entries.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// Sort returns a copy of entries ordered by publish time. Ties keep their
// current order.
func Sort(entries []Entry, order SortOrder) []Entry {
	out := append([]Entry(nil), entries...)
	if order == SortOldest {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].PublishedAt.Before(out[j].PublishedAt)
		})
		return out
	}
	sortEntries(out)
	return out
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PublishedAt.After(entries[j].PublishedAt)
	})
}
