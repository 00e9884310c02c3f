// Package cyclelog keeps a daily JSONL journal of aggregation cycles and
// summarizes it per provider.
package cyclelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"watchlist-news/internal/types"
)

// Entry is one journal line.
type Entry struct {
	Time            string               `json:"time"`
	CycleID         string               `json:"cycleId"`
	Watchlist       []types.Ticker       `json:"watchlist"`
	Sources         []types.SourceStatus `json:"sources"`
	Total           int                  `json:"total"`
	Items           int                  `json:"items"`
	IndustryRelated int                  `json:"industryRelated"`
	Degraded        bool                 `json:"degraded"`
}

// Journal appends cycle entries to <dir>/<YYYY-MM-DD>.txt.
type Journal struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

func New(dir string) *Journal {
	if dir == "" {
		dir = "logs/cycles"
	}
	return &Journal{dir: dir, now: time.Now}
}

func (j *Journal) Dir() string { return j.dir }

func (j *Journal) dailyFilepath(t time.Time) string {
	return filepath.Join(j.dir, t.UTC().Format("2006-01-02")+".txt")
}

// Append records one aggregated feed.
func (j *Journal) Append(feed types.AggregatedFeed) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	e := Entry{
		Time:            now.UTC().Format(time.RFC3339),
		CycleID:         feed.CycleID,
		Watchlist:       feed.Watchlist,
		Sources:         feed.PerSourceStatus,
		Total:           feed.Total,
		Items:           len(feed.Items),
		IndustryRelated: feed.IndustryRelated,
		Degraded:        feed.Degraded(),
	}

	p := j.dailyFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips journal files not modified within retentionDays and
// removes the originals. Zero or negative retention disables it.
func (j *Journal) CompressOlder(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := j.now().AddDate(0, 0, -retentionDays)
	compressed := 0

	err := filepath.WalkDir(j.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		if _, err := os.Stat(gz); err == nil {
			return os.Remove(p)
		}
		if err := gzipFile(p, gz); err != nil {
			return fmt.Errorf("compress %s: %w", p, err)
		}
		compressed++
		return os.Remove(p)
	})
	return compressed, err
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		gw.Close()
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := gw.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
