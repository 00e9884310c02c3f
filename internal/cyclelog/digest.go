package cyclelog

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

type providerRow struct {
	Name       string
	Cycles     int
	Succeeded  int
	Items      int
	DurationMs int64
}

func (j *Journal) digestPath(t time.Time) string {
	return filepath.Join(j.dir, "digest", t.UTC().Format("2006-01-02")+".csv")
}

// SummarizeDay writes a per-provider CSV for the day's journal and returns
// its path. A day with no journal yields an empty path and no error.
func (j *Journal) SummarizeDay(t time.Time) (string, error) {
	inPath := j.dailyFilepath(t)
	f, err := os.Open(inPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	defer f.Close()

	rows := map[string]*providerRow{}
	cycles, degraded := 0, 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		cycles++
		if e.Degraded {
			degraded++
		}
		for _, s := range e.Sources {
			row := rows[s.ProviderName]
			if row == nil {
				row = &providerRow{Name: s.ProviderName}
				rows[s.ProviderName] = row
			}
			row.Cycles++
			row.Items += s.Count
			row.DurationMs += s.DurationMs
			if s.Succeeded {
				row.Succeeded++
			}
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if cycles == 0 {
		return "", nil
	}

	names := make([]string, 0, len(rows))
	for k := range rows {
		names = append(names, k)
	}
	sort.Strings(names)

	outPath := j.digestPath(t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	headers := []string{"provider", "cycles", "succeeded", "failed", "success_rate", "items", "avg_duration_ms"}
	if err := w.Write(headers); err != nil {
		return "", err
	}
	for _, name := range names {
		r := rows[name]
		rate := float64(r.Succeeded) / float64(r.Cycles)
		rec := []string{
			r.Name,
			strconv.Itoa(r.Cycles),
			strconv.Itoa(r.Succeeded),
			strconv.Itoa(r.Cycles - r.Succeeded),
			fmt.Sprintf("%.2f", rate),
			strconv.Itoa(r.Items),
			strconv.FormatInt(r.DurationMs/int64(r.Cycles), 10),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	_ = w.Write([]string{"TOTAL", strconv.Itoa(cycles), strconv.Itoa(cycles - degraded), strconv.Itoa(degraded), "", "", ""})
	w.Flush()
	return outPath, w.Error()
}
