package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.FeedCap != 80 {
		t.Errorf("FeedCap = %d, want 80", cfg.FeedCap)
	}
	if cfg.Providers.Finnhub.MaxSymbols != 5 {
		t.Errorf("Finnhub.MaxSymbols = %d, want 5", cfg.Providers.Finnhub.MaxSymbols)
	}
	if !cfg.Providers.AlphaVantage.Enabled || !cfg.Providers.NewsAPI.Enabled || !cfg.Providers.Finnhub.Enabled {
		t.Error("expected the three news providers enabled by default")
	}
	if cfg.Providers.RSS.Enabled {
		t.Error("expected RSS disabled by default")
	}
	if cfg.FeedState.Store != "file" {
		t.Errorf("FeedState.Store = %s, want file", cfg.FeedState.Store)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
poll_seconds: 30
watchlist: [tsla, AAPL, tsla]
providers:
  newsapi:
    enabled: false
  finnhub:
    max_symbols: 3
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.PollSeconds != 30 {
		t.Errorf("PollSeconds = %d", cfg.PollSeconds)
	}
	if cfg.Providers.NewsAPI.Enabled {
		t.Error("expected NewsAPI disabled")
	}
	if !cfg.Providers.AlphaVantage.Enabled {
		t.Error("expected AlphaVantage to stay enabled when omitted")
	}
	if cfg.Providers.Finnhub.MaxSymbols != 3 {
		t.Errorf("MaxSymbols = %d", cfg.Providers.Finnhub.MaxSymbols)
	}
	if cfg.Providers.NewsAPI.PageSize != 50 {
		t.Errorf("PageSize = %d, want default 50", cfg.Providers.NewsAPI.PageSize)
	}

	got := cfg.WatchlistTickers()
	if strings.Join(got, ",") != "TSLA,AAPL" {
		t.Errorf("WatchlistTickers() = %v", got)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"negative cap", "feed_cap: -1\n", "must not be negative"},
		{"unknown store", "feedstate:\n  store: etcd\n", "feedstate.store"},
		{"redis without url", "feedstate:\n  store: redis\n", "redis_url"},
		{"long ticker", "watchlist: [TOOLONG]\n", "invalid watchlist ticker"},
	}

	t.Setenv("FEEDSTATE_REDIS_URL", "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadConfig() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfigRedisURLFromEnv(t *testing.T) {
	t.Setenv("FEEDSTATE_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := LoadConfig(writeConfig(t, "feedstate:\n  store: redis\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.FeedState.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("RedisURL = %s", cfg.FeedState.RedisURL)
	}
}

func TestAPIKeysFromEnv(t *testing.T) {
	t.Setenv("ALPHA_VANTAGE_API_KEY", " av ")
	t.Setenv("NEWSAPI_KEY", "na")
	t.Setenv("FINNHUB_API_KEY", "")

	keys := APIKeysFromEnv()
	if keys.AlphaVantage != "av" || keys.NewsAPI != "na" || keys.Finnhub != "" {
		t.Errorf("APIKeysFromEnv() = %+v", keys)
	}
}

func TestDurations(t *testing.T) {
	cfg := Default()
	if cfg.HTTPTimeout().Seconds() != 10 {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout())
	}
	if cfg.CacheTTL().Seconds() != 30 {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL())
	}
	if cfg.Window().Hours() != 24 {
		t.Errorf("Window = %v", cfg.Window())
	}
}
