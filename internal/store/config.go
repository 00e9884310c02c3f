package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"watchlist-news/internal/types"
)

type Config struct {
	PollSeconds int      `yaml:"poll_seconds"`
	FeedCap     int      `yaml:"feed_cap"`
	WindowHours int      `yaml:"window_hours"`
	Watchlist   []string `yaml:"watchlist"`
	HTTP        struct {
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		UserAgent      string `yaml:"user_agent"`
	} `yaml:"http"`
	Providers struct {
		AlphaVantage struct {
			Enabled    bool   `yaml:"enabled"`
			BaseURL    string `yaml:"base_url"`
			MaxTargets int    `yaml:"max_targets"`
			Limit      int    `yaml:"limit"`
		} `yaml:"alphavantage"`
		NewsAPI struct {
			Enabled  bool     `yaml:"enabled"`
			BaseURL  string   `yaml:"base_url"`
			Domains  []string `yaml:"domains"`
			PageSize int      `yaml:"page_size"`
			MaxTerms int      `yaml:"max_terms"`
		} `yaml:"newsapi"`
		Finnhub struct {
			Enabled           bool   `yaml:"enabled"`
			BaseURL           string `yaml:"base_url"`
			MaxTargets        int    `yaml:"max_targets"`
			MaxSymbols        int    `yaml:"max_symbols"`
			LookbackHours     int    `yaml:"lookback_hours"`
			PerSymbolItems    int    `yaml:"per_symbol_items"`
			RequestIntervalMs int    `yaml:"request_interval_ms"`
		} `yaml:"finnhub"`
		RSS struct {
			Enabled    bool     `yaml:"enabled"`
			Feeds      []string `yaml:"feeds"`
			MaxSymbols int      `yaml:"max_symbols"`
		} `yaml:"rss"`
	} `yaml:"providers"`
	Cache struct {
		TTLSeconds int `yaml:"ttl_seconds"`
	} `yaml:"cache"`
	Enrich struct {
		Enabled  bool `yaml:"enabled"`
		MaxItems int  `yaml:"max_items"`
	} `yaml:"enrich"`
	Journal struct {
		Enabled       bool   `yaml:"enabled"`
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"journal"`
	FeedState struct {
		Store    string `yaml:"store"`
		Path     string `yaml:"path"`
		RedisURL string `yaml:"redis_url"`
		Key      string `yaml:"key"`
	} `yaml:"feedstate"`
	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
}

// Default returns a config with every provider enabled and default limits.
func Default() *Config {
	c := &Config{}
	c.Providers.AlphaVantage.Enabled = true
	c.Providers.NewsAPI.Enabled = true
	c.Providers.Finnhub.Enabled = true
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.PollSeconds == 0 {
		c.PollSeconds = 90
	}
	if c.FeedCap == 0 {
		c.FeedCap = 80
	}
	if c.WindowHours == 0 {
		c.WindowHours = 24
	}
	if c.HTTP.TimeoutSeconds == 0 {
		c.HTTP.TimeoutSeconds = 10
	}

	av := &c.Providers.AlphaVantage
	if av.BaseURL == "" {
		av.BaseURL = "https://www.alphavantage.co"
	}
	if av.MaxTargets == 0 {
		av.MaxTargets = 20
	}
	if av.Limit == 0 {
		av.Limit = 100
	}

	na := &c.Providers.NewsAPI
	if na.BaseURL == "" {
		na.BaseURL = "https://newsapi.org"
	}
	if len(na.Domains) == 0 {
		na.Domains = []string{"reuters.com", "bloomberg.com", "cnbc.com", "marketwatch.com", "yahoo.com", "techcrunch.com", "seekingalpha.com"}
	}
	if na.PageSize == 0 {
		na.PageSize = 50
	}
	if na.MaxTerms == 0 {
		na.MaxTerms = 15
	}

	fh := &c.Providers.Finnhub
	if fh.MaxTargets == 0 {
		fh.MaxTargets = 15
	}
	if fh.MaxSymbols == 0 {
		fh.MaxSymbols = 5
	}
	if fh.LookbackHours == 0 {
		fh.LookbackHours = 12
	}
	if fh.PerSymbolItems == 0 {
		fh.PerSymbolItems = 10
	}
	if fh.RequestIntervalMs == 0 {
		fh.RequestIntervalMs = 250
	}

	if c.Providers.RSS.MaxSymbols == 0 {
		c.Providers.RSS.MaxSymbols = 5
	}

	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 30
	}
	if c.Enrich.MaxItems == 0 {
		c.Enrich.MaxItems = 10
	}

	if c.Journal.Dir == "" {
		c.Journal.Dir = "logs/cycles"
	}

	if c.FeedState.Store == "" {
		c.FeedState.Store = "file"
	}
	if c.FeedState.Path == "" {
		c.FeedState.Path = "data/read-items.json"
	}
	if c.FeedState.Key == "" {
		c.FeedState.Key = "watchlist-news:read-items"
	}

	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}
}

func (c *Config) Validate() error {
	if c.FeedCap < 0 || c.WindowHours < 0 || c.PollSeconds < 0 || c.Journal.RetentionDays < 0 {
		return errors.New("feed_cap, window_hours, poll_seconds and journal.retention_days must not be negative")
	}
	if c.Providers.Finnhub.MaxSymbols < 0 || c.Providers.AlphaVantage.MaxTargets < 0 || c.Providers.NewsAPI.MaxTerms < 0 {
		return errors.New("provider caps must not be negative")
	}
	if c.FeedState.Store != "file" && c.FeedState.Store != "redis" {
		return fmt.Errorf("feedstate.store must be 'file' or 'redis', got '%s'", c.FeedState.Store)
	}
	if c.FeedState.Store == "redis" && c.FeedState.RedisURL == "" {
		return errors.New("feedstate.redis_url is required when feedstate.store is 'redis'")
	}
	for _, t := range c.Watchlist {
		if n := types.NormalizeTicker(t); n == "" || len(n) > 5 {
			return fmt.Errorf("invalid watchlist ticker '%s'", t)
		}
	}
	return nil
}

// HTTPTimeout is the per-call timeout for outbound provider requests.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// CacheTTL is how long a caller-side aggregated feed stays fresh.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// Window is the display window applied by the feed state manager.
func (c *Config) Window() time.Duration {
	return time.Duration(c.WindowHours) * time.Hour
}

// WatchlistTickers returns the configured watchlist normalized and deduplicated.
func (c *Config) WatchlistTickers() []types.Ticker {
	out := make([]types.Ticker, 0, len(c.Watchlist))
	seen := map[string]bool{}
	for _, t := range c.Watchlist {
		n := types.NormalizeTicker(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// APIKeysFromEnv reads provider credentials from the environment.
func APIKeysFromEnv() types.APIKeys {
	return types.APIKeys{
		AlphaVantage: strings.TrimSpace(os.Getenv("ALPHA_VANTAGE_API_KEY")),
		NewsAPI:      strings.TrimSpace(os.Getenv("NEWSAPI_KEY")),
		Finnhub:      strings.TrimSpace(os.Getenv("FINNHUB_API_KEY")),
	}
}

// LoadConfig reads a YAML config file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c := Default()
			return c, c.Validate()
		}
		return nil, err
	}

	c := Config{}
	c.Providers.AlphaVantage.Enabled = true
	c.Providers.NewsAPI.Enabled = true
	c.Providers.Finnhub.Enabled = true
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()

	if v := os.Getenv("FEEDSTATE_REDIS_URL"); v != "" {
		c.FeedState.RedisURL = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
