package industry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"

	"watchlist-news/internal/interfaces"
	"watchlist-news/internal/types"
)

// FinnhubProfiler looks up company profiles via Finnhub's profile2 endpoint.
type FinnhubProfiler struct {
	client  *finnhub.DefaultApiService
	timeout time.Duration
}

var _ interfaces.CompanyProfiler = (*FinnhubProfiler)(nil)

// NewFinnhubProfiler returns nil when apiKey is empty so the resolver skips
// the external lookup entirely. baseURL overrides the API host (tests).
func NewFinnhubProfiler(apiKey, baseURL string, timeout time.Duration) *FinnhubProfiler {
	if apiKey == "" {
		return nil
	}
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	if baseURL != "" {
		cfg.Servers = finnhub.ServerConfigurations{{URL: baseURL}}
	}
	return &FinnhubProfiler{
		client:  finnhub.NewAPIClient(cfg).DefaultApi,
		timeout: timeout,
	}
}

func (p *FinnhubProfiler) Profile(ctx context.Context, ticker types.Ticker) (*interfaces.CompanyProfile, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	res, _, err := p.client.CompanyProfile2(ctx).Symbol(ticker).Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub profile2 %s: %w", ticker, err)
	}

	profile := &interfaces.CompanyProfile{}
	if res.Name != nil {
		profile.Name = *res.Name
	}
	if res.FinnhubIndustry != nil {
		profile.Industry = *res.FinnhubIndustry
	}
	if res.Weburl != nil {
		profile.WebURL = *res.Weburl
	}

	if profile.Name == "" && profile.Industry == "" && profile.WebURL == "" {
		return nil, errors.New("finnhub returned an empty profile")
	}
	return profile, nil
}

// NewFinnhubResolver builds a Resolver whose fallback path uses Finnhub when
// apiKey is set.
func NewFinnhubResolver(apiKey, baseURL string, timeout time.Duration) *Resolver {
	if p := NewFinnhubProfiler(apiKey, baseURL, timeout); p != nil {
		return NewResolver(p)
	}
	return NewResolver(nil)
}
