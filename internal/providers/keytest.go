package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"watchlist-news/internal/api"
)

// KeyTester checks whether a credential is accepted by a provider, using
// one cheap request per provider.
type KeyTester struct {
	AlphaVantage *api.Client
	NewsAPI      *api.Client
	FinnhubURL   string
	HTTPClient   *http.Client
}

// KeyTestResult is the outcome of a key check.
type KeyTestResult struct {
	Provider string `json:"provider"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// ProviderIDs lists the identifiers accepted by Test.
var ProviderIDs = []string{"finnhub", "alphavantage", "newsapi"}

// Test validates key against provider ("finnhub", "alphavantage" or
// "newsapi"). Unknown providers return an error; a rejected key does not.
func (kt *KeyTester) Test(ctx context.Context, provider, key string) (KeyTestResult, error) {
	res := KeyTestResult{Provider: provider}
	if key == "" {
		return res, fmt.Errorf("%w for %s", ErrMissingKey, provider)
	}

	var err error
	switch strings.ToLower(provider) {
	case "finnhub":
		err = kt.testFinnhub(ctx, key)
	case "alphavantage":
		err = kt.testAlphaVantage(ctx, key)
	case "newsapi":
		err = kt.testNewsAPI(ctx, key)
	default:
		return res, fmt.Errorf("unknown provider '%s'", provider)
	}

	if err != nil {
		res.Error = err.Error()
		return res, nil
	}
	res.Success = true
	return res, nil
}

func (kt *KeyTester) testFinnhub(ctx context.Context, key string) error {
	client := newFinnhubClient(key, kt.FinnhubURL, kt.HTTPClient)
	quote, _, err := client.Quote(ctx).Symbol("AAPL").Execute()
	if err != nil {
		return err
	}
	if quote.C == nil {
		return fmt.Errorf("%w: invalid response format", ErrProviderResponse)
	}
	return nil
}

func (kt *KeyTester) testAlphaVantage(ctx context.Context, key string) error {
	q := url.Values{}
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", "AAPL")
	q.Set("apikey", key)

	var raw struct {
		GlobalQuote  map[string]string `json:"Global Quote"`
		ErrorMessage string            `json:"Error Message"`
		Note         string            `json:"Note"`
		Information  string            `json:"Information"`
	}
	if err := kt.AlphaVantage.GetJSON(ctx, "/query", q, &raw); err != nil {
		return classify("alphavantage", err)
	}
	switch {
	case raw.ErrorMessage != "":
		return fmt.Errorf("%w: %s", ErrProviderResponse, raw.ErrorMessage)
	case raw.Note != "":
		return fmt.Errorf("%w: %s", ErrProviderResponse, raw.Note)
	case raw.GlobalQuote == nil:
		if raw.Information != "" {
			return fmt.Errorf("%w: %s", ErrProviderResponse, raw.Information)
		}
		return fmt.Errorf("%w: invalid response format", ErrProviderResponse)
	}
	return nil
}

func (kt *KeyTester) testNewsAPI(ctx context.Context, key string) error {
	q := url.Values{}
	q.Set("q", "tesla")
	q.Set("pageSize", "1")

	var raw newsAPIResponse
	if err := kt.NewsAPI.GetJSON(ctx, "/v2/everything", q, &raw, map[string]string{"X-Api-Key": key}); err != nil {
		return classify("newsapi", err)
	}
	if raw.Status != "ok" || raw.Code != "" {
		msg := raw.Message
		if msg == "" {
			msg = raw.Code
		}
		if msg == "" {
			msg = "invalid response format"
		}
		return fmt.Errorf("%w: %s", ErrProviderResponse, msg)
	}
	return nil
}
