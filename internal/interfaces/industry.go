package interfaces

import (
	"context"

	"watchlist-news/internal/types"
)

// Resolver maps tickers to industry profiles. It never fails: unknown
// tickers resolve to a generic profile.
type Resolver interface {
	Resolve(ctx context.Context, ticker types.Ticker) types.IndustryProfile
	BuildMap(ctx context.Context, tickers []types.Ticker) types.WatchlistIndustryMap
}

// CompanyProfile is the subset of an external company profile used for
// industry detection.
type CompanyProfile struct {
	Name     string
	Industry string
	WebURL   string
}

// CompanyProfiler looks up a company profile by ticker.
type CompanyProfiler interface {
	Profile(ctx context.Context, ticker types.Ticker) (*CompanyProfile, error)
}
