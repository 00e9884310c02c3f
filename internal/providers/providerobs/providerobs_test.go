package providerobs

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"

	"watchlist-news/internal/trace"
	"watchlist-news/internal/types"
)

var errUpstream = errors.New("upstream 503")

type stubProvider struct {
	items []types.NewsItem
	err   error
	calls int
}

func (s *stubProvider) Name() string { return "Stub" }

func (s *stubProvider) Fetch(_ context.Context, _ string, _ []types.Ticker, _ types.WatchlistIndustryMap) ([]types.NewsItem, error) {
	s.calls++
	return s.items, s.err
}

func TestWrapPassesThrough(t *testing.T) {
	inner := &stubProvider{items: []types.NewsItem{{Title: "NVDA beats"}}}
	p := Wrap(inner)

	items, err := p.Fetch(context.Background(), "key", []types.Ticker{"NVDA"}, nil)

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(items))
	assert.Equal(t, "Stub", p.Name())
	assert.Equal(t, 1, inner.calls)
}

func TestWrapReturnsErrorAndNoItems(t *testing.T) {
	inner := &stubProvider{items: []types.NewsItem{{Title: "partial"}}, err: errUpstream}

	items, err := Wrap(inner).Fetch(context.Background(), "", nil, nil)

	assert.Equal(t, true, errors.Is(err, errUpstream))
	assert.Equal(t, 0, len(items))
}

func TestWrapRecordsSpan(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := trace.InitWithOptions(trace.Options{Enabled: true, SampleRatio: 1, Writer: buf}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = trace.InitWithOptions(trace.Options{Enabled: false}) })

	_, _ = Wrap(&stubProvider{err: errUpstream}).Fetch(context.Background(), "", nil, nil)

	if err := trace.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	assert.Equal(t, true, strings.Contains(out, `"Name":"provider.Stub.Fetch"`))
	assert.Equal(t, true, strings.Contains(out, "upstream 503"))
}
