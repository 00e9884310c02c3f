package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"watchlist-news/internal/types"
)

func TestEnricherFillsMissingImages(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "text/html")
		switch r.URL.Path {
		case "/og":
			w.Write([]byte(`<html><head><meta property="og:image" content="/img/chip.png"></head></html>`))
		case "/twitter":
			w.Write([]byte(`<html><head><meta name="twitter:image" content="https://cdn.example.com/t.jpg"></head></html>`))
		default:
			w.Write([]byte(`<html><head><title>none</title></head></html>`))
		}
	}))
	defer srv.Close()

	e := NewEnricher(2*time.Second, 10, "")
	e.delay = 0

	items := []types.NewsItem{
		{Title: "a", URL: srv.URL + "/og"},
		{Title: "b", URL: srv.URL + "/twitter"},
		{Title: "c", URL: srv.URL + "/plain"},
		{Title: "d", URL: srv.URL + "/og", ImageURL: "https://kept.example.com/x.png"},
	}

	got := e.Enrich(context.Background(), items)

	if got[0].ImageURL != srv.URL+"/img/chip.png" {
		t.Errorf("Expected absolute og:image, got %q", got[0].ImageURL)
	}
	if got[1].ImageURL != "https://cdn.example.com/t.jpg" {
		t.Errorf("Expected twitter:image, got %q", got[1].ImageURL)
	}
	if got[2].ImageURL != "" {
		t.Errorf("Expected no image, got %q", got[2].ImageURL)
	}
	if got[3].ImageURL != "https://kept.example.com/x.png" {
		t.Errorf("Expected existing image to be kept, got %q", got[3].ImageURL)
	}
	if items[0].ImageURL != "" {
		t.Error("Expected input slice to be left untouched")
	}
	if n := atomic.LoadInt32(&hits); n != 3 {
		t.Errorf("Expected 3 page visits, got %d", n)
	}
}

func TestEnricherRespectsMaxItems(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<meta property="og:image" content="https://cdn.example.com/i.png">`))
	}))
	defer srv.Close()

	e := NewEnricher(2*time.Second, 1, "")
	e.delay = 0

	got := e.Enrich(context.Background(), []types.NewsItem{
		{Title: "a", URL: srv.URL + "/1"},
		{Title: "b", URL: srv.URL + "/2"},
	})

	if got[0].ImageURL == "" || got[1].ImageURL != "" {
		t.Errorf("Expected only the first item enriched, got %q and %q", got[0].ImageURL, got[1].ImageURL)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("Expected 1 page visit, got %d", n)
	}
}

func TestRedact(t *testing.T) {
	if got := redact("https://news.example.com/a?token=secret"); got != "https://news.example.com/a" {
		t.Errorf("Unexpected redacted URL %s", got)
	}
}
