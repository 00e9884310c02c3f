package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/query" {
			t.Errorf("Expected path /query, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("function") != "NEWS_SENTIMENT" {
			t.Errorf("Expected function query, got %s", r.URL.RawQuery)
		}
		if r.Header.Get("X-Test") != "1" {
			t.Error("Expected default header to be sent")
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Error("Expected JSON accept header")
		}
		if r.Header.Get("X-Api-Key") != "k" {
			t.Error("Expected per-request header")
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL+"/"), WithHeader("X-Test", "1"), WithTimeout(2*time.Second))

	var out struct {
		Status string `json:"status"`
	}
	q := url.Values{}
	q.Set("function", "NEWS_SENTIMENT")
	if err := c.GetJSON(context.Background(), "/query", q, &out, map[string]string{"X-Api-Key": "k"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out.Status != "ok" {
		t.Errorf("Expected status ok, got %s", out.Status)
	}
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.GET(context.Background(), "/x", nil)

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("Expected StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusTooManyRequests || se.Path != "/x" {
		t.Errorf("Unexpected error %+v", se)
	}
}

func TestAbsolutePathIgnoresBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<rss/>"))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL("http://unused.invalid"))
	resp, err := c.GET(context.Background(), srv.URL+"/feed.xml", nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(resp.Body) != "<rss/>" {
		t.Errorf("Unexpected body %q", resp.Body)
	}
}

func TestRequestURL(t *testing.T) {
	tests := []struct {
		name string
		req  *Request
		base string
		want string
	}{
		{"skips empty query", NewRequest(http.MethodGet, "/v2/everything").WithQuery("q", "tesla").WithQuery("domains", ""), "https://newsapi.org", "https://newsapi.org/v2/everything?q=tesla"},
		{"no query", NewRequest(http.MethodGet, "/query"), "https://www.alphavantage.co", "https://www.alphavantage.co/query"},
		{"absolute with existing query", NewRequest(http.MethodGet, "https://feeds.example.com/rss?s=AAPL").WithQuery("region", "US"), "https://ignored", "https://feeds.example.com/rss?s=AAPL&region=US"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.URL(tt.base); got != tt.want {
				t.Errorf("URL() = %s, want %s", got, tt.want)
			}
		})
	}
}
