package firecrawl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithBaseURL(srv.URL), WithRetry(3, time.Millisecond))
}

func TestSearch_ParsesResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing bearer auth, got %q", got)
		}

		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Tbs != "qdr:w" {
			t.Errorf("expected weekly recency filter, got %q", req.Tbs)
		}

		fmt.Fprint(w, `{"success":true,"data":[
			{"title":"Apple hits record","url":"https://example.com/a","description":"AAPL rallies"},
			{"title":"No URL dropped","url":"","description":"ignored"}
		]}`)
	})

	items, err := c.Search(context.Background(), "AAPL Apple Inc stock news", "week", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item (url-less dropped), got %d", len(items))
	}
	if items[0].Title != "Apple hits record" || items[0].Snippet != "AAPL rallies" {
		t.Errorf("unexpected item: %+v", items[0])
	}
}

func TestSearch_RetriesOn429(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"success":true,"data":[{"title":"t","url":"https://example.com"}]}`)
	})

	items, err := c.Search(context.Background(), "q", "week", 2)
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
	if len(items) != 1 {
		t.Errorf("expected 1 item, got %d", len(items))
	}
}

func TestSearch_GivesUpAfterRetryCeiling(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	if _, err := c.Search(context.Background(), "q", "week", 2); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls.Load() != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", calls.Load())
	}
}

func TestSearch_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	if _, err := c.Search(context.Background(), "q", "week", 2); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("400 must not be retried, got %d attempts", calls.Load())
	}
}

func TestScrape_MainContentOnly(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/scrape" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req scrapeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if !req.OnlyMainContent {
			t.Error("expected onlyMainContent to be set")
		}
		fmt.Fprint(w, `{"success":true,"data":{"markdown":"Article body text"}}`)
	})

	text, err := c.Scrape(context.Background(), "https://example.com/article")
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	if text != "Article body text" {
		t.Errorf("unexpected text %q", text)
	}
}

func TestScrape_EmptyContentErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":{"markdown":""}}`)
	})

	if _, err := c.Scrape(context.Background(), "https://example.com/empty"); err == nil {
		t.Fatal("expected error for empty scrape")
	}
}
