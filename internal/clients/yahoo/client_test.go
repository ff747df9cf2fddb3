package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const chartBody = `{
  "chart": {
    "result": [{
      "meta": {
        "symbol": "AAPL",
        "regularMarketPrice": 160.5,
        "previousClose": 159.0
      },
      "timestamp": [1700000000, 1700086400, 1700172800, 1700259200],
      "indicators": {
        "quote": [{
          "close": [148.2, null, 151.7, 160.1]
        }]
      }
    }],
    "error": null
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL), WithRateLimit(1000))
}

func TestDailySeries_ParsesMetaAndCloses(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/AAPL" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("interval") != "1d" {
			t.Errorf("expected daily interval, got %q", r.URL.Query().Get("interval"))
		}
		fmt.Fprint(w, chartBody)
	})

	to := time.Now().UTC()
	series, err := c.DailySeries(context.Background(), "AAPL", to.AddDate(0, 0, -7), to)
	if err != nil {
		t.Fatalf("DailySeries failed: %v", err)
	}

	if series.RegularMarketPrice != 160.5 {
		t.Errorf("RegularMarketPrice = %v, want 160.5", series.RegularMarketPrice)
	}
	if len(series.Closes) != 4 {
		t.Fatalf("expected 4 closes, got %d", len(series.Closes))
	}
	if series.Closes[1] != nil {
		t.Error("null close must decode as nil, not zero")
	}
	if series.FirstClose() != 148.2 {
		t.Errorf("FirstClose = %v, want 148.2", series.FirstClose())
	}
	if series.LastClose() != 160.1 {
		t.Errorf("LastClose = %v, want 160.1", series.LastClose())
	}
}

func TestDailySeries_HTTPErrorSurfacesAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	to := time.Now().UTC()
	_, err := c.DailySeries(context.Background(), "NOPE", to.AddDate(0, 0, -7), to)
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
}

func TestSpot_FallsBackToLastClose(t *testing.T) {
	body := `{
  "chart": {
    "result": [{
      "meta": {"symbol": "TSLA", "regularMarketPrice": 0, "previousClose": 188.0},
      "timestamp": [1700000000, 1700086400],
      "indicators": {"quote": [{"close": [187.5, 190.25]}]}
    }],
    "error": null
  }
}`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	})

	quote, err := c.Spot(context.Background(), "TSLA")
	if err != nil {
		t.Fatalf("Spot failed: %v", err)
	}
	if quote.RegularMarketPrice != 190.25 {
		t.Errorf("RegularMarketPrice = %v, want last close 190.25", quote.RegularMarketPrice)
	}
}

func TestSpot_NoPriceDataErrors(t *testing.T) {
	body := `{
  "chart": {
    "result": [{
      "meta": {"symbol": "EMPTY", "regularMarketPrice": 0},
      "timestamp": [],
      "indicators": {"quote": [{"close": []}]}
    }],
    "error": null
  }
}`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	})

	if _, err := c.Spot(context.Background(), "EMPTY"); err == nil {
		t.Fatal("expected error for empty quote")
	}
}
