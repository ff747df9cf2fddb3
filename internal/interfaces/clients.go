// Package interfaces defines service contracts for Finbrief
package interfaces

import (
	"context"
	"time"

	"github.com/finbrief/finbrief/internal/models"
)

// QuoteAPI is the market-data HTTP client contract.
type QuoteAPI interface {
	// DailySeries requests a daily-interval price series for a symbol over
	// the given UTC time range.
	DailySeries(ctx context.Context, symbol string, from, to time.Time) (*models.PriceSeries, error)

	// Spot requests a single current-price quote. Used as the degraded
	// fallback when the series request fails.
	Spot(ctx context.Context, symbol string) (*models.SpotQuote, error)
}

// SearchClient is the news search / article scrape contract.
type SearchClient interface {
	// Search runs a free-text query with a recency filter and returns
	// zero or more results.
	Search(ctx context.Context, query string, recency string, limit int) ([]models.NewsItem, error)

	// Scrape returns the main-content text of a URL, markup-free.
	Scrape(ctx context.Context, url string) (string, error)
}

// LLMClient issues a single completion call: system + user message pair,
// sampling temperature, max-output-token ceiling.
type LLMClient interface {
	Complete(ctx context.Context, req models.CompletionRequest) (string, error)
}

// Mailer delivers one HTML email to one recipient.
type Mailer interface {
	Send(ctx context.Context, msg models.EmailMessage) error
}
