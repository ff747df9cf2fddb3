// Package firecrawl provides a client for the Firecrawl search and scrape API
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/finbrief/finbrief/internal/common"
	"github.com/finbrief/finbrief/internal/interfaces"
	"github.com/finbrief/finbrief/internal/models"
)

const (
	DefaultBaseURL    = "https://api.firecrawl.dev"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 500 * time.Millisecond
)

// Client implements the SearchClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	retry      common.RetryPolicy
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetry sets the retry attempt cap and base delay for rate-limited calls
func WithRetry(maxAttempts int, baseDelay time.Duration) ClientOption {
	return func(c *Client) {
		c.retry = common.NewRetryPolicy(maxAttempts, baseDelay, isRetryable)
	}
}

// NewClient creates a new Firecrawl client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
		retry:  common.NewRetryPolicy(DefaultMaxRetries, DefaultBaseDelay, isRetryable),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Firecrawl API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// isRetryable reports whether an error warrants a backoff retry:
// HTTP 429 and 5xx responses.
func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return false
}

// post performs a JSON POST with the shared retry policy applied.
func (c *Client) post(ctx context.Context, path string, payload, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	return c.retry.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		c.logger.Debug().Str("url", c.baseURL+path).Msg("Firecrawl API request")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			return &APIError{
				StatusCode: resp.StatusCode,
				Message:    string(respBody),
				Endpoint:   path,
			}
		}

		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	})
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
	Tbs   string `json:"tbs,omitempty"` // recency filter, e.g. "qdr:w"
}

type searchResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
		Date        string `json:"date"`
	} `json:"data"`
}

// recencyToTbs maps the recency filter to the API's tbs parameter.
func recencyToTbs(recency string) string {
	switch recency {
	case "day":
		return "qdr:d"
	case "week":
		return "qdr:w"
	case "month":
		return "qdr:m"
	default:
		return ""
	}
}

// Search runs a free-text query with a recency filter.
func (c *Client) Search(ctx context.Context, query string, recency string, limit int) ([]models.NewsItem, error) {
	req := searchRequest{
		Query: query,
		Limit: limit,
		Tbs:   recencyToTbs(recency),
	}

	var resp searchResponse
	if err := c.post(ctx, "/v1/search", req, &resp); err != nil {
		return nil, err
	}

	items := make([]models.NewsItem, 0, len(resp.Data))
	for _, d := range resp.Data {
		if d.URL == "" {
			continue
		}
		item := models.NewsItem{
			Title:   d.Title,
			URL:     d.URL,
			Snippet: d.Description,
		}
		if d.Date != "" {
			if ts, err := time.Parse(time.RFC3339, d.Date); err == nil {
				item.Published = ts
			}
		}
		items = append(items, item)
	}

	c.logger.Debug().Str("query", query).Int("results", len(items)).Msg("Firecrawl search returned results")

	return items, nil
}

type scrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
}

type scrapeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string `json:"markdown"`
	} `json:"data"`
}

// Scrape returns the main-content text of a URL in markdown.
func (c *Client) Scrape(ctx context.Context, pageURL string) (string, error) {
	req := scrapeRequest{
		URL:             pageURL,
		Formats:         []string{"markdown"},
		OnlyMainContent: true,
	}

	var resp scrapeResponse
	if err := c.post(ctx, "/v1/scrape", req, &resp); err != nil {
		return "", err
	}

	if resp.Data.Markdown == "" {
		return "", fmt.Errorf("no content scraped from %s", pageURL)
	}

	return resp.Data.Markdown, nil
}

// Ensure Client implements SearchClient
var _ interfaces.SearchClient = (*Client)(nil)
