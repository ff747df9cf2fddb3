package models

import (
	"strings"
	"time"
)

// NewsItem is a single search result for a ticker.
type NewsItem struct {
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Snippet   string    `json:"snippet,omitempty"`
	Published time.Time `json:"published,omitempty"`
}

// Article is scraped article content. Text is never empty when the item
// carried a snippet: scrape failures fall back to the snippet.
type Article struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// Recommendation is the per-ticker analyst verdict.
type Recommendation string

const (
	RecommendationBuy  Recommendation = "BUY"
	RecommendationSell Recommendation = "SELL"
	RecommendationHold Recommendation = "HOLD"
)

// ParseRecommendation normalizes free text to a recommendation.
// Anything that is not exactly BUY or SELL (case-insensitive) is HOLD.
func ParseRecommendation(s string) Recommendation {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return RecommendationBuy
	case "SELL":
		return RecommendationSell
	default:
		return RecommendationHold
	}
}

// Analysis is the Stock Analyst output for one ticker.
type Analysis struct {
	Ticker         string         `json:"ticker"`
	Recommendation Recommendation `json:"recommendation"`
	Summary        string         `json:"summary"`
	NewsURLs       []string       `json:"news_urls"`
}

// CompletionRequest is one LLM call: a system + user message pair with
// sampling controls. No multi-turn state.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int32
}

// PriceSeries is a daily close series for one symbol over a time range.
// Nil closes mean "no data for that day", not zero.
type PriceSeries struct {
	Symbol             string
	RegularMarketPrice float64
	PreviousClose      float64
	Timestamps         []int64
	Closes             []*float64
}

// FirstClose returns the earliest non-nil close, or 0 if none.
func (s *PriceSeries) FirstClose() float64 {
	for _, c := range s.Closes {
		if c != nil {
			return *c
		}
	}
	return 0
}

// LastClose returns the latest non-nil close, or 0 if none.
func (s *PriceSeries) LastClose() float64 {
	for i := len(s.Closes) - 1; i >= 0; i-- {
		if s.Closes[i] != nil {
			return *s.Closes[i]
		}
	}
	return 0
}

// SpotQuote is a single-point quote used when the series request fails.
type SpotQuote struct {
	Symbol             string
	RegularMarketPrice float64
	PreviousClose      float64
}
