package models

import "time"

// PriceQuote holds the current price plus week-over-week context for one ticker.
type PriceQuote struct {
	Symbol          string    `json:"symbol"`
	Current         float64   `json:"current"`
	WeekAgo         float64   `json:"week_ago"`
	DailyChange     float64   `json:"daily_change"`
	DailyChangePct  float64   `json:"daily_change_pct"`
	WeeklyChange    float64   `json:"weekly_change"`
	WeeklyChangePct float64   `json:"weekly_change_pct"`
	Degraded        bool      `json:"degraded,omitempty"` // single-point fallback was used
	FetchedAt       time.Time `json:"fetched_at"`
}

// DigestEntry is the per-ticker row of a digest. Built fresh every run,
// never persisted.
type DigestEntry struct {
	Symbol            string         `json:"symbol"`
	CompanyName       string         `json:"company_name"`
	CurrentPrice      float64        `json:"current_price"`
	PriceChange       float64        `json:"price_change"`
	PriceChangePct    float64        `json:"price_change_pct"`
	WeeklyChange      float64        `json:"weekly_change"`
	WeeklyChangePct   float64        `json:"weekly_change_pct"`
	WeeklyValueChange float64        `json:"weekly_value_change"`
	Value             float64        `json:"value"`
	Shares            float64        `json:"shares"`
	Recommendation    Recommendation `json:"recommendation"`
	Summary           string         `json:"summary"`
	NewsURLs          []string       `json:"news_urls"`
}

// PortfolioDigest is the top-level email payload for one user.
type PortfolioDigest struct {
	UserID                   string        `json:"user_id"`
	GeneratedAt              time.Time     `json:"generated_at"`
	TotalPortfolioValue      float64       `json:"total_portfolio_value"`
	WeeklyPortfolioChange    float64       `json:"weekly_portfolio_change"`
	WeeklyPortfolioChangePct float64       `json:"weekly_portfolio_change_pct"`
	Holdings                 []DigestEntry `json:"holdings"`  // ranked by value desc, max 10
	Watchlist                []DigestEntry `json:"watchlist"` // tickers not held, by recency, max 10
	PortfolioOverview        string        `json:"portfolio_overview"`
}

// EmailMessage is the outbound mail payload.
type EmailMessage struct {
	To       string
	Subject  string
	HTMLBody string
}
