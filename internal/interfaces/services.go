package interfaces

import (
	"context"

	"github.com/finbrief/finbrief/internal/models"
)

// QuoteService fetches current + week-ago prices for a set of tickers.
type QuoteService interface {
	// FetchPrices returns a possibly partial map. A ticker whose fetch
	// failed entirely is simply absent — callers treat a missing key as
	// "no fresh data, use last known value". Never returns an error.
	FetchPrices(ctx context.Context, tickers []string) map[string]*models.PriceQuote
}

// NewsService finds recent news for a ticker and scrapes article bodies.
// Both operations are best effort and never fatal to callers.
type NewsService interface {
	FindNews(ctx context.Context, ticker, companyName string) []models.NewsItem
	ScrapeArticle(ctx context.Context, item models.NewsItem) models.Article
}

// AnalysisInput carries the per-ticker context for the Stock Analyst.
type AnalysisInput struct {
	Ticker        string
	CompanyName   string
	CurrentPrice  float64
	BaselinePrice float64
	News          []models.NewsItem
	Articles      []models.Article
}

// SummaryInput carries the aggregate context for the Portfolio Summarizer.
type SummaryInput struct {
	FirstName       string
	Holdings        []models.DigestEntry
	Watchlist       []models.DigestEntry
	TotalValue      float64
	WeeklyChange    float64
	WeeklyChangePct float64
}

// AnalystService produces per-ticker recommendations and the portfolio
// overview paragraph. Both calls fall back to safe defaults and never error.
type AnalystService interface {
	Analyze(ctx context.Context, in AnalysisInput) models.Analysis
	Summarize(ctx context.Context, in SummaryInput) string
}

// HoldingsService manages holdings and watchlist records.
type HoldingsService interface {
	ListHoldings(ctx context.Context, userID string) ([]*models.Holding, error)
	// AddHolding inserts a holding, or merges into an existing
	// ticker+positionType pair using the weighted-average-cost rule.
	AddHolding(ctx context.Context, holding *models.Holding) (*models.Holding, error)
	UpdateHolding(ctx context.Context, holding *models.Holding) error
	DeleteHolding(ctx context.Context, userID, holdingID string) error
	WriteCurrentPrice(ctx context.Context, userID, holdingID string, price float64) error

	ListWatchlist(ctx context.Context, userID string) ([]*models.ResearchStock, error)
	// AddResearchStock errors when the (user, ticker) pair already exists.
	AddResearchStock(ctx context.Context, stock *models.ResearchStock) (*models.ResearchStock, error)
	RemoveResearchStock(ctx context.Context, userID, ticker string) error
}

// DigestService assembles and delivers the weekly digest.
type DigestService interface {
	// GenerateDigest builds the digest payload for one user. Returns
	// (nil, nil) when the user has no holdings and no watchlist.
	GenerateDigest(ctx context.Context, user *models.User) (*models.PortfolioDigest, error)

	// SendDigest renders and delivers a digest. Errors propagate.
	SendDigest(ctx context.Context, user *models.User, digest *models.PortfolioDigest) error

	// RunForUser generates and sends for one user; errors surface to the
	// caller (the manual trigger path).
	RunForUser(ctx context.Context, userID string) error

	// RunDigestBatch iterates all users, isolating per-user failures.
	// Returns the number of digests sent and the number of failed users.
	RunDigestBatch(ctx context.Context) (sent, failed int)
}
