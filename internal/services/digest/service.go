package digest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/finbrief/finbrief/internal/common"
	"github.com/finbrief/finbrief/internal/interfaces"
	"github.com/finbrief/finbrief/internal/models"
)

// Service assembles and delivers the weekly portfolio digest. One
// generation run makes a single batched price call, then fans out the
// per-ticker news and analysis work concurrently.
type Service struct {
	logger          *common.Logger
	storage         interfaces.StorageManager
	holdings        interfaces.HoldingsService
	quotes          interfaces.QuoteService
	news            interfaces.NewsService
	analyst         interfaces.AnalystService
	mailer          interfaces.Mailer
	maxHoldings     int
	maxWatchlist    int
	analysisTimeout time.Duration
}

// NewService creates a digest service.
func NewService(
	logger *common.Logger,
	config *common.Config,
	storage interfaces.StorageManager,
	holdings interfaces.HoldingsService,
	quotes interfaces.QuoteService,
	news interfaces.NewsService,
	analyst interfaces.AnalystService,
	mailer interfaces.Mailer,
) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		logger:          logger,
		storage:         storage,
		holdings:        holdings,
		quotes:          quotes,
		news:            news,
		analyst:         analyst,
		mailer:          mailer,
		maxHoldings:     config.Digest.MaxHoldings,
		maxWatchlist:    config.Digest.MaxWatchlist,
		analysisTimeout: config.Digest.GetAnalysisTimeout(),
	}
}

var _ interfaces.DigestService = (*Service)(nil)

// tickerJob is one unit of the concurrent analysis fan-out.
type tickerJob struct {
	symbol    string
	company   string
	quote     *models.PriceQuote
	unitsHeld float64 // zero for watchlist entries
}

// GenerateDigest builds the digest payload for one user. A user with no
// holdings and no watchlist yields (nil, nil) and no email.
func (s *Service) GenerateDigest(ctx context.Context, user *models.User) (*models.PortfolioDigest, error) {
	if user == nil || user.ID == "" {
		return nil, fmt.Errorf("user is required")
	}

	allHoldings, err := s.holdings.ListHoldings(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}
	watchlist, err := s.holdings.ListWatchlist(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}
	if len(allHoldings) == 0 && len(watchlist) == 0 {
		s.logger.Info().Str("user_id", user.ID).Msg("User has no holdings or watchlist, skipping digest")
		return nil, nil
	}

	topHoldings, topWatch := s.rankAndFilter(allHoldings, watchlist)

	tickers := make([]string, 0, len(topHoldings)+len(topWatch))
	for _, h := range topHoldings {
		tickers = append(tickers, h.Ticker)
	}
	for _, w := range topWatch {
		tickers = append(tickers, w.Ticker)
	}
	prices := s.quotes.FetchPrices(ctx, tickers)

	// Persist fresh prices onto holdings before anything else can fail.
	for _, h := range topHoldings {
		if q, ok := prices[h.Ticker]; ok {
			if err := s.holdings.WriteCurrentPrice(ctx, user.ID, h.ID, q.Current); err != nil {
				s.logger.Warn().Err(err).Str("ticker", h.Ticker).Msg("Failed to persist current price")
			}
		}
	}

	jobs := make([]tickerJob, 0, len(tickers))
	for _, h := range topHoldings {
		jobs = append(jobs, tickerJob{symbol: h.Ticker, company: h.CompanyName, quote: prices[h.Ticker], unitsHeld: h.UnitsHeld})
	}
	for _, w := range topWatch {
		jobs = append(jobs, tickerJob{symbol: w.Ticker, company: w.CompanyName, quote: prices[w.Ticker]})
	}

	analyses := s.analyzeAll(ctx, jobs)

	digest := &models.PortfolioDigest{
		UserID:      user.ID,
		GeneratedAt: time.Now().UTC(),
	}
	for i, h := range topHoldings {
		digest.Holdings = append(digest.Holdings, buildHoldingEntry(h, prices[h.Ticker], analyses[i]))
	}
	for i, w := range topWatch {
		digest.Watchlist = append(digest.Watchlist, buildWatchlistEntry(w, prices[w.Ticker], analyses[len(topHoldings)+i]))
	}

	s.computePortfolioMetrics(digest)

	digest.PortfolioOverview = s.analyst.Summarize(ctx, interfaces.SummaryInput{
		FirstName:       user.FirstName(),
		Holdings:        digest.Holdings,
		Watchlist:       digest.Watchlist,
		TotalValue:      digest.TotalPortfolioValue,
		WeeklyChange:    digest.WeeklyPortfolioChange,
		WeeklyChangePct: digest.WeeklyPortfolioChangePct,
	})

	s.logger.Info().
		Str("user_id", user.ID).
		Int("holdings", len(digest.Holdings)).
		Int("watchlist", len(digest.Watchlist)).
		Float64("total_value", digest.TotalPortfolioValue).
		Msg("Digest generated")
	return digest, nil
}

// rankAndFilter picks the top holdings by position value and the most
// recently added watchlist tickers not already covered by those holdings.
func (s *Service) rankAndFilter(allHoldings []*models.Holding, watchlist []*models.ResearchStock) ([]*models.Holding, []*models.ResearchStock) {
	ranked := make([]*models.Holding, len(allHoldings))
	copy(ranked, allHoldings)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Value() > ranked[j].Value()
	})
	if len(ranked) > s.maxHoldings {
		ranked = ranked[:s.maxHoldings]
	}

	held := make(map[string]bool, len(ranked))
	for _, h := range ranked {
		held[h.Ticker] = true
	}

	recent := make([]*models.ResearchStock, len(watchlist))
	copy(recent, watchlist)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].AddedDate.After(recent[j].AddedDate)
	})

	filtered := make([]*models.ResearchStock, 0, s.maxWatchlist)
	for _, w := range recent {
		if held[w.Ticker] {
			continue
		}
		filtered = append(filtered, w)
		if len(filtered) == s.maxWatchlist {
			break
		}
	}
	return ranked, filtered
}

// analyzeAll runs the news+analysis pipeline for every job concurrently.
// Each goroutine writes only its own slice slot; a per-job timeout keeps
// one slow ticker from stalling the digest.
func (s *Service) analyzeAll(ctx context.Context, jobs []tickerJob) []models.Analysis {
	results := make([]models.Analysis, len(jobs))
	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		go func(i int, job tickerJob) {
			defer wg.Done()
			jobCtx, cancel := context.WithTimeout(ctx, s.analysisTimeout)
			defer cancel()
			results[i] = s.analyzeTicker(jobCtx, job)
		}(i, jobs[i])
	}
	wg.Wait()
	return results
}

func (s *Service) analyzeTicker(ctx context.Context, job tickerJob) models.Analysis {
	news := s.news.FindNews(ctx, job.symbol, job.company)
	articles := make([]models.Article, 0, len(news))
	for _, item := range news {
		articles = append(articles, s.news.ScrapeArticle(ctx, item))
	}

	in := interfaces.AnalysisInput{
		Ticker:      job.symbol,
		CompanyName: job.company,
		News:        news,
		Articles:    articles,
	}
	if job.quote != nil {
		in.CurrentPrice = job.quote.Current
		in.BaselinePrice = job.quote.WeekAgo
	}
	return s.analyst.Analyze(ctx, in)
}

func buildHoldingEntry(h *models.Holding, quote *models.PriceQuote, analysis models.Analysis) models.DigestEntry {
	entry := models.DigestEntry{
		Symbol:         h.Ticker,
		CompanyName:    h.CompanyName,
		CurrentPrice:   h.CurrentPrice,
		Shares:         h.UnitsHeld,
		Value:          h.Value(),
		Recommendation: analysis.Recommendation,
		Summary:        analysis.Summary,
		NewsURLs:       analysis.NewsURLs,
	}
	if quote != nil {
		entry.CurrentPrice = quote.Current
		entry.PriceChange = quote.DailyChange
		entry.PriceChangePct = quote.DailyChangePct
		entry.WeeklyChange = quote.WeeklyChange
		entry.WeeklyChangePct = quote.WeeklyChangePct
		entry.WeeklyValueChange = quote.WeeklyChange * h.UnitsHeld
		entry.Value = quote.Current * h.UnitsHeld
	}
	return entry
}

func buildWatchlistEntry(w *models.ResearchStock, quote *models.PriceQuote, analysis models.Analysis) models.DigestEntry {
	entry := models.DigestEntry{
		Symbol:         w.Ticker,
		CompanyName:    w.CompanyName,
		CurrentPrice:   w.CurrentPrice,
		Recommendation: analysis.Recommendation,
		Summary:        analysis.Summary,
		NewsURLs:       analysis.NewsURLs,
	}
	if quote != nil {
		entry.CurrentPrice = quote.Current
		entry.PriceChange = quote.DailyChange
		entry.PriceChangePct = quote.DailyChangePct
		entry.WeeklyChange = quote.WeeklyChange
		entry.WeeklyChangePct = quote.WeeklyChangePct
	}
	return entry
}

// computePortfolioMetrics fills the aggregate value and week-over-week
// figures from the holding entries. The percent baseline is the value
// one week ago; a zero baseline yields 0 percent.
func (s *Service) computePortfolioMetrics(digest *models.PortfolioDigest) {
	var totalValue, totalChange float64
	for _, e := range digest.Holdings {
		totalValue += e.Value
		totalChange += e.WeeklyValueChange
	}
	digest.TotalPortfolioValue = totalValue
	digest.WeeklyPortfolioChange = totalChange
	if baseline := totalValue - totalChange; baseline != 0 {
		digest.WeeklyPortfolioChangePct = totalChange / baseline * 100
	}
}

// SendDigest renders the digest and delivers it to the user's address.
func (s *Service) SendDigest(ctx context.Context, user *models.User, digest *models.PortfolioDigest) error {
	if user == nil || user.Email == "" {
		return fmt.Errorf("user email is required")
	}
	if digest == nil {
		return fmt.Errorf("digest is required")
	}

	msg := models.EmailMessage{
		To:       user.Email,
		Subject:  fmt.Sprintf("Your Weekly Portfolio Digest - %s", digest.GeneratedAt.Format("January 2, 2006")),
		HTMLBody: RenderDigestHTML(user, digest),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send digest to '%s': %w", user.Email, err)
	}
	s.logger.Info().Str("user_id", user.ID).Str("to", user.Email).Msg("Digest email sent")
	return nil
}

// RunForUser generates and sends the digest for one user. This is the
// manual trigger path, so errors surface to the caller.
func (s *Service) RunForUser(ctx context.Context, userID string) error {
	user, err := s.storage.Users().GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user '%s': %w", userID, err)
	}
	digest, err := s.GenerateDigest(ctx, user)
	if err != nil {
		return err
	}
	if digest == nil {
		return nil
	}
	return s.SendDigest(ctx, user, digest)
}

// RunDigestBatch runs the digest for every user. Each user is processed
// inside its own recover so a single failure never blocks the rest.
func (s *Service) RunDigestBatch(ctx context.Context) (sent, failed int) {
	users, err := s.storage.Users().ListUsers(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list users for digest batch")
		return 0, 0
	}

	s.logger.Info().Int("users", len(users)).Msg("Starting digest batch")
	for _, user := range users {
		switch s.runUserSafely(ctx, user) {
		case batchSent:
			sent++
		case batchFailed:
			failed++
		}
	}
	s.logger.Info().Int("sent", sent).Int("failed", failed).Msg("Digest batch complete")
	return sent, failed
}

type batchOutcome int

const (
	batchSkipped batchOutcome = iota
	batchSent
	batchFailed
)

func (s *Service) runUserSafely(ctx context.Context, user *models.User) (outcome batchOutcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("user_id", user.ID).
				Interface("panic", r).
				Msg("Digest run panicked, continuing with next user")
			outcome = batchFailed
		}
	}()

	digest, err := s.GenerateDigest(ctx, user)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("Digest generation failed")
		return batchFailed
	}
	if digest == nil {
		return batchSkipped
	}
	if err := s.SendDigest(ctx, user, digest); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("Digest delivery failed")
		return batchFailed
	}
	return batchSent
}
