package news

import (
	"context"
	"fmt"

	"github.com/finbrief/finbrief/internal/common"
	"github.com/finbrief/finbrief/internal/interfaces"
	"github.com/finbrief/finbrief/internal/models"
)

// Service finds recent news for tickers and retrieves article bodies.
// Every operation degrades instead of failing: no results and no
// scrapeable body both produce usable zero-ish values for the caller.
type Service struct {
	logger *common.Logger
	search interfaces.SearchClient
	limit  int
}

// NewService creates a news service. limit caps results per ticker.
func NewService(logger *common.Logger, search interfaces.SearchClient, limit int) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	if limit <= 0 {
		limit = 2
	}
	return &Service{
		logger: logger,
		search: search,
		limit:  limit,
	}
}

var _ interfaces.NewsService = (*Service)(nil)

// FindNews searches for news from the past week about a ticker. A failed
// or empty search returns an empty slice, never an error.
func (s *Service) FindNews(ctx context.Context, ticker, companyName string) []models.NewsItem {
	query := fmt.Sprintf("%s (%s) stock news", companyName, ticker)
	if companyName == "" {
		query = fmt.Sprintf("%s stock news", ticker)
	}

	items, err := s.search.Search(ctx, query, "week", s.limit)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("News search failed, continuing without news")
		return nil
	}
	if len(items) > s.limit {
		items = items[:s.limit]
	}
	s.logger.Debug().Str("ticker", ticker).Int("count", len(items)).Msg("News search complete")
	return items
}

// ScrapeArticle fetches the main text of a news item. When the scrape
// fails or comes back empty the item's snippet stands in for the body,
// so the analyst always has at least the search result text to work with.
func (s *Service) ScrapeArticle(ctx context.Context, item models.NewsItem) models.Article {
	text, err := s.search.Scrape(ctx, item.URL)
	if err != nil || text == "" {
		if err != nil {
			s.logger.Warn().Err(err).Str("url", item.URL).Msg("Article scrape failed, using snippet")
		}
		return models.Article{URL: item.URL, Text: item.Snippet}
	}
	return models.Article{URL: item.URL, Text: text}
}
