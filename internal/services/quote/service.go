package quote

import (
	"context"
	"sync"
	"time"

	"github.com/finbrief/finbrief/internal/common"
	"github.com/finbrief/finbrief/internal/interfaces"
	"github.com/finbrief/finbrief/internal/models"
)

// Cache holds recently fetched quotes keyed by symbol. Entries older than
// the TTL are treated as absent. Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]*models.PriceQuote
}

// NewCache creates a quote cache with the given freshness window.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]*models.PriceQuote),
	}
}

// Get returns the cached quote for symbol if it is still fresh.
func (c *Cache) Get(symbol string) (*models.PriceQuote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.entries[symbol]
	if !ok || !common.IsFresh(q.FetchedAt, c.ttl) {
		return nil, false
	}
	return q, true
}

// Put stores a quote for symbol.
func (c *Cache) Put(symbol string, quote *models.PriceQuote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[symbol] = quote
}

// Service fetches current and week-ago prices for tickers, with an
// injected cache so repeated digest runs within the freshness window
// do not re-hit the upstream API.
type Service struct {
	logger *common.Logger
	api    interfaces.QuoteAPI
	cache  *Cache
}

// NewService creates a quote service.
func NewService(logger *common.Logger, api interfaces.QuoteAPI, cache *Cache) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	if cache == nil {
		cache = NewCache(common.FreshnessQuote)
	}
	return &Service{
		logger: logger,
		api:    api,
		cache:  cache,
	}
}

var _ interfaces.QuoteService = (*Service)(nil)

// FetchPrices fetches quotes for the given tickers. It never returns an
// error: tickers for which no price could be obtained are simply absent
// from the result map. Duplicate tickers are fetched once.
func (s *Service) FetchPrices(ctx context.Context, tickers []string) map[string]*models.PriceQuote {
	out := make(map[string]*models.PriceQuote, len(tickers))

	for _, t := range tickers {
		symbol := models.NormalizeTicker(t)
		if symbol == "" {
			continue
		}
		if _, done := out[symbol]; done {
			continue
		}
		if cached, ok := s.cache.Get(symbol); ok {
			s.logger.Debug().Str("symbol", symbol).Msg("Quote served from cache")
			out[symbol] = cached
			continue
		}
		quote := s.fetchOne(ctx, symbol)
		if quote == nil {
			s.logger.Warn().Str("symbol", symbol).Msg("No price data available, skipping ticker")
			continue
		}
		s.cache.Put(symbol, quote)
		out[symbol] = quote
	}

	return out
}

// fetchOne tries the 7-day daily series first and falls back to a
// single-point spot quote. Returns nil when neither yields a price.
func (s *Service) fetchOne(ctx context.Context, symbol string) *models.PriceQuote {
	to := time.Now()
	from := to.AddDate(0, 0, -7)

	series, err := s.api.DailySeries(ctx, symbol, from, to)
	if err == nil {
		if quote := quoteFromSeries(series); quote != nil {
			return quote
		}
		s.logger.Warn().Str("symbol", symbol).Msg("Daily series contained no usable closes, falling back to spot quote")
	} else {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Daily series request failed, falling back to spot quote")
	}

	spot, err := s.api.Spot(ctx, symbol)
	if err != nil {
		s.logger.Error().Err(err).Str("symbol", symbol).Msg("Spot quote request failed")
		return nil
	}
	return quoteFromSpot(spot)
}

func quoteFromSeries(series *models.PriceSeries) *models.PriceQuote {
	current := series.RegularMarketPrice
	if current == 0 {
		current = series.LastClose()
	}
	if current == 0 {
		return nil
	}

	// Without a usable opening close the baseline falls back to the
	// current price, so the weekly figures read flat rather than
	// pretending the position grew from nothing.
	weekAgo := series.FirstClose()
	if weekAgo == 0 {
		weekAgo = current
	}
	previous := series.PreviousClose
	if previous == 0 {
		previous = weekAgo
	}

	q := &models.PriceQuote{
		Symbol:       series.Symbol,
		Current:      current,
		WeekAgo:      weekAgo,
		DailyChange:  current - previous,
		WeeklyChange: current - weekAgo,
		FetchedAt:    time.Now(),
	}
	if previous != 0 {
		q.DailyChangePct = q.DailyChange / previous * 100
	}
	if weekAgo != 0 {
		q.WeeklyChangePct = q.WeeklyChange / weekAgo * 100
	}
	return q
}

// quoteFromSpot builds a degraded quote where the weekly figures mirror
// the daily ones, since only the previous close is known.
func quoteFromSpot(spot *models.SpotQuote) *models.PriceQuote {
	if spot == nil || spot.RegularMarketPrice == 0 {
		return nil
	}

	baseline := spot.PreviousClose
	if baseline == 0 {
		baseline = spot.RegularMarketPrice
	}
	q := &models.PriceQuote{
		Symbol:       spot.Symbol,
		Current:      spot.RegularMarketPrice,
		WeekAgo:      baseline,
		DailyChange:  spot.RegularMarketPrice - baseline,
		WeeklyChange: spot.RegularMarketPrice - baseline,
		Degraded:     true,
		FetchedAt:    time.Now(),
	}
	if spot.PreviousClose != 0 {
		q.DailyChangePct = q.DailyChange / spot.PreviousClose * 100
		q.WeeklyChangePct = q.DailyChangePct
	}
	return q
}
