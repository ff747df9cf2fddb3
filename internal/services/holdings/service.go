package holdings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finbrief/finbrief/internal/common"
	"github.com/finbrief/finbrief/internal/interfaces"
	"github.com/finbrief/finbrief/internal/models"
)

// Service manages holdings and watchlist records for users.
type Service struct {
	logger  *common.Logger
	storage interfaces.StorageManager
}

// NewService creates a holdings service.
func NewService(logger *common.Logger, storage interfaces.StorageManager) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		logger:  logger,
		storage: storage,
	}
}

var _ interfaces.HoldingsService = (*Service)(nil)

// ListHoldings returns all holdings for a user.
func (s *Service) ListHoldings(ctx context.Context, userID string) ([]*models.Holding, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	return s.storage.Holdings().ListHoldings(ctx, userID)
}

// AddHolding inserts a new holding, or merges the purchase into an
// existing holding with the same ticker and position type using the
// weighted-average-cost rule.
func (s *Service) AddHolding(ctx context.Context, holding *models.Holding) (*models.Holding, error) {
	if holding == nil {
		return nil, fmt.Errorf("holding is required")
	}
	if holding.UserID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	holding.Ticker = models.NormalizeTicker(holding.Ticker)
	if holding.Ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	if holding.UnitsHeld <= 0 {
		return nil, fmt.Errorf("units held must be positive, got %v", holding.UnitsHeld)
	}
	if holding.PositionType == "" {
		holding.PositionType = models.PositionLong
	}

	existing, err := s.findByTickerAndType(ctx, holding.UserID, holding.Ticker, holding.PositionType)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := existing.MergePurchase(holding.UnitsHeld, holding.BoughtPrice, holding.PositionType); err != nil {
			return nil, err
		}
		existing.LastUpdated = time.Now()
		if err := s.storage.Holdings().PutHolding(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to merge holding: %w", err)
		}
		s.logger.Info().
			Str("user_id", existing.UserID).
			Str("ticker", existing.Ticker).
			Float64("units", existing.UnitsHeld).
			Float64("avg_price", existing.BoughtPrice).
			Msg("Merged purchase into existing holding")
		return existing, nil
	}

	holding.ID = uuid.New().String()
	if holding.PurchaseDate.IsZero() {
		holding.PurchaseDate = time.Now()
	}
	holding.LastUpdated = time.Now()
	if err := s.storage.Holdings().PutHolding(ctx, holding); err != nil {
		return nil, fmt.Errorf("failed to add holding: %w", err)
	}
	s.logger.Info().
		Str("user_id", holding.UserID).
		Str("ticker", holding.Ticker).
		Msg("Added holding")
	return holding, nil
}

// UpdateHolding replaces an existing holding record.
func (s *Service) UpdateHolding(ctx context.Context, holding *models.Holding) error {
	if holding == nil || holding.ID == "" || holding.UserID == "" {
		return fmt.Errorf("holding ID and user ID are required")
	}
	if _, err := s.storage.Holdings().GetHolding(ctx, holding.UserID, holding.ID); err != nil {
		return err
	}
	holding.Ticker = models.NormalizeTicker(holding.Ticker)
	holding.LastUpdated = time.Now()
	return s.storage.Holdings().PutHolding(ctx, holding)
}

// DeleteHolding removes a holding.
func (s *Service) DeleteHolding(ctx context.Context, userID, holdingID string) error {
	if userID == "" || holdingID == "" {
		return fmt.Errorf("user ID and holding ID are required")
	}
	return s.storage.Holdings().DeleteHolding(ctx, userID, holdingID)
}

// WriteCurrentPrice persists a freshly fetched price onto a holding.
func (s *Service) WriteCurrentPrice(ctx context.Context, userID, holdingID string, price float64) error {
	return s.storage.Holdings().WriteCurrentPrice(ctx, userID, holdingID, price)
}

// ListWatchlist returns a user's research stocks, most recent first.
func (s *Service) ListWatchlist(ctx context.Context, userID string) ([]*models.ResearchStock, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	return s.storage.Watchlist().ListWatchlist(ctx, userID)
}

// AddResearchStock adds a ticker to the watchlist. The (user, ticker)
// pair is unique; a duplicate is an error.
func (s *Service) AddResearchStock(ctx context.Context, stock *models.ResearchStock) (*models.ResearchStock, error) {
	if stock == nil {
		return nil, fmt.Errorf("research stock is required")
	}
	if stock.UserID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	stock.Ticker = models.NormalizeTicker(stock.Ticker)
	if stock.Ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}

	existing, err := s.storage.Watchlist().ListWatchlist(ctx, stock.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check watchlist: %w", err)
	}
	for _, e := range existing {
		if e.Ticker == stock.Ticker {
			return nil, fmt.Errorf("ticker '%s' is already on the watchlist", stock.Ticker)
		}
	}

	stock.ID = uuid.New().String()
	if stock.AddedDate.IsZero() {
		stock.AddedDate = time.Now()
	}
	if err := s.storage.Watchlist().PutResearchStock(ctx, stock); err != nil {
		return nil, fmt.Errorf("failed to add research stock: %w", err)
	}
	s.logger.Info().
		Str("user_id", stock.UserID).
		Str("ticker", stock.Ticker).
		Msg("Added research stock")
	return stock, nil
}

// RemoveResearchStock takes a ticker off the watchlist.
func (s *Service) RemoveResearchStock(ctx context.Context, userID, ticker string) error {
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}
	ticker = models.NormalizeTicker(ticker)
	if ticker == "" {
		return fmt.Errorf("ticker is required")
	}
	return s.storage.Watchlist().DeleteResearchStock(ctx, userID, ticker)
}

func (s *Service) findByTickerAndType(ctx context.Context, userID, ticker string, positionType models.PositionType) (*models.Holding, error) {
	all, err := s.storage.Holdings().ListHoldings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	for _, h := range all {
		if h.Ticker == ticker && h.PositionType == positionType {
			return h, nil
		}
	}
	return nil, nil
}
