// Package userdb implements the user, holding, and watchlist stores using
// BadgerHold.
package userdb

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/finbrief/finbrief/internal/common"
	"github.com/finbrief/finbrief/internal/models"
)

// Store persists users, holdings, and research stocks in one BadgerHold
// database. Keys are namespaced per record type.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore creates a new Store backed by BadgerHold.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create userdb path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open userdb at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("UserDB opened")
	return &Store{db: db, logger: logger}, nil
}

// keySep is the composite key separator. Using a null byte prevents
// collisions when IDs contain ":" characters.
const keySep = "\x00"

func holdingKey(userID, holdingID string) string {
	return "holding" + keySep + userID + keySep + holdingID
}

func watchKey(userID, ticker string) string {
	return "watch" + keySep + userID + keySep + ticker
}

func userKey(userID string) string {
	return "user" + keySep + userID
}

// --- users ---

func (s *Store) GetUser(_ context.Context, userID string) (*models.User, error) {
	var u models.User
	if err := s.db.Get(userKey(userID), &u); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("user '%s' not found", userID)
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", userID, err)
	}
	return &u, nil
}

func (s *Store) PutUser(_ context.Context, user *models.User) error {
	if user.ID == "" {
		return fmt.Errorf("user ID is required")
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if err := s.db.Upsert(userKey(user.ID), user); err != nil {
		return fmt.Errorf("failed to put user '%s': %w", user.ID, err)
	}
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]*models.User, error) {
	var all []models.User
	if err := s.db.Find(&all, nil); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	result := make([]*models.User, 0, len(all))
	for i := range all {
		u := all[i]
		result = append(result, &u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) DeleteUser(_ context.Context, userID string) error {
	if err := s.db.Delete(userKey(userID), models.User{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete user '%s': %w", userID, err)
	}
	return nil
}

// --- holdings ---

func (s *Store) GetHolding(_ context.Context, userID, holdingID string) (*models.Holding, error) {
	var h models.Holding
	if err := s.db.Get(holdingKey(userID, holdingID), &h); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("holding '%s' not found for user '%s'", holdingID, userID)
		}
		return nil, fmt.Errorf("failed to get holding '%s': %w", holdingID, err)
	}
	return &h, nil
}

func (s *Store) PutHolding(_ context.Context, holding *models.Holding) error {
	if holding.ID == "" || holding.UserID == "" {
		return fmt.Errorf("holding ID and user ID are required")
	}
	if err := s.db.Upsert(holdingKey(holding.UserID, holding.ID), holding); err != nil {
		return fmt.Errorf("failed to put holding '%s': %w", holding.ID, err)
	}
	return nil
}

func (s *Store) DeleteHolding(_ context.Context, userID, holdingID string) error {
	if err := s.db.Delete(holdingKey(userID, holdingID), models.Holding{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete holding '%s': %w", holdingID, err)
	}
	return nil
}

func (s *Store) ListHoldings(_ context.Context, userID string) ([]*models.Holding, error) {
	var all []models.Holding
	if err := s.db.Find(&all, nil); err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	var result []*models.Holding
	for i := range all {
		if all[i].UserID == userID {
			h := all[i]
			result = append(result, &h)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Ticker < result[j].Ticker })
	return result, nil
}

// WriteCurrentPrice updates only currentPrice/lastUpdated on a holding.
func (s *Store) WriteCurrentPrice(ctx context.Context, userID, holdingID string, price float64) error {
	h, err := s.GetHolding(ctx, userID, holdingID)
	if err != nil {
		return err
	}
	h.CurrentPrice = price
	h.LastUpdated = time.Now()
	return s.PutHolding(ctx, h)
}

// --- watchlist ---

func (s *Store) PutResearchStock(_ context.Context, stock *models.ResearchStock) error {
	if stock.UserID == "" || stock.Ticker == "" {
		return fmt.Errorf("research stock user ID and ticker are required")
	}
	if err := s.db.Upsert(watchKey(stock.UserID, stock.Ticker), stock); err != nil {
		return fmt.Errorf("failed to put research stock '%s': %w", stock.Ticker, err)
	}
	return nil
}

func (s *Store) DeleteResearchStock(_ context.Context, userID, ticker string) error {
	if err := s.db.Delete(watchKey(userID, ticker), models.ResearchStock{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete research stock '%s': %w", ticker, err)
	}
	return nil
}

func (s *Store) ListWatchlist(_ context.Context, userID string) ([]*models.ResearchStock, error) {
	var all []models.ResearchStock
	if err := s.db.Find(&all, nil); err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	var result []*models.ResearchStock
	for i := range all {
		if all[i].UserID == userID {
			r := all[i]
			result = append(result, &r)
		}
	}
	// Most recent first
	sort.Slice(result, func(i, j int) bool { return result[i].AddedDate.After(result[j].AddedDate) })
	return result, nil
}

// Close shuts down the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
