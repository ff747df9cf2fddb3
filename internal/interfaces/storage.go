package interfaces

import (
	"context"

	"github.com/finbrief/finbrief/internal/models"
)

// UserStore manages digest recipients.
type UserStore interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	PutUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

// HoldingStore persists holdings, keyed by holding ID and owned by one user.
type HoldingStore interface {
	GetHolding(ctx context.Context, userID, holdingID string) (*models.Holding, error)
	PutHolding(ctx context.Context, holding *models.Holding) error
	DeleteHolding(ctx context.Context, userID, holdingID string) error
	ListHoldings(ctx context.Context, userID string) ([]*models.Holding, error)

	// WriteCurrentPrice updates only currentPrice/lastUpdated on a holding
	// (the digest price-refresh write-through).
	WriteCurrentPrice(ctx context.Context, userID, holdingID string, price float64) error
}

// WatchlistStore persists research stocks, unique per (user, ticker).
type WatchlistStore interface {
	PutResearchStock(ctx context.Context, stock *models.ResearchStock) error
	DeleteResearchStock(ctx context.Context, userID, ticker string) error
	ListWatchlist(ctx context.Context, userID string) ([]*models.ResearchStock, error)
}

// StorageManager coordinates the storage areas.
type StorageManager interface {
	Users() UserStore
	Holdings() HoldingStore
	Watchlist() WatchlistStore
	Close() error
}
