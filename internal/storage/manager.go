// Package storage provides the top-level StorageManager.
package storage

import (
	"fmt"

	"github.com/finbrief/finbrief/internal/common"
	"github.com/finbrief/finbrief/internal/interfaces"
	"github.com/finbrief/finbrief/internal/storage/userdb"
)

// Manager implements interfaces.StorageManager over a single BadgerHold area.
type Manager struct {
	user   *userdb.Store
	logger *common.Logger
}

// NewManager creates a new StorageManager.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	userStore, err := userdb.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create user store: %w", err)
	}

	logger.Info().
		Str("path", config.Storage.Path).
		Msg("Storage manager initialized")

	return &Manager{
		user:   userStore,
		logger: logger,
	}, nil
}

func (m *Manager) Users() interfaces.UserStore {
	return m.user
}

func (m *Manager) Holdings() interfaces.HoldingStore {
	return m.user
}

func (m *Manager) Watchlist() interfaces.WatchlistStore {
	return m.user
}

func (m *Manager) Close() error {
	return m.user.Close()
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
