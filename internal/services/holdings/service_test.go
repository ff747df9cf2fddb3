package holdings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbrief/finbrief/internal/common"
	"github.com/finbrief/finbrief/internal/models"
	"github.com/finbrief/finbrief/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	config := common.NewDefaultConfig()
	config.Storage.Path = t.TempDir()
	manager, err := storage.NewManager(common.NewSilentLogger(), config)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })
	return NewService(common.NewSilentLogger(), manager)
}

func TestAddHolding_NewTicker(t *testing.T) {
	svc := newTestService(t)

	h, err := svc.AddHolding(context.Background(), &models.Holding{
		UserID:      "u1",
		Ticker:      "aapl",
		UnitsHeld:   10,
		BoughtPrice: 150,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, h.ID)
	assert.Equal(t, "AAPL", h.Ticker)
	assert.Equal(t, models.PositionLong, h.PositionType)
	assert.False(t, h.PurchaseDate.IsZero())
}

func TestAddHolding_MergesSameTickerAndType(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.AddHolding(ctx, &models.Holding{UserID: "u1", Ticker: "AAPL", UnitsHeld: 100, BoughtPrice: 150})
	require.NoError(t, err)

	merged, err := svc.AddHolding(ctx, &models.Holding{UserID: "u1", Ticker: "AAPL", UnitsHeld: 50, BoughtPrice: 180})
	require.NoError(t, err)

	assert.Equal(t, first.ID, merged.ID, "merge should reuse the existing holding")
	assert.Equal(t, 150.0, merged.UnitsHeld)
	assert.Equal(t, 160.00, merged.BoughtPrice, "weighted average cost")

	all, err := svc.ListHoldings(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAddHolding_ShortAndLongStaySeparate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddHolding(ctx, &models.Holding{UserID: "u1", Ticker: "TSLA", UnitsHeld: 10, BoughtPrice: 200, PositionType: models.PositionLong})
	require.NoError(t, err)
	_, err = svc.AddHolding(ctx, &models.Holding{UserID: "u1", Ticker: "TSLA", UnitsHeld: 5, BoughtPrice: 210, PositionType: models.PositionShort})
	require.NoError(t, err)

	all, err := svc.ListHoldings(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAddHolding_RejectsNonPositiveUnits(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.AddHolding(context.Background(), &models.Holding{UserID: "u1", Ticker: "AAPL", UnitsHeld: 0, BoughtPrice: 10})
	assert.Error(t, err)
}

func TestUpdateHolding_UnknownIDFails(t *testing.T) {
	svc := newTestService(t)

	err := svc.UpdateHolding(context.Background(), &models.Holding{ID: "nope", UserID: "u1", Ticker: "AAPL", UnitsHeld: 1, BoughtPrice: 1})
	assert.Error(t, err)
}

func TestWriteCurrentPrice_Persists(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	h, err := svc.AddHolding(ctx, &models.Holding{UserID: "u1", Ticker: "AAPL", UnitsHeld: 10, BoughtPrice: 150})
	require.NoError(t, err)

	require.NoError(t, svc.WriteCurrentPrice(ctx, "u1", h.ID, 162.5))

	all, err := svc.ListHoldings(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 162.5, all[0].CurrentPrice)
	assert.Equal(t, 150.0, all[0].BoughtPrice, "cost basis untouched")
}

func TestAddResearchStock_DuplicateRejected(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddResearchStock(ctx, &models.ResearchStock{UserID: "u1", Ticker: "NVDA"})
	require.NoError(t, err)

	_, err = svc.AddResearchStock(ctx, &models.ResearchStock{UserID: "u1", Ticker: "nvda"})
	assert.Error(t, err, "same ticker for the same user")

	_, err = svc.AddResearchStock(ctx, &models.ResearchStock{UserID: "u2", Ticker: "NVDA"})
	assert.NoError(t, err, "other users may track the same ticker")
}

func TestRemoveResearchStock(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddResearchStock(ctx, &models.ResearchStock{UserID: "u1", Ticker: "NVDA"})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveResearchStock(ctx, "u1", "nvda"))

	list, err := svc.ListWatchlist(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}
