package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meeting-pick-lab/internal/domain"
	"meeting-pick-lab/internal/storage"
)

func TestFillStore_InsertBulkAndGetAll(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFillStore(pool)
	ctx := context.Background()

	fills := []*domain.Fill{
		{
			Ticker:     "NVDA",
			Date:       time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			Direction:  domain.DirectionBuy,
			Quantity:   100,
			FillPrice:  ptr(120.5),
			Commission: 1.0,
			Currency:   "USD",
			AssetType:  "STK",
		},
		{
			Ticker:    "700",
			Date:      time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			Direction: domain.DirectionSell,
			Quantity:  500,
			PnLUSD:    1234.5,
			Currency:  "HKD",
		},
	}

	err := store.InsertBulk(ctx, fills)
	require.NoError(t, err)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	// Date-ascending order
	assert.Equal(t, "700", all[0].Ticker)
	assert.Equal(t, "NVDA", all[1].Ticker)

	require.NotNil(t, all[1].FillPrice)
	assert.Equal(t, 120.5, *all[1].FillPrice)
	assert.Nil(t, all[0].FillPrice)
	assert.Equal(t, 1234.5, all[0].PnLUSD)
	assert.Equal(t, "HKD", all[0].Currency)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), all[0].Date)
}

func TestFillStore_GetByTicker(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFillStore(pool)
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.Fill{
		{Ticker: "NVDA", Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Direction: domain.DirectionBuy, Quantity: 100, Currency: "USD"},
		{Ticker: "nvda", Date: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), Direction: domain.DirectionBuy, Quantity: 50, Currency: "USD"},
		{Ticker: "AAPL", Date: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), Direction: domain.DirectionBuy, Quantity: 10, Currency: "USD"},
	})
	require.NoError(t, err)

	got, err := store.GetByTicker(ctx, "NVDA")
	require.NoError(t, err)
	require.Len(t, got, 2, "ticker match is case-insensitive")
	assert.True(t, got[0].Date.Before(got[1].Date))
}

func TestFillStore_InsertBulkInvalid(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFillStore(pool)
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.Fill{
		{Ticker: "", Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Direction: domain.DirectionBuy, Quantity: 100},
	})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
