package badgercache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meeting-pick-lab/internal/prices"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()

	cache, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, cache.Close())
	})
	return cache
}

func TestCache_SaveAndLoad(t *testing.T) {
	cache := openTestCache(t)
	ctx := context.Background()

	series := prices.Series{"2025-01-10": 100.5, "2025-01-13": 103.25}
	require.NoError(t, cache.Save(ctx, "NVDA", series))

	loaded, err := cache.Load(ctx, "NVDA")
	require.NoError(t, err)
	assert.Equal(t, series, loaded)
}

func TestCache_LoadMiss(t *testing.T) {
	cache := openTestCache(t)

	series, err := cache.Load(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Nil(t, series)
}

func TestCache_SaveReplaces(t *testing.T) {
	cache := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Save(ctx, "NVDA", prices.Series{"2025-01-10": 100.0}))
	require.NoError(t, cache.Save(ctx, "NVDA", prices.Series{"2025-01-13": 103.0}))

	loaded, err := cache.Load(ctx, "NVDA")
	require.NoError(t, err)
	assert.Equal(t, prices.Series{"2025-01-13": 103.0}, loaded)
}

func TestCache_Invalidate(t *testing.T) {
	cache := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Save(ctx, "NVDA", prices.Series{"2025-01-10": 100.0}))
	require.NoError(t, cache.Invalidate(ctx, "NVDA"))

	series, err := cache.Load(ctx, "NVDA")
	require.NoError(t, err)
	assert.Nil(t, series)

	// Invalidating a missing symbol is not an error
	require.NoError(t, cache.Invalidate(ctx, "ZZZZ"))
}
