package memory

import (
	"context"
	"sync"

	"meeting-pick-lab/internal/prices"
	"meeting-pick-lab/internal/storage"
)

// PriceCache is an in-memory implementation of storage.PriceCache.
type PriceCache struct {
	mu   sync.RWMutex
	data map[string]prices.Series
}

// NewPriceCache creates a new in-memory price cache.
func NewPriceCache() *PriceCache {
	return &PriceCache{
		data: make(map[string]prices.Series),
	}
}

// Load returns the cached series for a symbol, (nil, nil) on a miss.
func (c *PriceCache) Load(_ context.Context, symbol string) (prices.Series, error) {
	if symbol == "" {
		return nil, storage.ErrInvalidInput
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	series, ok := c.data[symbol]
	if !ok {
		return nil, nil
	}

	seriesCopy := make(prices.Series, len(series))
	for k, v := range series {
		seriesCopy[k] = v
	}
	return seriesCopy, nil
}

// Save stores the series for a symbol, replacing any cached copy.
func (c *PriceCache) Save(_ context.Context, symbol string, series prices.Series) error {
	if symbol == "" {
		return storage.ErrInvalidInput
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	seriesCopy := make(prices.Series, len(series))
	for k, v := range series {
		seriesCopy[k] = v
	}
	c.data[symbol] = seriesCopy
	return nil
}

// Invalidate drops the cached series for a symbol.
func (c *PriceCache) Invalidate(_ context.Context, symbol string) error {
	if symbol == "" {
		return storage.ErrInvalidInput
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, symbol)
	return nil
}

var _ storage.PriceCache = (*PriceCache)(nil)
