// Package badgercache persists price series in an embedded BadgerDB so
// repeated runs skip the provider for symbols already fetched.
package badgercache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"meeting-pick-lab/internal/prices"
	"meeting-pick-lab/internal/storage"
)

const keyPrefix = "prices:"

// Cache is a BadgerDB-backed implementation of storage.PriceCache.
type Cache struct {
	db *badger.DB
}

// Open opens (or creates) the cache database at dir.
func Open(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func cacheKey(symbol string) []byte {
	return []byte(keyPrefix + symbol)
}

// Load returns the cached series for a symbol, (nil, nil) on a miss.
func (c *Cache) Load(_ context.Context, symbol string) (prices.Series, error) {
	if symbol == "" {
		return nil, storage.ErrInvalidInput
	}

	var series prices.Series
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(symbol))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &series)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cached series %s: %w", symbol, err)
	}
	return series, nil
}

// Save stores the series for a symbol, replacing any cached copy.
func (c *Cache) Save(_ context.Context, symbol string, series prices.Series) error {
	if symbol == "" {
		return storage.ErrInvalidInput
	}

	data, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("marshal series %s: %w", symbol, err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(cacheKey(symbol), data)
	})
	if err != nil {
		return fmt.Errorf("save cached series %s: %w", symbol, err)
	}
	return nil
}

// Invalidate drops the cached series for a symbol.
func (c *Cache) Invalidate(_ context.Context, symbol string) error {
	if symbol == "" {
		return storage.ErrInvalidInput
	}

	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(cacheKey(symbol))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("invalidate cached series %s: %w", symbol, err)
	}
	return nil
}

var _ storage.PriceCache = (*Cache)(nil)
