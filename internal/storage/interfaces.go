package storage

import (
	"context"

	"meeting-pick-lab/internal/domain"
	"meeting-pick-lab/internal/prices"
)

// PriceCache persists per-symbol daily close series between runs.
type PriceCache interface {
	// Load returns the cached series for a symbol, (nil, nil) on a miss.
	Load(ctx context.Context, symbol string) (prices.Series, error)

	// Save stores the series for a symbol, replacing any cached copy.
	Save(ctx context.Context, symbol string, series prices.Series) error

	// Invalidate drops the cached series for a symbol.
	Invalidate(ctx context.Context, symbol string) error
}

// FillStore provides access to broker fill storage.
type FillStore interface {
	// InsertBulk adds multiple fills atomically.
	InsertBulk(ctx context.Context, fills []*domain.Fill) error

	// GetAll retrieves every fill, ordered by date ASC.
	GetAll(ctx context.Context) ([]*domain.Fill, error)

	// GetByTicker retrieves all fills for a ledger ticker, ordered by date ASC.
	GetByTicker(ctx context.Context, ticker string) ([]*domain.Fill, error)
}
