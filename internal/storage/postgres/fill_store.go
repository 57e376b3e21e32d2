package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"meeting-pick-lab/internal/domain"
	"meeting-pick-lab/internal/storage"
)

// FillStore implements storage.FillStore using PostgreSQL.
type FillStore struct {
	pool *Pool
}

// NewFillStore creates a new FillStore.
func NewFillStore(pool *Pool) *FillStore {
	return &FillStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FillStore = (*FillStore)(nil)

// InsertBulk adds multiple fills atomically.
func (s *FillStore) InsertBulk(ctx context.Context, fills []*domain.Fill) error {
	if len(fills) == 0 {
		return nil
	}

	for _, f := range fills {
		if f == nil || f.Ticker == "" || f.Date.IsZero() {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO fills (
			ticker, trade_date, direction, quantity, fill_price, commission, pnl_usd, currency, asset_type
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, f := range fills {
		_, err := tx.Exec(ctx, query,
			f.Ticker,
			f.Date,
			f.Direction,
			f.Quantity,
			f.FillPrice,
			f.Commission,
			f.PnLUSD,
			f.Currency,
			f.AssetType,
		)
		if err != nil {
			return fmt.Errorf("insert fill in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAll retrieves every fill, ordered by date ASC.
func (s *FillStore) GetAll(ctx context.Context) ([]*domain.Fill, error) {
	query := `
		SELECT ticker, trade_date, direction, quantity, fill_price, commission, pnl_usd, currency, asset_type
		FROM fills
		ORDER BY trade_date ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all fills: %w", err)
	}
	defer rows.Close()

	return scanFills(rows)
}

// GetByTicker retrieves all fills for a ledger ticker, ordered by date ASC.
// The match is case-insensitive.
func (s *FillStore) GetByTicker(ctx context.Context, ticker string) ([]*domain.Fill, error) {
	query := `
		SELECT ticker, trade_date, direction, quantity, fill_price, commission, pnl_usd, currency, asset_type
		FROM fills
		WHERE upper(ticker) = $1
		ORDER BY trade_date ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, strings.ToUpper(strings.TrimSpace(ticker)))
	if err != nil {
		return nil, fmt.Errorf("get fills by ticker: %w", err)
	}
	defer rows.Close()

	return scanFills(rows)
}

// scanFills scans multiple rows into a slice of Fill.
func scanFills(rows pgx.Rows) ([]*domain.Fill, error) {
	var fills []*domain.Fill

	for rows.Next() {
		var f domain.Fill
		var tradeDate time.Time

		err := rows.Scan(
			&f.Ticker,
			&tradeDate,
			&f.Direction,
			&f.Quantity,
			&f.FillPrice,
			&f.Commission,
			&f.PnLUSD,
			&f.Currency,
			&f.AssetType,
		)
		if err != nil {
			return nil, fmt.Errorf("scan fill row: %w", err)
		}

		f.Date = domain.Day(tradeDate)
		fills = append(fills, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fill rows: %w", err)
	}

	return fills, nil
}
