package clickhouse

import (
	"context"
	"fmt"
	"time"

	"meeting-pick-lab/internal/domain"
	"meeting-pick-lab/internal/prices"
	"meeting-pick-lab/internal/storage"
)

// PriceStore implements storage.PriceCache using ClickHouse. Closes are
// stored one row per (symbol, date); ReplacingMergeTree collapses
// re-saved rows to the most recent write.
type PriceStore struct {
	conn *Conn
}

// NewPriceStore creates a new PriceStore.
func NewPriceStore(conn *Conn) *PriceStore {
	return &PriceStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceCache = (*PriceStore)(nil)

// Load returns the cached series for a symbol, (nil, nil) on a miss.
func (s *PriceStore) Load(ctx context.Context, symbol string) (prices.Series, error) {
	if symbol == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT date, close
		FROM daily_prices FINAL
		WHERE symbol = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("query daily prices: %w", err)
	}
	defer rows.Close()

	series := make(prices.Series)
	for rows.Next() {
		var date time.Time
		var close float64
		if err := rows.Scan(&date, &close); err != nil {
			return nil, fmt.Errorf("scan daily price row: %w", err)
		}
		series[domain.DateKey(date)] = close
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily price rows: %w", err)
	}

	if len(series) == 0 {
		return nil, nil
	}
	return series, nil
}

// Save stores the series for a symbol, replacing any cached copy.
func (s *PriceStore) Save(ctx context.Context, symbol string, series prices.Series) error {
	if symbol == "" {
		return storage.ErrInvalidInput
	}
	if len(series) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO daily_prices (symbol, date, close)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for dateKey, close := range series {
		date, err := domain.ParseDate(dateKey)
		if err != nil {
			return fmt.Errorf("parse series date %q: %w", dateKey, err)
		}
		if err := batch.Append(symbol, date, close); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// Invalidate drops the cached series for a symbol.
func (s *PriceStore) Invalidate(ctx context.Context, symbol string) error {
	if symbol == "" {
		return storage.ErrInvalidInput
	}

	query := `ALTER TABLE daily_prices DELETE WHERE symbol = ?`
	if err := s.conn.Exec(ctx, query, symbol); err != nil {
		return fmt.Errorf("delete daily prices: %w", err)
	}
	return nil
}
