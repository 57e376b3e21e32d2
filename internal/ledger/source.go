package ledger

import (
	"encoding/json"
	"fmt"
	"os"

	"meeting-pick-lab/internal/domain"
)

// exportFill mirrors one row of the broker trade export.
type exportFill struct {
	Ticker     string   `json:"ticker"`
	AssetType  string   `json:"asset_type"`
	EntryDate  string   `json:"entry_date"`
	ExitDate   string   `json:"exit_date"`
	Direction  string   `json:"direction"`
	Quantity   float64  `json:"quantity"`
	ExitPrice  *float64 `json:"exit_price"`
	PnLUSD     float64  `json:"pnl_usd"`
	Commission float64  `json:"commission"`
	Currency   string   `json:"currency"`
}

type export struct {
	Trades []exportFill `json:"trades"`
}

// ParseFills decodes a trade export. Both the wrapped {"trades": [...]}
// form and a bare array are accepted. Rows without a ticker or date are
// dropped rather than failing the whole file.
func ParseFills(data []byte) ([]*domain.Fill, error) {
	var wrapped export
	if err := json.Unmarshal(data, &wrapped); err != nil || wrapped.Trades == nil {
		var bare []exportFill
		if err := json.Unmarshal(data, &bare); err != nil {
			return nil, fmt.Errorf("decode trade export: %w", err)
		}
		wrapped.Trades = bare
	}

	fills := make([]*domain.Fill, 0, len(wrapped.Trades))
	for _, row := range wrapped.Trades {
		if row.Ticker == "" {
			continue
		}
		dateStr := row.ExitDate
		if dateStr == "" {
			dateStr = row.EntryDate
		}
		if dateStr == "" {
			continue
		}
		date, err := domain.ParseDate(dateStr)
		if err != nil {
			continue
		}

		currency := row.Currency
		if currency == "" {
			currency = "USD"
		}

		fills = append(fills, &domain.Fill{
			Ticker:     row.Ticker,
			Date:       date,
			Direction:  row.Direction,
			Quantity:   row.Quantity,
			FillPrice:  row.ExitPrice,
			Commission: row.Commission,
			PnLUSD:     row.PnLUSD,
			Currency:   currency,
			AssetType:  row.AssetType,
		})
	}
	return fills, nil
}

// LoadFills reads and decodes a trade export file.
func LoadFills(path string) ([]*domain.Fill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trade export: %w", err)
	}
	return ParseFills(data)
}
