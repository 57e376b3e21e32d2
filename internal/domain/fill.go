package domain

import "time"

// Fill directions.
const (
	DirectionBuy  = "BUY"
	DirectionSell = "SELL"
)

// Fill is a single execution from the real trade ledger.
type Fill struct {
	Ticker     string    // ledger vocabulary, e.g. "700" or "BRK B"
	Date       time.Time // UTC midnight trade date
	Direction  string    // "BUY" | "SELL"
	Quantity   float64   // unsigned share count
	FillPrice  *float64  // execution price in trade currency, nullable
	Commission float64   // commission in trade currency
	PnLUSD     float64   // realized P&L reported by the broker, USD
	Currency   string    // trade currency code
	AssetType  string    // "Stock", "Option", ...
}

// SignedQuantity returns the quantity with sign applied by direction.
func (f *Fill) SignedQuantity() float64 {
	if f.Direction == DirectionSell {
		return -f.Quantity
	}
	return f.Quantity
}

// IsStock reports whether the fill is an equity fill. Position timelines
// and acted-on matching only consider equity fills. The broker export
// leaves AssetType empty for plain stock rows.
func (f *Fill) IsStock() bool {
	return f.AssetType == "" || f.AssetType == "STK"
}
