package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"meeting-pick-lab/internal/domain"
)

const wrappedExport = `{
	"trades": [
		{"ticker": "NVDA", "entry_date": "2024-03-01", "exit_date": "2024-03-15",
		 "direction": "SELL", "quantity": 20, "exit_price": 905.5,
		 "commission": 1.5, "pnl_usd": 312.0, "currency": "USD", "asset_type": "STK"},
		{"ticker": "700", "entry_date": "2024-02-20",
		 "direction": "BUY", "quantity": 300},
		{"ticker": "", "entry_date": "2024-02-20", "direction": "BUY", "quantity": 1},
		{"ticker": "META", "direction": "BUY", "quantity": 10},
		{"ticker": "AMD", "entry_date": "not-a-date", "direction": "BUY", "quantity": 5}
	]
}`

func TestParseFills_WrappedExport(t *testing.T) {
	fills, err := ParseFills([]byte(wrappedExport))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fills) != 2 {
		t.Fatalf("got %d fills, want 2 (no-ticker, no-date and bad-date rows dropped)", len(fills))
	}

	nvda := fills[0]
	if nvda.Ticker != "NVDA" || nvda.Direction != domain.DirectionSell {
		t.Errorf("first fill = %s/%s, want NVDA SELL", nvda.Ticker, nvda.Direction)
	}
	if got := domain.DateKey(nvda.Date); got != "2024-03-15" {
		t.Errorf("exit date should win over entry date, got %s", got)
	}
	if nvda.FillPrice == nil || *nvda.FillPrice != 905.5 {
		t.Errorf("FillPrice = %v, want 905.5", nvda.FillPrice)
	}
	if nvda.PnLUSD != 312.0 || nvda.Commission != 1.5 {
		t.Errorf("PnLUSD/Commission = %v/%v", nvda.PnLUSD, nvda.Commission)
	}

	tencent := fills[1]
	if got := domain.DateKey(tencent.Date); got != "2024-02-20" {
		t.Errorf("entry date should back-fill a missing exit date, got %s", got)
	}
	if tencent.Currency != "USD" {
		t.Errorf("Currency = %q, want USD default", tencent.Currency)
	}
	if tencent.FillPrice != nil {
		t.Errorf("missing exit price should stay nil, got %v", tencent.FillPrice)
	}
}

func TestParseFills_BareArray(t *testing.T) {
	data := `[{"ticker": "HOOD", "entry_date": "2024-05-02", "direction": "BUY", "quantity": 50}]`
	fills, err := ParseFills([]byte(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fills) != 1 || fills[0].Ticker != "HOOD" {
		t.Fatalf("bare array export not decoded: %+v", fills)
	}
}

func TestParseFills_Invalid(t *testing.T) {
	if _, err := ParseFills([]byte("not json")); err == nil {
		t.Fatalf("expected error for malformed export")
	}
}

func TestLoadFills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.json")
	if err := os.WriteFile(path, []byte(wrappedExport), 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}

	fills, err := LoadFills(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fills) != 2 {
		t.Errorf("got %d fills, want 2", len(fills))
	}

	if _, err := LoadFills(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Errorf("expected error for missing file")
	}
}
