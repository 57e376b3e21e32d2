package ledger

import (
	"testing"
	"time"

	"meeting-pick-lab/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fill(t string, date time.Time, dir string, qty float64) *domain.Fill {
	return &domain.Fill{Ticker: t, Date: date, Direction: dir, Quantity: qty}
}

func TestActedOn_Held(t *testing.T) {
	m := NewMatcher([]*domain.Fill{
		fill("NVDA", day(2025, 1, 10), domain.DirectionBuy, 100),
	})

	acted, reason := m.ActedOn("NVDA", day(2025, 2, 1), DefaultPreDays, DefaultPostDays)
	if !acted || reason != domain.ActedReasonHeld {
		t.Errorf("expected (true, held), got (%v, %q)", acted, reason)
	}
}

func TestActedOn_HeldWinsOverTraded(t *testing.T) {
	// Position open on meeting date AND a trade inside the window
	m := NewMatcher([]*domain.Fill{
		fill("NVDA", day(2025, 1, 10), domain.DirectionBuy, 100),
		fill("NVDA", day(2025, 2, 3), domain.DirectionBuy, 50),
	})

	acted, reason := m.ActedOn("NVDA", day(2025, 2, 1), DefaultPreDays, DefaultPostDays)
	if !acted || reason != domain.ActedReasonHeld {
		t.Errorf("expected held to win, got (%v, %q)", acted, reason)
	}
}

func TestActedOn_TradedWindow(t *testing.T) {
	// Flat position, but bought 2 days after the meeting
	m := NewMatcher([]*domain.Fill{
		fill("AAPL", day(2025, 2, 3), domain.DirectionBuy, 10),
	})

	acted, reason := m.ActedOn("AAPL", day(2025, 2, 1), DefaultPreDays, DefaultPostDays)
	if !acted || reason != domain.ActedReasonTraded {
		t.Errorf("expected (true, traded), got (%v, %q)", acted, reason)
	}

	// 8 days after the meeting is outside the +7d window
	acted, _ = m.ActedOn("AAPL", day(2025, 1, 26), DefaultPreDays, DefaultPostDays)
	if acted {
		t.Error("expected trade outside window to not count")
	}
}

func TestActedOn_ClosedPositionIsFlat(t *testing.T) {
	m := NewMatcher([]*domain.Fill{
		fill("TSLA", day(2025, 1, 5), domain.DirectionBuy, 100),
		fill("TSLA", day(2025, 1, 20), domain.DirectionSell, 100),
	})

	acted, _ := m.ActedOn("TSLA", day(2025, 2, 15), DefaultPreDays, DefaultPostDays)
	if acted {
		t.Error("expected closed position to not count as held")
	}
}

func TestActedOn_LedgerAliases(t *testing.T) {
	// Ledger carries HK positions under the D-suffixed bare code
	m := NewMatcher([]*domain.Fill{
		fill("690D", day(2025, 1, 10), domain.DirectionBuy, 500),
	})

	acted, reason := m.ActedOn("0690.HK", day(2025, 2, 1), DefaultPreDays, DefaultPostDays)
	if !acted || reason != domain.ActedReasonHeld {
		t.Errorf("expected alias match for 0690.HK, got (%v, %q)", acted, reason)
	}

	// Renamed ticker: provider XYZ was SQ in the ledger
	m = NewMatcher([]*domain.Fill{
		fill("SQ", day(2025, 1, 10), domain.DirectionBuy, 25),
	})
	acted, _ = m.ActedOn("XYZ", day(2025, 2, 1), DefaultPreDays, DefaultPostDays)
	if !acted {
		t.Error("expected rename alias SQ to match XYZ")
	}
}

func TestPositionShares(t *testing.T) {
	m := NewMatcher([]*domain.Fill{
		fill("NVDA", day(2025, 1, 10), domain.DirectionBuy, 100),
		fill("NVDA", day(2025, 1, 20), domain.DirectionSell, 40),
	})

	if got := m.PositionShares("NVDA", day(2025, 1, 15)); got != 100 {
		t.Errorf("expected 100 shares, got %f", got)
	}
	if got := m.PositionShares("NVDA", day(2025, 1, 25)); got != 60 {
		t.Errorf("expected 60 shares, got %f", got)
	}
	if got := m.PositionShares("NVDA", day(2025, 1, 5)); got != 0 {
		t.Errorf("expected 0 shares before first fill, got %f", got)
	}
}

func TestNewMatcher_SkipsNonStockFills(t *testing.T) {
	opt := fill("NVDA", day(2025, 1, 10), domain.DirectionBuy, 10)
	opt.AssetType = "OPT"
	m := NewMatcher([]*domain.Fill{opt})

	if got := m.PositionShares("NVDA", day(2025, 2, 1)); got != 0 {
		t.Errorf("expected option fills to be ignored, got %f", got)
	}
}

func TestFillsInWindow(t *testing.T) {
	m := NewMatcher([]*domain.Fill{
		fill("META", day(2025, 1, 15), domain.DirectionBuy, 10),
		fill("META", day(2025, 2, 20), domain.DirectionSell, 10),
		fill("META", day(2025, 6, 1), domain.DirectionBuy, 5),
	})

	got := m.FillsInWindow("META", day(2025, 2, 1), 30, 90)
	if len(got) != 2 {
		t.Fatalf("expected 2 fills in window, got %d", len(got))
	}
}

func TestParseFills(t *testing.T) {
	data := []byte(`{"trades": [
		{"ticker": "NVDA", "asset_type": "STK", "entry_date": "2025-01-10", "direction": "BUY", "quantity": 100, "exit_price": 120.5, "commission": 1.0, "currency": "USD"},
		{"ticker": "NVDA", "asset_type": "STK", "exit_date": "2025-02-10", "direction": "SELL", "quantity": 100, "exit_price": 130.0, "pnl_usd": 950.0},
		{"ticker": "", "exit_date": "2025-02-10", "direction": "SELL", "quantity": 1},
		{"ticker": "SPX", "asset_type": "OPT", "exit_date": "2025-02-11", "direction": "SELL", "quantity": 1}
	]}`)

	fills, err := ParseFills(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Empty ticker dropped; option row kept here (matcher filters it later)
	if len(fills) != 3 {
		t.Fatalf("expected 3 fills, got %d", len(fills))
	}
	if fills[0].FillPrice == nil || *fills[0].FillPrice != 120.5 {
		t.Errorf("expected fill price 120.5, got %v", fills[0].FillPrice)
	}
	if fills[1].PnLUSD != 950.0 {
		t.Errorf("expected pnl 950, got %f", fills[1].PnLUSD)
	}
	if fills[0].Currency != "USD" || fills[1].Currency != "USD" {
		t.Error("expected USD currency default")
	}
}

func TestParseFills_BareArray2(t *testing.T) {
	data := []byte(`[{"ticker": "AAPL", "exit_date": "2025-03-01", "direction": "BUY", "quantity": 5}]`)
	fills, err := ParseFills(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fills) != 1 || fills[0].Ticker != "AAPL" {
		t.Fatalf("unexpected fills: %+v", fills)
	}
}
