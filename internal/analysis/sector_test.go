package analysis

import (
	"errors"
	"testing"

	"meeting-pick-lab/internal/domain"
	"meeting-pick-lab/internal/prices"
)

// sectorPick builds a pick with a sector and both a raw and a
// benchmark-adjusted 30-day return.
func sectorPick(tk, sector, date string, raw, excess float64, sentiment domain.Sentiment, acted bool) *domain.Pick {
	p := newPick(tk, date, sentiment, acted)
	p.Sector = sector
	p.Returns[domain.DefaultHoldDays] = fp(raw)
	p.ExcessReturns[domain.DefaultHoldDays] = fp(excess)
	return p
}

func TestSectorAttribution_NoSeries(t *testing.T) {
	picks := []*domain.Pick{sectorPick("NVDA", "Semi", "2024-01-10", 0.10, 0.04, domain.SentimentBullish, true)}

	_, err := SectorAttribution(picks, nil)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestSectorAttribution_SplitsSelectionFromAllocation(t *testing.T) {
	// SMH is flat over the window, so the sector adjustment removes
	// nothing: the full raw return reads as stock selection.
	smh := daySeries("2024-01-01", 90, func(int) float64 { return 100 })
	etfs := map[string]prices.Series{"SMH": smh}

	picks := []*domain.Pick{
		sectorPick("NVDA", "Semi", "2024-01-10", 0.10, 0.04, domain.SentimentBullish, true),
		sectorPick("AMD", "Semi", "2024-01-10", 0.06, 0.00, domain.SentimentBullish, true),
		// No XLF series: the pick drops out of the attribution.
		sectorPick("JPM", "Fin", "2024-01-10", 0.08, 0.02, domain.SentimentBullish, true),
	}

	result, err := SectorAttribution(picks, etfs)
	if err != nil {
		t.Fatalf("SectorAttribution: %v", err)
	}

	if len(result.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(result.Groups))
	}
	g := result.Groups[0]
	if g.Bucket != domain.BucketBullishActed || g.N != 2 {
		t.Fatalf("group = %s n=%d, want BULLISH_ACTED n=2", g.Bucket, g.N)
	}
	if !almostEqual(g.BenchExcessMean, 0.02) {
		t.Errorf("BenchExcessMean = %f, want 0.02", g.BenchExcessMean)
	}
	if !almostEqual(g.SectorExcessMean, 0.08) {
		t.Errorf("SectorExcessMean = %f, want 0.08 (flat ETF leaves raw intact)", g.SectorExcessMean)
	}

	if len(result.Sectors) != 1 {
		t.Fatalf("got %d sector rows, want 1", len(result.Sectors))
	}
	s := result.Sectors[0]
	if s.Sector != "Semi" || s.ETF != "SMH" || s.N != 2 {
		t.Errorf("sector row = %s/%s n=%d, want Semi/SMH n=2", s.Sector, s.ETF, s.N)
	}
	if !almostEqual(s.RawMean, 0.08) || !almostEqual(s.SectorExcessMean, 0.08) {
		t.Errorf("sector means = %f/%f, want 0.08/0.08", s.RawMean, s.SectorExcessMean)
	}
}

func TestSectorAttribution_RisingETFShrinksExcess(t *testing.T) {
	// SMH rises 1 a day from 100: the 30-day sector return from Jan 10
	// is 30/109, which the adjustment subtracts from the raw return.
	smh := daySeries("2024-01-01", 90, func(i int) float64 { return 100 + float64(i) })
	etfs := map[string]prices.Series{"SMH": smh}

	picks := []*domain.Pick{
		sectorPick("NVDA", "Semi", "2024-01-10", 0.30, 0.20, domain.SentimentBullish, true),
		sectorPick("AMD", "Semi", "2024-01-10", 0.30, 0.20, domain.SentimentBullish, true),
	}

	result, err := SectorAttribution(picks, etfs)
	if err != nil {
		t.Fatalf("SectorAttribution: %v", err)
	}

	want := 0.30 - 30.0/109.0
	if !almostEqual(result.Groups[0].SectorExcessMean, want) {
		t.Errorf("SectorExcessMean = %f, want %f", result.Groups[0].SectorExcessMean, want)
	}
}

func TestSectorAttribution_SmallSectorsLeftOutOfBreakdown(t *testing.T) {
	spy := daySeries("2024-01-01", 90, func(int) float64 { return 500 })
	etfs := map[string]prices.Series{"SPY": spy}

	picks := []*domain.Pick{
		sectorPick("ZGN", "Other", "2024-01-10", 0.05, 0.01, domain.SentimentBullish, false),
	}

	result, err := SectorAttribution(picks, etfs)
	if err != nil {
		t.Fatalf("SectorAttribution: %v", err)
	}
	if len(result.Groups) != 1 {
		t.Errorf("got %d groups, want 1", len(result.Groups))
	}
	// One pick is below the per-sector minimum.
	if len(result.Sectors) != 0 {
		t.Errorf("got %d sector rows, want 0", len(result.Sectors))
	}
}
