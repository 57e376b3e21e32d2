package analysis

import (
	"errors"
	"math"
	"testing"

	"meeting-pick-lab/internal/domain"
)

func TestRollingPortfolio_TooFewBaskets(t *testing.T) {
	picks := []*domain.Pick{
		actedPick("NVDA", "2024-01-01", 0.10),
		actedPick("META", "2024-02-01", 0.05),
	}

	_, err := RollingPortfolio(picks, domain.DefaultHoldDays)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestRollingPortfolio_Compounding(t *testing.T) {
	p1 := actedPick("NVDA", "2024-01-01", 0.10)
	p2 := actedPick("META", "2024-01-01", 0.20)
	p2.ExcessReturns[30] = fp(0.10)
	p3 := actedPick("AMD", "2024-04-01", 0.05)
	p4 := actedPick("MU", "2024-07-01", -0.02)

	result, err := RollingPortfolio([]*domain.Pick{p1, p2, p3, p4}, 30)
	if err != nil {
		t.Fatalf("RollingPortfolio: %v", err)
	}

	if result.Baskets != 3 {
		t.Fatalf("Baskets = %d, want 3", result.Baskets)
	}
	if !almostEqual(result.AvgPicksPerBasket, 4.0/3) {
		t.Errorf("AvgPicksPerBasket = %f, want %f", result.AvgPicksPerBasket, 4.0/3)
	}

	wantYears := 182.0 / 365.25
	if !almostEqual(result.Years, wantYears) {
		t.Errorf("Years = %f, want %f", result.Years, wantYears)
	}
	if !almostEqual(result.BasketsPerYear, 3/wantYears) {
		t.Errorf("BasketsPerYear = %f, want %f", result.BasketsPerYear, 3/wantYears)
	}

	// Basket returns: 0.15, 0.05, -0.02.
	wantTotal := 1.15*1.05*0.98 - 1
	if !almostEqual(result.Raw.TotalReturn, wantTotal) {
		t.Errorf("Raw.TotalReturn = %f, want %f", result.Raw.TotalReturn, wantTotal)
	}
	wantAnn := math.Pow(1+wantTotal, 1/wantYears) - 1
	if !almostEqual(result.Raw.AnnualizedReturn, wantAnn) {
		t.Errorf("Raw.AnnualizedReturn = %f, want %f", result.Raw.AnnualizedReturn, wantAnn)
	}
	if !almostEqual(result.Raw.MaxDrawdown, -0.02) {
		t.Errorf("Raw.MaxDrawdown = %f, want -0.02", result.Raw.MaxDrawdown)
	}
	if !almostEqual(result.Raw.WinRate, 2.0/3) {
		t.Errorf("Raw.WinRate = %f, want %f", result.Raw.WinRate, 2.0/3)
	}

	// Excess baskets: 0.10, 0.05, -0.02.
	wantExcessTotal := 1.10*1.05*0.98 - 1
	if !almostEqual(result.Excess.TotalReturn, wantExcessTotal) {
		t.Errorf("Excess.TotalReturn = %f, want %f", result.Excess.TotalReturn, wantExcessTotal)
	}
}

func TestRollingPortfolio_SkipsBearishAndMissingReturns(t *testing.T) {
	bear := newPick("SNAP", "2024-02-01", domain.SentimentBearish, true)
	bear.Returns[30] = fp(0.50)
	noData := newPick("COIN", "2024-03-01", domain.SentimentBullish, true)

	picks := []*domain.Pick{
		actedPick("NVDA", "2024-01-01", 0.10),
		bear,
		noData,
		actedPick("AMD", "2024-04-01", 0.05),
		actedPick("MU", "2024-05-01", 0.02),
	}

	result, err := RollingPortfolio(picks, 30)
	if err != nil {
		t.Fatalf("RollingPortfolio: %v", err)
	}
	if result.Baskets != 3 {
		t.Errorf("Baskets = %d, want 3 (bearish and no-data meetings skipped)", result.Baskets)
	}
}

func TestRollingPortfolio_YearsFloor(t *testing.T) {
	picks := []*domain.Pick{
		actedPick("NVDA", "2024-01-01", 0.01),
		actedPick("AMD", "2024-01-03", 0.02),
		actedPick("MU", "2024-01-05", 0.03),
	}

	result, err := RollingPortfolio(picks, 30)
	if err != nil {
		t.Fatalf("RollingPortfolio: %v", err)
	}
	if !almostEqual(result.Years, 0.1) {
		t.Errorf("Years = %f, want floor 0.1", result.Years)
	}
}
