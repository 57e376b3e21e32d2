package analysis

import (
	"errors"
	"math"
	"testing"

	"meeting-pick-lab/internal/domain"
)

func TestTieredCostBps(t *testing.T) {
	tests := []struct {
		symbol string
		want   int
	}{
		{"AAPL", 5},
		{"aapl", 5},
		{"SPY", 5},
		{"HOOD", 15},
		{"RACE", 15},
		{"0700.HK", 30},
		{"7203.T", 30},
		{"MC.PA", 30},
		{"SHEL.L", 30},
		{"SAP.DE", 30},
		{"IONQ", 20},
	}

	for _, tt := range tests {
		if got := TieredCostBps(tt.symbol); got != tt.want {
			t.Errorf("TieredCostBps(%q) = %d, want %d", tt.symbol, got, tt.want)
		}
	}
}

func TestCostSensitivity_TooFewPicks(t *testing.T) {
	picks := []*domain.Pick{
		actedPick("NVDA", "2024-01-01", 0.05),
		actedPick("AMD", "2024-01-02", 0.03),
	}
	_, err := CostSensitivity(picks)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestCostSensitivity_FlatAndTiered(t *testing.T) {
	// Every pick earns 100bp of excess; tickers span all four tiers.
	picks := []*domain.Pick{
		actedPick("AAPL", "2024-01-01", 0.01),
		actedPick("MSFT", "2024-01-02", 0.01),
		actedPick("HOOD", "2024-01-03", 0.01),
		actedPick("0700.HK", "2024-01-04", 0.01),
		actedPick("IONQ", "2024-01-05", 0.01),
	}

	result, err := CostSensitivity(picks)
	if err != nil {
		t.Fatalf("CostSensitivity: %v", err)
	}

	if result.N != 5 {
		t.Fatalf("N = %d, want 5", result.N)
	}
	if !almostEqual(result.BaselineMean, 0.01) {
		t.Errorf("BaselineMean = %f, want 0.01", result.BaselineMean)
	}
	if len(result.Scenarios) != 4 {
		t.Fatalf("got %d scenarios, want 4", len(result.Scenarios))
	}

	flat10 := result.Scenarios[0]
	if flat10.FlatBps == nil || *flat10.FlatBps != 10 {
		t.Fatalf("first scenario FlatBps = %v, want 10", flat10.FlatBps)
	}
	if !almostEqual(flat10.Mean, 0.009) {
		t.Errorf("flat 10bp mean = %f, want 0.009", flat10.Mean)
	}
	if !almostEqual(flat10.ExcessReduction, 0.001) {
		t.Errorf("flat 10bp reduction = %f, want 0.001", flat10.ExcessReduction)
	}
	if flat10.WinRate != 1 {
		t.Errorf("flat 10bp win rate = %f, want 1", flat10.WinRate)
	}

	tiered := result.Scenarios[3]
	if tiered.Name != "Tiered" || tiered.FlatBps != nil {
		t.Fatalf("last scenario = %q FlatBps %v, want tiered", tiered.Name, tiered.FlatBps)
	}
	// Costs: 5, 5, 15, 30, 20 bp, averaging 15bp.
	if !almostEqual(tiered.Mean, 0.01-0.0015) {
		t.Errorf("tiered mean = %f, want 0.0085", tiered.Mean)
	}

	wantDist := map[int]int{5: 2, 15: 1, 20: 1, 30: 1}
	for bps, n := range wantDist {
		if result.TieredDistribution[bps] != n {
			t.Errorf("tiered distribution[%d] = %d, want %d", bps, result.TieredDistribution[bps], n)
		}
	}

	// Uniform 100bp excess breaks even at a 100bp flat cost.
	if math.Abs(result.BreakevenBps-100) > 1e-6 {
		t.Errorf("BreakevenBps = %f, want 100", result.BreakevenBps)
	}
}

func TestCostSensitivity_NegativeBaselineHasNoBreakeven(t *testing.T) {
	var picks []*domain.Pick
	for i, tk := range []string{"A", "B", "C", "D", "E"} {
		picks = append(picks, actedPick(tk, day("2024-01-01").AddDate(0, 0, i).Format("2006-01-02"), -0.02))
	}

	result, err := CostSensitivity(picks)
	if err != nil {
		t.Fatalf("CostSensitivity: %v", err)
	}
	if result.BreakevenBps != 0 {
		t.Errorf("BreakevenBps = %f, want 0 for a losing baseline", result.BreakevenBps)
	}
}
