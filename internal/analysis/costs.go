package analysis

import (
	"fmt"
	"strings"

	"meeting-pick-lab/internal/domain"
	"meeting-pick-lab/internal/metrics"
)

// Tiered round-trip cost assumptions in basis points.
const (
	costLargeCapBps = 5
	costMidCapBps   = 15
	costDefaultBps  = 20
	costOverseasBps = 30
)

// largeCaps trade with negligible spread.
var largeCaps = map[string]bool{
	"AAPL": true, "MSFT": true, "AMZN": true, "GOOGL": true, "META": true,
	"NVDA": true, "TSLA": true, "JPM": true, "V": true, "MA": true,
	"AVGO": true, "LLY": true, "WMT": true, "PG": true, "HD": true,
	"COST": true, "ORCL": true, "NFLX": true, "CRM": true, "BAC": true,
	"INTC": true, "QCOM": true, "AMD": true, "MU": true, "ASML": true,
	"TSM": true, "BABA": true, "PDD": true, "NVO": true, "PM": true,
	"PEP": true, "DIS": true, "CMCSA": true, "SBUX": true, "NKE": true,
	"BKNG": true, "CMG": true, "LULU": true, "WFC": true, "AXP": true,
	"PYPL": true, "SCHW": true, "SPY": true,
}

// midCaps trade with moderate spread.
var midCaps = map[string]bool{
	"HOOD": true, "SNAP": true, "PINS": true, "COIN": true, "DECK": true,
	"ONON": true, "RH": true, "BLDR": true, "FND": true, "IBKR": true,
	"FUTU": true, "EXPE": true, "ABNB": true, "HLT": true, "POOL": true,
	"EL": true, "STZ": true, "TJX": true, "ROST": true, "DLTR": true,
	"LOW": true, "EFX": true, "FICO": true, "MCO": true, "MSCI": true,
	"JD": true, "BIDU": true, "TCOM": true, "NTES": true, "BEKE": true,
	"HTHT": true, "RACE": true,
}

// overseasSuffixes mark listings with wider spreads and FX friction.
var overseasSuffixes = []string{".HK", ".T", ".PA", ".L", ".SW", ".SZ", ".SS", ".DE"}

// TieredCostBps returns the assumed round-trip cost for a symbol.
func TieredCostBps(symbol string) int {
	sym := strings.ToUpper(symbol)
	if largeCaps[sym] {
		return costLargeCapBps
	}
	if midCaps[sym] {
		return costMidCapBps
	}
	for _, suffix := range overseasSuffixes {
		if strings.HasSuffix(sym, suffix) {
			return costOverseasBps
		}
	}
	return costDefaultBps
}

// CostScenario is the acted-bullish excess statistics under one cost
// assumption.
type CostScenario struct {
	Name    string
	FlatBps *int // nil for the tiered scenario

	Mean            float64
	WinRate         float64
	Sharpe          float64
	ExcessReduction float64
}

// CostResult is the outcome of the transaction-cost sensitivity sweep.
type CostResult struct {
	N            int
	BaselineMean float64

	Scenarios []CostScenario

	// BreakevenBps is the flat per-trade cost that zeroes the mean
	// excess, zero when the baseline is already non-positive.
	BreakevenBps float64

	// TieredDistribution counts picks per tiered cost level.
	TieredDistribution map[int]int
}

// CostSensitivity applies flat and tiered round-trip costs to the
// acted-bullish 30-day excess returns.
func CostSensitivity(picks []*domain.Pick) (*CostResult, error) {
	acted := bullishActed(picks)

	var excess []float64
	var symbols []string
	for _, p := range acted {
		if ex := p.Excess(domain.DefaultHoldDays); ex != nil {
			excess = append(excess, *ex)
			symbols = append(symbols, p.Ticker)
		}
	}

	if len(excess) < MinBootstrapPicks {
		return nil, fmt.Errorf("%w: %d acted bullish picks with excess, need %d", ErrInsufficientData, len(excess), MinBootstrapPicks)
	}

	baseline := metrics.Mean(excess)
	result := &CostResult{
		N:                  len(excess),
		BaselineMean:       baseline,
		TieredDistribution: make(map[int]int),
	}

	for _, bps := range []int{10, 20, 30} {
		adjusted := applyFlatCost(excess, float64(bps))
		b := bps
		result.Scenarios = append(result.Scenarios, CostScenario{
			Name:            fmt.Sprintf("Flat %dbp", bps),
			FlatBps:         &b,
			Mean:            metrics.Mean(adjusted),
			WinRate:         metrics.WinRate(adjusted),
			Sharpe:          costSharpe(adjusted),
			ExcessReduction: baseline - metrics.Mean(adjusted),
		})
	}

	tiered := make([]float64, len(excess))
	for i, ex := range excess {
		bps := TieredCostBps(symbols[i])
		result.TieredDistribution[bps]++
		tiered[i] = ex - float64(bps)/10000
	}
	result.Scenarios = append(result.Scenarios, CostScenario{
		Name:            "Tiered",
		Mean:            metrics.Mean(tiered),
		WinRate:         metrics.WinRate(tiered),
		Sharpe:          costSharpe(tiered),
		ExcessReduction: baseline - metrics.Mean(tiered),
	})

	result.BreakevenBps = breakevenBps(excess, baseline)
	return result, nil
}

func applyFlatCost(excess []float64, bps float64) []float64 {
	adjusted := make([]float64, len(excess))
	for i, ex := range excess {
		adjusted[i] = ex - bps/10000
	}
	return adjusted
}

func costSharpe(xs []float64) float64 {
	std := metrics.StddevPopulation(xs)
	if std == 0 {
		return 0
	}
	return metrics.Mean(xs) / std
}

// breakevenBps binary-searches the flat cost that zeroes the mean excess
// in [0, 200] basis points.
func breakevenBps(excess []float64, baseline float64) float64 {
	if baseline <= 0 {
		return 0
	}

	lo, hi := 0.0, 200.0
	for i := 0; i < 50; i++ {
		mid := (lo + hi) / 2
		if metrics.Mean(applyFlatCost(excess, mid)) > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
