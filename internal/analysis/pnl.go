package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"meeting-pick-lab/internal/domain"
	"meeting-pick-lab/internal/ledger"
	"meeting-pick-lab/internal/metrics"
)

// Fill-matching window around the meeting date, in calendar days.
const (
	PnLPreDays  = 30
	PnLPostDays = 90
)

const (
	pnlTopMatched   = 30
	pnlTopUnmatched = 20
)

// MinPnLCorrelation is the minimum matched pairs for the backtest/actual
// correlation.
const MinPnLCorrelation = 5

// PnLRecord compares one pick's backtest return with the return realized
// through actual fills.
type PnLRecord struct {
	Ticker      string
	MeetingDate time.Time

	BacktestReturn float64
	ActualReturn   float64
	Diff           float64

	AvgBuy  float64
	AvgSell float64
	BuyQty  float64
	SellQty float64

	// SlippagePct is the average buy price relative to the backtest base
	// price, nil when no base price was resolved.
	SlippagePct   *float64
	CommissionBps float64
	FillCount     int
}

// PnLUnmatched is a pick whose fills did not form a measurable round trip.
type PnLUnmatched struct {
	Ticker      string
	MeetingDate time.Time
	Reason      string
	FillCount   int
}

// PnLResult is the outcome of reconciling backtest returns against the
// trade ledger.
type PnLResult struct {
	EligibleN  int
	MatchedN   int
	UnmatchedN int

	MeanDiff          *float64
	MedianDiff        *float64
	MeanSlippagePct   *float64
	MeanCommissionBps *float64
	Correlation       *float64

	Matched   []*PnLRecord
	Unmatched []*PnLUnmatched
}

// PnLReconciliation compares the 30-day backtest return of each acted
// bullish pick with the buy/sell round trip found in the fills around the
// meeting. Matched records are sorted by divergence, largest first.
func PnLReconciliation(picks []*domain.Pick, fills []*domain.Fill) (*PnLResult, error) {
	var eligible []*domain.Pick
	for _, p := range bullishActed(picks) {
		if p.Returns[domain.DefaultHoldDays] != nil {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf("%w: no acted bullish picks with returns", ErrInsufficientData)
	}

	matcher := ledger.NewMatcher(fills)
	result := &PnLResult{EligibleN: len(eligible)}

	var backtests, actuals, slippages, commissions []float64
	for _, p := range eligible {
		window := matcher.FillsInWindow(p.Ticker, p.MeetingDate, PnLPreDays, PnLPostDays)
		record, reason := reconcilePick(p, window)
		if record == nil {
			result.Unmatched = append(result.Unmatched, &PnLUnmatched{
				Ticker:      p.Ticker,
				MeetingDate: p.MeetingDate,
				Reason:      reason,
				FillCount:   len(window),
			})
			continue
		}

		result.Matched = append(result.Matched, record)
		backtests = append(backtests, record.BacktestReturn)
		actuals = append(actuals, record.ActualReturn)
		commissions = append(commissions, record.CommissionBps)
		if record.SlippagePct != nil {
			slippages = append(slippages, *record.SlippagePct)
		}
	}

	result.MatchedN = len(result.Matched)
	result.UnmatchedN = len(result.Unmatched)

	if result.MatchedN > 0 {
		diffs := make([]float64, result.MatchedN)
		for i, r := range result.Matched {
			diffs[i] = r.Diff
		}
		meanDiff := metrics.Mean(diffs)
		medianDiff := metrics.Median(diffs)
		meanComm := metrics.Mean(commissions)
		result.MeanDiff = &meanDiff
		result.MedianDiff = &medianDiff
		result.MeanCommissionBps = &meanComm
	}
	if len(slippages) > 0 {
		meanSlip := metrics.Mean(slippages)
		result.MeanSlippagePct = &meanSlip
	}
	if result.MatchedN >= MinPnLCorrelation {
		corr := metrics.Correlation(backtests, actuals)
		result.Correlation = &corr
	}

	sort.SliceStable(result.Matched, func(i, j int) bool {
		return math.Abs(result.Matched[i].Diff) > math.Abs(result.Matched[j].Diff)
	})
	if len(result.Matched) > pnlTopMatched {
		result.Matched = result.Matched[:pnlTopMatched]
	}

	sort.SliceStable(result.Unmatched, func(i, j int) bool {
		if !result.Unmatched[i].MeetingDate.Equal(result.Unmatched[j].MeetingDate) {
			return result.Unmatched[i].MeetingDate.Before(result.Unmatched[j].MeetingDate)
		}
		return result.Unmatched[i].Ticker < result.Unmatched[j].Ticker
	})
	if len(result.Unmatched) > pnlTopUnmatched {
		result.Unmatched = result.Unmatched[:pnlTopUnmatched]
	}

	return result, nil
}

// reconcilePick builds the matched record for one pick, or returns the
// reason it could not be matched. The ledger export drops the fill price
// on some rows; cost averages sum only priced fills while quantities sum
// every fill, matching how the broker statement totals read.
func reconcilePick(p *domain.Pick, window []*domain.Fill) (*PnLRecord, string) {
	if len(window) == 0 {
		return nil, "no fills in window"
	}

	var buyQty, buyCost, sellQty, sellRevenue, commission float64
	for _, f := range window {
		commission += math.Abs(f.Commission)
		switch f.Direction {
		case domain.DirectionBuy:
			buyQty += f.Quantity
			if f.FillPrice != nil {
				buyCost += f.Quantity * *f.FillPrice
			}
		case domain.DirectionSell:
			sellQty += f.Quantity
			if f.FillPrice != nil {
				sellRevenue += f.Quantity * *f.FillPrice
			}
		}
	}

	if buyQty == 0 {
		return nil, "no buy fills in window"
	}
	if sellQty == 0 {
		return nil, "position not closed in window"
	}

	avgBuy := buyCost / buyQty
	avgSell := sellRevenue / sellQty
	if avgBuy <= 0 {
		return nil, "no priced buy fills"
	}

	actual := (avgSell - avgBuy) / avgBuy
	backtest := *p.Returns[domain.DefaultHoldDays]

	record := &PnLRecord{
		Ticker:         p.Ticker,
		MeetingDate:    p.MeetingDate,
		BacktestReturn: backtest,
		ActualReturn:   actual,
		Diff:           backtest - actual,
		AvgBuy:         avgBuy,
		AvgSell:        avgSell,
		BuyQty:         buyQty,
		SellQty:        sellQty,
		FillCount:      len(window),
	}
	if buyCost > 0 {
		record.CommissionBps = commission / buyCost * 10000
	}
	if p.BasePrice != nil && *p.BasePrice > 0 {
		slip := (avgBuy - *p.BasePrice) / *p.BasePrice
		record.SlippagePct = &slip
	}
	return record, ""
}
