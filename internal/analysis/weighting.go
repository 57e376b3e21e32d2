package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"meeting-pick-lab/internal/domain"
	"meeting-pick-lab/internal/metrics"
)

const (
	// MinWeightedPicks is the minimum held sample for position weighting.
	MinWeightedPicks = 5

	// TopPositionCount bounds the largest-position listing.
	TopPositionCount = 10
)

// fxToUSD holds approximate conversion rates for non-USD listings,
// keyed by provider symbol suffix.
var fxToUSD = map[string]float64{
	".HK": 1 / 7.8,   // HKD
	".T":  1 / 150.0, // JPY
	".PA": 1.08,      // EUR
	".L":  1.27,      // GBP, quoted in pence
	".SW": 1.12,      // CHF
	".SZ": 1 / 7.2,   // CNY
	".SS": 1 / 7.2,   // CNY
	".DE": 1.08,      // EUR
}

// toUSD converts a local-currency value to approximate USD by listing
// suffix. London listings quote in pence, so they divide by 100 first.
// Symbols without a mapped suffix are assumed USD.
func toUSD(symbol string, value float64) float64 {
	upper := strings.ToUpper(symbol)
	for suffix, rate := range fxToUSD {
		if strings.HasSuffix(upper, suffix) {
			if suffix == ".L" {
				return value / 100 * rate
			}
			return value * rate
		}
	}
	return value
}

// WeightedWindow compares position-weighted and equal-weight returns at
// one horizon.
type WeightedWindow struct {
	Window int

	N        int
	Weighted *float64
	Equal    *float64

	ExcessN        int
	WeightedExcess *float64
	EqualExcess    *float64
}

// TopPosition is one of the largest held positions by dollar exposure.
type TopPosition struct {
	Ticker      string
	MeetingDate time.Time
	Shares      float64
	ValueUSD    float64
	Weight      float64 // fraction of total held exposure
	Return30    *float64
	Excess30    *float64
}

// PositionWeightedResult reports whether sizing added to or subtracted
// from the equal-weight edge of the held picks.
type PositionWeightedResult struct {
	HeldN         int
	TotalValueUSD float64
	Windows       []WeightedWindow
	Top           []TopPosition
}

// PositionWeighted weighs each held pick by its dollar exposure at the
// meeting date (shares times base price, converted to USD) and compares
// the weighted returns against the equal-weight means.
func PositionWeighted(picks []*domain.Pick) (*PositionWeightedResult, error) {
	type position struct {
		pick  *domain.Pick
		value float64
	}

	var held []position
	total := 0.0
	for _, p := range picks {
		if p.ActedReason != domain.ActedReasonHeld || p.Returns[domain.DefaultHoldDays] == nil {
			continue
		}
		if p.BasePrice == nil || *p.BasePrice <= 0 || p.PositionShares == 0 {
			continue
		}
		value := toUSD(p.Ticker, math.Abs(p.PositionShares)*(*p.BasePrice))
		held = append(held, position{pick: p, value: value})
		total += value
	}

	if len(held) < MinWeightedPicks {
		return nil, fmt.Errorf("%w: %d held picks with position data, need %d", ErrInsufficientData, len(held), MinWeightedPicks)
	}

	result := &PositionWeightedResult{HeldN: len(held), TotalValueUSD: total}
	for _, w := range domain.MainWindows {
		row := WeightedWindow{Window: w}

		var rets, excess []float64
		retWeighted, retValue := 0.0, 0.0
		exWeighted, exValue := 0.0, 0.0
		for _, pos := range held {
			if r := pos.pick.Returns[w]; r != nil {
				rets = append(rets, *r)
				retWeighted += *r * pos.value
				retValue += pos.value
			}
			if ex := pos.pick.Excess(w); ex != nil {
				excess = append(excess, *ex)
				exWeighted += *ex * pos.value
				exValue += pos.value
			}
		}

		row.N = len(rets)
		if retValue > 0 {
			pw := retWeighted / retValue
			ew := metrics.Mean(rets)
			row.Weighted = &pw
			row.Equal = &ew
		}
		row.ExcessN = len(excess)
		if exValue > 0 {
			pw := exWeighted / exValue
			ew := metrics.Mean(excess)
			row.WeightedExcess = &pw
			row.EqualExcess = &ew
		}
		result.Windows = append(result.Windows, row)
	}

	sort.SliceStable(held, func(i, j int) bool {
		if held[i].value != held[j].value {
			return held[i].value > held[j].value
		}
		return held[i].pick.Ticker < held[j].pick.Ticker
	})
	for _, pos := range held {
		if len(result.Top) == TopPositionCount {
			break
		}
		result.Top = append(result.Top, TopPosition{
			Ticker:      pos.pick.Ticker,
			MeetingDate: pos.pick.MeetingDate,
			Shares:      pos.pick.PositionShares,
			ValueUSD:    pos.value,
			Weight:      pos.value / total,
			Return30:    pos.pick.Returns[domain.DefaultHoldDays],
			Excess30:    pos.pick.Excess(domain.DefaultHoldDays),
		})
	}

	return result, nil
}
