package analysis

import (
	"fmt"

	"meeting-pick-lab/internal/domain"
	"meeting-pick-lab/internal/metrics"
	"meeting-pick-lab/internal/prices"
)

// MAWindow is the trading-day span of the trend moving average.
const MAWindow = 50

// regimeLookbackDays bounds the backward search for the last trading day
// at or before a meeting date.
const regimeLookbackDays = 4

// Regime names, trend x volatility.
const (
	RegimeUptrendCalm     = "SPY>MA50 / VIX Low"
	RegimeUptrendStress   = "SPY>MA50 / VIX High"
	RegimeDowntrendCalm   = "SPY<MA50 / VIX Low"
	RegimeDowntrendStress = "SPY<MA50 / VIX High"
)

// AllRegimes lists regimes in report order.
var AllRegimes = []string{
	RegimeUptrendCalm,
	RegimeUptrendStress,
	RegimeDowntrendCalm,
	RegimeDowntrendStress,
}

// RegimeStats summarizes pick performance inside one market regime.
type RegimeStats struct {
	Name  string
	Total int

	BullN          int
	BullExcessMean *float64
	BullWinRate    *float64

	BearN          int
	BearExcessMean *float64
}

// RegimeResult classifies every meeting into a trend/volatility regime.
type RegimeResult struct {
	Meetings  int
	VIXMedian float64
	Regimes   []*RegimeStats
}

// Regimes classifies each meeting by whether the benchmark closed above
// its 50-day moving average and whether the volatility index was above
// the period median, then summarizes 30-day excess per regime and
// sentiment side.
func Regimes(picks []*domain.Pick, bench, vix prices.Series) (*RegimeResult, error) {
	ma := rollingMA(bench, MAWindow)

	type meetingRegime struct {
		aboveMA bool
		vixVal  float64
		picks   []*domain.Pick
	}

	groups := groupByMeeting(picks)
	var meetings []*meetingRegime
	var vixValues []float64

	for _, key := range sortedKeys(groups) {
		date, err := domain.ParseDate(key)
		if err != nil {
			continue
		}

		resolved := false
		m := &meetingRegime{picks: groups[key]}
		for off := 0; off <= regimeLookbackDays; off++ {
			d := domain.DateKey(domain.AddDays(date, -off))
			close, okClose := bench[d]
			maVal, okMA := ma[d]
			vixVal, okVix := vix[d]
			if okClose && okMA && okVix {
				m.aboveMA = close > maVal
				m.vixVal = vixVal
				resolved = true
				break
			}
		}
		if !resolved {
			continue
		}
		meetings = append(meetings, m)
		vixValues = append(vixValues, m.vixVal)
	}

	if len(meetings) == 0 {
		return nil, fmt.Errorf("%w: no meeting could be matched to benchmark data", ErrInsufficientData)
	}

	vixMedian := metrics.Median(vixValues)

	byRegime := make(map[string][]*domain.Pick, len(AllRegimes))
	for _, m := range meetings {
		name := regimeName(m.aboveMA, m.vixVal > vixMedian)
		byRegime[name] = append(byRegime[name], m.picks...)
	}

	result := &RegimeResult{Meetings: len(meetings), VIXMedian: vixMedian}
	for _, name := range AllRegimes {
		result.Regimes = append(result.Regimes, regimeStats(name, byRegime[name]))
	}
	return result, nil
}

func regimeName(aboveMA, vixHigh bool) string {
	switch {
	case aboveMA && !vixHigh:
		return RegimeUptrendCalm
	case aboveMA && vixHigh:
		return RegimeUptrendStress
	case !aboveMA && !vixHigh:
		return RegimeDowntrendCalm
	default:
		return RegimeDowntrendStress
	}
}

func regimeStats(name string, picks []*domain.Pick) *RegimeStats {
	stats := &RegimeStats{Name: name, Total: len(picks)}

	var bullExcess, bearExcess []float64
	for _, p := range picks {
		ex := p.Excess(domain.DefaultHoldDays)
		switch p.Sentiment {
		case domain.SentimentBullish:
			stats.BullN++
			if ex != nil {
				bullExcess = append(bullExcess, *ex)
			}
		case domain.SentimentBearish:
			stats.BearN++
			if ex != nil {
				bearExcess = append(bearExcess, *ex)
			}
		}
	}

	if len(bullExcess) > 0 {
		mean := metrics.Mean(bullExcess)
		wr := metrics.WinRate(bullExcess)
		stats.BullExcessMean = &mean
		stats.BullWinRate = &wr
	}
	if len(bearExcess) > 0 {
		mean := metrics.Mean(bearExcess)
		stats.BearExcessMean = &mean
	}
	return stats
}

// rollingMA computes the trailing moving average over the previous
// `window` trading rows per date key, defined from row window-1 onward.
func rollingMA(series prices.Series, window int) map[string]float64 {
	dates := series.SortedDates()
	ma := make(map[string]float64)
	if len(dates) < window {
		return ma
	}

	sum := 0.0
	closes := make([]float64, len(dates))
	for i, d := range dates {
		closes[i] = series[d]
	}

	for i, d := range dates {
		sum += closes[i]
		if i >= window {
			sum -= closes[i-window]
		}
		if i >= window-1 {
			ma[d] = sum / float64(window)
		}
	}
	return ma
}
