package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"meeting-pick-lab/internal/domain"
	"meeting-pick-lab/internal/metrics"
)

// MinBaskets is the minimum number of valid meeting baskets for the
// rolling portfolio simulation.
const MinBaskets = 3

// SideStats holds the portfolio statistics for one return series
// (raw or benchmark-excess).
type SideStats struct {
	TotalReturn      float64
	AnnualizedReturn float64
	AnnualizedVol    float64
	Sharpe           float64
	MaxDrawdown      float64
	Skewness         float64
	Kurtosis         float64
	WinRate          float64
}

// PortfolioResult is the outcome of the rolling basket simulation.
type PortfolioResult struct {
	HoldDays          int
	Baskets           int
	AvgPicksPerBasket float64
	Years             float64
	BasketsPerYear    float64

	Raw    SideStats
	Excess SideStats
}

// basket is one meeting's equal-weight position.
type basket struct {
	date      time.Time
	ret       float64
	excess    float64
	hasExcess bool
	picks     int
}

// RollingPortfolio simulates buying an equal-weight basket of every
// meeting's Bullish picks and holding holdDays. Requires at least
// MinBaskets meetings with data.
func RollingPortfolio(picks []*domain.Pick, holdDays int) (*PortfolioResult, error) {
	groups := groupByMeeting(picks)

	var baskets []basket
	for _, key := range sortedKeys(groups) {
		var rets, excesses []float64
		n := 0
		for _, p := range groups[key] {
			if p.Sentiment != domain.SentimentBullish {
				continue
			}
			r := p.Returns[holdDays]
			if r == nil {
				continue
			}
			n++
			rets = append(rets, *r)
			if ex := p.Excess(holdDays); ex != nil {
				excesses = append(excesses, *ex)
			}
		}
		if n == 0 {
			continue
		}
		date, err := domain.ParseDate(key)
		if err != nil {
			continue
		}
		b := basket{date: date, ret: metrics.Mean(rets), picks: n}
		if len(excesses) > 0 {
			b.excess = metrics.Mean(excesses)
			b.hasExcess = true
		}
		baskets = append(baskets, b)
	}

	if len(baskets) < MinBaskets {
		return nil, fmt.Errorf("%w: %d baskets, need %d", ErrInsufficientData, len(baskets), MinBaskets)
	}

	sort.Slice(baskets, func(i, j int) bool { return baskets[i].date.Before(baskets[j].date) })

	spanDays := baskets[len(baskets)-1].date.Sub(baskets[0].date).Hours() / 24
	years := spanDays / 365.25
	if years < 0.1 {
		years = 0.1
	}
	basketsPerYear := float64(len(baskets)) / years

	rawSeries := make([]float64, len(baskets))
	totalPicks := 0
	var excessSeries []float64
	for i, b := range baskets {
		rawSeries[i] = b.ret
		totalPicks += b.picks
		if b.hasExcess {
			excessSeries = append(excessSeries, b.excess)
		}
	}

	return &PortfolioResult{
		HoldDays:          holdDays,
		Baskets:           len(baskets),
		AvgPicksPerBasket: float64(totalPicks) / float64(len(baskets)),
		Years:             years,
		BasketsPerYear:    basketsPerYear,
		Raw:               sideStats(rawSeries, years, basketsPerYear),
		Excess:            sideStats(excessSeries, years, basketsPerYear),
	}, nil
}

// sideStats computes the compounded and distribution statistics for one
// basket return series.
func sideStats(series []float64, years, basketsPerYear float64) SideStats {
	if len(series) == 0 {
		return SideStats{}
	}

	cum := 1.0
	peak := 1.0
	maxDD := 0.0
	for _, r := range series {
		cum *= 1 + r
		if cum > peak {
			peak = cum
		}
		dd := (cum - peak) / peak
		if dd < maxDD {
			maxDD = dd
		}
	}
	total := cum - 1

	std := metrics.StddevPopulation(series)
	annReturn := math.Pow(1+total, 1/years) - 1
	annVol := std * math.Sqrt(basketsPerYear)

	sharpe := 0.0
	if annVol > 0 {
		sharpe = annReturn / annVol
	}

	return SideStats{
		TotalReturn:      total,
		AnnualizedReturn: annReturn,
		AnnualizedVol:    annVol,
		Sharpe:           sharpe,
		MaxDrawdown:      maxDD,
		Skewness:         skewness(series, std),
		Kurtosis:         kurtosis(series, std),
		WinRate:          metrics.WinRate(series),
	}
}

// skewness is the population third standardized moment, zero below three
// samples or with zero variance.
func skewness(series []float64, std float64) float64 {
	n := len(series)
	if n <= 2 || std == 0 {
		return 0
	}
	mean := metrics.Mean(series)
	sum := 0.0
	for _, x := range series {
		z := (x - mean) / std
		sum += z * z * z
	}
	return sum / float64(n)
}

// kurtosis is the population excess kurtosis, zero below three samples
// or with zero variance.
func kurtosis(series []float64, std float64) float64 {
	n := len(series)
	if n <= 2 || std == 0 {
		return 0
	}
	mean := metrics.Mean(series)
	sum := 0.0
	for _, x := range series {
		z := (x - mean) / std
		sum += z * z * z * z
	}
	return sum/float64(n) - 3
}
