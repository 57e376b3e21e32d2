package analysis

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"meeting-pick-lab/internal/domain"
	"meeting-pick-lab/internal/metrics"
)

// StressIterations is the resample count of the per-scenario bootstrap.
const StressIterations = 500

// DefaultWhales are the tickers whose removal the stress test probes.
var DefaultWhales = []string{"PDD", "HOOD", "META"}

// StressWindow summarizes one horizon inside a stress scenario.
type StressWindow struct {
	ActedN          int
	ActedExcessMean *float64
	ActedWinRate    *float64

	BearishExcessMean *float64
}

// StressScenario is the metric set for one exclusion scenario.
type StressScenario struct {
	Name     string
	Excluded []string

	Windows map[int]*StressWindow

	BootstrapPercentile *float64
	Sharpe              *float64
	ExcessSharpe        *float64
}

// ConcentrationResult reports how much of the edge survives removing the
// largest winners.
type ConcentrationResult struct {
	TopTickers []string
	Scenarios  []*StressScenario
}

// ConcentrationStress recomputes the acted-bullish statistics with each
// whale removed, both top whales removed together, and the top three
// tickers by 30-day excess removed.
func ConcentrationStress(picks []*domain.Pick, whales []string) (*ConcentrationResult, error) {
	if len(whales) == 0 {
		whales = DefaultWhales
	}

	acted := bullishActed(picks)
	if len(acted) == 0 {
		return nil, fmt.Errorf("%w: no acted bullish picks", ErrInsufficientData)
	}

	top := topTickersByExcess(acted, 3)

	type scenarioDef struct {
		name     string
		excluded []string
	}
	defs := []scenarioDef{{name: "Baseline"}}
	for _, w := range whales {
		defs = append(defs, scenarioDef{name: "Ex-" + w, excluded: []string{w}})
	}
	if len(whales) >= 2 {
		defs = append(defs, scenarioDef{
			name:     "Ex-" + whales[0] + "+" + whales[1],
			excluded: []string{whales[0], whales[1]},
		})
	}
	defs = append(defs, scenarioDef{name: "Ex-Top3", excluded: top})

	result := &ConcentrationResult{TopTickers: top}
	for _, def := range defs {
		filtered := excludeTickers(picks, def.excluded)
		result.Scenarios = append(result.Scenarios, stressScenario(def.name, def.excluded, filtered))
	}
	return result, nil
}

// topTickersByExcess returns the k distinct tickers with the highest
// 30-day excess among the given picks.
func topTickersByExcess(picks []*domain.Pick, k int) []string {
	best := make(map[string]float64)
	for _, p := range picks {
		ex := p.Excess(domain.DefaultHoldDays)
		if ex == nil {
			continue
		}
		if cur, ok := best[p.Ticker]; !ok || *ex > cur {
			best[p.Ticker] = *ex
		}
	}

	tickers := make([]string, 0, len(best))
	for t := range best {
		tickers = append(tickers, t)
	}
	sort.Slice(tickers, func(i, j int) bool {
		if best[tickers[i]] != best[tickers[j]] {
			return best[tickers[i]] > best[tickers[j]]
		}
		return tickers[i] < tickers[j]
	})

	if len(tickers) > k {
		tickers = tickers[:k]
	}
	return tickers
}

func excludeTickers(picks []*domain.Pick, excluded []string) []*domain.Pick {
	if len(excluded) == 0 {
		return picks
	}
	drop := make(map[string]bool, len(excluded))
	for _, t := range excluded {
		drop[strings.ToUpper(t)] = true
	}

	var out []*domain.Pick
	for _, p := range picks {
		if !drop[strings.ToUpper(p.Ticker)] {
			out = append(out, p)
		}
	}
	return out
}

// stressScenario computes the metric set over one filtered pick pool.
func stressScenario(name string, excluded []string, picks []*domain.Pick) *StressScenario {
	s := &StressScenario{
		Name:     name,
		Excluded: excluded,
		Windows:  make(map[int]*StressWindow, 2),
	}

	acted := bullishActed(picks)
	for _, w := range []int{30, 90} {
		sw := &StressWindow{}
		actedExcess := excessSample(acted, w)
		sw.ActedN = len(actedExcess)
		if len(actedExcess) > 0 {
			mean := metrics.Mean(actedExcess)
			wr := metrics.WinRate(actedExcess)
			sw.ActedExcessMean = &mean
			sw.ActedWinRate = &wr
		}

		var bearish []float64
		for _, p := range picks {
			if p.Sentiment == domain.SentimentBearish && !p.ActedOn {
				if ex := p.Excess(w); ex != nil {
					bearish = append(bearish, *ex)
				}
			}
		}
		if len(bearish) > 0 {
			mean := metrics.Mean(bearish)
			sw.BearishExcessMean = &mean
		}

		s.Windows[w] = sw
	}

	actedExcess30 := excessSample(acted, domain.DefaultHoldDays)
	if len(actedExcess30) >= 3 {
		pool := excessSample(picks, domain.DefaultHoldDays)
		rng := rand.New(rand.NewSource(DefaultSeed))
		pct := resamplePercentile(rng, pool, len(actedExcess30), StressIterations, metrics.Mean(actedExcess30), false)
		s.BootstrapPercentile = &pct
	}

	if portfolio, err := RollingPortfolio(picks, domain.DefaultHoldDays); err == nil {
		s.Sharpe = &portfolio.Raw.Sharpe
		s.ExcessSharpe = &portfolio.Excess.Sharpe
	}

	return s
}
