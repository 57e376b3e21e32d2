// Package analysis implements the portfolio-level and statistical
// inference layers on top of enriched picks: rolling portfolios, market
// regimes, bootstrap inference, autocorrelation-robust errors, factor
// regression, stress and cost scenarios, and ledger reconciliation.
package analysis

import (
	"sort"

	"meeting-pick-lab/internal/domain"
)

// bullishActed returns the picks counted by the portfolio-level
// analyses: Bullish sentiment and acted on.
func bullishActed(picks []*domain.Pick) []*domain.Pick {
	var out []*domain.Pick
	for _, p := range picks {
		if p.IsBullishActed() {
			out = append(out, p)
		}
	}
	return out
}

// excessSample collects the non-nil excess returns at the window.
func excessSample(picks []*domain.Pick, window int) []float64 {
	var out []float64
	for _, p := range picks {
		if ex := p.Excess(window); ex != nil {
			out = append(out, *ex)
		}
	}
	return out
}

// groupByMeeting indexes picks by meeting date key.
func groupByMeeting(picks []*domain.Pick) map[string][]*domain.Pick {
	groups := make(map[string][]*domain.Pick)
	for _, p := range picks {
		key := domain.DateKey(p.MeetingDate)
		groups[key] = append(groups[key], p)
	}
	return groups
}

// sortedKeys returns map keys in ascending date order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
