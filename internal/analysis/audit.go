package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"meeting-pick-lab/internal/domain"
)

// AuditTolerance is the excess-return gap above which two pipeline paths
// count as disagreeing on a pick.
const AuditTolerance = 0.001

const auditTopDiscrepancies = 20

// AuditDiscrepancy is one pick the two computation paths disagree on.
type AuditDiscrepancy struct {
	Ticker      string
	MeetingDate time.Time

	DecayExcess float64
	SimExcess   float64
	Diff        float64
}

// AuditResult cross-checks the decay-curve 90-day excess against the
// checkpoint-exit excess used by the portfolio simulation.
type AuditResult struct {
	DecayPoolN int
	SimPoolN   int

	Common      int
	OnlyInDecay int
	OnlyInSim   int

	Discrepancies []*AuditDiscrepancy
}

// PipelineAudit recomputes the 90-day excess of every acted bullish pick
// along both paths and reports where the pools or the values diverge.
// The simulation path exits at the first horizon at or past 90 days with
// data, falling back to the longest earlier horizon.
func PipelineAudit(picks []*domain.Pick) (*AuditResult, error) {
	acted := bullishActed(picks)
	if len(acted) == 0 {
		return nil, fmt.Errorf("%w: no acted bullish picks", ErrInsufficientData)
	}

	type entry struct {
		pick   *domain.Pick
		excess float64
	}
	decay := make(map[string]entry)
	sim := make(map[string]entry)

	for _, p := range acted {
		key := p.Ticker + "|" + domain.DateKey(p.MeetingDate)

		if ex := p.Excess(90); ex != nil {
			decay[key] = entry{pick: p, excess: *ex}
		}

		if p.Returns[domain.DefaultHoldDays] == nil {
			continue
		}
		exit := checkpointExit(p)
		if exit == nil {
			continue
		}
		simExcess := 0.0
		if bench := p.BenchReturns[90]; bench != nil {
			simExcess = *exit - *bench
		}
		sim[key] = entry{pick: p, excess: simExcess}
	}

	result := &AuditResult{
		DecayPoolN: len(decay),
		SimPoolN:   len(sim),
	}

	for key, d := range decay {
		s, ok := sim[key]
		if !ok {
			result.OnlyInDecay++
			continue
		}
		result.Common++

		diff := d.excess - s.excess
		if math.Abs(diff) > AuditTolerance {
			result.Discrepancies = append(result.Discrepancies, &AuditDiscrepancy{
				Ticker:      d.pick.Ticker,
				MeetingDate: d.pick.MeetingDate,
				DecayExcess: d.excess,
				SimExcess:   s.excess,
				Diff:        diff,
			})
		}
	}
	for key := range sim {
		if _, ok := decay[key]; !ok {
			result.OnlyInSim++
		}
	}

	sort.SliceStable(result.Discrepancies, func(i, j int) bool {
		return math.Abs(result.Discrepancies[i].Diff) > math.Abs(result.Discrepancies[j].Diff)
	})
	if len(result.Discrepancies) > auditTopDiscrepancies {
		result.Discrepancies = result.Discrepancies[:auditTopDiscrepancies]
	}

	return result, nil
}

// checkpointExit picks the return the simulation would exit at: the first
// horizon >= 90 days with data, else the longest horizon below 90 with
// data.
func checkpointExit(p *domain.Pick) *float64 {
	for _, w := range domain.AllWindows {
		if w >= 90 {
			if r := p.Returns[w]; r != nil {
				return r
			}
		}
	}
	for i := len(domain.AllWindows) - 1; i >= 0; i-- {
		w := domain.AllWindows[i]
		if w < 90 {
			if r := p.Returns[w]; r != nil {
				return r
			}
		}
	}
	return nil
}
