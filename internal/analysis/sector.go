package analysis

import (
	"fmt"

	"meeting-pick-lab/internal/domain"
	"meeting-pick-lab/internal/metrics"
	"meeting-pick-lab/internal/prices"
	"meeting-pick-lab/internal/ticker"
)

// MinSectorPicks is the per-sector minimum for the bullish breakdown.
const MinSectorPicks = 2

// SectorGroupRow compares benchmark-adjusted and sector-adjusted mean
// excess for one bucket at the hold window.
type SectorGroupRow struct {
	Bucket           domain.Bucket
	N                int
	BenchExcessMean  float64
	SectorExcessMean float64
}

// SectorRow is the bullish breakdown for one sector.
type SectorRow struct {
	Sector           string
	ETF              string
	N                int
	RawMean          float64
	BenchExcessMean  float64
	SectorExcessMean float64
}

// SectorAttributionResult separates stock selection from sector
// allocation. Excess that survives the sector-ETF adjustment is
// selection; excess that only shows against the broad benchmark is
// allocation.
type SectorAttributionResult struct {
	Groups  []SectorGroupRow
	Sectors []SectorRow
}

// SectorAttribution recomputes each pick's hold-window excess against
// its sector benchmark ETF and aggregates both adjustments per bucket
// and, for bullish picks, per sector. Picks whose sector ETF series is
// absent are left out.
func SectorAttribution(picks []*domain.Pick, sectorETFs map[string]prices.Series) (*SectorAttributionResult, error) {
	if len(sectorETFs) == 0 {
		return nil, fmt.Errorf("%w: no sector ETF series", ErrInsufficientData)
	}

	w := domain.DefaultHoldDays
	sectorExcess := make(map[*domain.Pick]float64)
	for _, p := range picks {
		raw := p.Returns[w]
		if raw == nil {
			continue
		}
		series := sectorETFs[ticker.SectorETF(p.Sector)]
		if series == nil {
			continue
		}
		etfRet := series.ForwardReturn(p.MeetingDate, w)
		if etfRet == nil {
			continue
		}
		sectorExcess[p] = *raw - *etfRet
	}

	result := &SectorAttributionResult{}
	for _, b := range domain.AllBuckets {
		var bench, sector []float64
		for _, p := range picks {
			se, ok := sectorExcess[p]
			if !ok || p.Excess(w) == nil {
				continue
			}
			if domain.ClassifyBucket(p.Sentiment, p.ActedOn) != b {
				continue
			}
			bench = append(bench, *p.Excess(w))
			sector = append(sector, se)
		}
		if len(bench) == 0 {
			continue
		}
		result.Groups = append(result.Groups, SectorGroupRow{
			Bucket:           b,
			N:                len(bench),
			BenchExcessMean:  metrics.Mean(bench),
			SectorExcessMean: metrics.Mean(sector),
		})
	}

	if len(result.Groups) == 0 {
		return nil, fmt.Errorf("%w: no picks with sector-adjusted excess", ErrInsufficientData)
	}

	bySector := make(map[string][]*domain.Pick)
	for _, p := range picks {
		if p.Sentiment != domain.SentimentBullish {
			continue
		}
		if _, ok := sectorExcess[p]; !ok || p.Excess(w) == nil || p.Returns[w] == nil {
			continue
		}
		bySector[p.Sector] = append(bySector[p.Sector], p)
	}
	for _, name := range sortedKeys(bySector) {
		group := bySector[name]
		if len(group) < MinSectorPicks {
			continue
		}
		var raw, bench, sector []float64
		for _, p := range group {
			raw = append(raw, *p.Returns[w])
			bench = append(bench, *p.Excess(w))
			sector = append(sector, sectorExcess[p])
		}
		result.Sectors = append(result.Sectors, SectorRow{
			Sector:           name,
			ETF:              ticker.SectorETF(name),
			N:                len(group),
			RawMean:          metrics.Mean(raw),
			BenchExcessMean:  metrics.Mean(bench),
			SectorExcessMean: metrics.Mean(sector),
		})
	}

	return result, nil
}
