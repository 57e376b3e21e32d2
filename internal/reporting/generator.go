package reporting

import (
	"sort"
	"time"

	"meeting-pick-lab/internal/analysis"
	"meeting-pick-lab/internal/domain"
	"meeting-pick-lab/internal/metrics"
	"meeting-pick-lab/internal/prices"
)

// MarketData carries the support series the analyses condition on.
// ETF holds the factor proxies, Sector the sector benchmark ETFs, both
// keyed by symbol.
type MarketData struct {
	Bench  prices.Series
	VIX    prices.Series
	ETF    map[string]prices.Series
	Sector map[string]prices.Series
}

// Generator produces the report from enriched picks and the trade ledger.
type Generator struct {
	now        func() time.Time // Injectable clock for deterministic output
	seed       int64
	naiveIters int
	blockIters int
	whales     []string
}

// NewGenerator creates a report generator with default bootstrap
// parameters.
func NewGenerator() *Generator {
	return &Generator{
		now:        func() time.Time { return time.Now().UTC() },
		seed:       analysis.DefaultSeed,
		naiveIters: analysis.NaiveIterations,
		blockIters: analysis.BlockIterations,
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithSeed sets the bootstrap seed.
func (g *Generator) WithSeed(seed int64) *Generator {
	g.seed = seed
	return g
}

// WithIterations overrides the bootstrap iteration counts.
func (g *Generator) WithIterations(naive, block int) *Generator {
	g.naiveIters = naive
	g.blockIters = block
	return g
}

// WithWhales sets the concentration-stress exclusion list.
func (g *Generator) WithWhales(whales []string) *Generator {
	g.whales = whales
	return g
}

// Generate runs every aggregate and analysis and assembles the report.
// Analyses that lack data appear as sections carrying their reason.
func (g *Generator) Generate(picks []*domain.Pick, fills []*domain.Fill, market MarketData) *Report {
	r := &Report{
		GeneratedAt: g.now(),
		Seed:        g.seed,
		Picks:       len(picks),
	}
	g.fillHeader(r, picks)

	r.Buckets = bucketSections(metrics.Aggregate(picks))
	r.Decay = decayCurve(picks)
	r.HeldVsTraded = actedReasonRows(picks)

	r.Portfolio = section(analysis.RollingPortfolio(picks, domain.DefaultHoldDays))
	r.Regimes = section(analysis.Regimes(picks, market.Bench, market.VIX))
	r.Naive = section(analysis.NaiveBootstrap(picks, g.naiveIters, g.seed))
	r.Block = section(analysis.BlockBootstrap(picks, g.blockIters, g.seed))
	r.NeweyWest = section(analysis.NeweyWest(picks))
	r.Factors = section(analysis.FactorRegression(picks, market.ETF))
	r.Sectors = section(analysis.SectorAttribution(picks, market.Sector))
	r.Weighting = section(analysis.PositionWeighted(picks))
	r.Concentration = section(analysis.ConcentrationStress(picks, g.whales))
	r.Costs = section(analysis.CostSensitivity(picks))
	r.PnL = section(analysis.PnLReconciliation(picks, fills))
	r.Audit = section(analysis.PipelineAudit(picks))

	r.Details = detailRows(picks)
	return r
}

func section[T any](result *T, err error) Section[T] {
	if err != nil {
		return Section[T]{Reason: err.Error()}
	}
	return Section[T]{Result: result}
}

func (g *Generator) fillHeader(r *Report, picks []*domain.Pick) {
	meetings := make(map[string]struct{})
	tickers := make(map[string]struct{})
	for _, p := range picks {
		meetings[domain.DateKey(p.MeetingDate)] = struct{}{}
		tickers[p.Ticker] = struct{}{}
		if p.ActedOn {
			r.ActedPicks++
		}
		if r.FirstDate.IsZero() || p.MeetingDate.Before(r.FirstDate) {
			r.FirstDate = p.MeetingDate
		}
		if p.MeetingDate.After(r.LastDate) {
			r.LastDate = p.MeetingDate
		}
	}
	r.Meetings = len(meetings)
	r.Tickers = len(tickers)
}

// bucketSections flattens the aggregate maps into report order: buckets
// as declared, horizons ascending, offsets ascending.
func bucketSections(aggs map[domain.Bucket]*metrics.BucketStats) []BucketSection {
	sections := make([]BucketSection, 0, len(domain.AllBuckets))
	for _, b := range domain.AllBuckets {
		stats := aggs[b]
		if stats == nil {
			continue
		}

		sec := BucketSection{Bucket: b, Count: stats.Count}
		for _, w := range domain.AllWindows {
			ws := stats.Windows[w]
			if ws == nil {
				continue
			}
			sec.Windows = append(sec.Windows, BucketWindowRow{
				Window:        w,
				N:             ws.N,
				Mean:          ws.Mean,
				Median:        ws.Median,
				WinRate:       ws.WinRate,
				ExcessN:       ws.ExcessN,
				ExcessMean:    ws.ExcessMean,
				ExcessMedian:  ws.ExcessMedian,
				ExcessWinRate: ws.ExcessWinRate,
			})
		}
		for _, off := range domain.EntryOffsets {
			es := stats.Entry[off]
			if es == nil {
				continue
			}
			sec.Entry = append(sec.Entry, EntryRow{
				Offset: off,
				N:      es.N,
				Mean:   es.Mean,
				Median: es.Median,
			})
		}
		sections = append(sections, sec)
	}
	return sections
}

// decayCurve summarizes acted-bullish excess per horizon.
func decayCurve(picks []*domain.Pick) []DecayRow {
	rows := make([]DecayRow, 0, len(domain.AllWindows))
	for _, w := range domain.AllWindows {
		var excess []float64
		for _, p := range picks {
			if !p.IsBullishActed() {
				continue
			}
			if ex := p.Excess(w); ex != nil {
				excess = append(excess, *ex)
			}
		}

		row := DecayRow{Window: w, N: len(excess)}
		if len(excess) > 0 {
			mean := metrics.Mean(excess)
			median := metrics.Median(excess)
			wr := metrics.WinRate(excess)
			row.Mean = &mean
			row.Median = &median
			row.WinRate = &wr
		}
		rows = append(rows, row)
	}
	return rows
}

// actedReasonRows splits acted-bullish 30-day excess by held vs traded.
func actedReasonRows(picks []*domain.Pick) []ActedReasonRow {
	rows := make([]ActedReasonRow, 0, 2)
	for _, reason := range []string{domain.ActedReasonHeld, domain.ActedReasonTraded} {
		var excess []float64
		n := 0
		for _, p := range picks {
			if !p.IsBullishActed() || p.ActedReason != reason {
				continue
			}
			n++
			if ex := p.Excess(domain.DefaultHoldDays); ex != nil {
				excess = append(excess, *ex)
			}
		}

		row := ActedReasonRow{Reason: reason, N: n}
		if len(excess) > 0 {
			mean := metrics.Mean(excess)
			wr := metrics.WinRate(excess)
			row.Mean = &mean
			row.WinRate = &wr
		}
		rows = append(rows, row)
	}
	return rows
}

// detailRows flattens picks into the detail table, meeting date then
// ticker order.
func detailRows(picks []*domain.Pick) []PickDetailRow {
	rows := make([]PickDetailRow, 0, len(picks))
	for _, p := range picks {
		rows = append(rows, PickDetailRow{
			Ticker:      p.Ticker,
			TickerRaw:   p.TickerRaw,
			MeetingDate: p.MeetingDate,
			Sentiment:   p.Sentiment,
			ActedOn:     p.ActedOn,
			ActedReason: p.ActedReason,
			Sector:      p.Sector,
			BasePrice:   p.BasePrice,
			Return30:    p.Returns[30],
			Excess30:    p.Excess(30),
			Return90:    p.Returns[90],
			Excess90:    p.Excess(90),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].MeetingDate.Equal(rows[j].MeetingDate) {
			return rows[i].MeetingDate.Before(rows[j].MeetingDate)
		}
		return rows[i].Ticker < rows[j].Ticker
	})
	return rows
}
