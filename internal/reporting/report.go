// Package reporting assembles every aggregate and analysis into one
// report value and renders it as Markdown, CSV, or console tables.
package reporting

import (
	"time"

	"meeting-pick-lab/internal/analysis"
	"meeting-pick-lab/internal/domain"
)

// Section wraps one analysis outcome. Result is nil when the analysis
// could not run; Reason then says why. A section is always rendered.
type Section[T any] struct {
	Result *T
	Reason string
}

// Report is the full output of one backtest run.
type Report struct {
	// Run header
	GeneratedAt time.Time
	Seed        int64
	Meetings    int
	Picks       int
	Tickers     int
	ActedPicks  int
	FirstDate   time.Time
	LastDate    time.Time

	// Bucket summary: the five sentiment/acted-on buckets, each with
	// per-horizon raw and excess statistics and entry-offset statistics.
	Buckets []BucketSection

	// Decay curve: acted-bullish excess across every horizon.
	Decay []DecayRow

	HeldVsTraded []ActedReasonRow

	Portfolio     Section[analysis.PortfolioResult]
	Regimes       Section[analysis.RegimeResult]
	Naive         Section[analysis.NaiveBootstrapResult]
	Block         Section[analysis.BlockBootstrapResult]
	NeweyWest     Section[analysis.NeweyWestResult]
	Factors       Section[analysis.FactorRegressionResult]
	Sectors       Section[analysis.SectorAttributionResult]
	Weighting     Section[analysis.PositionWeightedResult]
	Concentration Section[analysis.ConcentrationResult]
	Costs         Section[analysis.CostResult]
	PnL           Section[analysis.PnLResult]
	Audit         Section[analysis.AuditResult]

	// Flat per-pick detail, meeting date then ticker order.
	Details []PickDetailRow
}

// BucketSection is the rendered form of one bucket aggregate.
type BucketSection struct {
	Bucket  domain.Bucket
	Count   int
	Windows []BucketWindowRow
	Entry   []EntryRow
}

// BucketWindowRow is one horizon inside a bucket. Nil statistics mean no
// pick had data there.
type BucketWindowRow struct {
	Window int

	N       int
	Mean    *float64
	Median  *float64
	WinRate *float64

	ExcessN       int
	ExcessMean    *float64
	ExcessMedian  *float64
	ExcessWinRate *float64
}

// EntryRow is the hold-window return for one entry-day offset.
type EntryRow struct {
	Offset int
	N      int
	Mean   *float64
	Median *float64
}

// DecayRow is one horizon of the acted-bullish decay curve.
type DecayRow struct {
	Window  int
	N       int
	Mean    *float64
	Median  *float64
	WinRate *float64
}

// ActedReasonRow splits acted-bullish performance by how the ledger
// marked the pick as acted.
type ActedReasonRow struct {
	Reason  string
	N       int
	Mean    *float64
	WinRate *float64
}

// PickDetailRow is one pick in the flat detail table.
type PickDetailRow struct {
	Ticker      string
	TickerRaw   string
	MeetingDate time.Time
	Sentiment   domain.Sentiment
	ActedOn     bool
	ActedReason string
	Sector      string

	BasePrice *float64
	Return30  *float64
	Excess30  *float64
	Return90  *float64
	Excess90  *float64
}
