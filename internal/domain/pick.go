package domain

import "time"

// Sentiment classifies the stance a meeting expressed on a ticker.
type Sentiment string

const (
	SentimentBullish Sentiment = "Bullish"
	SentimentBearish Sentiment = "Bearish"
	SentimentNeutral Sentiment = "Neutral"
	SentimentUnknown Sentiment = "Unknown"
)

// Acted-on reason codes. Held takes precedence over traded.
const (
	ActedReasonHeld   = "held"
	ActedReasonTraded = "traded"
)

// Pick represents a single (meeting, ticker) mention enriched by the
// pipeline: sentiment from the note text, acted-on status from the trade
// ledger, and forward returns from the price fetcher. A nil pointer means
// the value could not be computed, never that it is zero.
type Pick struct {
	TickerRaw   string    // symbol as written in the note
	Ticker      string    // canonical provider symbol
	MeetingDate time.Time // UTC midnight
	Sentiment   Sentiment
	Evidence    string // supporting text, capped at 200 runes

	ActedOn        bool
	ActedReason    string // "held" | "traded" | ""
	PositionShares float64
	Sector         string

	BasePrice        *float64
	Returns          map[int]*float64 // horizon days -> raw forward return
	BenchReturns     map[int]*float64 // horizon days -> benchmark return
	ExcessReturns    map[int]*float64 // horizon days -> raw minus benchmark
	EntrySensitivity map[int]*float64 // entry offset days -> hold-window return
}

// Excess returns the excess return at the given horizon, or nil if either
// leg was unavailable.
func (p *Pick) Excess(window int) *float64 {
	if p.ExcessReturns == nil {
		return nil
	}
	return p.ExcessReturns[window]
}

// IsBullishActed reports whether the pick counts toward the acted-on
// bullish cohort used by the portfolio-level analyses.
func (p *Pick) IsBullishActed() bool {
	return p.Sentiment == SentimentBullish && p.ActedOn
}
