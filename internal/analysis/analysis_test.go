package analysis

import (
	"math"
	"time"

	"meeting-pick-lab/internal/domain"
	"meeting-pick-lab/internal/prices"
)

func fp(v float64) *float64 { return &v }

func day(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func newPick(tk, date string, sentiment domain.Sentiment, acted bool) *domain.Pick {
	return &domain.Pick{
		TickerRaw:        tk,
		Ticker:           tk,
		MeetingDate:      day(date),
		Sentiment:        sentiment,
		ActedOn:          acted,
		Returns:          make(map[int]*float64),
		BenchReturns:     make(map[int]*float64),
		ExcessReturns:    make(map[int]*float64),
		EntrySensitivity: make(map[int]*float64),
	}
}

// actedPick builds a bullish acted pick whose 30-day raw return and
// excess are both set to ret.
func actedPick(tk, date string, ret float64) *domain.Pick {
	p := newPick(tk, date, domain.SentimentBullish, true)
	p.Returns[domain.DefaultHoldDays] = fp(ret)
	p.ExcessReturns[domain.DefaultHoldDays] = fp(ret)
	return p
}

// daySeries builds a series of n consecutive calendar days starting at
// start, with values from f(i).
func daySeries(start string, n int, f func(i int) float64) prices.Series {
	s := make(prices.Series, n)
	d := day(start)
	for i := 0; i < n; i++ {
		s[domain.DateKey(domain.AddDays(d, i))] = f(i)
	}
	return s
}
