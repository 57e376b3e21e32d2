package analysis

import (
	"fmt"
	"math"

	"meeting-pick-lab/internal/domain"
	"meeting-pick-lab/internal/metrics"
)

// MinNWMeetings is the minimum per-meeting observations for the
// autocorrelation-robust standard error.
const MinNWMeetings = 5

// Critical values for two-sided significance.
const (
	critical5pct  = 1.96
	critical10pct = 1.645
)

// NeweyWestResult compares the plain OLS standard error of the mean
// per-meeting excess with the Bartlett-kernel estimate that is robust to
// serial correlation across meetings.
type NeweyWestResult struct {
	N    int
	Lags int
	Mean float64

	OLSSE float64
	OLST  float64
	NWSE  float64
	NWT   float64

	Significant5  bool
	Significant10 bool

	// Autocorrelations holds gamma_j/gamma_0 for lags 1..min(L,5).
	Autocorrelations []float64
}

// NeweyWest estimates the standard error of the mean acted-bullish
// 30-day excess per meeting, with lag truncation L = floor(N^(1/3)).
func NeweyWest(picks []*domain.Pick) (*NeweyWestResult, error) {
	byMeeting := make(map[string][]float64)
	for _, p := range bullishActed(picks) {
		if ex := p.Excess(domain.DefaultHoldDays); ex != nil {
			key := domain.DateKey(p.MeetingDate)
			byMeeting[key] = append(byMeeting[key], *ex)
		}
	}

	keys := sortedKeys(byMeeting)
	if len(keys) < MinNWMeetings {
		return nil, fmt.Errorf("%w: %d meetings, need %d", ErrInsufficientData, len(keys), MinNWMeetings)
	}

	// Time series of per-meeting mean excess, in date order.
	y := make([]float64, len(keys))
	for i, k := range keys {
		y[i] = metrics.Mean(byMeeting[k])
	}
	n := len(y)
	mean := metrics.Mean(y)

	resid := make([]float64, n)
	for i, v := range y {
		resid[i] = v - mean
	}

	lags := int(math.Floor(math.Cbrt(float64(n))))

	gamma := make([]float64, lags+1)
	for j := 0; j <= lags; j++ {
		sum := 0.0
		for i := 0; i < n-j; i++ {
			sum += resid[i] * resid[i+j]
		}
		gamma[j] = sum / float64(n)
	}

	nwVar := gamma[0]
	for j := 1; j <= lags; j++ {
		weight := 1 - float64(j)/float64(lags+1)
		nwVar += 2 * weight * gamma[j]
	}
	if nwVar < 0 {
		nwVar = 0
	}
	nwSE := math.Sqrt(nwVar / float64(n))

	olsSE := metrics.StddevSample(y) / math.Sqrt(float64(n))

	olsT := 0.0
	if olsSE > 0 {
		olsT = mean / olsSE
	}
	nwT := 0.0
	if nwSE > 0 {
		nwT = mean / nwSE
	}

	maxAC := lags
	if maxAC > 5 {
		maxAC = 5
	}
	var acs []float64
	if gamma[0] > 0 {
		for j := 1; j <= maxAC; j++ {
			acs = append(acs, gamma[j]/gamma[0])
		}
	}

	return &NeweyWestResult{
		N:                n,
		Lags:             lags,
		Mean:             mean,
		OLSSE:            olsSE,
		OLST:             olsT,
		NWSE:             nwSE,
		NWT:              nwT,
		Significant5:     math.Abs(nwT) > critical5pct,
		Significant10:    math.Abs(nwT) > critical10pct,
		Autocorrelations: acs,
	}, nil
}
