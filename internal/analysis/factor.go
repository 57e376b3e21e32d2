package analysis

import (
	"fmt"
	"math"

	"meeting-pick-lab/internal/domain"
	"meeting-pick-lab/internal/metrics"
	"meeting-pick-lab/internal/prices"
)

// MinFactorMeetings is the minimum joint observations for the factor
// regression.
const MinFactorMeetings = 10

// factorCritical is the two-sided significance cutoff for factor loadings.
const factorCritical = 2.0

// Factor names in regression order. Alpha is the intercept.
var FactorNames = []string{"Alpha", "MKT", "SMB", "HML", "UMD"}

// FactorCoef is one estimated loading.
type FactorCoef struct {
	Name        string
	Beta        float64
	SE          float64
	T           float64
	Significant bool
}

// FactorRegressionResult is the outcome of regressing per-meeting basket
// returns on market, size, value, and momentum spreads.
type FactorRegressionResult struct {
	N     int
	Coefs []FactorCoef

	R2          float64
	AdjR2       float64
	ResidualStd float64

	// AnnualizedAlpha scales the per-holding-period intercept to a year.
	AnnualizedAlpha float64
}

// FactorRegression runs OLS of acted-bullish per-meeting mean 30-day
// returns on the ETF-proxied factor spreads: MKT=SPY, SMB=IWM−SPY,
// HML=IWD−IWF, UMD=MTUM−SPY.
func FactorRegression(picks []*domain.Pick, etf map[string]prices.Series) (*FactorRegressionResult, error) {
	byMeeting := make(map[string][]float64)
	for _, p := range bullishActed(picks) {
		if r := p.Returns[domain.DefaultHoldDays]; r != nil {
			key := domain.DateKey(p.MeetingDate)
			byMeeting[key] = append(byMeeting[key], *r)
		}
	}
	if len(byMeeting) < MinFactorMeetings {
		return nil, fmt.Errorf("%w: %d meetings with returns, need %d", ErrInsufficientData, len(byMeeting), MinFactorMeetings)
	}

	spy := etf["SPY"]
	iwm := etf["IWM"]
	iwd := etf["IWD"]
	iwf := etf["IWF"]
	mtum := etf["MTUM"]

	var y []float64
	var x [][]float64
	for _, key := range sortedKeys(byMeeting) {
		date, err := domain.ParseDate(key)
		if err != nil {
			continue
		}

		mkt := spy.ForwardReturn(date, domain.DefaultHoldDays)
		rIWM := iwm.ForwardReturn(date, domain.DefaultHoldDays)
		rIWD := iwd.ForwardReturn(date, domain.DefaultHoldDays)
		rIWF := iwf.ForwardReturn(date, domain.DefaultHoldDays)
		rMTUM := mtum.ForwardReturn(date, domain.DefaultHoldDays)
		if mkt == nil || rIWM == nil || rIWD == nil || rIWF == nil || rMTUM == nil {
			continue
		}

		y = append(y, metrics.Mean(byMeeting[key]))
		x = append(x, []float64{
			1,
			*mkt,
			*rIWM - *mkt,
			*rIWD - *rIWF,
			*rMTUM - *mkt,
		})
	}

	n := len(y)
	k := len(FactorNames)
	if n < MinFactorMeetings {
		return nil, fmt.Errorf("%w: %d joint observations, need %d", ErrInsufficientData, n, MinFactorMeetings)
	}

	beta, xtxInv, err := olsSolve(x, y, k)
	if err != nil {
		return nil, err
	}

	// Residuals and fit quality.
	var ssr, sst float64
	yMean := metrics.Mean(y)
	resid := make([]float64, n)
	for i := 0; i < n; i++ {
		fitted := 0.0
		for j := 0; j < k; j++ {
			fitted += x[i][j] * beta[j]
		}
		resid[i] = y[i] - fitted
		ssr += resid[i] * resid[i]
		d := y[i] - yMean
		sst += d * d
	}

	r2 := 0.0
	if sst > 0 {
		r2 = 1 - ssr/sst
	}
	adjR2 := r2
	if n > k {
		adjR2 = 1 - (1-r2)*float64(n-1)/float64(n-k)
	}

	mse := 0.0
	if n > k {
		mse = ssr / float64(n-k)
	}

	coefs := make([]FactorCoef, k)
	for j := 0; j < k; j++ {
		se := math.Sqrt(mse * xtxInv[j][j])
		t := 0.0
		if se > 0 {
			t = beta[j] / se
		}
		coefs[j] = FactorCoef{
			Name:        FactorNames[j],
			Beta:        beta[j],
			SE:          se,
			T:           t,
			Significant: math.Abs(t) > factorCritical,
		}
	}

	return &FactorRegressionResult{
		N:               n,
		Coefs:           coefs,
		R2:              r2,
		AdjR2:           adjR2,
		ResidualStd:     metrics.StddevPopulation(resid),
		AnnualizedAlpha: beta[0] * (365.25 / float64(domain.DefaultHoldDays)),
	}, nil
}

// olsSolve fits beta for y = X beta via the normal equations and returns
// beta together with (X'X)^-1 for standard errors.
func olsSolve(x [][]float64, y []float64, k int) ([]float64, [][]float64, error) {
	xtx := make([][]float64, k)
	xty := make([]float64, k)
	for i := 0; i < k; i++ {
		xtx[i] = make([]float64, k)
	}
	for i := range x {
		for a := 0; a < k; a++ {
			xty[a] += x[i][a] * y[i]
			for b := 0; b < k; b++ {
				xtx[a][b] += x[i][a] * x[i][b]
			}
		}
	}

	inv, err := invertMatrix(xtx)
	if err != nil {
		return nil, nil, err
	}

	beta := make([]float64, k)
	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			beta[a] += inv[a][b] * xty[b]
		}
	}
	return beta, inv, nil
}

// invertMatrix inverts a square matrix by Gauss-Jordan elimination with
// partial pivoting.
func invertMatrix(m [][]float64) ([][]float64, error) {
	n := len(m)

	// Augment [m | I].
	aug := make([][]float64, n)
	for i := 0; i < n; i++ {
		aug[i] = make([]float64, 2*n)
		copy(aug[i], m[i])
		aug[i][n+i] = 1
	}

	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(aug[row][col]) > math.Abs(aug[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(aug[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("%w: singular design matrix", ErrInsufficientData)
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		scale := aug[col][col]
		for j := 0; j < 2*n; j++ {
			aug[col][j] /= scale
		}
		for row := 0; row < n; row++ {
			if row == col {
				continue
			}
			factor := aug[row][col]
			if factor == 0 {
				continue
			}
			for j := 0; j < 2*n; j++ {
				aug[row][j] -= factor * aug[col][j]
			}
		}
	}

	inv := make([][]float64, n)
	for i := 0; i < n; i++ {
		inv[i] = aug[i][n:]
	}
	return inv, nil
}
