package analysis

import (
	"fmt"
	"math/rand"
	"sort"

	"meeting-pick-lab/internal/domain"
	"meeting-pick-lab/internal/metrics"
)

const (
	// DefaultSeed makes bootstrap runs reproducible across invocations.
	DefaultSeed = 42

	// NaiveIterations is the resample count of the pick-level bootstrap.
	NaiveIterations = 1000

	// BlockIterations is the resample count of the meeting-block bootstrap.
	BlockIterations = 2000

	// MinBootstrapPicks is the minimum acted-bullish sample.
	MinBootstrapPicks = 5

	// MinBlockMeetings is the minimum distinct meetings for block resampling.
	MinBlockMeetings = 5
)

// NaiveBootstrapResult holds the pick-level resampling outcome.
type NaiveBootstrapResult struct {
	N          int
	ActualMean float64
	// Percentile is the share of resampled means below the actual mean,
	// in percent. High values mean the acted picks beat random selection.
	Percentile float64

	BearishN          int
	BearishMean       *float64
	BearishPercentile *float64

	TrainN    int
	TestN     int
	TrainMean *float64
	TestMean  *float64
}

// NaiveBootstrap compares the acted-bullish mean 30-day excess against
// resampled means drawn from the full pick pool, plus the mirrored test
// for bearish-discussed picks and a chronological train/test split.
func NaiveBootstrap(picks []*domain.Pick, iterations int, seed int64) (*NaiveBootstrapResult, error) {
	if iterations <= 0 {
		iterations = NaiveIterations
	}

	type sample struct {
		date   string
		excess float64
	}

	var acted []sample
	var allExcess []float64
	for _, p := range picks {
		ex := p.Excess(domain.DefaultHoldDays)
		if ex == nil {
			continue
		}
		allExcess = append(allExcess, *ex)
		if p.IsBullishActed() {
			acted = append(acted, sample{date: domain.DateKey(p.MeetingDate), excess: *ex})
		}
	}

	if len(acted) < MinBootstrapPicks {
		return nil, fmt.Errorf("%w: %d acted bullish picks, need %d", ErrInsufficientData, len(acted), MinBootstrapPicks)
	}

	sort.SliceStable(acted, func(i, j int) bool { return acted[i].date < acted[j].date })

	actedExcess := make([]float64, len(acted))
	for i, s := range acted {
		actedExcess[i] = s.excess
	}
	actualMean := metrics.Mean(actedExcess)

	rng := rand.New(rand.NewSource(seed))
	result := &NaiveBootstrapResult{
		N:          len(acted),
		ActualMean: actualMean,
		Percentile: resamplePercentile(rng, allExcess, len(acted), iterations, actualMean, false),
	}

	// Bearish-discussed picks are scored on the opposite tail: skill
	// shows as resampled means ABOVE the actual mean.
	var bearishExcess []float64
	for _, p := range picks {
		if p.Sentiment != domain.SentimentBearish || p.ActedOn {
			continue
		}
		if ex := p.Excess(domain.DefaultHoldDays); ex != nil {
			bearishExcess = append(bearishExcess, *ex)
		}
	}
	if len(bearishExcess) >= MinBootstrapPicks {
		mean := metrics.Mean(bearishExcess)
		pct := resamplePercentile(rng, allExcess, len(bearishExcess), iterations, mean, true)
		result.BearishN = len(bearishExcess)
		result.BearishMean = &mean
		result.BearishPercentile = &pct
	}

	split := len(acted) * 2 / 3
	if split >= MinBootstrapPicks && len(acted)-split >= 3 {
		trainMean := metrics.Mean(actedExcess[:split])
		testMean := metrics.Mean(actedExcess[split:])
		result.TrainN = split
		result.TestN = len(acted) - split
		result.TrainMean = &trainMean
		result.TestMean = &testMean
	}

	return result, nil
}

// resamplePercentile draws k-sized resamples from pool and returns the
// share of resampled means on the losing side of actual, in percent.
// upper scores the share above actual instead of below.
func resamplePercentile(rng *rand.Rand, pool []float64, k, iterations int, actual float64, upper bool) float64 {
	if len(pool) == 0 || k == 0 {
		return 0
	}

	count := 0
	for i := 0; i < iterations; i++ {
		sum := 0.0
		for j := 0; j < k; j++ {
			sum += pool[rng.Intn(len(pool))]
		}
		mean := sum / float64(k)
		if upper {
			if mean > actual {
				count++
			}
		} else if mean < actual {
			count++
		}
	}
	return float64(count) / float64(iterations) * 100
}

// BlockBootstrapResult holds the meeting-block resampling outcome.
// Resampling whole meetings preserves the within-meeting correlation
// that the naive pick-level bootstrap ignores.
type BlockBootstrapResult struct {
	Meetings     int
	Observations int
	ActualMean   float64

	CI95Low  float64
	CI95High float64
	CI90Low  float64
	CI90High float64
	BlockSE  float64
	// BlockPercentile is the share of block-resampled means below zero,
	// in percent.
	BlockPercentile float64

	NaiveSE      float64
	NaiveCI95Low float64
	NaiveCI95High float64
	// CIWidthRatio is block CI95 width over naive CI95 width. Above one
	// means per-meeting correlation was hiding uncertainty.
	CIWidthRatio float64

	ZeroInCI95 bool
	ZeroInCI90 bool
}

// BlockBootstrap resamples whole meetings with replacement and pools
// their acted-bullish 30-day excess returns each iteration.
func BlockBootstrap(picks []*domain.Pick, iterations int, seed int64) (*BlockBootstrapResult, error) {
	if iterations <= 0 {
		iterations = BlockIterations
	}

	byMeeting := make(map[string][]float64)
	var pooled []float64
	for _, p := range bullishActed(picks) {
		ex := p.Excess(domain.DefaultHoldDays)
		if ex == nil {
			continue
		}
		key := domain.DateKey(p.MeetingDate)
		byMeeting[key] = append(byMeeting[key], *ex)
		pooled = append(pooled, *ex)
	}

	if len(byMeeting) < MinBlockMeetings {
		return nil, fmt.Errorf("%w: %d meetings with acted bullish excess, need %d", ErrInsufficientData, len(byMeeting), MinBlockMeetings)
	}

	keys := sortedKeys(byMeeting)
	actualMean := metrics.Mean(pooled)
	rng := rand.New(rand.NewSource(seed))

	blockMeans := make([]float64, iterations)
	for i := 0; i < iterations; i++ {
		var resampled []float64
		for j := 0; j < len(keys); j++ {
			resampled = append(resampled, byMeeting[keys[rng.Intn(len(keys))]]...)
		}
		blockMeans[i] = metrics.Mean(resampled)
	}
	sort.Float64s(blockMeans)

	belowZero := 0
	for _, m := range blockMeans {
		if m < 0 {
			belowZero++
		}
	}

	// Naive comparison on the same rng stream: resample picks ignoring
	// meeting structure.
	naiveMeans := make([]float64, iterations)
	for i := 0; i < iterations; i++ {
		sum := 0.0
		for j := 0; j < len(pooled); j++ {
			sum += pooled[rng.Intn(len(pooled))]
		}
		naiveMeans[i] = sum / float64(len(pooled))
	}
	sort.Float64s(naiveMeans)

	ci95Low := metrics.Percentile(blockMeans, 0.025)
	ci95High := metrics.Percentile(blockMeans, 0.975)
	ci90Low := metrics.Percentile(blockMeans, 0.05)
	ci90High := metrics.Percentile(blockMeans, 0.95)
	naiveCI95Low := metrics.Percentile(naiveMeans, 0.025)
	naiveCI95High := metrics.Percentile(naiveMeans, 0.975)

	ratio := 0.0
	if naiveWidth := naiveCI95High - naiveCI95Low; naiveWidth > 0 {
		ratio = (ci95High - ci95Low) / naiveWidth
	}

	return &BlockBootstrapResult{
		Meetings:        len(byMeeting),
		Observations:    len(pooled),
		ActualMean:      actualMean,
		CI95Low:         ci95Low,
		CI95High:        ci95High,
		CI90Low:         ci90Low,
		CI90High:        ci90High,
		BlockSE:         metrics.StddevPopulation(blockMeans),
		BlockPercentile: float64(belowZero) / float64(iterations) * 100,
		NaiveSE:         metrics.StddevPopulation(naiveMeans),
		NaiveCI95Low:    naiveCI95Low,
		NaiveCI95High:   naiveCI95High,
		CIWidthRatio:    ratio,
		ZeroInCI95:      ci95Low <= 0 && 0 <= ci95High,
		ZeroInCI90:      ci90Low <= 0 && 0 <= ci90High,
	}, nil
}
