package metrics

import (
	"meeting-pick-lab/internal/domain"
)

// WindowStats summarizes one forward-return horizon inside a bucket.
// Nil pointers mean no pick in the bucket had data for the horizon.
type WindowStats struct {
	N       int
	Mean    *float64
	Median  *float64
	WinRate *float64

	ExcessN       int
	ExcessMean    *float64
	ExcessMedian  *float64
	ExcessWinRate *float64
}

// EntryStats summarizes the hold-window return for one entry-day offset.
type EntryStats struct {
	N      int
	Mean   *float64
	Median *float64
}

// BucketStats is the aggregate for one sentiment/acted-on bucket.
type BucketStats struct {
	Bucket domain.Bucket
	Count  int

	Windows map[int]*WindowStats
	Entry   map[int]*EntryStats
}

// Aggregate groups picks into the five sentiment/acted-on buckets and
// computes per-window raw and excess statistics plus entry-offset
// statistics. Every bucket appears in the result, empty ones included.
func Aggregate(picks []*domain.Pick) map[domain.Bucket]*BucketStats {
	grouped := make(map[domain.Bucket][]*domain.Pick, len(domain.AllBuckets))
	for _, p := range picks {
		b := domain.ClassifyBucket(p.Sentiment, p.ActedOn)
		grouped[b] = append(grouped[b], p)
	}

	result := make(map[domain.Bucket]*BucketStats, len(domain.AllBuckets))
	for _, b := range domain.AllBuckets {
		result[b] = aggregateBucket(b, grouped[b])
	}
	return result
}

// aggregateBucket computes the statistics for one bucket.
func aggregateBucket(bucket domain.Bucket, picks []*domain.Pick) *BucketStats {
	stats := &BucketStats{
		Bucket:  bucket,
		Count:   len(picks),
		Windows: make(map[int]*WindowStats, len(domain.AllWindows)),
		Entry:   make(map[int]*EntryStats, len(domain.EntryOffsets)),
	}

	for _, w := range domain.AllWindows {
		var raw, excess []float64
		for _, p := range picks {
			if r := p.Returns[w]; r != nil {
				raw = append(raw, *r)
			}
			if ex := p.Excess(w); ex != nil {
				excess = append(excess, *ex)
			}
		}

		ws := &WindowStats{N: len(raw), ExcessN: len(excess)}
		if len(raw) > 0 {
			ws.Mean = ptrOf(Mean(raw))
			ws.Median = ptrOf(Median(raw))
			ws.WinRate = ptrOf(WinRate(raw))
		}
		if len(excess) > 0 {
			ws.ExcessMean = ptrOf(Mean(excess))
			ws.ExcessMedian = ptrOf(Median(excess))
			ws.ExcessWinRate = ptrOf(WinRate(excess))
		}
		stats.Windows[w] = ws
	}

	for _, off := range domain.EntryOffsets {
		var rets []float64
		for _, p := range picks {
			if r := p.EntrySensitivity[off]; r != nil {
				rets = append(rets, *r)
			}
		}

		es := &EntryStats{N: len(rets)}
		if len(rets) > 0 {
			es.Mean = ptrOf(Mean(rets))
			es.Median = ptrOf(Median(rets))
		}
		stats.Entry[off] = es
	}

	return stats
}

func ptrOf(v float64) *float64 {
	return &v
}
