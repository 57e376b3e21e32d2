package domain

// Bucket partitions picks by (sentiment, acted-on) for aggregation.
type Bucket string

const (
	BucketBullishActed     Bucket = "BULLISH_ACTED"
	BucketBullishDiscussed Bucket = "BULLISH_DISCUSSED"
	BucketBearishActed     Bucket = "BEARISH_ACTED"
	BucketBearishDiscussed Bucket = "BEARISH_DISCUSSED"
	BucketNeutralUnknown   Bucket = "NEUTRAL_UNKNOWN"
)

// AllBuckets lists buckets in report order.
var AllBuckets = []Bucket{
	BucketBullishActed,
	BucketBullishDiscussed,
	BucketBearishActed,
	BucketBearishDiscussed,
	BucketNeutralUnknown,
}

// ClassifyBucket maps a pick's sentiment and acted-on flag to its bucket.
// Neutral and Unknown picks share one bucket regardless of action.
func ClassifyBucket(sentiment Sentiment, actedOn bool) Bucket {
	switch sentiment {
	case SentimentBullish:
		if actedOn {
			return BucketBullishActed
		}
		return BucketBullishDiscussed
	case SentimentBearish:
		if actedOn {
			return BucketBearishActed
		}
		return BucketBearishDiscussed
	default:
		return BucketNeutralUnknown
	}
}
