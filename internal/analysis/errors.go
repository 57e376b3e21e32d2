package analysis

import "errors"

// ErrInsufficientData is returned when an analysis cannot meet its
// minimum sample-size precondition. Callers render the reason instead of
// a silently defaulted statistic.
var ErrInsufficientData = errors.New("insufficient data")
