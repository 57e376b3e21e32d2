package domain

import "time"

// DateLayout is the ISO date format used for price-series keys and
// everywhere a date crosses a serialization boundary.
const DateLayout = "2006-01-02"

// Day truncates t to UTC midnight. All meeting and fill dates pass through
// this so they compare and hash consistently.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey formats a date as its ISO series key.
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate parses an ISO date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// AddDays shifts a date by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}
