// Package prices fetches daily close series and derives the forward
// returns that drive every downstream analysis.
package prices

import (
	"sort"
	"time"

	"meeting-pick-lab/internal/domain"
)

// NearestMaxDays bounds the search for a trading day around a calendar
// date. Weekends and short holiday stretches fit inside it.
const NearestMaxDays = 5

// Series is a daily close series keyed by ISO date ("2006-01-02").
type Series map[string]float64

// At returns the close on the exact calendar date.
func (s Series) At(date time.Time) (float64, bool) {
	v, ok := s[domain.DateKey(date)]
	return v, ok
}

// Nearest returns the close on the date or the nearest trading day:
// forward up to NearestMaxDays first, then backward up to NearestMaxDays.
func (s Series) Nearest(date time.Time) (float64, time.Time, bool) {
	for off := 0; off <= NearestMaxDays; off++ {
		d := domain.AddDays(date, off)
		if v, ok := s[domain.DateKey(d)]; ok {
			return v, d, true
		}
	}
	for off := 1; off <= NearestMaxDays; off++ {
		d := domain.AddDays(date, -off)
		if v, ok := s[domain.DateKey(d)]; ok {
			return v, d, true
		}
	}
	return 0, time.Time{}, false
}

// ForwardReturn computes the simple return from the nearest close at
// `from` to the nearest close `days` calendar days later. Nil when either
// leg is missing or the base close is zero.
func (s Series) ForwardReturn(from time.Time, days int) *float64 {
	base, _, ok := s.Nearest(from)
	if !ok || base == 0 {
		return nil
	}
	target, _, ok := s.Nearest(domain.AddDays(from, days))
	if !ok {
		return nil
	}
	r := target/base - 1
	return &r
}

// SortedDates returns every date key in ascending order.
func (s Series) SortedDates() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetDefault stores the value only when the date has no close yet.
func (s Series) SetDefault(dateKey string, value float64) {
	if _, ok := s[dateKey]; !ok {
		s[dateKey] = value
	}
}
