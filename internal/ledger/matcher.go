// Package ledger reconstructs positions from broker fills and decides
// whether a meeting pick was acted on.
package ledger

import (
	"math"
	"sort"
	"strings"
	"time"

	"meeting-pick-lab/internal/domain"
	"meeting-pick-lab/internal/ticker"
)

// PositionEpsilon is the share count below which a position counts as flat.
const PositionEpsilon = 0.01

// Default acted-on window around the meeting date, in calendar days.
const (
	DefaultPreDays  = 3
	DefaultPostDays = 7
)

// checkpoint is one point of a cumulative position timeline.
type checkpoint struct {
	date   time.Time
	cumQty float64
}

// Matcher answers position and acted-on queries against the trade ledger.
// Only equity fills participate; timelines accumulate signed quantities
// in date order.
type Matcher struct {
	fillsByTicker map[string][]*domain.Fill
	timelines     map[string][]checkpoint
}

// NewMatcher indexes fills by ledger ticker and builds position timelines.
func NewMatcher(fills []*domain.Fill) *Matcher {
	m := &Matcher{
		fillsByTicker: make(map[string][]*domain.Fill),
		timelines:     make(map[string][]checkpoint),
	}

	for _, f := range fills {
		if !f.IsStock() || f.Ticker == "" || f.Date.IsZero() {
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(f.Ticker))
		m.fillsByTicker[key] = append(m.fillsByTicker[key], f)
	}

	for key, list := range m.fillsByTicker {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Date.Before(list[j].Date)
		})
		cumulative := 0.0
		timeline := make([]checkpoint, 0, len(list))
		for _, f := range list {
			cumulative += f.SignedQuantity()
			timeline = append(timeline, checkpoint{date: f.Date, cumQty: cumulative})
		}
		m.timelines[key] = timeline
	}

	return m
}

// positionAsOf returns the last cumulative quantity at or before the date,
// zero when the ledger has no earlier checkpoint.
func (m *Matcher) positionAsOf(ledgerKey string, at time.Time) float64 {
	pos := 0.0
	for _, cp := range m.timelines[strings.ToUpper(ledgerKey)] {
		if cp.date.After(at) {
			break
		}
		pos = cp.cumQty
	}
	return pos
}

// PositionShares returns the share count held in the provider symbol on
// the given date, trying every ledger alias. Zero means flat.
func (m *Matcher) PositionShares(symbol string, at time.Time) float64 {
	for _, candidate := range ticker.ProviderToLedger(symbol) {
		pos := m.positionAsOf(candidate, at)
		if math.Abs(pos) > PositionEpsilon {
			return pos
		}
	}
	return 0
}

// ActedOn reports whether the symbol was held on the meeting date or
// traded within [meetingDate-preDays, meetingDate+postDays]. Held wins
// over traded.
func (m *Matcher) ActedOn(symbol string, meetingDate time.Time, preDays, postDays int) (bool, string) {
	candidates := ticker.ProviderToLedger(symbol)

	for _, candidate := range candidates {
		if math.Abs(m.positionAsOf(candidate, meetingDate)) > PositionEpsilon {
			return true, domain.ActedReasonHeld
		}
	}

	windowStart := domain.AddDays(meetingDate, -preDays)
	windowEnd := domain.AddDays(meetingDate, postDays)
	for _, candidate := range candidates {
		for _, f := range m.fillsByTicker[strings.ToUpper(candidate)] {
			if !f.Date.Before(windowStart) && !f.Date.After(windowEnd) {
				return true, domain.ActedReasonTraded
			}
		}
	}

	return false, ""
}

// FillsInWindow returns every fill for the symbol (via all aliases)
// inside [center-preDays, center+postDays].
func (m *Matcher) FillsInWindow(symbol string, center time.Time, preDays, postDays int) []*domain.Fill {
	windowStart := domain.AddDays(center, -preDays)
	windowEnd := domain.AddDays(center, postDays)

	var found []*domain.Fill
	for _, candidate := range ticker.ProviderToLedger(symbol) {
		for _, f := range m.fillsByTicker[strings.ToUpper(candidate)] {
			if !f.Date.Before(windowStart) && !f.Date.After(windowEnd) {
				found = append(found, f)
			}
		}
	}
	return found
}
