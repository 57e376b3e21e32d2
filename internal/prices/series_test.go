package prices

import (
	"testing"
	"time"

	"meeting-pick-lab/internal/domain"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestNearest_ForwardFirst(t *testing.T) {
	s := Series{
		"2025-01-10": 100.0, // Friday
		"2025-01-13": 103.0, // Monday
	}

	// Saturday resolves forward to Monday, not backward to Friday
	v, at, ok := s.Nearest(d(2025, 1, 11))
	if !ok || v != 103.0 {
		t.Errorf("expected forward match 103, got %f ok=%v", v, ok)
	}
	if domain.DateKey(at) != "2025-01-13" {
		t.Errorf("expected resolved date 2025-01-13, got %s", domain.DateKey(at))
	}
}

func TestNearest_FallsBackward(t *testing.T) {
	s := Series{"2025-01-10": 100.0}

	// No data for 6 forward days, backward finds the 10th
	v, _, ok := s.Nearest(d(2025, 1, 12))
	if !ok || v != 100.0 {
		t.Errorf("expected backward match 100, got %f ok=%v", v, ok)
	}
}

func TestNearest_OutOfRange(t *testing.T) {
	s := Series{"2025-01-10": 100.0}

	if _, _, ok := s.Nearest(d(2025, 2, 1)); ok {
		t.Error("expected no match beyond the search window")
	}
}

func TestForwardReturn(t *testing.T) {
	s := Series{
		"2025-01-10": 100.0,
		"2025-02-10": 110.0,
	}

	r := s.ForwardReturn(d(2025, 1, 10), 31)
	if r == nil {
		t.Fatal("expected a return")
	}
	if got := *r; got < 0.0999 || got > 0.1001 {
		t.Errorf("expected 0.10, got %f", got)
	}

	if r := s.ForwardReturn(d(2025, 1, 10), 90); r != nil {
		t.Errorf("expected nil when target leg is missing, got %f", *r)
	}
	if r := (Series{}).ForwardReturn(d(2025, 1, 10), 30); r != nil {
		t.Error("expected nil on empty series")
	}
}

func TestSetDefault(t *testing.T) {
	s := Series{"2025-01-10": 100.0}
	s.SetDefault("2025-01-10", 50.0)
	s.SetDefault("2025-01-11", 50.0)

	if s["2025-01-10"] != 100.0 {
		t.Error("expected existing close to survive")
	}
	if s["2025-01-11"] != 50.0 {
		t.Error("expected missing close to be filled")
	}
}
