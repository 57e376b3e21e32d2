package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"meeting-pick-lab/internal/domain"
	"meeting-pick-lab/internal/storage"
)

// FillStore is an in-memory implementation of storage.FillStore.
type FillStore struct {
	mu    sync.RWMutex
	fills []*domain.Fill
}

// NewFillStore creates a new in-memory fill store.
func NewFillStore() *FillStore {
	return &FillStore{}
}

// InsertBulk adds multiple fills atomically.
func (s *FillStore) InsertBulk(_ context.Context, fills []*domain.Fill) error {
	if len(fills) == 0 {
		return nil
	}

	for _, f := range fills {
		if f == nil || f.Ticker == "" || f.Date.IsZero() {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range fills {
		fillCopy := *f
		s.fills = append(s.fills, &fillCopy)
	}
	return nil
}

// GetAll retrieves every fill, ordered by date ASC.
func (s *FillStore) GetAll(_ context.Context) ([]*domain.Fill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Fill, 0, len(s.fills))
	for _, f := range s.fills {
		fillCopy := *f
		result = append(result, &fillCopy)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// GetByTicker retrieves all fills for a ledger ticker, ordered by date ASC.
func (s *FillStore) GetByTicker(_ context.Context, ticker string) ([]*domain.Fill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := strings.ToUpper(strings.TrimSpace(ticker))
	var result []*domain.Fill
	for _, f := range s.fills {
		if strings.ToUpper(f.Ticker) == key {
			fillCopy := *f
			result = append(result, &fillCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

var _ storage.FillStore = (*FillStore)(nil)
