package memory

import (
	"context"
	"sync"

	"parking_rental/internal/domain"
	"parking_rental/internal/repository"
)

// LotStore keeps the snapshot in process memory.
type LotStore struct {
	mu       sync.Mutex
	snapshot *domain.LotSnapshot
	saves    int
}

func NewLotStore() *LotStore {
	return &LotStore{}
}

func (s *LotStore) Load(_ context.Context) (*domain.LotSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return nil, repository.ErrNotFound
	}
	return s.snapshot.Clone(), nil
}

func (s *LotStore) Save(_ context.Context, snapshot *domain.LotSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot.Clone()
	s.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (s *LotStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *LotStore) Close() error { return nil }
