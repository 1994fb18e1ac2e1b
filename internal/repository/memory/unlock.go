package memory

import (
	"context"
	"sync"

	"zcc-wallet-backend/internal/domain"
)

type UnlockStore struct {
	mu      sync.Mutex
	unlocks map[[2]string]domain.ContactUnlock
}

func NewUnlockStore() *UnlockStore {
	return &UnlockStore{unlocks: make(map[[2]string]domain.ContactUnlock)}
}

func (s *UnlockStore) Get(ctx context.Context, employerID, candidateID string) (*domain.ContactUnlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.unlocks[[2]string{employerID, candidateID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (s *UnlockStore) Create(ctx context.Context, u *domain.ContactUnlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := [2]string{u.EmployerID, u.CandidateID}
	if _, ok := s.unlocks[k]; ok {
		return domain.ErrAlreadyExists
	}
	s.unlocks[k] = *u
	return nil
}

func (s *UnlockStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.unlocks)
}
