package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"zcc-wallet-backend/internal/domain"
)

type ListingStore struct {
	mu       sync.RWMutex
	listings map[string]domain.Listing
	slots    []domain.FeaturedSlot
}

func NewListingStore() *ListingStore {
	return &ListingStore{listings: make(map[string]domain.Listing)}
}

func (s *ListingStore) Create(ctx context.Context, l *domain.Listing, slot *domain.FeaturedSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[l.ID]; ok {
		return domain.ErrAlreadyExists
	}
	s.listings[l.ID] = *l
	if slot != nil {
		s.slots = append(s.slots, *slot)
	}
	return nil
}

func (s *ListingStore) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

func (s *ListingStore) ListActiveFeatured(ctx context.Context, t domain.ListingType, now time.Time, limit int32) ([]domain.FeaturedListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.FeaturedListing{}
	for _, slot := range s.slots {
		l, ok := s.listings[slot.PostID]
		if !ok || l.Type != t || l.Status != domain.ListingStatusActive || !slot.ActiveAt(now) {
			continue
		}
		out = append(out, domain.FeaturedListing{Listing: l, FeaturedLabel: slot.Label, FeaturedUntil: slot.EndsAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FeaturedUntil.After(out[j].FeaturedUntil) })
	if limit > 0 && int(limit) < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// Slots returns a copy of every featured slot.
func (s *ListingStore) Slots() []domain.FeaturedSlot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.FeaturedSlot(nil), s.slots...)
}
