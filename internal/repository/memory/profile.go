package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"zcc-wallet-backend/internal/domain"
)

type VerificationStore struct {
	mu      sync.Mutex
	items   []domain.Verification
	bundles map[string]string // user id -> spend transaction id
	ledger  *LedgerStore
}

// NewVerificationStore reads refunds from ledger when deciding whether a
// bundle claim is still held.
func NewVerificationStore(ledger *LedgerStore) *VerificationStore {
	return &VerificationStore{bundles: make(map[string]string), ledger: ledger}
}

func (s *VerificationStore) GetLatest(ctx context.Context, userID string, vt domain.VerificationType) (*domain.Verification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.items) - 1; i >= 0; i-- {
		if v := s.items[i]; v.UserID == userID && v.Type == vt {
			return &v, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *VerificationStore) Create(ctx context.Context, v *domain.Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(v)
}

func (s *VerificationStore) CreatePaid(ctx context.Context, v *domain.Verification, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if held, ok := s.bundles[v.UserID]; ok {
		_, err := s.ledger.GetByReference(ctx, v.UserID, domain.RefundReference(held))
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrAlreadyExists
		}
		if err != nil {
			return err
		}
	}
	if err := s.insert(v); err != nil {
		return err
	}
	s.bundles[v.UserID] = transactionID
	return nil
}

func (s *VerificationStore) insert(v *domain.Verification) error {
	for _, it := range s.items {
		if it.UserID == v.UserID && it.Type == v.Type &&
			(it.Status == domain.VerificationPending || it.Status == domain.VerificationApproved) {
			return domain.ErrAlreadyExists
		}
	}
	s.items = append(s.items, *v)
	return nil
}

func (s *VerificationStore) Resubmit(ctx context.Context, v *domain.Verification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == v.ID && s.items[i].Status == domain.VerificationRejected {
			s.items[i].Status = domain.VerificationPending
			s.items[i].FileURL = v.FileURL
			s.items[i].Notes = v.Notes
			s.items[i].RejectReason = nil
			s.items[i].UpdatedOn = v.UpdatedOn
			v.Status = domain.VerificationPending
			v.RejectReason = nil
			return nil
		}
	}
	return domain.ErrNotFound
}

// SetStatus simulates an operator review decision.
func (s *VerificationStore) SetStatus(id string, status domain.VerificationStatus, reason *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Status = status
			s.items[i].RejectReason = reason
		}
	}
}

type ProfileStore struct {
	mu       sync.Mutex
	profiles map[string]domain.Profile
}

func NewProfileStore(profiles ...domain.Profile) *ProfileStore {
	s := &ProfileStore{profiles: make(map[string]domain.Profile)}
	for _, p := range profiles {
		s.profiles[p.ID] = p
	}
	return s
}

func (s *ProfileStore) Put(p domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
}

func (s *ProfileStore) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *ProfileStore) SetFeaturedUntil(ctx context.Context, id string, now, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.FeaturedAt(now) {
		return domain.ErrAlreadyExists
	}
	p.FeaturedUntil = &until
	s.profiles[id] = p
	return nil
}

type ApplicationStore struct {
	mu      sync.Mutex
	applied map[string][]time.Time
}

func NewApplicationStore() *ApplicationStore {
	return &ApplicationStore{applied: make(map[string][]time.Time)}
}

// Record registers an application by candidateID at t.
func (s *ApplicationStore) Record(candidateID string, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied[candidateID] = append(s.applied[candidateID], t)
}

func (s *ApplicationStore) CountByCandidateSince(ctx context.Context, candidateID string, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, t := range s.applied[candidateID] {
		if !t.Before(since) {
			n++
		}
	}
	return n, nil
}
