// Package memory holds in-process implementations of the repository
// interfaces, used by tests and by the server's memory storage mode.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"zcc-wallet-backend/internal/domain"
)

type account struct {
	mu        sync.Mutex
	balance   int64
	entries   []domain.LedgerEntry
	byRef     map[string]int
	spends    []domain.CreditSpend
	createdOn time.Time
	updatedOn time.Time
}

// LedgerStore keeps one mutex per account, so appends to one account are
// serialized while different accounts proceed in parallel.
type LedgerStore struct {
	mu       sync.RWMutex
	accounts map[string]*account
	now      func() time.Time
}

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		accounts: make(map[string]*account),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *LedgerStore) lookup(userID string) *account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accounts[userID]
}

func (s *LedgerStore) getOrCreate(userID string) *account {
	if a := s.lookup(userID); a != nil {
		return a
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[userID]
	if !ok {
		now := s.now()
		a = &account{byRef: make(map[string]int), createdOn: now, updatedOn: now}
		s.accounts[userID] = a
	}
	return a
}

func (s *LedgerStore) Append(ctx context.Context, e *domain.LedgerEntry) error {
	if err := ctx.Err(); err != nil {
		return &domain.StorageError{Op: "ledger.append", Err: err}
	}
	if !e.Type.Valid() {
		return fmt.Errorf("%w: unknown transaction type %q", domain.ErrInvalidInput, e.Type)
	}
	if e.CreditsDelta == 0 || e.Type.IsCredit() != (e.CreditsDelta > 0) {
		return domain.ErrInvalidAmount
	}
	if e.Type == domain.TransactionTypeSpend && e.SpendType == nil {
		return fmt.Errorf("%w: spend entry without spend type", domain.ErrInvalidInput)
	}

	a := s.getOrCreate(e.UserID)
	a.mu.Lock()
	defer a.mu.Unlock()

	if e.Reference != nil {
		if i, ok := a.byRef[*e.Reference]; ok {
			*e = a.entries[i]
			return domain.ErrDuplicateReference
		}
	}
	if a.balance+e.CreditsDelta < 0 {
		return &domain.InsufficientBalanceError{Balance: a.balance, Delta: e.CreditsDelta}
	}

	now := s.now()
	e.ID = uuid.NewString()
	e.BalanceAfter = a.balance + e.CreditsDelta
	e.CreatedOn = now
	if e.Type == domain.TransactionTypeSpend {
		spendID := uuid.NewString()
		e.SpendID = &spendID
		a.spends = append(a.spends, domain.CreditSpend{
			ID:            spendID,
			UserID:        e.UserID,
			TransactionID: e.ID,
			SpendType:     *e.SpendType,
			Credits:       -e.CreditsDelta,
			RelatedID:     e.RelatedID,
			Description:   e.Description,
			CreatedOn:     now,
		})
	}

	a.entries = append(a.entries, *e)
	if e.Reference != nil {
		a.byRef[*e.Reference] = len(a.entries) - 1
	}
	a.balance = e.BalanceAfter
	a.updatedOn = now
	return nil
}

func (s *LedgerStore) GetBalance(ctx context.Context, userID string) (int64, error) {
	a := s.lookup(userID)
	if a == nil {
		return 0, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance, nil
}

func (s *LedgerStore) ListEntries(ctx context.Context, userID string, limit int32) ([]domain.LedgerEntry, error) {
	a := s.lookup(userID)
	if a == nil {
		return nil, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(a.entries)
	if limit > 0 && int(limit) < n {
		n = int(limit)
	}
	out := make([]domain.LedgerEntry, 0, n)
	for i := len(a.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, a.entries[i])
	}
	return out, nil
}

func (s *LedgerStore) GetByReference(ctx context.Context, userID, reference string) (*domain.LedgerEntry, error) {
	a := s.lookup(userID)
	if a == nil {
		return nil, domain.ErrNotFound
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	i, ok := a.byRef[reference]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e := a.entries[i]
	return &e, nil
}

func (s *LedgerStore) ListSpends(ctx context.Context, userID string, spendType domain.SpendType) ([]domain.CreditSpend, error) {
	a := s.lookup(userID)
	if a == nil {
		return nil, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []domain.CreditSpend
	for i := len(a.spends) - 1; i >= 0; i-- {
		if a.spends[i].SpendType == spendType {
			out = append(out, a.spends[i])
		}
	}
	return out, nil
}

func (s *LedgerStore) ListBalanceMismatches(ctx context.Context) ([]domain.BalanceMismatch, error) {
	var out []domain.BalanceMismatch
	for _, userID := range s.userIDs() {
		a := s.lookup(userID)
		a.mu.Lock()
		var sum int64
		for _, e := range a.entries {
			sum += e.CreditsDelta
		}
		if sum != a.balance {
			out = append(out, domain.BalanceMismatch{UserID: userID, Balance: a.balance, LedgerBalance: sum})
		}
		a.mu.Unlock()
	}
	return out, nil
}

func (s *LedgerStore) userIDs() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// spendsBetween returns every spend in [from, to) that has not been refunded.
func (s *LedgerStore) spendsBetween(from, to time.Time) []domain.CreditSpend {
	var out []domain.CreditSpend
	for _, userID := range s.userIDs() {
		a := s.lookup(userID)
		a.mu.Lock()
		for _, sp := range a.spends {
			if sp.CreatedOn.Before(from) || !sp.CreatedOn.Before(to) {
				continue
			}
			if _, refunded := a.byRef[domain.RefundReference(sp.TransactionID)]; refunded {
				continue
			}
			out = append(out, sp)
		}
		a.mu.Unlock()
	}
	return out
}
