package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"zcc-wallet-backend/internal/domain"
)

type spendingKey struct {
	userID    string
	month     string
	spendType domain.SpendType
}

type SpendingStore struct {
	mu     sync.Mutex
	rows   map[spendingKey]*domain.MonthlySpending
	ledger *LedgerStore
}

func NewSpendingStore(ledger *LedgerStore) *SpendingStore {
	return &SpendingStore{rows: make(map[spendingKey]*domain.MonthlySpending), ledger: ledger}
}

func (s *SpendingStore) Increment(ctx context.Context, userID, month string, spendType domain.SpendType, credits int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := spendingKey{userID, month, spendType}
	row, ok := s.rows[k]
	if !ok {
		row = &domain.MonthlySpending{UserID: userID, Month: month, SpendType: spendType}
		s.rows[k] = row
	}
	row.Credits += credits
	row.UpdatedOn = time.Now().UTC()
	return nil
}

func (s *SpendingStore) RebuildMonth(ctx context.Context, month string) (int64, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return 0, domain.ErrInvalidInput
	}
	spends := s.ledger.spendsBetween(start, start.AddDate(0, 1, 0))

	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.rows {
		if k.month == month {
			delete(s.rows, k)
		}
	}
	now := time.Now().UTC()
	for _, sp := range spends {
		k := spendingKey{sp.UserID, month, sp.SpendType}
		row, ok := s.rows[k]
		if !ok {
			row = &domain.MonthlySpending{UserID: sp.UserID, Month: month, SpendType: sp.SpendType}
			s.rows[k] = row
		}
		row.Credits += sp.Credits
		row.UpdatedOn = now
	}
	var n int64
	for k := range s.rows {
		if k.month == month {
			n++
		}
	}
	return n, nil
}

func (s *SpendingStore) ListByUser(ctx context.Context, userID, month string) ([]domain.MonthlySpending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.MonthlySpending
	for k, row := range s.rows {
		if k.userID == userID && k.month == month {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SpendType < out[j].SpendType })
	return out, nil
}
