package memory

import (
	"context"
	"sync"

	"zcc-wallet-backend/internal/domain"
)

type NotificationStore struct {
	mu    sync.Mutex
	notes []domain.Notification
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{}
}

func (s *NotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, *n)
	return nil
}

func (s *NotificationStore) List(ctx context.Context, userID string, limit, offset int32) ([]domain.Notification, int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var mine []domain.Notification
	for i := len(s.notes) - 1; i >= 0; i-- {
		if s.notes[i].RecipientUserID == userID {
			mine = append(mine, s.notes[i])
		}
	}
	total := int32(len(mine))
	if offset >= total {
		return nil, total, nil
	}
	mine = mine[offset:]
	if limit > 0 && int(limit) < len(mine) {
		mine = mine[:limit]
	}
	return mine, total, nil
}

type AuditStore struct {
	mu      sync.Mutex
	records []domain.AuditRecord
}

func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

func (s *AuditStore) Create(ctx context.Context, rec *domain.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *rec)
	return nil
}

func (s *AuditStore) Records() []domain.AuditRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AuditRecord(nil), s.records...)
}
