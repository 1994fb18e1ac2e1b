package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/logger"
	"zcc-wallet-backend/internal/repository"
)

type auditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) Record(ctx context.Context, rec *domain.AuditRecord) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedOn.IsZero() {
		rec.CreatedOn = time.Now().UTC()
	}
	if err := s.auditRepo.Create(ctx, rec); err != nil {
		logger.Warn("Failed to write audit record", "action", rec.Action, "resourceID", rec.ResourceID, "error", err)
	}
}
