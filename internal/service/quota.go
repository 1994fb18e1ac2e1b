package service

import (
	"context"
	"time"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/repository"
)

// StartOfMonth returns midnight UTC on the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ComputeQuota floors the remaining allowance at zero.
func ComputeQuota(limit, used int64) *domain.ApplyQuota {
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return &domain.ApplyQuota{
		FreeLimit:     limit,
		Used:          used,
		FreeRemaining: remaining,
		NeedsCredits:  remaining == 0,
	}
}

type quotaService struct {
	appRepo    repository.ApplicationRepository
	freeAllows int64
	now        func() time.Time
}

func NewQuotaService(appRepo repository.ApplicationRepository, freeAppliesPerMonth int64) QuotaService {
	return &quotaService{appRepo: appRepo, freeAllows: freeAppliesPerMonth, now: time.Now}
}

func (s *quotaService) ApplicationQuota(ctx context.Context, candidateID string) (*domain.ApplyQuota, error) {
	if candidateID == "" {
		return nil, domain.ErrInvalidInput
	}
	used, err := s.appRepo.CountByCandidateSince(ctx, candidateID, StartOfMonth(s.now()))
	if err != nil {
		return nil, err
	}
	return ComputeQuota(s.freeAllows, used), nil
}
