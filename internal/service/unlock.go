package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/logger"
	"zcc-wallet-backend/internal/repository"
)

type UnlockInput struct {
	EmployerID    string
	CandidateID   string
	PostID        *string
	ApplicationID *string
}

type unlockService struct {
	unlockRepo  repository.UnlockRepository
	profileRepo repository.ProfileRepository
	walletSvc   WalletService
	catalogSvc  CatalogService
	runner      *PurchaseRunner
	noteSvc     NotificationService
	auditSvc    AuditService
}

func NewUnlockService(
	unlockRepo repository.UnlockRepository,
	profileRepo repository.ProfileRepository,
	walletSvc WalletService,
	catalogSvc CatalogService,
	runner *PurchaseRunner,
	noteSvc NotificationService,
	auditSvc AuditService,
) UnlockService {
	return &unlockService{
		unlockRepo:  unlockRepo,
		profileRepo: profileRepo,
		walletSvc:   walletSvc,
		catalogSvc:  catalogSvc,
		runner:      runner,
		noteSvc:     noteSvc,
		auditSvc:    auditSvc,
	}
}

func (s *unlockService) UnlockContact(ctx context.Context, in UnlockInput) (*domain.UnlockResult, error) {
	if in.EmployerID == "" || in.CandidateID == "" || in.EmployerID == in.CandidateID {
		return nil, fmt.Errorf("%w: employer and a different candidate are required", domain.ErrInvalidInput)
	}

	candidate, err := s.profileRepo.GetByID(ctx, in.CandidateID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.unlockRepo.Get(ctx, in.EmployerID, in.CandidateID); err == nil {
		logger.Debug("Contact already unlocked", "employerID", in.EmployerID, "candidateID", in.CandidateID, "unlockID", existing.ID)
		return s.alreadyUnlocked(ctx, in.EmployerID, existing.ID, candidate)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	cost, err := s.catalogSvc.ActionCost(ctx, domain.ActionContactUnlock)
	if err != nil {
		return nil, err
	}

	unlock := &domain.ContactUnlock{
		ID:            uuid.NewString(),
		EmployerID:    in.EmployerID,
		CandidateID:   in.CandidateID,
		PostID:        in.PostID,
		ApplicationID: in.ApplicationID,
	}
	spend, err := s.runner.Run(ctx, Purchase{
		Operation:   "contact_unlock",
		UserID:      in.EmployerID,
		Credits:     cost,
		SpendType:   domain.SpendTypeContactUnlock,
		RelatedID:   &in.CandidateID,
		Description: "Unlocked candidate contact",
	}, func(ctx context.Context, spend *domain.SpendResult) error {
		unlock.SpendID = spend.SpendID
		unlock.UnlockedAt = time.Now().UTC()
		return s.unlockRepo.Create(ctx, unlock)
	})

	// A concurrent request unlocked the same pair between our check and our
	// insert. Ours was refunded, so report the existing unlock.
	var dwf *domain.DependentWriteFailedError
	if errors.As(err, &dwf) && dwf.Refunded && errors.Is(dwf.Cause, domain.ErrAlreadyExists) {
		logger.Info("Concurrent contact unlock detected, refunded duplicate spend", "employerID", in.EmployerID, "candidateID", in.CandidateID)
		existing, gerr := s.unlockRepo.Get(ctx, in.EmployerID, in.CandidateID)
		if gerr != nil {
			return nil, gerr
		}
		return s.alreadyUnlocked(ctx, in.EmployerID, existing.ID, candidate)
	}
	if err != nil {
		return nil, err
	}

	s.noteSvc.Notify(ctx, &domain.Notification{
		RecipientUserID: in.CandidateID,
		Type:            domain.NotificationContactUnlocked,
		Title:           "An employer viewed your contact details",
		Body:            "An employer unlocked your contact details and may reach out soon.",
		RelatedType:     "contact_unlock",
		RelatedID:       unlock.ID,
		Metadata:        map[string]string{"employer_id": in.EmployerID},
	})
	s.auditSvc.Record(ctx, &domain.AuditRecord{
		Action:       domain.AuditContactUnlocked,
		ResourceType: "contact_unlock",
		ResourceID:   unlock.ID,
		ActorUserID:  in.EmployerID,
		Details: map[string]any{
			"candidate_id":   in.CandidateID,
			"credits":        cost,
			"transaction_id": spend.TransactionID,
		},
	})

	return &domain.UnlockResult{
		UnlockID:     unlock.ID,
		Contact:      candidate.Contact(),
		CreditsSpent: spend.CreditsSpent,
		Balance:      spend.Balance,
	}, nil
}

func (s *unlockService) alreadyUnlocked(ctx context.Context, employerID, unlockID string, candidate *domain.Profile) (*domain.UnlockResult, error) {
	balance, err := s.walletSvc.GetBalance(ctx, employerID)
	if err != nil {
		return nil, err
	}
	return &domain.UnlockResult{
		AlreadyUnlocked: true,
		UnlockID:        unlockID,
		Contact:         candidate.Contact(),
		Balance:         balance,
	}, nil
}

func (s *unlockService) HasUnlocked(ctx context.Context, employerID, candidateID string) (bool, error) {
	_, err := s.unlockRepo.Get(ctx, employerID, candidateID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}
