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

type VerificationInput struct {
	Type    domain.VerificationType
	FileURL *string
	Notes   *string
}

type verificationService struct {
	verificationRepo repository.VerificationRepository
	profileRepo      repository.ProfileRepository
	ledgerRepo       repository.LedgerRepository
	walletSvc        WalletService
	catalogSvc       CatalogService
	runner           *PurchaseRunner
	noteSvc          NotificationService
	auditSvc         AuditService
}

func NewVerificationService(
	verificationRepo repository.VerificationRepository,
	profileRepo repository.ProfileRepository,
	ledgerRepo repository.LedgerRepository,
	walletSvc WalletService,
	catalogSvc CatalogService,
	runner *PurchaseRunner,
	noteSvc NotificationService,
	auditSvc AuditService,
) VerificationService {
	return &verificationService{
		verificationRepo: verificationRepo,
		profileRepo:      profileRepo,
		ledgerRepo:       ledgerRepo,
		walletSvc:        walletSvc,
		catalogSvc:       catalogSvc,
		runner:           runner,
		noteSvc:          noteSvc,
		auditSvc:         auditSvc,
	}
}

// SubmitVerification charges the verification bundle once per user. A
// pending or approved verification is left alone and nothing is charged;
// a rejected one is resubmitted for free.
func (s *verificationService) SubmitVerification(ctx context.Context, userID string, in VerificationInput) (*domain.VerificationResult, error) {
	if userID == "" || !in.Type.Valid() {
		return nil, fmt.Errorf("%w: invalid verification type %q", domain.ErrInvalidInput, in.Type)
	}

	now := time.Now().UTC()
	existing, err := s.verificationRepo.GetLatest(ctx, userID, in.Type)
	switch {
	case err == nil:
		return s.resubmit(ctx, userID, existing, in, now)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	paid, err := s.hasPaidBundle(ctx, userID)
	if err != nil {
		return nil, err
	}

	v := &domain.Verification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      in.Type,
		FileURL:   in.FileURL,
		Notes:     in.Notes,
		Status:    domain.VerificationPending,
		CreatedOn: now,
		UpdatedOn: now,
	}
	if paid {
		return s.createFree(ctx, userID, v, in, now)
	}

	cost, err := s.catalogSvc.ActionCost(ctx, domain.ActionVerificationBundle)
	if err != nil {
		return nil, err
	}
	spend, err := s.runner.Run(ctx, Purchase{
		Operation:   "verification_bundle",
		UserID:      userID,
		Credits:     cost,
		SpendType:   domain.SpendTypeVerificationBundle,
		RelatedID:   &v.ID,
		Description: fmt.Sprintf("Verification bundle: %s", in.Type),
	}, func(ctx context.Context, spend *domain.SpendResult) error {
		return s.verificationRepo.CreatePaid(ctx, v, spend.TransactionID)
	})
	// A concurrent submission claimed the bundle or this type first. Our
	// spend was refunded, so continue as if the bundle had been paid.
	var dwf *domain.DependentWriteFailedError
	if errors.As(err, &dwf) && dwf.Refunded && errors.Is(dwf.Cause, domain.ErrAlreadyExists) {
		logger.Info("Concurrent verification submission detected, refunded duplicate spend", "userID", userID, "type", in.Type)
		return s.createFree(ctx, userID, v, in, now)
	}
	if err != nil {
		return nil, err
	}

	s.submitted(ctx, userID, v, spend.CreditsSpent)
	return &domain.VerificationResult{
		VerificationID: v.ID,
		Status:         v.Status,
		CreditsSpent:   spend.CreditsSpent,
		Balance:        spend.Balance,
	}, nil
}

// createFree stores v without charging. When another verification of the
// same type won a race, that one is reported instead.
func (s *verificationService) createFree(ctx context.Context, userID string, v *domain.Verification, in VerificationInput, now time.Time) (*domain.VerificationResult, error) {
	err := s.verificationRepo.Create(ctx, v)
	if errors.Is(err, domain.ErrAlreadyExists) {
		existing, gerr := s.verificationRepo.GetLatest(ctx, userID, in.Type)
		if gerr != nil {
			return nil, gerr
		}
		return s.resubmit(ctx, userID, existing, in, now)
	}
	if err != nil {
		return nil, err
	}
	balance, err := s.walletSvc.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.submitted(ctx, userID, v, 0)
	return &domain.VerificationResult{VerificationID: v.ID, Status: v.Status, Balance: balance}, nil
}

func (s *verificationService) resubmit(ctx context.Context, userID string, existing *domain.Verification, in VerificationInput, now time.Time) (*domain.VerificationResult, error) {
	balance, err := s.walletSvc.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	res := &domain.VerificationResult{VerificationID: existing.ID, Status: existing.Status, Balance: balance}
	if existing.Status != domain.VerificationRejected {
		logger.Info("Verification already submitted, nothing charged", "userID", userID, "type", in.Type, "status", existing.Status)
		res.AlreadySubmitted = true
		return res, nil
	}

	existing.FileURL = in.FileURL
	existing.Notes = in.Notes
	existing.UpdatedOn = now
	if err := s.verificationRepo.Resubmit(ctx, existing); err != nil {
		return nil, err
	}
	res.Status = domain.VerificationPending
	res.Resubmission = true
	s.submitted(ctx, userID, existing, 0)
	return res, nil
}

// hasPaidBundle reports whether the user holds a verification bundle spend
// that was not refunded.
func (s *verificationService) hasPaidBundle(ctx context.Context, userID string) (bool, error) {
	spends, err := s.ledgerRepo.ListSpends(ctx, userID, domain.SpendTypeVerificationBundle)
	if err != nil {
		return false, err
	}
	for _, sp := range spends {
		_, err := s.ledgerRepo.GetByReference(ctx, userID, domain.RefundReference(sp.TransactionID))
		if errors.Is(err, domain.ErrNotFound) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
	}
	return false, nil
}

func (s *verificationService) submitted(ctx context.Context, userID string, v *domain.Verification, credits int64) {
	s.noteSvc.Notify(ctx, &domain.Notification{
		RecipientUserID: userID,
		Type:            domain.NotificationVerificationSubmitted,
		Title:           "Verification submitted",
		Body:            "Your documents are pending review.",
		RelatedType:     "verification",
		RelatedID:       v.ID,
		Metadata:        map[string]string{"verification_type": string(v.Type)},
	})
	s.auditSvc.Record(ctx, &domain.AuditRecord{
		Action:       domain.AuditVerificationSent,
		ResourceType: "verification",
		ResourceID:   v.ID,
		ActorUserID:  userID,
		Details:      map[string]any{"type": string(v.Type), "credits": credits},
	})
}

func (s *verificationService) PurchaseFeaturedProfile(ctx context.Context, userID string) (*domain.FeaturedProfileResult, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if profile.FeaturedAt(now) {
		return s.featuredResult(ctx, profile)
	}

	cost, err := s.catalogSvc.ActionCost(ctx, domain.ActionFeaturedProfile7D)
	if err != nil {
		return nil, err
	}
	until := now.Add(domain.FeaturedProfileDuration)
	spend, err := s.runner.Run(ctx, Purchase{
		Operation:   "featured_profile",
		UserID:      userID,
		Credits:     cost,
		SpendType:   domain.SpendTypeFeaturedProfile,
		RelatedID:   &userID,
		Description: "Featured profile: 7 days",
	}, func(ctx context.Context, _ *domain.SpendResult) error {
		return s.profileRepo.SetFeaturedUntil(ctx, userID, now, until)
	})
	var dwf *domain.DependentWriteFailedError
	if errors.As(err, &dwf) && dwf.Refunded && errors.Is(dwf.Cause, domain.ErrAlreadyExists) {
		logger.Info("Concurrent featured profile purchase detected, refunded duplicate spend", "userID", userID)
		return s.alreadyFeatured(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	s.auditSvc.Record(ctx, &domain.AuditRecord{
		Action:       domain.AuditProfileFeatured,
		ResourceType: "profile",
		ResourceID:   userID,
		ActorUserID:  userID,
		Details:      map[string]any{"credits": cost, "featured_until": until, "transaction_id": spend.TransactionID},
	})
	return &domain.FeaturedProfileResult{FeaturedUntil: until, CreditsSpent: spend.CreditsSpent, Balance: spend.Balance}, nil
}

func (s *verificationService) alreadyFeatured(ctx context.Context, userID string) (*domain.FeaturedProfileResult, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.FeaturedUntil == nil {
		return nil, fmt.Errorf("%w: profile %s lost its featured window", domain.ErrStorageUnavailable, userID)
	}
	return s.featuredResult(ctx, profile)
}

func (s *verificationService) featuredResult(ctx context.Context, profile *domain.Profile) (*domain.FeaturedProfileResult, error) {
	balance, err := s.walletSvc.GetBalance(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	logger.Info("Profile already featured, nothing charged", "userID", profile.ID, "featuredUntil", *profile.FeaturedUntil)
	return &domain.FeaturedProfileResult{FeaturedUntil: *profile.FeaturedUntil, AlreadyFeatured: true, Balance: balance}, nil
}
