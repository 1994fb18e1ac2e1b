package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/repository"
)

type PublishInput struct {
	Type          domain.ListingType
	Title         string
	Description   string
	Category      string
	Location      string
	PayMin        *int64
	PayMax        *int64
	PayCurrency   string
	StartDate     *string
	Duration      string
	ContractType  string
	WorkersNeeded int32
	Requirements  string
	// Featured is the featured add-on, empty for none.
	Featured domain.FeaturedOption
}

type listingService struct {
	listingRepo repository.ListingRepository
	catalogSvc  CatalogService
	runner      *PurchaseRunner
	noteSvc     NotificationService
	auditSvc    AuditService
}

func NewListingService(
	listingRepo repository.ListingRepository,
	catalogSvc CatalogService,
	runner *PurchaseRunner,
	noteSvc NotificationService,
	auditSvc AuditService,
) ListingService {
	return &listingService{
		listingRepo: listingRepo,
		catalogSvc:  catalogSvc,
		runner:      runner,
		noteSvc:     noteSvc,
		auditSvc:    auditSvc,
	}
}

func (s *listingService) Publish(ctx context.Context, employerID string, in PublishInput) (*domain.PublishResult, error) {
	baseSKU, spendType, ok := domain.PostingCost(in.Type)
	if !ok {
		return nil, fmt.Errorf("%w: unknown listing type %q", domain.ErrInvalidInput, in.Type)
	}
	if employerID == "" || strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: employer and title are required", domain.ErrInvalidInput)
	}
	if in.PayMin != nil && in.PayMax != nil && *in.PayMin > *in.PayMax {
		return nil, fmt.Errorf("%w: pay_min exceeds pay_max", domain.ErrInvalidInput)
	}

	var tier *domain.FeaturedTier
	if in.Featured != "" {
		t, ok := domain.LookupFeaturedTier(in.Type, in.Featured)
		if !ok {
			return nil, fmt.Errorf("%w: featured option %q is not offered for %s listings", domain.ErrInvalidInput, in.Featured, in.Type)
		}
		tier = &t
	}

	total, err := s.catalogSvc.ActionCost(ctx, baseSKU)
	if err != nil {
		return nil, err
	}
	if tier != nil {
		extra, err := s.catalogSvc.ActionCost(ctx, tier.CostSKU)
		if err != nil {
			return nil, err
		}
		total += extra
	}

	now := time.Now().UTC()
	currency := in.PayCurrency
	if currency == "" {
		currency = "KES"
	}
	listing := &domain.Listing{
		ID:            uuid.NewString(),
		EmployerID:    employerID,
		Type:          in.Type,
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		Category:      in.Category,
		Location:      in.Location,
		PayMin:        in.PayMin,
		PayMax:        in.PayMax,
		PayCurrency:   currency,
		StartDate:     in.StartDate,
		Duration:      in.Duration,
		ContractType:  in.ContractType,
		WorkersNeeded: in.WorkersNeeded,
		Requirements:  in.Requirements,
		Status:        domain.ListingStatusActive,
		CreatedOn:     now,
	}

	description := fmt.Sprintf("Published %s: %s", in.Type, listing.Title)
	if tier != nil {
		description += fmt.Sprintf(" (featured %s)", tier.Option)
	}

	var slot *domain.FeaturedSlot
	spend, err := s.runner.Run(ctx, Purchase{
		Operation:   "publish_" + string(in.Type),
		UserID:      employerID,
		Credits:     total,
		SpendType:   spendType,
		RelatedID:   &listing.ID,
		Description: description,
	}, func(ctx context.Context, spend *domain.SpendResult) error {
		if tier != nil {
			slot = &domain.FeaturedSlot{
				ID:         uuid.NewString(),
				PostID:     listing.ID,
				EmployerID: employerID,
				Label:      tier.Label,
				StartsAt:   now,
				EndsAt:     now.Add(tier.Duration),
				SpendID:    spend.SpendID,
			}
		}
		return s.listingRepo.Create(ctx, listing, slot)
	})
	if err != nil {
		return nil, err
	}

	res := &domain.PublishResult{
		ListingID:     listing.ID,
		CreditsSpent:  spend.CreditsSpent,
		Balance:       spend.Balance,
		TransactionID: spend.TransactionID,
	}
	if slot != nil {
		res.FeaturedUntil = &slot.EndsAt
	}

	s.noteSvc.Notify(ctx, &domain.Notification{
		RecipientUserID: employerID,
		Type:            domain.NotificationPostPublished,
		Title:           fmt.Sprintf("Your %s is live", in.Type),
		Body:            fmt.Sprintf("%q was published for %d credits.", listing.Title, total),
		RelatedType:     "listing",
		RelatedID:       listing.ID,
		Metadata:        map[string]string{"featured": string(in.Featured)},
	})
	s.auditSvc.Record(ctx, &domain.AuditRecord{
		Action:       domain.AuditListingPublished,
		ResourceType: "listing",
		ResourceID:   listing.ID,
		ActorUserID:  employerID,
		Details: map[string]any{
			"type":           string(in.Type),
			"credits":        total,
			"featured":       string(in.Featured),
			"transaction_id": spend.TransactionID,
		},
	})
	return res, nil
}

func (s *listingService) ListActiveFeatured(ctx context.Context, listingType domain.ListingType, limit int32) ([]domain.FeaturedListing, error) {
	if _, _, ok := domain.PostingCost(listingType); !ok {
		return nil, fmt.Errorf("%w: unknown listing type %q", domain.ErrInvalidInput, listingType)
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.listingRepo.ListActiveFeatured(ctx, listingType, time.Now().UTC(), limit)
}
