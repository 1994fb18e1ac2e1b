package service

import (
	"context"

	"zcc-wallet-backend/internal/domain"
)

// WalletService is the only writer of the credit ledger.
type WalletService interface {
	GetBalance(ctx context.Context, userID string) (int64, error)
	Topup(ctx context.Context, userID string, amount int64, opts TopupOptions) (*domain.TopupResult, error)
	Spend(ctx context.Context, userID string, amount int64, spendType domain.SpendType, relatedID *string, description string) (*domain.SpendResult, error)
	// Refund reverses a spend. It is keyed by the spend's transaction id, so
	// repeated calls credit the account once.
	Refund(ctx context.Context, userID string, spend *domain.SpendResult, reason string) (*domain.TopupResult, error)
	TransactionHistory(ctx context.Context, userID string, limit int32) ([]domain.LedgerEntry, error)
	InitializeWallet(ctx context.Context, userID string, isVendor bool) (*domain.TopupResult, error)
	MonthlySpending(ctx context.Context, userID, month string) ([]domain.MonthlySpending, error)
}

type CatalogService interface {
	ListProducts(ctx context.Context, scope domain.RoleScope) (*domain.ProductListing, error)
	// ActionCost returns the catalog price of an action, or its default when
	// the catalog has no active row for it.
	ActionCost(ctx context.Context, sku domain.ActionSKU) (int64, error)
}

type ListingService interface {
	Publish(ctx context.Context, employerID string, in PublishInput) (*domain.PublishResult, error)
	ListActiveFeatured(ctx context.Context, listingType domain.ListingType, limit int32) ([]domain.FeaturedListing, error)
}

type UnlockService interface {
	UnlockContact(ctx context.Context, in UnlockInput) (*domain.UnlockResult, error)
	HasUnlocked(ctx context.Context, employerID, candidateID string) (bool, error)
}

type VerificationService interface {
	SubmitVerification(ctx context.Context, userID string, in VerificationInput) (*domain.VerificationResult, error)
	PurchaseFeaturedProfile(ctx context.Context, userID string) (*domain.FeaturedProfileResult, error)
}

type QuotaService interface {
	ApplicationQuota(ctx context.Context, candidateID string) (*domain.ApplyQuota, error)
}

type NotificationService interface {
	// Notify records a delivery intent. Failures are logged, not returned.
	Notify(ctx context.Context, n *domain.Notification)
	GetNotifications(ctx context.Context, userID string, page, pageSize int32) ([]domain.Notification, int32, error)
}

type AuditService interface {
	// Record appends to the audit trail. Failures are logged, not returned.
	Record(ctx context.Context, rec *domain.AuditRecord)
}
