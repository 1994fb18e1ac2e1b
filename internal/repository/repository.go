package repository

import (
	"context"
	"time"

	"zcc-wallet-backend/internal/domain"
)

// LedgerRepository is the append-only credit ledger with its balance projection.
type LedgerRepository interface {
	// Append applies entry.CreditsDelta to the account and records the entry in
	// one atomic unit. It fills ID, BalanceAfter, CreatedOn and, for spends,
	// SpendID. Appends to the same account are serialized.
	//
	// A debit that would overdraw the account fails with
	// *domain.InsufficientBalanceError. If entry.Reference was already used on
	// this account, entry is overwritten with the stored row and
	// domain.ErrDuplicateReference is returned.
	Append(ctx context.Context, entry *domain.LedgerEntry) error
	// GetBalance returns 0 for an account that never transacted.
	GetBalance(ctx context.Context, userID string) (int64, error)
	// ListEntries returns the newest entries first. limit <= 0 returns all.
	ListEntries(ctx context.Context, userID string, limit int32) ([]domain.LedgerEntry, error)
	GetByReference(ctx context.Context, userID, reference string) (*domain.LedgerEntry, error)
	ListSpends(ctx context.Context, userID string, spendType domain.SpendType) ([]domain.CreditSpend, error)
	// ListBalanceMismatches compares every projected balance with the sum of
	// its ledger deltas.
	ListBalanceMismatches(ctx context.Context) ([]domain.BalanceMismatch, error)
}

// SpendingRepository maintains the monthly spending analytics projection.
type SpendingRepository interface {
	Increment(ctx context.Context, userID, month string, spendType domain.SpendType, credits int64) error
	// RebuildMonth recomputes every row of month (YYYY-MM) from the ledger and
	// returns the number of rows written.
	RebuildMonth(ctx context.Context, month string) (int64, error)
	ListByUser(ctx context.Context, userID, month string) ([]domain.MonthlySpending, error)
}

type ProductRepository interface {
	// ListActive returns active products ordered by sort_order. A nil scopes
	// slice applies no role filter.
	ListActive(ctx context.Context, scopes []domain.RoleScope) ([]domain.Product, error)
	GetActiveBySKU(ctx context.Context, sku string) (*domain.Product, error)
}

type ListingRepository interface {
	// Create inserts the listing and, when slot is non-nil, its featured slot
	// in the same transaction.
	Create(ctx context.Context, listing *domain.Listing, slot *domain.FeaturedSlot) error
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	ListActiveFeatured(ctx context.Context, listingType domain.ListingType, now time.Time, limit int32) ([]domain.FeaturedListing, error)
}

type UnlockRepository interface {
	// Get returns domain.ErrNotFound when the pair was never unlocked.
	Get(ctx context.Context, employerID, candidateID string) (*domain.ContactUnlock, error)
	// Create returns domain.ErrAlreadyExists if the pair is already unlocked.
	Create(ctx context.Context, unlock *domain.ContactUnlock) error
}

type VerificationRepository interface {
	// GetLatest returns domain.ErrNotFound when the user never submitted this type.
	GetLatest(ctx context.Context, userID string, verificationType domain.VerificationType) (*domain.Verification, error)
	// Create returns domain.ErrAlreadyExists if a pending or approved
	// verification of the same type exists.
	Create(ctx context.Context, v *domain.Verification) error
	// CreatePaid claims the user's verification bundle for the spend
	// transactionID and creates v atomically. It returns domain.ErrAlreadyExists
	// when an unrefunded spend already holds the bundle or v conflicts.
	CreatePaid(ctx context.Context, v *domain.Verification, transactionID string) error
	// Resubmit moves a rejected verification back to pending with new evidence.
	Resubmit(ctx context.Context, v *domain.Verification) error
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	// SetFeaturedUntil features the profile until the given time unless it is
	// still featured at now, in which case it returns domain.ErrAlreadyExists.
	SetFeaturedUntil(ctx context.Context, id string, now, until time.Time) error
}

type ApplicationRepository interface {
	CountByCandidateSince(ctx context.Context, candidateID string, since time.Time) (int64, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, userID string, limit, offset int32) ([]domain.Notification, int32, error)
}

type AuditRepository interface {
	Create(ctx context.Context, rec *domain.AuditRecord) error
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
