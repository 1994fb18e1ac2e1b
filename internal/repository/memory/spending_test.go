package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/repository/memory"
)

func TestSpendingStore_Increment(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSpendingStore(memory.NewLedgerStore())

	require.NoError(t, store.Increment(ctx, "u1", "2026-03", domain.SpendTypeJobPost, 30))
	require.NoError(t, store.Increment(ctx, "u1", "2026-03", domain.SpendTypeJobPost, 30))
	require.NoError(t, store.Increment(ctx, "u1", "2026-03", domain.SpendTypeContactUnlock, 10))
	require.NoError(t, store.Increment(ctx, "u1", "2026-04", domain.SpendTypeJobPost, 30))

	rows, err := store.ListByUser(ctx, "u1", "2026-03")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.SpendTypeContactUnlock, rows[0].SpendType)
	assert.Equal(t, int64(10), rows[0].Credits)
	assert.Equal(t, domain.SpendTypeJobPost, rows[1].SpendType)
	assert.Equal(t, int64(60), rows[1].Credits)
}

func TestSpendingStore_RebuildMonthSkipsRefundedSpends(t *testing.T) {
	ctx := context.Background()
	ledger := memory.NewLedgerStore()
	store := memory.NewSpendingStore(ledger)
	month := time.Now().UTC().Format("2006-01")

	require.NoError(t, ledger.Append(ctx, credit("u1", 100, "")))
	kept := debit("u1", 30, domain.SpendTypeJobPost)
	require.NoError(t, ledger.Append(ctx, kept))
	refunded := debit("u1", 10, domain.SpendTypeContactUnlock)
	require.NoError(t, ledger.Append(ctx, refunded))
	ref := domain.RefundReference(refunded.ID)
	require.NoError(t, ledger.Append(ctx, &domain.LedgerEntry{
		UserID: "u1", Type: domain.TransactionTypeRefund, CreditsDelta: 10, Reference: &ref,
	}))

	// Stale projection row that the rebuild must replace.
	require.NoError(t, store.Increment(ctx, "u1", month, domain.SpendTypeContactUnlock, 10))

	n, err := store.RebuildMonth(ctx, month)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rows, err := store.ListByUser(ctx, "u1", month)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.SpendTypeJobPost, rows[0].SpendType)
	assert.Equal(t, int64(30), rows[0].Credits)
}

func TestSpendingStore_RebuildMonthRejectsBadMonth(t *testing.T) {
	store := memory.NewSpendingStore(memory.NewLedgerStore())
	_, err := store.RebuildMonth(context.Background(), "March")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListingStore_ListActiveFeatured(t *testing.T) {
	ctx := context.Background()
	store := memory.NewListingStore()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	add := func(id string, lt domain.ListingType, endsIn time.Duration) {
		l := &domain.Listing{ID: id, EmployerID: "e1", Type: lt, Title: id, Status: domain.ListingStatusActive}
		slot := &domain.FeaturedSlot{ID: "s-" + id, PostID: id, Label: "featured", StartsAt: now.Add(-time.Hour), EndsAt: now.Add(endsIn)}
		require.NoError(t, store.Create(ctx, l, slot))
	}
	add("job-short", domain.ListingTypeJob, time.Hour)
	add("job-long", domain.ListingTypeJob, 48*time.Hour)
	add("job-expired", domain.ListingTypeJob, -time.Minute)
	add("gig", domain.ListingTypeGig, time.Hour)
	require.NoError(t, store.Create(ctx, &domain.Listing{ID: "plain", Type: domain.ListingTypeJob, Status: domain.ListingStatusActive}, nil))

	got, err := store.ListActiveFeatured(ctx, domain.ListingTypeJob, now, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "job-long", got[0].ID)
	assert.Equal(t, "job-short", got[1].ID)

	got, err = store.ListActiveFeatured(ctx, domain.ListingTypeJob, now, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	assert.ErrorIs(t, store.Create(ctx, &domain.Listing{ID: "plain"}, nil), domain.ErrAlreadyExists)
}
