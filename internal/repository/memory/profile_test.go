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

func pendingVerification(id, userID string, vt domain.VerificationType) *domain.Verification {
	now := time.Now().UTC()
	return &domain.Verification{ID: id, UserID: userID, Type: vt, Status: domain.VerificationPending, CreatedOn: now, UpdatedOn: now}
}

func TestVerificationStore_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Live verification of the same type conflicts", func(t *testing.T) {
		store := memory.NewVerificationStore(memory.NewLedgerStore())
		require.NoError(t, store.Create(ctx, pendingVerification("v1", "u1", domain.VerificationIDDocument)))

		err := store.Create(ctx, pendingVerification("v2", "u1", domain.VerificationIDDocument))
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
		require.NoError(t, store.Create(ctx, pendingVerification("v3", "u1", domain.VerificationReferences)))
		require.NoError(t, store.Create(ctx, pendingVerification("v4", "u2", domain.VerificationIDDocument)))
	})

	t.Run("Rejected verification does not block", func(t *testing.T) {
		store := memory.NewVerificationStore(memory.NewLedgerStore())
		require.NoError(t, store.Create(ctx, pendingVerification("v1", "u1", domain.VerificationIDDocument)))
		store.SetStatus("v1", domain.VerificationRejected, nil)

		assert.NoError(t, store.Create(ctx, pendingVerification("v2", "u1", domain.VerificationIDDocument)))
	})
}

func TestVerificationStore_CreatePaid(t *testing.T) {
	ctx := context.Background()

	t.Run("Bundle is claimed once", func(t *testing.T) {
		store := memory.NewVerificationStore(memory.NewLedgerStore())
		require.NoError(t, store.CreatePaid(ctx, pendingVerification("v1", "u1", domain.VerificationIDDocument), "tx-1"))

		err := store.CreatePaid(ctx, pendingVerification("v2", "u1", domain.VerificationReferences), "tx-2")
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
		_, err = store.GetLatest(ctx, "u1", domain.VerificationReferences)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Refunded claim can be taken again", func(t *testing.T) {
		ledger := memory.NewLedgerStore()
		store := memory.NewVerificationStore(ledger)
		require.NoError(t, store.CreatePaid(ctx, pendingVerification("v1", "u1", domain.VerificationIDDocument), "tx-1"))
		store.SetStatus("v1", domain.VerificationRejected, nil)
		require.NoError(t, ledger.Append(ctx, credit("u1", 50, domain.RefundReference("tx-1"))))

		assert.NoError(t, store.CreatePaid(ctx, pendingVerification("v2", "u1", domain.VerificationReferences), "tx-2"))
	})
}

func TestProfileStore_SetFeaturedUntil(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	until := now.Add(7 * 24 * time.Hour)

	t.Run("Featured profile conflicts", func(t *testing.T) {
		store := memory.NewProfileStore(domain.Profile{ID: "u1"})
		require.NoError(t, store.SetFeaturedUntil(ctx, "u1", now, until))

		err := store.SetFeaturedUntil(ctx, "u1", now.Add(time.Hour), until.Add(time.Hour))
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
		p, err := store.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, p.FeaturedUntil.Equal(until))
	})

	t.Run("Expired feature can be renewed", func(t *testing.T) {
		past := now.Add(-time.Hour)
		store := memory.NewProfileStore(domain.Profile{ID: "u1", FeaturedUntil: &past})
		assert.NoError(t, store.SetFeaturedUntil(ctx, "u1", now, until))
	})

	t.Run("Missing profile", func(t *testing.T) {
		store := memory.NewProfileStore()
		assert.ErrorIs(t, store.SetFeaturedUntil(ctx, "u1", now, until), domain.ErrNotFound)
	})
}
