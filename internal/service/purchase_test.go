package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/service"
)

func unlockPurchase(userID string, credits int64) service.Purchase {
	return service.Purchase{
		Operation:   "contact_unlock",
		UserID:      userID,
		Credits:     credits,
		SpendType:   domain.SpendTypeContactUnlock,
		RelatedID:   strPtr("cand-1"),
		Description: "Unlocked candidate contact",
	}
}

func TestPurchaseRunner_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		h := newHarness()
		h.fund(t, "emp-1", 100)

		var seen *domain.SpendResult
		spend, err := h.runner.Run(ctx, unlockPurchase("emp-1", 10), func(ctx context.Context, s *domain.SpendResult) error {
			seen = s
			return nil
		})
		require.NoError(t, err)
		require.NotNil(t, seen)
		assert.NotEmpty(t, seen.SpendID)
		assert.Equal(t, spend.TransactionID, seen.TransactionID)
		assert.Equal(t, int64(90), h.balance(t, "emp-1"))
	})

	t.Run("Failed spend skips the write", func(t *testing.T) {
		h := newHarness()
		h.fund(t, "emp-1", 5)

		called := false
		_, err := h.runner.Run(ctx, unlockPurchase("emp-1", 10), func(context.Context, *domain.SpendResult) error {
			called = true
			return nil
		})
		assert.False(t, called)
		assert.Equal(t, domain.KindInsufficientCredits, domain.KindOf(err))
		assert.Equal(t, int64(5), h.balance(t, "emp-1"))
	})

	t.Run("Failed write is refunded", func(t *testing.T) {
		h := newHarness()
		h.fund(t, "emp-1", 100)
		writeErr := errors.New("insert failed")

		_, err := h.runner.Run(ctx, unlockPurchase("emp-1", 10), func(context.Context, *domain.SpendResult) error {
			return writeErr
		})
		var dwf *domain.DependentWriteFailedError
		require.True(t, errors.As(err, &dwf))
		assert.True(t, dwf.Refunded)
		assert.Equal(t, int64(10), dwf.Credits)
		assert.ErrorIs(t, err, writeErr)
		assert.Equal(t, domain.KindDependentWriteFailed, domain.KindOf(err))

		assert.Equal(t, int64(100), h.balance(t, "emp-1"))
		entries, _ := h.wallet.TransactionHistory(ctx, "emp-1", 0)
		require.Len(t, entries, 3)
		assert.Equal(t, domain.TransactionTypeRefund, entries[0].Type)
		assert.Equal(t, domain.TransactionTypeSpend, entries[1].Type)

		notes := h.notificationsFor(t, "emp-1")
		require.Len(t, notes, 1)
		assert.Equal(t, domain.NotificationPurchaseRefunded, notes[0].Type)
	})

	t.Run("Refund survives a cancelled request", func(t *testing.T) {
		h := newHarness()
		h.fund(t, "emp-1", 100)
		cctx, cancel := context.WithCancel(ctx)
		defer cancel()

		_, err := h.runner.Run(cctx, unlockPurchase("emp-1", 10), func(ctx context.Context, _ *domain.SpendResult) error {
			cancel()
			return ctx.Err()
		})
		var dwf *domain.DependentWriteFailedError
		require.True(t, errors.As(err, &dwf))
		assert.True(t, dwf.Refunded)
		assert.Equal(t, int64(100), h.balance(t, "emp-1"))
	})

	t.Run("Refund retried then reported pending", func(t *testing.T) {
		h := newHarness()
		wallet := new(MockWallet)
		spend := &domain.SpendResult{Balance: 90, TransactionID: "tx-1", SpendID: "sp-1", CreditsSpent: 10}
		wallet.On("Spend", mock.Anything, "emp-1", int64(10), domain.SpendTypeContactUnlock, mock.Anything, mock.Anything).
			Return(spend, nil)
		wallet.On("Refund", mock.Anything, "emp-1", spend, mock.Anything).
			Return(nil, &domain.StorageError{Op: "ledger.append", Err: errors.New("db down")})

		runner := service.NewPurchaseRunner(wallet, h.notes, 3, 0)
		_, err := runner.Run(ctx, unlockPurchase("emp-1", 10), func(context.Context, *domain.SpendResult) error {
			return errors.New("insert failed")
		})
		var dwf *domain.DependentWriteFailedError
		require.True(t, errors.As(err, &dwf))
		assert.False(t, dwf.Refunded)
		wallet.AssertNumberOfCalls(t, "Refund", 3)
		assert.Empty(t, h.notificationsFor(t, "emp-1"))
	})
}
