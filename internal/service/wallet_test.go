package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/repository/memory"
	"zcc-wallet-backend/internal/service"
)

func TestWalletService_Topup(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		h := newHarness()
		sku := domain.SKUEmployerStarter
		ref := "mpesa:QK12"
		res, err := h.wallet.Topup(ctx, "emp-1", 100, service.TopupOptions{
			SKU:       &sku,
			AmountKES: decimal.NewNullDecimal(decimal.RequireFromString("500.00")),
			Reference: &ref,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(100), res.Balance)
		assert.NotEmpty(t, res.TransactionID)
		assert.False(t, res.Duplicate)

		entries, err := h.wallet.TransactionHistory(ctx, "emp-1", 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, domain.TransactionTypeTopup, entries[0].Type)
		assert.Equal(t, sku, *entries[0].SKU)
		assert.True(t, entries[0].AmountKES.Decimal.Equal(decimal.RequireFromString("500")))

		records := h.store.Audit.Records()
		require.Len(t, records, 1)
		assert.Equal(t, domain.AuditCreditsTopup, records[0].Action)
	})

	t.Run("Invalid amount", func(t *testing.T) {
		h := newHarness()
		_, err := h.wallet.Topup(ctx, "emp-1", 0, service.TopupOptions{})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
		_, err = h.wallet.Topup(ctx, "emp-1", -5, service.TopupOptions{})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
		assert.Equal(t, int64(0), h.balance(t, "emp-1"))
	})

	t.Run("Debit type rejected", func(t *testing.T) {
		h := newHarness()
		_, err := h.wallet.Topup(ctx, "emp-1", 10, service.TopupOptions{Type: domain.TransactionTypeSpend})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("Duplicate reference returns original result", func(t *testing.T) {
		h := newHarness()
		ref := "mpesa:QK12"
		first, err := h.wallet.Topup(ctx, "emp-1", 50, service.TopupOptions{Reference: &ref})
		require.NoError(t, err)
		h.fund(t, "emp-1", 10)

		again, err := h.wallet.Topup(ctx, "emp-1", 50, service.TopupOptions{Reference: &ref})
		require.NoError(t, err)
		assert.True(t, again.Duplicate)
		assert.Equal(t, first.TransactionID, again.TransactionID)
		assert.Equal(t, int64(50), again.Balance)
		assert.Equal(t, int64(60), h.balance(t, "emp-1"))
	})

	t.Run("Operator grant is audited as such", func(t *testing.T) {
		h := newHarness()
		_, err := h.wallet.Topup(ctx, "emp-1", 25, service.TopupOptions{Type: domain.TransactionTypeBonus, ActorUserID: "ops-1"})
		require.NoError(t, err)
		records := h.store.Audit.Records()
		require.Len(t, records, 1)
		assert.Equal(t, domain.AuditOperatorGrant, records[0].Action)
		assert.Equal(t, "ops-1", records[0].ActorUserID)
	})
}

func TestWalletService_Spend(t *testing.T) {
	ctx := context.Background()

	t.Run("Success updates monthly spending", func(t *testing.T) {
		h := newHarness()
		h.fund(t, "emp-1", 100)

		res, err := h.wallet.Spend(ctx, "emp-1", 30, domain.SpendTypeJobPost, strPtr("post-1"), "Published job")
		require.NoError(t, err)
		assert.Equal(t, int64(70), res.Balance)
		assert.Equal(t, int64(30), res.CreditsSpent)
		assert.NotEmpty(t, res.SpendID)

		rows, err := h.wallet.MonthlySpending(ctx, "emp-1", "")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, domain.SpendTypeJobPost, rows[0].SpendType)
		assert.Equal(t, int64(30), rows[0].Credits)
	})

	t.Run("Insufficient credits", func(t *testing.T) {
		h := newHarness()
		h.fund(t, "emp-1", 20)

		_, err := h.wallet.Spend(ctx, "emp-1", 30, domain.SpendTypeJobPost, nil, "Published job")
		var short *domain.InsufficientCreditsError
		require.True(t, errors.As(err, &short))
		assert.Equal(t, int64(20), short.Balance)
		assert.Equal(t, int64(30), short.Required)
		assert.Equal(t, int64(10), short.Shortfall())
		assert.Equal(t, domain.KindInsufficientCredits, domain.KindOf(err))

		assert.Equal(t, int64(20), h.balance(t, "emp-1"))
		entries, _ := h.wallet.TransactionHistory(ctx, "emp-1", 0)
		assert.Len(t, entries, 1)
	})

	t.Run("Non-positive amount", func(t *testing.T) {
		h := newHarness()
		_, err := h.wallet.Spend(ctx, "emp-1", 0, domain.SpendTypeJobPost, nil, "")
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("Spending projection failure does not fail the spend", func(t *testing.T) {
		store := memory.NewStore()
		spending := new(MockSpendingRepo)
		spending.On("Increment", mock.Anything, "emp-1", mock.Anything, domain.SpendTypeContactUnlock, int64(10)).
			Return(errors.New("connection reset"))
		wallet := service.NewWalletService(store.Ledger, spending, service.NewAuditService(store.Audit), service.WalletOptions{})

		_, err := wallet.Topup(ctx, "emp-1", 50, service.TopupOptions{})
		require.NoError(t, err)
		res, err := wallet.Spend(ctx, "emp-1", 10, domain.SpendTypeContactUnlock, nil, "unlock")
		require.NoError(t, err)
		assert.Equal(t, int64(40), res.Balance)
		spending.AssertExpectations(t)
	})
}

func TestWalletService_Refund(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.fund(t, "emp-1", 100)
	spend, err := h.wallet.Spend(ctx, "emp-1", 30, domain.SpendTypeJobPost, nil, "job")
	require.NoError(t, err)

	res, err := h.wallet.Refund(ctx, "emp-1", spend, "listing write failed")
	require.NoError(t, err)
	assert.Equal(t, int64(100), res.Balance)

	again, err := h.wallet.Refund(ctx, "emp-1", spend, "listing write failed")
	require.NoError(t, err)
	assert.True(t, again.Duplicate)
	assert.Equal(t, res.TransactionID, again.TransactionID)
	assert.Equal(t, int64(100), h.balance(t, "emp-1"))

	entry, err := h.store.Ledger.GetByReference(ctx, "emp-1", domain.RefundReference(spend.TransactionID))
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeRefund, entry.Type)

	rows, err := h.wallet.MonthlySpending(ctx, "emp-1", spend.SpentOn.UTC().Format("2006-01"))
	require.NoError(t, err)
	var jobPosts int64
	for _, r := range rows {
		if r.SpendType == domain.SpendTypeJobPost {
			jobPosts += r.Credits
		}
	}
	assert.Zero(t, jobPosts)

	_, err = h.wallet.Refund(ctx, "emp-1", nil, "nothing")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWalletService_InitializeWallet(t *testing.T) {
	ctx := context.Background()

	t.Run("Signup bonus granted once", func(t *testing.T) {
		h := newHarness()
		first, err := h.wallet.InitializeWallet(ctx, "cand-1", false)
		require.NoError(t, err)
		assert.Equal(t, int64(100), first.Balance)

		second, err := h.wallet.InitializeWallet(ctx, "cand-1", false)
		require.NoError(t, err)
		assert.True(t, second.Duplicate)
		assert.Equal(t, first.TransactionID, second.TransactionID)
		assert.Equal(t, int64(100), h.balance(t, "cand-1"))
	})

	t.Run("Vendor bonus", func(t *testing.T) {
		h := newHarness()
		res, err := h.wallet.InitializeWallet(ctx, "vendor-1", true)
		require.NoError(t, err)
		assert.Equal(t, int64(2000), res.Balance)

		entries, _ := h.wallet.TransactionHistory(ctx, "vendor-1", 1)
		require.Len(t, entries, 1)
		assert.Equal(t, domain.TransactionTypeBonus, entries[0].Type)
		assert.Equal(t, domain.SignupBonusReference, *entries[0].Reference)
	})

	t.Run("Zero bonus returns balance only", func(t *testing.T) {
		store := memory.NewStore()
		wallet := service.NewWalletService(store.Ledger, store.Spending, service.NewAuditService(store.Audit), service.WalletOptions{})
		res, err := wallet.InitializeWallet(ctx, "cand-1", false)
		require.NoError(t, err)
		assert.Equal(t, int64(0), res.Balance)
		assert.Empty(t, res.TransactionID)
	})
}

func TestWalletService_TransactionHistoryClampsLimit(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	wallet := service.NewWalletService(store.Ledger, store.Spending, service.NewAuditService(store.Audit), service.WalletOptions{MaxHistoryLimit: 3})
	for i := 0; i < 5; i++ {
		_, err := wallet.Topup(ctx, "emp-1", 1, service.TopupOptions{})
		require.NoError(t, err)
	}

	entries, err := wallet.TransactionHistory(ctx, "emp-1", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	entries, err = wallet.TransactionHistory(ctx, "emp-1", 500)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	entries, err = wallet.TransactionHistory(ctx, "emp-1", 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, int64(5), entries[0].BalanceAfter)
}

func TestWalletService_MonthlySpendingForMonth(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	wallet := service.NewWalletService(store.Ledger, store.Spending, service.NewAuditService(store.Audit), service.WalletOptions{})
	require.NoError(t, store.Spending.Increment(ctx, "emp-1", "2026-01", domain.SpendTypeGigPost, 20))

	rows, err := wallet.MonthlySpending(ctx, "emp-1", "2026-01")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(20), rows[0].Credits)

	rows, err = wallet.MonthlySpending(ctx, "emp-1", time.Now().UTC().Format("2006-01"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
