package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/repository/memory"
	"zcc-wallet-backend/internal/service"
)

// harness wires the services over in-memory stores.
type harness struct {
	store   *memory.Store
	audit   service.AuditService
	notes   service.NotificationService
	wallet  service.WalletService
	catalog service.CatalogService
	runner  *service.PurchaseRunner
}

func newHarness() *harness {
	store := memory.NewStore()
	audit := service.NewAuditService(store.Audit)
	notes := service.NewNotificationService(store.Notifications)
	wallet := service.NewWalletService(store.Ledger, store.Spending, audit, service.WalletOptions{
		SignupCredits:       100,
		VendorSignupCredits: 2000,
		MaxHistoryLimit:     50,
	})
	catalog := service.NewCatalogService(store.Products, 0)
	return &harness{
		store:   store,
		audit:   audit,
		notes:   notes,
		wallet:  wallet,
		catalog: catalog,
		runner:  service.NewPurchaseRunner(wallet, notes, 3, 0),
	}
}

func (h *harness) fund(t *testing.T, userID string, credits int64) {
	t.Helper()
	_, err := h.wallet.Topup(context.Background(), userID, credits, service.TopupOptions{})
	require.NoError(t, err)
}

func (h *harness) balance(t *testing.T, userID string) int64 {
	t.Helper()
	b, err := h.wallet.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	return b
}

func (h *harness) notificationsFor(t *testing.T, userID string) []domain.Notification {
	t.Helper()
	notes, _, err := h.notes.GetNotifications(context.Background(), userID, 1, 100)
	require.NoError(t, err)
	return notes
}

func strPtr(s string) *string { return &s }

// MockWallet
type MockWallet struct {
	mock.Mock
}

func (m *MockWallet) GetBalance(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockWallet) Topup(ctx context.Context, userID string, amount int64, opts service.TopupOptions) (*domain.TopupResult, error) {
	args := m.Called(ctx, userID, amount, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TopupResult), args.Error(1)
}
func (m *MockWallet) Spend(ctx context.Context, userID string, amount int64, spendType domain.SpendType, relatedID *string, description string) (*domain.SpendResult, error) {
	args := m.Called(ctx, userID, amount, spendType, relatedID, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SpendResult), args.Error(1)
}
func (m *MockWallet) Refund(ctx context.Context, userID string, spend *domain.SpendResult, reason string) (*domain.TopupResult, error) {
	args := m.Called(ctx, userID, spend, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TopupResult), args.Error(1)
}
func (m *MockWallet) TransactionHistory(ctx context.Context, userID string, limit int32) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}
func (m *MockWallet) InitializeWallet(ctx context.Context, userID string, isVendor bool) (*domain.TopupResult, error) {
	args := m.Called(ctx, userID, isVendor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TopupResult), args.Error(1)
}
func (m *MockWallet) MonthlySpending(ctx context.Context, userID, month string) ([]domain.MonthlySpending, error) {
	args := m.Called(ctx, userID, month)
	return args.Get(0).([]domain.MonthlySpending), args.Error(1)
}

// MockSpendingRepo
type MockSpendingRepo struct {
	mock.Mock
}

func (m *MockSpendingRepo) Increment(ctx context.Context, userID, month string, spendType domain.SpendType, credits int64) error {
	args := m.Called(ctx, userID, month, spendType, credits)
	return args.Error(0)
}
func (m *MockSpendingRepo) RebuildMonth(ctx context.Context, month string) (int64, error) {
	args := m.Called(ctx, month)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockSpendingRepo) ListByUser(ctx context.Context, userID, month string) ([]domain.MonthlySpending, error) {
	args := m.Called(ctx, userID, month)
	return args.Get(0).([]domain.MonthlySpending), args.Error(1)
}

// MockListingRepo
type MockListingRepo struct {
	mock.Mock
}

func (m *MockListingRepo) Create(ctx context.Context, listing *domain.Listing, slot *domain.FeaturedSlot) error {
	args := m.Called(ctx, listing, slot)
	return args.Error(0)
}
func (m *MockListingRepo) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *MockListingRepo) ListActiveFeatured(ctx context.Context, listingType domain.ListingType, now time.Time, limit int32) ([]domain.FeaturedListing, error) {
	args := m.Called(ctx, listingType, now, limit)
	return args.Get(0).([]domain.FeaturedListing), args.Error(1)
}

// MockUnlockRepo
type MockUnlockRepo struct {
	mock.Mock
}

func (m *MockUnlockRepo) Get(ctx context.Context, employerID, candidateID string) (*domain.ContactUnlock, error) {
	args := m.Called(ctx, employerID, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContactUnlock), args.Error(1)
}
func (m *MockUnlockRepo) Create(ctx context.Context, unlock *domain.ContactUnlock) error {
	args := m.Called(ctx, unlock)
	return args.Error(0)
}

// MockProductRepo
type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) ListActive(ctx context.Context, scopes []domain.RoleScope) ([]domain.Product, error) {
	args := m.Called(ctx, scopes)
	return args.Get(0).([]domain.Product), args.Error(1)
}
func (m *MockProductRepo) GetActiveBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}
