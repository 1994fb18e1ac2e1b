package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/service"
)

func (h *harness) listings() service.ListingService {
	return service.NewListingService(h.store.Listings, h.catalog, h.runner, h.notes, h.audit)
}

func TestListingService_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("Job without featured add-on", func(t *testing.T) {
		h := newHarness()
		h.fund(t, "emp-1", 100)

		res, err := h.listings().Publish(ctx, "emp-1", service.PublishInput{Type: domain.ListingTypeJob, Title: "  Warehouse picker "})
		require.NoError(t, err)
		assert.Equal(t, int64(30), res.CreditsSpent)
		assert.Equal(t, int64(70), res.Balance)
		assert.Nil(t, res.FeaturedUntil)

		l, err := h.store.Listings.GetByID(ctx, res.ListingID)
		require.NoError(t, err)
		assert.Equal(t, "Warehouse picker", l.Title)
		assert.Equal(t, "KES", l.PayCurrency)
		assert.Equal(t, domain.ListingStatusActive, l.Status)
		assert.Empty(t, h.store.Listings.Slots())

		notes := h.notificationsFor(t, "emp-1")
		require.Len(t, notes, 1)
		assert.Equal(t, domain.NotificationPostPublished, notes[0].Type)
	})

	t.Run("Featured job is charged in one spend", func(t *testing.T) {
		h := newHarness()
		h.fund(t, "emp-1", 100)

		res, err := h.listings().Publish(ctx, "emp-1", service.PublishInput{Type: domain.ListingTypeJob, Title: "Driver", Featured: "7d"})
		require.NoError(t, err)
		assert.Equal(t, int64(80), res.CreditsSpent)
		assert.Equal(t, int64(20), res.Balance)
		require.NotNil(t, res.FeaturedUntil)
		assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), *res.FeaturedUntil, time.Minute)

		entries, _ := h.wallet.TransactionHistory(ctx, "emp-1", 0)
		require.Len(t, entries, 2)
		assert.Equal(t, int64(-80), entries[0].CreditsDelta)

		slots := h.store.Listings.Slots()
		require.Len(t, slots, 1)
		assert.NotEmpty(t, slots[0].SpendID)

		featured, err := h.listings().ListActiveFeatured(ctx, domain.ListingTypeJob, 0)
		require.NoError(t, err)
		require.Len(t, featured, 1)
		assert.Equal(t, res.ListingID, featured[0].ID)
		assert.Equal(t, "featured", featured[0].FeaturedLabel)
	})

	t.Run("Urgent gig", func(t *testing.T) {
		h := newHarness()
		h.fund(t, "emp-1", 100)

		res, err := h.listings().Publish(ctx, "emp-1", service.PublishInput{Type: domain.ListingTypeGig, Title: "Event setup", Featured: "24h"})
		require.NoError(t, err)
		assert.Equal(t, int64(35), res.CreditsSpent)

		slots := h.store.Listings.Slots()
		require.Len(t, slots, 1)
		assert.Equal(t, "urgent", slots[0].Label)
	})

	t.Run("Option not offered for the type is not charged", func(t *testing.T) {
		h := newHarness()
		h.fund(t, "emp-1", 100)

		_, err := h.listings().Publish(ctx, "emp-1", service.PublishInput{Type: domain.ListingTypeGig, Title: "Cleaner", Featured: "7d"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Equal(t, int64(100), h.balance(t, "emp-1"))
	})

	t.Run("Invalid input", func(t *testing.T) {
		h := newHarness()
		_, err := h.listings().Publish(ctx, "emp-1", service.PublishInput{Type: "internship", Title: "x"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = h.listings().Publish(ctx, "emp-1", service.PublishInput{Type: domain.ListingTypeJob, Title: "   "})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		lo, hi := int64(500), int64(100)
		_, err = h.listings().Publish(ctx, "emp-1", service.PublishInput{Type: domain.ListingTypeJob, Title: "x", PayMin: &lo, PayMax: &hi})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("Insufficient credits", func(t *testing.T) {
		h := newHarness()
		h.fund(t, "emp-1", 40)

		_, err := h.listings().Publish(ctx, "emp-1", service.PublishInput{Type: domain.ListingTypeJob, Title: "Driver", Featured: "14d"})
		var short *domain.InsufficientCreditsError
		require.True(t, errors.As(err, &short))
		assert.Equal(t, int64(110), short.Required)
		assert.Equal(t, int64(70), short.Shortfall())
		assert.Equal(t, int64(40), h.balance(t, "emp-1"))
	})

	t.Run("Catalog price overrides the default", func(t *testing.T) {
		h := newHarness()
		h.fund(t, "emp-1", 100)
		h.store.Products.Put(domain.Product{
			SKU:           string(domain.ActionJobPost),
			CreditsAmount: 25,
			Active:        true,
			RoleScope:     domain.RoleScopeEmployer,
			Metadata:      map[string]any{"is_action": true},
		})

		res, err := h.listings().Publish(ctx, "emp-1", service.PublishInput{Type: domain.ListingTypeJob, Title: "Driver"})
		require.NoError(t, err)
		assert.Equal(t, int64(25), res.CreditsSpent)
	})

	t.Run("Failed insert is refunded", func(t *testing.T) {
		h := newHarness()
		h.fund(t, "emp-1", 100)
		repo := new(MockListingRepo)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Listing"), mock.Anything).
			Return(errors.New("connection reset"))

		svc := service.NewListingService(repo, h.catalog, h.runner, h.notes, h.audit)
		_, err := svc.Publish(ctx, "emp-1", service.PublishInput{Type: domain.ListingTypeJob, Title: "Driver"})
		assert.Equal(t, domain.KindDependentWriteFailed, domain.KindOf(err))
		assert.Equal(t, int64(100), h.balance(t, "emp-1"))
		repo.AssertExpectations(t)
	})
}

func TestListingService_ListActiveFeatured(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	repo := new(MockListingRepo)
	repo.On("ListActiveFeatured", mock.Anything, domain.ListingTypeGig, mock.AnythingOfType("time.Time"), int32(10)).
		Return([]domain.FeaturedListing{}, nil).Twice()

	svc := service.NewListingService(repo, h.catalog, h.runner, h.notes, h.audit)
	_, err := svc.ListActiveFeatured(ctx, domain.ListingTypeGig, 0)
	require.NoError(t, err)
	_, err = svc.ListActiveFeatured(ctx, domain.ListingTypeGig, 500)
	require.NoError(t, err)

	_, err = svc.ListActiveFeatured(ctx, "internship", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	repo.AssertExpectations(t)
}
