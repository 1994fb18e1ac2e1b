package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zcc-wallet-backend/internal/domain"
)

func TestLookupFeaturedTier(t *testing.T) {
	t.Run("Job tiers", func(t *testing.T) {
		tier, ok := domain.LookupFeaturedTier(domain.ListingTypeJob, "14d")
		require.True(t, ok)
		assert.Equal(t, 14*24*time.Hour, tier.Duration)
		assert.Equal(t, domain.ActionFeaturedJob14D, tier.CostSKU)
		assert.Equal(t, domain.SpendTypeFeaturedJob, tier.SpendType)
		assert.Equal(t, "featured", tier.Label)
	})

	t.Run("Gig 24h is urgent", func(t *testing.T) {
		tier, ok := domain.LookupFeaturedTier(domain.ListingTypeGig, "24h")
		require.True(t, ok)
		assert.Equal(t, "urgent", tier.Label)
		assert.Equal(t, domain.SpendTypeFeaturedGig, tier.SpendType)

		tier, ok = domain.LookupFeaturedTier(domain.ListingTypeGig, "72h")
		require.True(t, ok)
		assert.Equal(t, "featured", tier.Label)
	})

	t.Run("Option not offered for type", func(t *testing.T) {
		_, ok := domain.LookupFeaturedTier(domain.ListingTypeGig, "7d")
		assert.False(t, ok)
		_, ok = domain.LookupFeaturedTier("gig_post", "24h")
		assert.False(t, ok)
	})
}

func TestFeaturedTiersHaveDefaultCosts(t *testing.T) {
	for listingType, tiers := range domain.FeaturedTiers {
		for opt, tier := range tiers {
			assert.Equal(t, opt, tier.Option, "%s/%s", listingType, opt)
			assert.Contains(t, domain.DefaultActionCosts, tier.CostSKU, "%s/%s", listingType, opt)
		}
	}
}

func TestPostingCost(t *testing.T) {
	sku, spendType, ok := domain.PostingCost(domain.ListingTypeJob)
	assert.True(t, ok)
	assert.Equal(t, domain.ActionJobPost, sku)
	assert.Equal(t, domain.SpendTypeJobPost, spendType)

	sku, spendType, ok = domain.PostingCost(domain.ListingTypeGig)
	assert.True(t, ok)
	assert.Equal(t, domain.ActionGigPost, sku)
	assert.Equal(t, domain.SpendTypeGigPost, spendType)

	_, _, ok = domain.PostingCost("internship")
	assert.False(t, ok)
}

func TestFeaturedSlot_ActiveAt(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	slot := &domain.FeaturedSlot{StartsAt: start, EndsAt: start.Add(24 * time.Hour)}

	assert.False(t, slot.ActiveAt(start.Add(-time.Second)))
	assert.True(t, slot.ActiveAt(start))
	assert.True(t, slot.ActiveAt(start.Add(23*time.Hour)))
	assert.False(t, slot.ActiveAt(start.Add(24*time.Hour)))
}

func TestProfile_Contact(t *testing.T) {
	phone := "+254700000001"
	email := "wanjiku@example.com"

	c := (&domain.Profile{Phone: &phone, Email: &email}).Contact()
	require.NotNil(t, c.WhatsApp)
	assert.Equal(t, phone, *c.WhatsApp)
	assert.Equal(t, email, *c.Email)

	wa := "+254711111111"
	c = (&domain.Profile{Phone: &phone, WhatsApp: &wa}).Contact()
	assert.Equal(t, wa, *c.WhatsApp)
	assert.Nil(t, c.Email)
}

func TestRoleScope_Scopes(t *testing.T) {
	assert.Equal(t, []domain.RoleScope{domain.RoleScopeEmployer, domain.RoleScopeBoth}, domain.RoleScopeEmployer.Scopes())
	assert.Equal(t, []domain.RoleScope{domain.RoleScopeCandidate, domain.RoleScopeBoth}, domain.RoleScopeCandidate.Scopes())
	assert.Nil(t, domain.RoleScopeAll.Scopes())
}
