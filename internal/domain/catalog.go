package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RoleScope string

const (
	RoleScopeEmployer  RoleScope = "employer"
	RoleScopeCandidate RoleScope = "candidate"
	RoleScopeBoth      RoleScope = "both"
	RoleScopeAll       RoleScope = "all"
)

// Scopes returns the product scopes visible to a caller of this scope.
// RoleScopeAll (or an unknown scope) applies no filter and returns nil.
func (r RoleScope) Scopes() []RoleScope {
	switch r {
	case RoleScopeEmployer:
		return []RoleScope{RoleScopeEmployer, RoleScopeBoth}
	case RoleScopeCandidate:
		return []RoleScope{RoleScopeCandidate, RoleScopeBoth}
	}
	return nil
}

// Product is either a purchasable pack or the credit cost of an action.
type Product struct {
	SKU           string              `json:"sku"`
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	CreditsAmount int64               `json:"credits_amount"`
	PriceKES      decimal.NullDecimal `json:"price_kes"`
	RoleScope     RoleScope           `json:"role_scope"`
	Active        bool                `json:"active"`
	SortOrder     int32               `json:"sort_order"`
	Metadata      map[string]any      `json:"metadata"`
	CreatedOn     time.Time           `json:"created_on"`
}

func (p *Product) flag(key string) bool {
	v, ok := p.Metadata[key].(bool)
	return ok && v
}

// IsAction reports whether the row is an action cost rather than a pack.
func (p *Product) IsAction() bool { return p.flag("is_action") }

func (p *Product) IsPopular() bool { return p.flag("popular") }

type ProductListing struct {
	Packs   []Product `json:"packs"`
	Actions []Product `json:"actions"`
}

// ActionSKU identifies a priced action in the catalog.
type ActionSKU string

const (
	ActionJobPost            ActionSKU = "action_job_post"
	ActionGigPost            ActionSKU = "action_gig_post"
	ActionFeaturedJob7D      ActionSKU = "action_featured_job_7d"
	ActionFeaturedJob14D     ActionSKU = "action_featured_job_14d"
	ActionFeaturedJob30D     ActionSKU = "action_featured_job_30d"
	ActionFeaturedGig24H     ActionSKU = "action_featured_gig_24h"
	ActionFeaturedGig72H     ActionSKU = "action_featured_gig_72h"
	ActionContactUnlock      ActionSKU = "action_contact_unlock"
	ActionBoost24H           ActionSKU = "action_boost_24h"
	ActionVerificationBundle ActionSKU = "action_verification_bundle"
	ActionFeaturedProfile7D  ActionSKU = "action_featured_profile_7d"
	ActionApplicationBoost   ActionSKU = "action_application_boost"
	ActionExtraApplications  ActionSKU = "action_extra_applications_10"
)

// DefaultActionCosts are used when the catalog has no active row for an action.
var DefaultActionCosts = map[ActionSKU]int64{
	ActionJobPost:            30,
	ActionGigPost:            20,
	ActionFeaturedJob7D:      50,
	ActionFeaturedJob14D:     80,
	ActionFeaturedJob30D:     120,
	ActionFeaturedGig24H:     15,
	ActionFeaturedGig72H:     30,
	ActionContactUnlock:      10,
	ActionBoost24H:           20,
	ActionVerificationBundle: 50,
	ActionFeaturedProfile7D:  80,
	ActionApplicationBoost:   10,
	ActionExtraApplications:  30,
}

// Pack SKUs seeded in the product catalog.
const (
	SKUEmployerStarter    = "emp_starter"
	SKUEmployerGigPack    = "emp_gig_pack"
	SKUEmployerPro        = "emp_pro"
	SKUEmployerEnterprise = "emp_enterprise"
	SKUCandidateVerify    = "cand_verify"
	SKUCandidateFeatured  = "cand_featured"
	SKUCandidateApplyPack = "cand_apply_pack"
	SKUCandidatePro       = "cand_pro"
)
