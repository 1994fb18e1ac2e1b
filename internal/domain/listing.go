package domain

import "time"

type ListingType string

const (
	ListingTypeJob ListingType = "job"
	ListingTypeGig ListingType = "gig"
)

type ListingStatus string

const (
	ListingStatusActive ListingStatus = "active"
	ListingStatusClosed ListingStatus = "closed"
)

type Listing struct {
	ID            string        `json:"id"`
	EmployerID    string        `json:"employer_id"`
	Type          ListingType   `json:"type"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Category      string        `json:"category"`
	Location      string        `json:"location"`
	PayMin        *int64        `json:"pay_min,omitempty"`
	PayMax        *int64        `json:"pay_max,omitempty"`
	PayCurrency   string        `json:"pay_currency"`
	StartDate     *string       `json:"start_date,omitempty"`
	Duration      string        `json:"duration,omitempty"`
	ContractType  string        `json:"contract_type,omitempty"`
	WorkersNeeded int32         `json:"workers_needed,omitempty"`
	Requirements  string        `json:"requirements,omitempty"`
	Status        ListingStatus `json:"status"`
	CreatedOn     time.Time     `json:"created_on"`
}

// FeaturedOption is a featured add-on choice, e.g. "7d" or "24h".
type FeaturedOption string

// FeaturedTier describes one featured add-on: its price and how long it lasts.
type FeaturedTier struct {
	Option    FeaturedOption
	Duration  time.Duration
	CostSKU   ActionSKU
	SpendType SpendType
	Label     string
}

const day = 24 * time.Hour

// FeaturedTiers is the fixed table of featured add-ons per listing type.
var FeaturedTiers = map[ListingType]map[FeaturedOption]FeaturedTier{
	ListingTypeJob: {
		"7d":  {Option: "7d", Duration: 7 * day, CostSKU: ActionFeaturedJob7D, SpendType: SpendTypeFeaturedJob, Label: "featured"},
		"14d": {Option: "14d", Duration: 14 * day, CostSKU: ActionFeaturedJob14D, SpendType: SpendTypeFeaturedJob, Label: "featured"},
		"30d": {Option: "30d", Duration: 30 * day, CostSKU: ActionFeaturedJob30D, SpendType: SpendTypeFeaturedJob, Label: "featured"},
	},
	ListingTypeGig: {
		"24h": {Option: "24h", Duration: 24 * time.Hour, CostSKU: ActionFeaturedGig24H, SpendType: SpendTypeFeaturedGig, Label: "urgent"},
		"72h": {Option: "72h", Duration: 72 * time.Hour, CostSKU: ActionFeaturedGig72H, SpendType: SpendTypeFeaturedGig, Label: "featured"},
	},
}

// LookupFeaturedTier resolves an option for a listing type.
func LookupFeaturedTier(t ListingType, opt FeaturedOption) (FeaturedTier, bool) {
	tiers, ok := FeaturedTiers[t]
	if !ok {
		return FeaturedTier{}, false
	}
	tier, ok := tiers[opt]
	return tier, ok
}

// PostingCost returns the base action SKU and spend type for a listing type.
func PostingCost(t ListingType) (ActionSKU, SpendType, bool) {
	switch t {
	case ListingTypeJob:
		return ActionJobPost, SpendTypeJobPost, true
	case ListingTypeGig:
		return ActionGigPost, SpendTypeGigPost, true
	}
	return "", "", false
}

// FeaturedSlot is the paid featured placement of a listing.
type FeaturedSlot struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	EmployerID string    `json:"employer_id"`
	Label      string    `json:"label"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	SpendID    string    `json:"spend_id"`
}

func (f *FeaturedSlot) ActiveAt(t time.Time) bool {
	return !t.Before(f.StartsAt) && t.Before(f.EndsAt)
}

type FeaturedListing struct {
	Listing
	FeaturedLabel string    `json:"featured_label"`
	FeaturedUntil time.Time `json:"featured_until"`
}

// PublishResult is returned by a successful listing publish.
type PublishResult struct {
	ListingID     string     `json:"listing_id"`
	CreditsSpent  int64      `json:"credits_spent"`
	Balance       int64      `json:"balance"`
	TransactionID string     `json:"transaction_id"`
	FeaturedUntil *time.Time `json:"featured_until,omitempty"`
}
