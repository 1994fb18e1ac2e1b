package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeTopup  TransactionType = "topup"
	TransactionTypeSpend  TransactionType = "spend"
	TransactionTypeBonus  TransactionType = "bonus"
	TransactionTypeRefund TransactionType = "refund"
)

// IsCredit reports whether entries of this type increase the balance.
func (t TransactionType) IsCredit() bool {
	switch t {
	case TransactionTypeTopup, TransactionTypeBonus, TransactionTypeRefund:
		return true
	}
	return false
}

func (t TransactionType) Valid() bool {
	return t == TransactionTypeSpend || t.IsCredit()
}

type SpendType string

const (
	SpendTypeJobPost            SpendType = "job_post"
	SpendTypeGigPost            SpendType = "gig_post"
	SpendTypeFeaturedJob        SpendType = "featured_job"
	SpendTypeFeaturedGig        SpendType = "featured_gig"
	SpendTypeContactUnlock      SpendType = "contact_unlock"
	SpendTypeInviteToApply      SpendType = "invite_to_apply"
	SpendTypeBoostPost          SpendType = "boost_post"
	SpendTypeVerificationBundle SpendType = "verification_bundle"
	SpendTypeFeaturedProfile    SpendType = "featured_profile"
	SpendTypeApplicationBoost   SpendType = "application_boost"
	SpendTypeExtraApplications  SpendType = "extra_applications"
)

// Account is the projected balance of one user's wallet.
// It is materialized lazily by the first appended entry.
type Account struct {
	UserID    string    `json:"user_id"`
	Balance   int64     `json:"balance"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// LedgerEntry is an immutable, signed balance change.
// BalanceAfter is the account balance immediately after this entry was applied.
type LedgerEntry struct {
	ID           string              `json:"id"`
	UserID       string              `json:"user_id"`
	Type         TransactionType     `json:"type"`
	CreditsDelta int64               `json:"credits_delta"`
	BalanceAfter int64               `json:"balance_after"`
	SKU          *string             `json:"sku,omitempty"`
	AmountKES    decimal.NullDecimal `json:"amount_kes"`
	Reference    *string             `json:"reference,omitempty"`
	Description  string              `json:"description"`
	CreatedOn    time.Time           `json:"created_on"`

	// Set on spend entries only. The store creates the CreditSpend row
	// in the same atomic unit and fills SpendID.
	SpendType *SpendType `json:"spend_type,omitempty"`
	RelatedID *string    `json:"related_id,omitempty"`
	SpendID   *string    `json:"spend_id,omitempty"`
}

// CreditSpend links a spend entry to the action it paid for.
// Dependent records (unlocks, featured slots) reference it by ID.
type CreditSpend struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id"`
	SpendType     SpendType `json:"spend_type"`
	Credits       int64     `json:"credits"`
	RelatedID     *string   `json:"related_id,omitempty"`
	Description   string    `json:"description"`
	CreatedOn     time.Time `json:"created_on"`
}

type TopupResult struct {
	Balance       int64  `json:"balance"`
	TransactionID string `json:"transaction_id"`
	// Duplicate is true when the reference had already been applied and
	// the prior result was returned instead of crediting again.
	Duplicate bool `json:"duplicate"`
}

type SpendResult struct {
	Balance       int64     `json:"balance"`
	TransactionID string    `json:"transaction_id"`
	SpendID       string    `json:"spend_id"`
	CreditsSpent  int64     `json:"credits_spent"`
	SpendType     SpendType `json:"spend_type,omitempty"`
	SpentOn       time.Time `json:"spent_on"`
}

// MonthlySpending is the analytics projection of credits spent per month.
type MonthlySpending struct {
	UserID    string    `json:"user_id"`
	Month     string    `json:"month"` // YYYY-MM
	SpendType SpendType `json:"spend_type"`
	Credits   int64     `json:"credits"`
	UpdatedOn time.Time `json:"updated_on"`
}

// BalanceMismatch is reported by reconciliation when a projected balance
// disagrees with the sum of its ledger entries.
type BalanceMismatch struct {
	UserID        string `json:"user_id"`
	Balance       int64  `json:"balance"`
	LedgerBalance int64  `json:"ledger_balance"`
}

// RefundReference is the idempotency reference of the compensating refund
// for a spend transaction.
func RefundReference(spendTransactionID string) string {
	return "refund:" + spendTransactionID
}

// SignupBonusReference is the reference of the one-time onboarding grant.
const SignupBonusReference = "signup_bonus"
