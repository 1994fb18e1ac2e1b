package domain

import "time"

type AuditAction string

const (
	AuditCreditsTopup     AuditAction = "credits_topup"
	AuditCreditsSpend     AuditAction = "credits_spend"
	AuditCreditsRefund    AuditAction = "credits_refund"
	AuditListingPublished AuditAction = "listing_published"
	AuditContactUnlocked  AuditAction = "contact_unlocked"
	AuditVerificationSent AuditAction = "verification_submitted"
	AuditProfileFeatured  AuditAction = "profile_featured"
	AuditOperatorGrant    AuditAction = "operator_grant"
)

// AuditRecord is a human-readable trail entry for operator review.
type AuditRecord struct {
	ID           string         `json:"id"`
	Action       AuditAction    `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	ActorUserID  string         `json:"actor_user_id"`
	Details      map[string]any `json:"details,omitempty"`
	CreatedOn    time.Time      `json:"created_on"`
}
