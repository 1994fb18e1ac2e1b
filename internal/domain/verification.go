package domain

import "time"

type VerificationType string

const (
	VerificationIDDocument   VerificationType = "id_document"
	VerificationReferences   VerificationType = "references"
	VerificationCertificates VerificationType = "certificates"
)

func (v VerificationType) Valid() bool {
	switch v {
	case VerificationIDDocument, VerificationReferences, VerificationCertificates:
		return true
	}
	return false
}

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

type Verification struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	Type         VerificationType   `json:"verification_type"`
	FileURL      *string            `json:"file_url,omitempty"`
	Notes        *string            `json:"notes,omitempty"`
	Status       VerificationStatus `json:"status"`
	RejectReason *string            `json:"reject_reason,omitempty"`
	CreatedOn    time.Time          `json:"created_on"`
	UpdatedOn    time.Time          `json:"updated_on"`
}

type VerificationResult struct {
	VerificationID string             `json:"verification_id"`
	Status         VerificationStatus `json:"status"`
	// AlreadySubmitted is set when a pending or approved verification
	// already exists; nothing was charged.
	AlreadySubmitted bool  `json:"already_submitted"`
	Resubmission     bool  `json:"resubmission"`
	CreditsSpent     int64 `json:"credits_spent"`
	Balance          int64 `json:"balance"`
}

const FeaturedProfileDuration = 7 * day

type FeaturedProfileResult struct {
	FeaturedUntil   time.Time `json:"featured_until"`
	AlreadyFeatured bool      `json:"already_featured"`
	CreditsSpent    int64     `json:"credits_spent"`
	Balance         int64     `json:"balance"`
}
