package domain

import "time"

// ContactUnlock records that an employer paid to see a candidate's contact
// details. At most one exists per (employer, candidate).
type ContactUnlock struct {
	ID            string    `json:"id"`
	EmployerID    string    `json:"employer_id"`
	CandidateID   string    `json:"candidate_id"`
	PostID        *string   `json:"post_id,omitempty"`
	ApplicationID *string   `json:"application_id,omitempty"`
	SpendID       string    `json:"spend_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

type Contact struct {
	Phone    *string `json:"phone"`
	WhatsApp *string `json:"whatsapp"`
	Email    *string `json:"email"`
}

type UnlockResult struct {
	AlreadyUnlocked bool     `json:"already_unlocked"`
	UnlockID        string   `json:"unlock_id,omitempty"`
	Contact         *Contact `json:"contact,omitempty"`
	CreditsSpent    int64    `json:"credits_spent"`
	Balance         int64    `json:"balance"`
}
