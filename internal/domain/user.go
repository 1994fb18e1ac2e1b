package domain

import "time"

// Profile holds the parts of a user profile the wallet core reads or updates.
type Profile struct {
	ID            string     `json:"id"`
	Email         *string    `json:"email"`
	Phone         *string    `json:"phone"`
	WhatsApp      *string    `json:"whatsapp"`
	IsVendor      bool       `json:"is_vendor"`
	FeaturedUntil *time.Time `json:"featured_until,omitempty"`
}

// Contact returns the contact details revealed by an unlock.
// WhatsApp falls back to the phone number.
func (p *Profile) Contact() *Contact {
	c := &Contact{Phone: p.Phone, WhatsApp: p.WhatsApp, Email: p.Email}
	if c.WhatsApp == nil {
		c.WhatsApp = p.Phone
	}
	return c
}

// FeaturedAt reports whether the profile is featured at t.
func (p *Profile) FeaturedAt(t time.Time) bool {
	return p.FeaturedUntil != nil && p.FeaturedUntil.After(t)
}

// ApplyQuota is the free monthly application allowance of a candidate.
type ApplyQuota struct {
	FreeLimit     int64 `json:"free_limit"`
	Used          int64 `json:"used"`
	FreeRemaining int64 `json:"free_remaining"`
	NeedsCredits  bool  `json:"needs_credits"`
}
