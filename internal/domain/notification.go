package domain

import "time"

type NotificationType string

const (
	NotificationPostPublished         NotificationType = "post_published"
	NotificationApplicationReceived   NotificationType = "application_received"
	NotificationContactUnlocked       NotificationType = "contact_unlocked"
	NotificationVerificationSubmitted NotificationType = "verification_submitted"
	NotificationCreditsAdded          NotificationType = "credits_added"
	NotificationPurchaseRefunded      NotificationType = "purchase_refunded"
)

// Notification is a delivery intent. Delivery happens outside this service.
type Notification struct {
	ID              string            `json:"id"`
	RecipientUserID string            `json:"recipient_user_id"`
	Type            NotificationType  `json:"type"`
	Title           string            `json:"title"`
	Body            string            `json:"body"`
	RelatedType     string            `json:"related_type,omitempty"`
	RelatedID       string            `json:"related_id,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	IsRead          bool              `json:"is_read"`
	CreatedOn       time.Time         `json:"created_on"`
}
