package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrWebhookDisabled = errors.New("payment webhook key is not configured")

// HashWebhookKey returns the bcrypt hash stored in configuration.
func HashWebhookKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// WebhookVerifier authenticates the payment confirmation source by a shared
// key kept only as a bcrypt hash.
type WebhookVerifier struct {
	hash []byte
}

func NewWebhookVerifier(hash string) *WebhookVerifier {
	return &WebhookVerifier{hash: []byte(hash)}
}

func (v *WebhookVerifier) Verify(key string) error {
	if len(v.hash) == 0 {
		return ErrWebhookDisabled
	}
	if key == "" {
		return ErrInvalidToken
	}
	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(key)); err != nil {
		return ErrInvalidToken
	}
	return nil
}
