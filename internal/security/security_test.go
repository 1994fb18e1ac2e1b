package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, "zcc-identity")

	token, err := tm.GenerateAccessToken("user-1", "a@example.com", []string{RoleEmployer, RoleVendor}, time.Hour)
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, TokenTypeAccess, claims.Type)
	assert.True(t, claims.HasRole(RoleVendor))
	assert.False(t, claims.HasRole(RoleOperator))
}

func TestTokenManager_Rejects(t *testing.T) {
	tm := NewTokenManager(testSecret, "zcc-identity")

	t.Run("Expired", func(t *testing.T) {
		token, err := tm.GenerateAccessToken("user-1", "", nil, -time.Minute)
		require.NoError(t, err)
		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Wrong issuer", func(t *testing.T) {
		other := NewTokenManager(testSecret, "someone-else")
		token, err := other.GenerateAccessToken("user-1", "", nil, time.Hour)
		require.NoError(t, err)
		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		other := NewTokenManager("ffffffffffffffffffffffffffffffff", "zcc-identity")
		token, err := other.GenerateAccessToken("user-1", "", nil, time.Hour)
		require.NoError(t, err)
		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Subject fallback", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{
			Type: TokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-9",
				Issuer:    "zcc-identity",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		claims, err := tm.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user-9", claims.UserID)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := tm.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestWebhookVerifier(t *testing.T) {
	hash, err := HashWebhookKey("s3cret-key")
	require.NoError(t, err)

	v := NewWebhookVerifier(hash)
	assert.NoError(t, v.Verify("s3cret-key"))
	assert.ErrorIs(t, v.Verify("wrong"), ErrInvalidToken)
	assert.ErrorIs(t, v.Verify(""), ErrInvalidToken)

	assert.ErrorIs(t, NewWebhookVerifier("").Verify("s3cret-key"), ErrWebhookDisabled)
}
