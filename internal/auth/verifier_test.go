package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "test-secret"
	testAudience = "genserve.ai"
)

func mintToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(userID string) jwt.MapClaims {
	return jwt.MapClaims{
		"user_id": userID,
		"email":   "someone@example.com",
		"aud":     testAudience,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
}

func TestVerifyMissingHeader(t *testing.T) {
	v := NewVerifier(testSecret, testAudience)

	for _, header := range []string{"", "   "} {
		_, err := v.Verify(header)
		assert.ErrorIs(t, err, ErrMissingHeader)
	}
	assert.EqualError(t, ErrMissingHeader, "Missing Authorization header")
}

func TestVerifyValidToken(t *testing.T) {
	v := NewVerifier(testSecret, testAudience)
	userID := uuid.NewString()
	token := mintToken(t, testSecret, validClaims(userID))

	id, err := v.Verify("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, userID, id.UserID)
	assert.Equal(t, "someone@example.com", id.Email)

	// a bare token without the Bearer prefix is accepted too
	id, err = v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, id.UserID)
}

func TestVerifyGarbageToken(t *testing.T) {
	v := NewVerifier(testSecret, testAudience)

	_, err := v.Verify("Bearer not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	v := NewVerifier(testSecret, testAudience)
	token := mintToken(t, "other-secret", validClaims(uuid.NewString()))

	_, err := v.Verify("Bearer " + token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyExpiredToken(t *testing.T) {
	v := NewVerifier(testSecret, testAudience)
	claims := validClaims(uuid.NewString())
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	token := mintToken(t, testSecret, claims)

	_, err := v.Verify("Bearer " + token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyWrongAudience(t *testing.T) {
	v := NewVerifier(testSecret, testAudience)
	claims := validClaims(uuid.NewString())
	claims["aud"] = "someone-else"
	token := mintToken(t, testSecret, claims)

	_, err := v.Verify("Bearer " + token)
	assert.Error(t, err)
}

func TestVerifyMissingEmail(t *testing.T) {
	v := NewVerifier(testSecret, testAudience)
	claims := validClaims(uuid.NewString())
	delete(claims, "email")
	token := mintToken(t, testSecret, claims)

	_, err := v.Verify("Bearer " + token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyBadUserIDFormat(t *testing.T) {
	v := NewVerifier(testSecret, testAudience)

	for _, userID := range []string{"", "42", "not-a-uuid"} {
		claims := validClaims(uuid.NewString())
		claims["user_id"] = userID
		token := mintToken(t, testSecret, claims)

		_, err := v.Verify("Bearer " + token)
		assert.ErrorIs(t, err, ErrInvalidUserID, "user_id %q", userID)
	}
}
