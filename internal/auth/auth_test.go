package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager([]byte("test-secret"))

	tokenString, err := m.Issue("user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := m.Verify(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	other := NewManager([]byte("other-secret"))
	tokenString, err := other.Issue("user@example.com")
	require.NoError(t, err)

	m := NewManager([]byte("test-secret"))
	_, err = m.Verify(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	secret := []byte("test-secret")

	// issued 61 minutes ago with the 1h lifetime already elapsed
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "user@example.com",
		"exp":   time.Now().Add(-61*time.Minute + TokenLifetime).Unix(),
	})
	tokenString, err := token.SignedString(secret)
	require.NoError(t, err)

	m := NewManager(secret)
	_, err = m.Verify(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewManager([]byte("test-secret"))

	_, err := m.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsMissingEmailClaim(t *testing.T) {
	secret := []byte("test-secret")
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(TokenLifetime).Unix(),
	})
	tokenString, err := token.SignedString(secret)
	require.NoError(t, err)

	m := NewManager(secret)
	_, err = m.Verify(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
