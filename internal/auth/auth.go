package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenLifetime is how long an issued credential stays valid.
const TokenLifetime = time.Hour

var ErrInvalidToken = errors.New("auth: invalid token")

// Claims is the verified identity extracted from a bearer token.
type Claims struct {
	Email string
}

// Manager signs and verifies bearer tokens. The secret is loaded once at
// startup and never rotated at runtime.
type Manager struct {
	secret []byte
}

func NewManager(secret []byte) *Manager {
	return &Manager{secret: secret}
}

func NewManagerFromEnv() *Manager {
	return &Manager{secret: []byte(os.Getenv("JWT_SECRET"))}
}

// Issue mints an HS256 token for the given email, expiring in TokenLifetime.
func (m *Manager) Issue(email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(TokenLifetime).Unix(),
	})

	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks the signature and expiry of a token string and returns the
// claims it carries. It never touches the store.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return nil, ErrInvalidToken
	}

	return &Claims{Email: email}, nil
}
