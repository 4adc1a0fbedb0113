// Package auth issues and verifies bearer tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

var (
	// ErrUnexpectedSigningMethod is returned when the signing method is unexpected.
	ErrUnexpectedSigningMethod = errors.New("unexpected signing method")

	// ErrInvalidToken is returned when a token cannot be verified.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when a token is past its expiry or not yet valid.
	ErrTokenExpired = errors.New("token expired")
)

// Claims identifies the requester a token was issued to.
type Claims struct {
	jwt.StandardClaims

	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// TokenManager manages JWT tokens.
type TokenManager struct {
	secretKey     string
	tokenDuration time.Duration
	now           func() time.Time
}

// NewTokenManager creates a new TokenManager.
func NewTokenManager(secretKey string, tokenDuration time.Duration) *TokenManager {
	return &TokenManager{
		secretKey:     secretKey,
		tokenDuration: tokenDuration,
		now:           time.Now,
	}
}

// Generate signs a new HS256 token for the identity.
func (m *TokenManager) Generate(id, email, role string) (string, error) {
	now := m.now()
	claims := Claims{
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(m.tokenDuration).Unix(),
		},
		ID:    id,
		Email: email,
		Role:  role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(m.secretKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signedToken, nil
}

// Verify verifies the given token and returns its claims. Time based claims are checked
// against the manager's clock.
func (m *TokenManager) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parser := &jwt.Parser{SkipClaimsValidation: true}
	_, err := parser.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		_, ok := token.Method.(*jwt.SigningMethodHMAC)
		if !ok {
			return nil, fmt.Errorf("%s: %w", token.Method.Alg(), ErrUnexpectedSigningMethod)
		}
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	now := m.now().Unix()
	if !claims.VerifyExpiresAt(now, true) || !claims.VerifyIssuedAt(now, false) || !claims.VerifyNotBefore(now, false) {
		return nil, ErrTokenExpired
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("missing subject: %w", ErrInvalidToken)
	}

	return claims, nil
}
