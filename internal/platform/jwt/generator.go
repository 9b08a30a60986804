// Package jwtmw issues API tokens and authenticates requests that carry them.
package jwtmw

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidClaims is returned when a verified token lacks the subject or token ID.
var ErrInvalidClaims = errors.New("token claims are invalid")

// Generator signs and verifies HS256 tokens.
// A token carries the user ID in "sub" and the session ID in "jti".
type Generator struct {
	secret []byte
}

// NewGenerator creates a new JWT generator with the provided secret.
func NewGenerator(secret string) *Generator {
	return &Generator{secret: []byte(secret)}
}

// GenerateToken creates a signed JWT token bound to a session.
func (g *Generator) GenerateToken(userID uint, sessionID string, expiresAt time.Time) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ParseToken verifies the signature and expiry and returns the user and session IDs.
func (g *Generator) ParseToken(tokenStr string) (uint, string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return g.secret, nil
	},
		// HMAC以外のアルゴリズム（none含む）は拒否する
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse token: %w", err)
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 || claims.ID == "" {
		return 0, "", ErrInvalidClaims
	}
	return uint(userID), claims.ID, nil
}
