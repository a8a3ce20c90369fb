// Package session resolves the bearer token the sync engine authenticates with.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/community-inbox/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what can be read from a token without verifying its signature.
type TokenInfo struct {
	JWT       bool
	Subject   string
	ExpiresAt time.Time
}

// Normalize trims whitespace and a leading "Bearer " scheme.
func Normalize(raw string) string {
	token := strings.TrimSpace(raw)
	if strings.EqualFold(token, "bearer") {
		return ""
	}
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

// Inspect decodes JWT claims. Opaque tokens return a zero TokenInfo and no error.
func Inspect(token string) TokenInfo {
	if strings.Count(token, ".") != 2 {
		return TokenInfo{}
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}
	}

	info := TokenInfo{JWT: true, Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info
}

// Check rejects empty tokens and JWTs whose expiry is not after now.
func Check(token string, now time.Time) error {
	if token == "" {
		return domain.ErrUnauthenticated
	}

	info := Inspect(token)
	if !info.ExpiresAt.IsZero() && !now.Before(info.ExpiresAt) {
		return fmt.Errorf("token expired at %s: %w", info.ExpiresAt.UTC().Format(time.RFC3339), domain.ErrSessionExpired)
	}
	return nil
}

var errEmptyToken = errors.New("session token is empty")
