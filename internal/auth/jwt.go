// Package auth reads the claims of access tokens issued by the backend. The
// dashboard holds no signing key, so claims are decoded without verification
// and used for display and expiry hints only.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Email      string `json:"email,omitempty"`
	Role       string `json:"role,omitempty"`
	UniqueName string `json:"unique_name,omitempty"`
	jwt.RegisteredClaims
}

func ParseUnverified(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("missing_token")
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ExpiresIn reports the time left before the token expires. ok is false when
// the token carries no expiry.
func (c *Claims) ExpiresIn(now time.Time) (time.Duration, bool) {
	if c.ExpiresAt == nil {
		return 0, false
	}
	return c.ExpiresAt.Sub(now), true
}

func (c *Claims) Expired(now time.Time) bool {
	left, ok := c.ExpiresIn(now)
	return ok && left <= 0
}
