package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signed(t *testing.T, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestParseUnverified(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	token := signed(t, Claims{
		Email: "ada@example.com",
		Role:  "Admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		},
	})

	claims, err := ParseUnverified(token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "ada@example.com" || claims.Role != "Admin" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	left, ok := claims.ExpiresIn(now)
	if !ok || left != 10*time.Minute {
		t.Fatalf("unexpected expiry %v %v", left, ok)
	}
	if claims.Expired(now) || !claims.Expired(now.Add(time.Hour)) {
		t.Fatalf("unexpected expired state")
	}
}

func TestParseUnverifiedWithoutExpiry(t *testing.T) {
	claims, err := ParseUnverified(signed(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-2"}}))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, ok := claims.ExpiresIn(time.Now()); ok {
		t.Fatalf("expected no expiry")
	}
	if claims.Expired(time.Now()) {
		t.Fatalf("token without expiry must not be expired")
	}
}

func TestParseUnverifiedRejectsGarbage(t *testing.T) {
	if _, err := ParseUnverified(""); err == nil {
		t.Fatalf("expected error for empty token")
	}
	if _, err := ParseUnverified("not.a.jwt"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}
