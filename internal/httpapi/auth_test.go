package httpapi

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef-test"

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	token, err := issuer.Issue(777)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	userID, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if userID != 777 {
		t.Errorf("Expected 777, got %d", userID)
	}
}

func TestTokenExpired(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Minute)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return base }

	token, err := issuer.Issue(1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	issuer.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := issuer.Parse(token); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)

	other, _ := NewTokenIssuer("another-secret-0123456", time.Hour).Issue(1)
	if _, err := issuer.Parse(other); err == nil {
		t.Error("token signed with another secret must be rejected")
	}

	foreign, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	if _, err := issuer.Parse(foreign); err == nil {
		t.Error("token from another issuer must be rejected")
	}

	badSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "vasya",
		Issuer:    tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	if _, err := issuer.Parse(badSub); err == nil {
		t.Error("non-numeric subject must be rejected")
	}

	if _, err := issuer.Parse("not-a-token"); err == nil {
		t.Error("garbage must be rejected")
	}
}
