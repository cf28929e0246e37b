package jwt

import (
	"errors"
	"testing"
	"time"
)

func TestRoundTrip(t *testing.T) {
	svc := NewHMACService("test-secret", time.Hour)

	token, err := svc.GenerateAccessToken("jdoe")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Username != "jdoe" {
		t.Fatalf("unexpected username: %q", claims.Username)
	}
}

func TestExpiredToken(t *testing.T) {
	svc := NewHMACService("test-secret", time.Hour)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := svc.GenerateAccessToken("jdoe")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	svc.now = time.Now
	if _, err := svc.ValidateToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestWrongSecret(t *testing.T) {
	token, err := NewHMACService("secret-a", time.Hour).GenerateAccessToken("jdoe")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := NewHMACService("secret-b", time.Hour).ValidateToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestEmptyUsernameRejected(t *testing.T) {
	svc := NewHMACService("test-secret", time.Hour)
	if _, err := svc.GenerateAccessToken("  "); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
