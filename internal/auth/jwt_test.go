package auth

import (
	"errors"
	"testing"
	"time"
)

func TestJWTGenerateValidate(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour, "issuer")
	token, err := manager.Generate("acct-1", "ana@example.com", "Ana", "admin")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.Subject != "acct-1" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %#v", claims)
	}
	if claims.Email != "ana@example.com" || claims.Name != "Ana" {
		t.Fatalf("claims did not round-trip: %#v", claims)
	}
}

func TestJWTGenerateInvalid(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour, "issuer")
	if _, err := manager.Generate("", "", "", "admin"); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected malformed token error, got %v", err)
	}
}

func TestJWTValidateMissing(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour, "issuer")
	if _, err := manager.Validate(""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

func TestJWTValidateExpired(t *testing.T) {
	manager := NewJWTManager("secret", -time.Minute, "issuer")
	token, err := manager.Generate("acct-1", "ana@example.com", "Ana", "admin")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := manager.Validate(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected expired token error, got %v", err)
	}
}

func TestJWTValidateTampered(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour, "issuer")
	other := NewJWTManager("other-secret", time.Hour, "issuer")
	token, err := other.Generate("acct-1", "ana@example.com", "Ana", "admin")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := manager.Validate(token); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected malformed token error, got %v", err)
	}
}

func TestTokenFromHeader(t *testing.T) {
	if _, err := TokenFromHeader("nope"); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token error, got %v", err)
	}
	if token, err := TokenFromHeader("Bearer token"); err != nil || token != "token" {
		t.Fatalf("expected token, got %s err %v", token, err)
	}
	if token, err := TokenFromHeader("bearer token"); err != nil || token != "token" {
		t.Fatalf("scheme should be case-insensitive, got %s err %v", token, err)
	}
}
