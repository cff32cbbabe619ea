package services

import (
	"testing"

	"route-traffic-api/config"
)

func newTestAuthService() *AuthService {
	return NewAuthService(nil, config.JWTConfig{
		Secret:      "test-secret-key",
		ExpiryHours: 24,
	})
}

func TestHashAndCheckPassword(t *testing.T) {
	svc := newTestAuthService()

	hash, err := svc.HashPassword("mypassword123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "" || hash == "mypassword123" {
		t.Fatalf("unexpected hash %q", hash)
	}

	if !svc.CheckPassword(hash, "mypassword123") {
		t.Error("CheckPassword should return true for correct password")
	}
	if svc.CheckPassword(hash, "wrongpassword") {
		t.Error("CheckPassword should return false for wrong password")
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newTestAuthService()

	// the length check runs before any database access
	if _, _, err := svc.Register("user@test.com", "12345"); err != ErrWeakPassword {
		t.Errorf("Register() error = %v, want %v", err, ErrWeakPassword)
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestAuthService()

	token, err := svc.GenerateToken(42, "driver@route.flow", "user")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "driver@route.flow" {
		t.Errorf("Email = %q", claims.Email)
	}
	if claims.Issuer != "routeflow-api" {
		t.Errorf("Issuer = %q", claims.Issuer)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Error("ExpiresAt and IssuedAt should be set")
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	svc := newTestAuthService()

	if _, err := svc.ValidateToken("invalid.token.string"); err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc1 := NewAuthService(nil, config.JWTConfig{Secret: "secret-1", ExpiryHours: 24})
	svc2 := NewAuthService(nil, config.JWTConfig{Secret: "secret-2", ExpiryHours: 24})

	token, _ := svc1.GenerateToken(1, "user@test.com", "user")

	if _, err := svc2.ValidateToken(token); err == nil {
		t.Error("expected error when validating with wrong secret")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewAuthService(nil, config.JWTConfig{Secret: "test-secret-key", ExpiryHours: -1})

	token, err := svc.GenerateToken(1, "user@test.com", "user")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("expected error for expired token")
	}
}
