package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager([]byte("test-signing-key"), time.Hour)

	token, err := manager.Generate("alice", "org-1", "Alice Smith")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	if claims.UserID != "alice" {
		t.Fatalf("expected user_id alice, got %q", claims.UserID)
	}
	if claims.OrgID != "org-1" {
		t.Fatalf("expected org_id org-1, got %q", claims.OrgID)
	}
	if claims.DisplayName != "Alice Smith" {
		t.Fatalf("expected display name Alice Smith, got %q", claims.DisplayName)
	}
}

func TestValidateRejectsWrongKey(t *testing.T) {
	manager := NewTokenManager([]byte("key-a"), time.Hour)
	other := NewTokenManager([]byte("key-b"), time.Hour)

	token, err := manager.Generate("alice", "org-1", "")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	if _, err := other.Validate(token); err == nil {
		t.Fatalf("expected validation to fail with wrong signing key")
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	manager := NewTokenManager([]byte("test-signing-key"), -time.Minute)

	token, err := manager.Generate("alice", "org-1", "")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	if _, err := manager.Validate(token); err == nil {
		t.Fatalf("expected validation to fail for expired token")
	}
}
