package entities

import (
	"testing"
	"time"
)

func TestNewUserNormalizesEmail(t *testing.T) {
	user, err := NewUser("  Alice@Example.COM ", "Alice", "hash")
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if user.Email() != "alice@example.com" {
		t.Errorf("email = %q, want %q", user.Email(), "alice@example.com")
	}
	if user.ID() == "" {
		t.Error("expected generated id")
	}
	if len(user.GetUncommittedEvents()) != 1 {
		t.Errorf("events = %d, want 1", len(user.GetUncommittedEvents()))
	}
	user.MarkEventsAsCommitted()
	if len(user.GetUncommittedEvents()) != 0 {
		t.Error("expected no events after commit")
	}
}

func TestNewUserDefaultsDisplayName(t *testing.T) {
	user, err := NewUser("bob@example.com", "", "hash")
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if user.DisplayName() != "bob" {
		t.Errorf("displayName = %q, want %q", user.DisplayName(), "bob")
	}
}

func TestNewUserValidation(t *testing.T) {
	if _, err := NewUser("", "Alice", "hash"); err == nil {
		t.Error("expected error for empty email")
	}
	if _, err := NewUser("alice@example.com", "Alice", ""); err == nil {
		t.Error("expected error for empty password hash")
	}
}

func TestReconstructUser(t *testing.T) {
	createdAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	user, err := ReconstructUser("id-1", "alice@example.com", "Alice", "hash", createdAt)
	if err != nil {
		t.Fatalf("ReconstructUser: %v", err)
	}
	if !user.CreatedAt().Equal(createdAt) {
		t.Errorf("createdAt = %v, want %v", user.CreatedAt(), createdAt)
	}
	if len(user.GetUncommittedEvents()) != 0 {
		t.Error("reconstructed user must not carry events")
	}

	if _, err := ReconstructUser("", "alice@example.com", "Alice", "hash", createdAt); err == nil {
		t.Error("expected error for empty id")
	}
}
