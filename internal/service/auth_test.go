package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/totegamma/liveboard"
	"github.com/totegamma/liveboard/internal/domain"
)

type memTokenStore struct {
	revoked map[string]time.Time
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{revoked: map[string]time.Time{}}
}

func (m *memTokenStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	m.revoked[tokenID] = until
	return nil
}

func (m *memTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, ok := m.revoked[tokenID]
	return ok, nil
}

func TestIssueValidateRoundTrip(t *testing.T) {
	auth := NewAuthService("test-secret", time.Hour, nil)

	token, err := auth.Issue(liveboard.User{ID: "user1", Username: "alice"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	result, err := auth.Validate(context.Background(), token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if result.UserID != "user1" || result.Username != "alice" {
		t.Fatalf("unexpected principal: %+v", result)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer := NewAuthService("secret-a", time.Hour, nil)
	verifier := NewAuthService("secret-b", time.Hour, nil)

	token, _ := issuer.Issue(liveboard.User{ID: "user1", Username: "alice"})
	if _, err := verifier.Validate(context.Background(), token); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	auth := NewAuthService("test-secret", -time.Minute, nil)

	token, _ := auth.Issue(liveboard.User{ID: "user1", Username: "alice"})
	if _, err := auth.Validate(context.Background(), token); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	auth := NewAuthService("test-secret", time.Hour, nil)
	if _, err := auth.Validate(context.Background(), "not-a-token"); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestRevokeInvalidatesToken(t *testing.T) {
	store := newMemTokenStore()
	auth := NewAuthService("test-secret", time.Hour, store)

	token, _ := auth.Issue(liveboard.User{ID: "user1", Username: "alice"})
	if _, err := auth.Validate(context.Background(), token); err != nil {
		t.Fatalf("validate before revoke failed: %v", err)
	}

	if err := auth.Revoke(context.Background(), token); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if _, err := auth.Validate(context.Background(), token); !errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("expected authentication error after revoke, got %v", err)
	}
}
