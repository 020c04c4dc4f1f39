package owner

import (
	"context"
	"errors"
	"testing"
	"time"

	"tindo.app/internal/auth"
)

func setSecret(t *testing.T) {
	t.Helper()
	t.Setenv("TINDO_OWNER_AUTH_SECRET", "test-secret")
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)
}

func TestGenerateAndValidate(t *testing.T) {
	setSecret(t)

	token, err := GenerateToken("owner-42", 30*time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	ownerID, err := ParseAndValidate(token)
	if err != nil {
		t.Fatalf("ParseAndValidate: %v", err)
	}
	if ownerID != "owner-42" {
		t.Fatalf("unexpected owner id: %s", ownerID)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	setSecret(t)

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := ParseAndValidate(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestParseRejectsExpired(t *testing.T) {
	setSecret(t)

	token, err := GenerateToken("owner-42", time.Millisecond)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := ParseAndValidate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestGenerateRequiresSecret(t *testing.T) {
	t.Setenv("TINDO_OWNER_AUTH_SECRET", "")
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)

	if _, err := GenerateToken("owner-42", time.Minute); err == nil {
		t.Fatalf("expected error without configured secret")
	}
}

func TestOracleResolvesBearerFromContext(t *testing.T) {
	setSecret(t)

	token, err := GenerateToken("owner-7", time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	oracle := NewOracle()

	ctx := auth.ContextWithBearerToken(context.Background(), token)
	ownerID, ok := oracle.CurrentOwnerID(ctx)
	if !ok || ownerID != "owner-7" {
		t.Fatalf("expected owner-7, got %q ok=%v", ownerID, ok)
	}

	// A staff session token is not a JWT; the oracle must yield nothing.
	staffCtx := auth.ContextWithBearerToken(context.Background(), "opaque-session-token")
	if _, ok := oracle.CurrentOwnerID(staffCtx); ok {
		t.Fatalf("non-JWT bearer must not resolve to an owner")
	}

	if _, ok := oracle.CurrentOwnerID(context.Background()); ok {
		t.Fatalf("missing bearer must not resolve to an owner")
	}
}
