package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func staffContext(token string) context.Context {
	return ContextWithBearerToken(context.Background(), token)
}

func TestAuthorizeOwnerBypassesGrants(t *testing.T) {
	svc, _, _ := newTestService(t, staticOracle{ownerID: "owner-1"})

	for _, key := range []string{PermSalesView, PermSettingsEdit, PermStaffManage} {
		ownerID, err := svc.Authorize(context.Background(), key)
		if err != nil {
			t.Fatalf("owner authorize(%s): %v", key, err)
		}
		if ownerID != "owner-1" {
			t.Fatalf("expected owner-1, got %s", ownerID)
		}
	}
}

func TestAuthorizeOwnerWinsOverStaleStaffToken(t *testing.T) {
	svc, _, _ := newTestService(t, staticOracle{ownerID: "owner-1"})

	// A stale staff token riding along must not block the owner.
	ownerID, err := svc.Authorize(staffContext("stale-token-value"), PermSalesView)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if ownerID != "owner-1" {
		t.Fatalf("expected owner identity to win, got %s", ownerID)
	}
}

func TestAuthorizeStaffGrantScenario(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()
	staff := mustCreateStaff(t, svc, "owner-1", "s1@shop.test", "pw-12345")
	if err := svc.SetGrant(ctx, "owner-1", staff.ID, PermSalesView, true); err != nil {
		t.Fatalf("set grant: %v", err)
	}
	_, token, err := svc.Login(ctx, "s1@shop.test", "pw-12345")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	ownerID, err := svc.Authorize(staffContext(token), PermSalesView)
	if err != nil {
		t.Fatalf("authorize granted key: %v", err)
	}
	if ownerID != "owner-1" {
		t.Fatalf("authorize must return the owner id, got %s", ownerID)
	}

	_, err = svc.Authorize(staffContext(token), PermSalesEdit)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if !strings.Contains(err.Error(), PermSalesEdit) {
		t.Fatalf("denial must name the missing key: %v", err)
	}
}

func TestAuthorizeDefaultDeniesAbsentGrant(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()
	mustCreateStaff(t, svc, "owner-1", "s1@shop.test", "pw-12345")
	_, token, err := svc.Login(ctx, "s1@shop.test", "pw-12345")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.Authorize(staffContext(token), PermReportsSales); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("absent grant must deny, got %v", err)
	}
}

func TestAuthorizeDisabledGrantDenies(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()
	staff := mustCreateStaff(t, svc, "owner-1", "s1@shop.test", "pw-12345")
	if err := svc.SetGrant(ctx, "owner-1", staff.ID, PermSalesView, false); err != nil {
		t.Fatalf("set grant: %v", err)
	}
	_, token, err := svc.Login(ctx, "s1@shop.test", "pw-12345")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.Authorize(staffContext(token), PermSalesView); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("disabled grant must deny, got %v", err)
	}
}

func TestAuthorizeDanglingGrantKeyDenies(t *testing.T) {
	svc, store, _ := newTestService(t, nil)
	ctx := context.Background()
	staff := mustCreateStaff(t, svc, "owner-1", "s1@shop.test", "pw-12345")
	// Write the grant behind the service's back so the key dangles
	// outside the catalog; authorize must deny, never error.
	if err := store.Set(ctx, staff.ID, "legacy.removed.key", true); err != nil {
		t.Fatalf("raw grant write: %v", err)
	}
	_, token, err := svc.Login(ctx, "s1@shop.test", "pw-12345")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.Authorize(staffContext(token), PermSalesView); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected deny, got %v", err)
	}
}

func TestAuthorizeDisabledStaffUnauthenticatedRegardlessOfGrants(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()
	staff := mustCreateStaff(t, svc, "owner-1", "s1@shop.test", "pw-12345")
	if err := svc.SetGrant(ctx, "owner-1", staff.ID, PermSalesView, true); err != nil {
		t.Fatalf("set grant: %v", err)
	}
	_, token, err := svc.Login(ctx, "s1@shop.test", "pw-12345")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.SetStaffActive(ctx, "owner-1", staff.ID, false); err != nil {
		t.Fatalf("disable staff: %v", err)
	}

	_, err = svc.Authorize(staffContext(token), PermSalesView)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("disabled account must be unauthenticated, got %v", err)
	}
	if !strings.Contains(err.Error(), "account disabled") {
		t.Fatalf("unexpected reason: %v", err)
	}
}

func TestAuthorizeMissingToken(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	_, err := svc.Authorize(context.Background(), PermSalesView)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if !strings.Contains(err.Error(), "please log in") {
		t.Fatalf("unexpected reason: %v", err)
	}
}

func TestAuthorizeExpiredSession(t *testing.T) {
	svc, _, clock := newTestService(t, nil)
	ctx := context.Background()
	mustCreateStaff(t, svc, "owner-1", "s1@shop.test", "pw-12345")
	_, token, err := svc.Login(ctx, "s1@shop.test", "pw-12345")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	clock.Advance(25 * time.Hour)

	_, err = svc.Authorize(staffContext(token), PermSalesView)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid or expired session") {
		t.Fatalf("unexpected reason: %v", err)
	}
}

func TestAuthenticateReturnsStaffIdentity(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()
	staff := mustCreateStaff(t, svc, "owner-1", "s1@shop.test", "pw-12345")
	_, token, err := svc.Login(ctx, "s1@shop.test", "pw-12345")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	identity, err := svc.Authenticate(staffContext(token))
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if identity.Kind != IdentityStaff || identity.IsOwner() {
		t.Fatalf("expected staff identity, got kind %d", identity.Kind)
	}
	if identity.OwnerID != "owner-1" || identity.Staff == nil || identity.Staff.ID != staff.ID {
		t.Fatalf("identity not scoped to owner record: %+v", identity)
	}
}
