package auth

import (
	"context"
	"time"
)

// Store describes persistence operations required by the auth subsystem.
// All mutations are atomic at the single-record level; no cross-record
// transactions are needed here.
type Store interface {
	Staff(ctx context.Context) StaffStore
	Catalog(ctx context.Context) CatalogStore
	Grants(ctx context.Context) GrantStore
}

// StaffStore manages staff records and their single active session.
type StaffStore interface {
	Create(ctx context.Context, s *Staff) error
	Find(ctx context.Context, id string) (*Staff, error)
	// FindByEmail expects an already-normalized (trimmed, lowercased) email.
	FindByEmail(ctx context.Context, email string) (*Staff, error)
	// FindBySessionToken is a direct indexed lookup, never a scan.
	FindBySessionToken(ctx context.Context, token string) (*Staff, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Staff, error)
	// StartSession replaces any prior token, sets expiry and zeroes the
	// failure counter in one record write.
	StartSession(ctx context.Context, staffID, token string, expiry time.Time) error
	ClearSession(ctx context.Context, staffID string) error
	// RecordLoginFailure bumps failed_login_attempts with a relative
	// update so concurrent failures are all reflected.
	RecordLoginFailure(ctx context.Context, staffID string) error
	SetActive(ctx context.Context, staffID string, active bool) error
	Delete(ctx context.Context, staffID string) error
}

// CatalogStore manages the permission catalog.
type CatalogStore interface {
	// Ensure inserts missing definitions and leaves existing rows
	// untouched; safe to run repeatedly and concurrently.
	Ensure(ctx context.Context, defs []PermissionDefinition) error
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context) ([]PermissionDefinition, error)
}

// GrantStore manages per-staff permission grants.
type GrantStore interface {
	// IsGranted is default-deny: a missing row reads as false.
	IsGranted(ctx context.Context, staffID, key string) (bool, error)
	Set(ctx context.Context, staffID, key string, enabled bool) error
	ListByStaff(ctx context.Context, staffID string) ([]Grant, error)
}
