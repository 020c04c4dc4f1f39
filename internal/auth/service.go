package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tindo.app/internal/ids"
)

const defaultSessionTTL = 24 * time.Hour

// IdentityOracle resolves ambient request identity to an owner id.
// It abstracts the external identity provider: the core never sees how
// owners authenticate, only whether the current caller is one.
type IdentityOracle interface {
	CurrentOwnerID(ctx context.Context) (string, bool)
}

// Service provides staff lifecycle, session handling and authorization
// on top of a Store and an IdentityOracle.
type Service struct {
	store  Store
	oracle IdentityOracle

	now        func() time.Time
	sessionTTL time.Duration
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service) error

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) error {
		if fn != nil {
			s.now = fn
		}
		return nil
	}
}

// WithSessionTTL overrides the staff session lifetime.
func WithSessionTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) error {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
		return nil
	}
}

// NewService constructs Service with optional configuration. The oracle
// may be nil, in which case only staff identities resolve.
func NewService(store Store, oracle IdentityOracle, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: store is required")
	}
	svc := &Service{
		store:      store,
		oracle:     oracle,
		now:        time.Now,
		sessionTTL: defaultSessionTTL,
	}
	for _, opt := range opts {
		if err := opt(svc); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// SeedCatalog ensures the builtin permission definitions exist.
// Existing rows are never overwritten, so it is safe at every startup.
func (s *Service) SeedCatalog(ctx context.Context) error {
	return s.store.Catalog(ctx).Ensure(ctx, BuiltinPermissions)
}

// Permissions lists the catalog.
func (s *Service) Permissions(ctx context.Context) ([]PermissionDefinition, error) {
	return s.store.Catalog(ctx).List(ctx)
}

// CreateStaff registers a delegated account under an owner. Email is
// globally unique across all tenants.
func (s *Service) CreateStaff(ctx context.Context, ownerID, email, password, name, phone string) (*Staff, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner_id is required", ErrInvalidInput)
	}
	email = NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	staff := &Staff{
		ID:           ids.New(),
		OwnerID:      ownerID,
		Email:        email,
		Name:         strings.TrimSpace(name),
		Phone:        strings.TrimSpace(phone),
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Staff(ctx).Create(ctx, staff); err != nil {
		return nil, err
	}
	return staff, nil
}

// Login authenticates staff credentials and issues a fresh session
// token valid for the configured TTL. Issuing a new token implicitly
// invalidates any prior one: the record holds at most one token value.
// A wrong password bumps the failure counter before the error returns;
// the counter is bookkeeping only and never blocks a correct login.
func (s *Service) Login(ctx context.Context, email, password string) (*Staff, string, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}
	staffStore := s.store.Staff(ctx)
	staff, err := staffStore.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := VerifyPassword(staff.PasswordHash, password); err != nil {
		// Best-effort bookkeeping; the login error stands either way.
		_ = staffStore.RecordLoginFailure(ctx, staff.ID)
		return nil, "", ErrInvalidCredentials
	}

	token, err := NewSessionToken()
	if err != nil {
		return nil, "", err
	}
	expiry := s.now().UTC().Add(s.sessionTTL)
	if err := staffStore.StartSession(ctx, staff.ID, token, expiry); err != nil {
		return nil, "", err
	}
	staff.SessionToken = token
	staff.SessionExpiry = expiry
	staff.FailedLoginAttempts = 0
	return staff, token, nil
}

// ValidateSession resolves a session token to its staff record.
// Unknown tokens and expired sessions both read as ErrNotFound; expired
// rows are left in place and cleared lazily on logout or re-login.
func (s *Service) ValidateSession(ctx context.Context, token string) (*Staff, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNotFound
	}
	staff, err := s.store.Staff(ctx).FindBySessionToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if staff.SessionExpiry.IsZero() || s.now().After(staff.SessionExpiry) {
		return nil, ErrNotFound
	}
	return staff, nil
}

// Logout clears the staff session unconditionally.
func (s *Service) Logout(ctx context.Context, staffID string) error {
	staffID = strings.TrimSpace(staffID)
	if staffID == "" {
		return fmt.Errorf("%w: staff_id is required", ErrInvalidInput)
	}
	return s.store.Staff(ctx).ClearSession(ctx, staffID)
}

// GetStaff loads one staff record scoped to an owner.
func (s *Service) GetStaff(ctx context.Context, ownerID, staffID string) (*Staff, error) {
	staff, err := s.store.Staff(ctx).Find(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if staff.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return staff, nil
}

// ListStaff returns all staff delegated by an owner.
func (s *Service) ListStaff(ctx context.Context, ownerID string) ([]*Staff, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner_id is required", ErrInvalidInput)
	}
	return s.store.Staff(ctx).ListByOwner(ctx, ownerID)
}

// SetStaffActive toggles the account flag; a disabled staff keeps its
// session row but can no longer authenticate.
func (s *Service) SetStaffActive(ctx context.Context, ownerID, staffID string, active bool) error {
	if _, err := s.GetStaff(ctx, ownerID, staffID); err != nil {
		return err
	}
	return s.store.Staff(ctx).SetActive(ctx, staffID, active)
}

// DeleteStaff removes a staff record; grants cascade in the store.
func (s *Service) DeleteStaff(ctx context.Context, ownerID, staffID string) error {
	if _, err := s.GetStaff(ctx, ownerID, staffID); err != nil {
		return err
	}
	return s.store.Staff(ctx).Delete(ctx, staffID)
}

// SetGrant upserts one grant. The key must exist in the catalog so
// typos surface at write time instead of silently denying later.
func (s *Service) SetGrant(ctx context.Context, ownerID, staffID, key string, enabled bool) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: permission_key is required", ErrInvalidInput)
	}
	if _, err := s.GetStaff(ctx, ownerID, staffID); err != nil {
		return err
	}
	known, err := s.store.Catalog(ctx).Exists(ctx, key)
	if err != nil {
		return err
	}
	if !known {
		return fmt.Errorf("%w: permission key %s", ErrNotFound, key)
	}
	return s.store.Grants(ctx).Set(ctx, staffID, key, enabled)
}

// StaffGrants lists the grants recorded for a staff member.
func (s *Service) StaffGrants(ctx context.Context, ownerID, staffID string) ([]Grant, error) {
	if _, err := s.GetStaff(ctx, ownerID, staffID); err != nil {
		return nil, err
	}
	return s.store.Grants(ctx).ListByStaff(ctx, staffID)
}

// NormalizeEmail applies the lookup normalization used everywhere an
// email enters the system.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
