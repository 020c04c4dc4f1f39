package auth

import (
	"context"
	"errors"
	"fmt"
)

// Authenticate resolves the current caller to an Identity.
//
// The owner check runs first and always wins: an owner account is never
// blocked by staff-session state, even if a stale staff token happens to
// ride along in the same request. Only when the oracle yields nothing is
// the bearer credential treated as a staff session token.
func (s *Service) Authenticate(ctx context.Context) (Identity, error) {
	if s.oracle != nil {
		if ownerID, ok := s.oracle.CurrentOwnerID(ctx); ok {
			return OwnerIdentity(ownerID), nil
		}
	}

	token, ok := BearerTokenFromContext(ctx)
	if !ok {
		return Identity{}, fmt.Errorf("%w: please log in", ErrUnauthenticated)
	}

	staff, err := s.ValidateSession(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Identity{}, fmt.Errorf("%w: invalid or expired session", ErrUnauthenticated)
		}
		return Identity{}, err
	}
	if !staff.Active {
		return Identity{}, fmt.Errorf("%w: account disabled", ErrUnauthenticated)
	}
	return StaffIdentity(staff), nil
}
