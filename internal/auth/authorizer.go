package auth

import (
	"context"
	"fmt"
	"strings"
)

// Authorize is the entry point every tenant-scoped operation calls
// first. It authenticates the caller and returns the owner id all
// subsequent data access must scope to, regardless of which identity
// kind was acting.
//
// Owners pass with no grant lookup. Staff need an enabled grant for the
// exact key; a missing row, a disabled grant and a key dangling outside
// the catalog all read as deny, never as an error.
func (s *Service) Authorize(ctx context.Context, permissionKey string) (string, error) {
	permissionKey = strings.TrimSpace(permissionKey)
	if permissionKey == "" {
		return "", fmt.Errorf("%w: permission key is required", ErrInvalidInput)
	}

	identity, err := s.Authenticate(ctx)
	if err != nil {
		return "", err
	}

	switch identity.Kind {
	case IdentityOwner:
		return identity.OwnerID, nil
	case IdentityStaff:
		granted, err := s.store.Grants(ctx).IsGranted(ctx, identity.Staff.ID, permissionKey)
		if err != nil {
			return "", err
		}
		if !granted {
			return "", fmt.Errorf("%w: %s", ErrPermissionDenied, permissionKey)
		}
		return identity.OwnerID, nil
	default:
		return "", fmt.Errorf("%w: please log in", ErrUnauthenticated)
	}
}
