package pg

import (
	"context"
	"database/sql"
	"errors"

	"tindo.app/internal/auth"
)

type grantStore struct{ db *sql.DB }

// IsGranted is default-deny: a missing row reads as false, never as an
// error.
func (s *grantStore) IsGranted(ctx context.Context, staffID, key string) (bool, error) {
	var enabled bool
	err := s.db.QueryRowContext(ctx, `
		select is_enabled from staff_grants
		where staff_id = $1 and permission_key = $2
	`, staffID, key).Scan(&enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return enabled, nil
}

func (s *grantStore) Set(ctx context.Context, staffID, key string, enabled bool) error {
	_, err := s.db.ExecContext(ctx, `
		insert into staff_grants (staff_id, permission_key, is_enabled, updated_at)
		values ($1, $2, $3, now())
		on conflict (staff_id, permission_key) do update
		set is_enabled = excluded.is_enabled, updated_at = now()
	`, staffID, key, enabled)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return auth.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *grantStore) ListByStaff(ctx context.Context, staffID string) ([]auth.Grant, error) {
	rows, err := s.db.QueryContext(ctx, `
		select staff_id, permission_key, is_enabled, updated_at
		from staff_grants
		where staff_id = $1
		order by permission_key
	`, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []auth.Grant
	for rows.Next() {
		var g auth.Grant
		if err := rows.Scan(&g.StaffID, &g.PermissionKey, &g.Enabled, &g.UpdatedAt); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}
