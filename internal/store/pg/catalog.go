package pg

import (
	"context"
	"database/sql"

	"tindo.app/internal/auth"
)

type catalogStore struct{ db *sql.DB }

// Ensure inserts missing catalog rows only; concurrent seeds and edited
// labels are both safe because conflicts are ignored.
func (s *catalogStore) Ensure(ctx context.Context, defs []auth.PermissionDefinition) error {
	for _, d := range defs {
		_, err := s.db.ExecContext(ctx, `
			insert into permission_definitions (permission_key, main_tab_key, sub_tab_key, action_key, label, description)
			values ($1, $2, $3, $4, $5, $6)
			on conflict (permission_key) do nothing
		`, d.Key, d.MainTab, d.SubTab, d.Action, d.Label, d.Description)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *catalogStore) Exists(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		select exists(select 1 from permission_definitions where permission_key = $1)
	`, key).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *catalogStore) List(ctx context.Context) ([]auth.PermissionDefinition, error) {
	rows, err := s.db.QueryContext(ctx, `
		select permission_key, main_tab_key, sub_tab_key, action_key, label, description, created_at
		from permission_definitions
		order by permission_key
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []auth.PermissionDefinition
	for rows.Next() {
		var d auth.PermissionDefinition
		if err := rows.Scan(&d.Key, &d.MainTab, &d.SubTab, &d.Action, &d.Label, &d.Description, &d.CreatedAt); err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	return defs, rows.Err()
}
