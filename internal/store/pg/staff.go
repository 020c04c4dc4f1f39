package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tindo.app/internal/auth"
)

type staffStore struct{ db *sql.DB }

const staffColumns = `id, owner_id, email, name, phone, password_hash,
	failed_login_attempts, is_active,
	coalesce(session_token, ''), coalesce(session_expiry, 'epoch'::timestamptz),
	created_at, updated_at`

func (s *staffStore) Create(ctx context.Context, st *auth.Staff) error {
	_, err := s.db.ExecContext(ctx, `
		insert into staff (id, owner_id, email, name, phone, password_hash, failed_login_attempts, is_active)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
	`, st.ID, st.OwnerID, st.Email, st.Name, st.Phone, st.PasswordHash, st.FailedLoginAttempts, st.Active)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return auth.ErrConflict
		}
		return err
	}
	return nil
}

func (s *staffStore) Find(ctx context.Context, id string) (*auth.Staff, error) {
	row := s.db.QueryRowContext(ctx, `select `+staffColumns+` from staff where id = $1`, id)
	return scanStaff(row)
}

func (s *staffStore) FindByEmail(ctx context.Context, email string) (*auth.Staff, error) {
	row := s.db.QueryRowContext(ctx, `select `+staffColumns+` from staff where lower(email) = $1`, email)
	return scanStaff(row)
}

// FindBySessionToken hits the partial unique index on session_token;
// validation stays O(1) and never walks the staff set.
func (s *staffStore) FindBySessionToken(ctx context.Context, token string) (*auth.Staff, error) {
	row := s.db.QueryRowContext(ctx, `
		select `+staffColumns+` from staff
		where session_token = $1 and session_token <> ''
	`, token)
	return scanStaff(row)
}

func (s *staffStore) ListByOwner(ctx context.Context, ownerID string) ([]*auth.Staff, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+staffColumns+` from staff where owner_id = $1 order by created_at
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*auth.Staff
	for rows.Next() {
		st, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *staffStore) StartSession(ctx context.Context, staffID, token string, expiry time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		update staff
		set session_token = $2, session_expiry = $3, failed_login_attempts = 0, updated_at = now()
		where id = $1
	`, staffID, token, expiry)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *staffStore) ClearSession(ctx context.Context, staffID string) error {
	res, err := s.db.ExecContext(ctx, `
		update staff
		set session_token = null, session_expiry = null, updated_at = now()
		where id = $1
	`, staffID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// RecordLoginFailure uses a relative update so two concurrent failures
// are both reflected.
func (s *staffStore) RecordLoginFailure(ctx context.Context, staffID string) error {
	res, err := s.db.ExecContext(ctx, `
		update staff
		set failed_login_attempts = failed_login_attempts + 1, updated_at = now()
		where id = $1
	`, staffID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *staffStore) SetActive(ctx context.Context, staffID string, active bool) error {
	res, err := s.db.ExecContext(ctx, `
		update staff set is_active = $2, updated_at = now() where id = $1
	`, staffID, active)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *staffStore) Delete(ctx context.Context, staffID string) error {
	res, err := s.db.ExecContext(ctx, `delete from staff where id = $1`, staffID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStaff(row rowScanner) (*auth.Staff, error) {
	var st auth.Staff
	err := row.Scan(
		&st.ID, &st.OwnerID, &st.Email, &st.Name, &st.Phone, &st.PasswordHash,
		&st.FailedLoginAttempts, &st.Active,
		&st.SessionToken, &st.SessionExpiry,
		&st.CreatedAt, &st.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	// 'epoch' stands in for null expiry; normalize back to zero.
	if st.SessionExpiry.Equal(time.Unix(0, 0).UTC()) || st.SessionExpiry.Unix() == 0 {
		st.SessionExpiry = time.Time{}
	}
	return &st, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return auth.ErrNotFound
	}
	return nil
}
