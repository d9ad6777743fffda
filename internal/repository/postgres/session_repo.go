package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/and161185/gamevault/internal/errs"
	"github.com/and161185/gamevault/internal/model"
	"github.com/and161185/gamevault/internal/repository"
)

// SessionRepo implements SessionRepository using PostgreSQL.
type SessionRepo struct{ db *DB }

var _ repository.SessionRepository = (*SessionRepo)(nil)

// NewSessionRepo constructs a session repository.
func NewSessionRepo(db *DB) *SessionRepo { return &SessionRepo{db: db} }

// Create inserts a session row.
func (r *SessionRepo) Create(ctx context.Context, s *model.AuthSession) error {
	const q = `
INSERT INTO auth_sessions (id, user_id, expires_at)
VALUES ($1, $2, $3)
RETURNING created_at`
	err := r.db.Pool.QueryRow(ctx, q, s.ID, s.UserID, s.ExpiresAt).Scan(&s.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// Get loads a session by its token id.
func (r *SessionRepo) Get(ctx context.Context, id uuid.UUID) (*model.AuthSession, error) {
	const q = `
SELECT id, user_id, expires_at, revoked_at, created_at
FROM auth_sessions WHERE id=$1`
	var s model.AuthSession
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.RevokedAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Revoke marks the session revoked. Revoking twice is not an error.
func (r *SessionRepo) Revoke(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE auth_sessions SET revoked_at = COALESCE(revoked_at, now()) WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
