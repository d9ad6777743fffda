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

// ProfileRepo implements ProfileRepository using PostgreSQL.
type ProfileRepo struct{ db *DB }

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

// NewProfileRepo constructs a profile repository.
func NewProfileRepo(db *DB) *ProfileRepo { return &ProfileRepo{db: db} }

const profileColumns = `id, email, display_name, avatar_url, created_at, updated_at`

func scanProfile(row pgx.Row) (*model.Profile, error) {
	var p model.Profile
	if err := row.Scan(&p.ID, &p.Email, &p.DisplayName, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByID selects a profile by identity ID.
func (r *ProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	const q = `SELECT ` + profileColumns + ` FROM profiles WHERE id=$1`
	return scanProfile(r.db.Pool.QueryRow(ctx, q, id))
}

// Create inserts a profile row.
func (r *ProfileRepo) Create(ctx context.Context, p *model.Profile) error {
	const q = `
INSERT INTO profiles (id, email, display_name, avatar_url)
VALUES ($1, $2, $3, $4)
RETURNING created_at, updated_at`
	err := r.db.Pool.QueryRow(ctx, q, p.ID, p.Email, p.DisplayName, p.AvatarURL).Scan(&p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// UpsertDisplayName writes the display name, creating the profile if needed.
func (r *ProfileRepo) UpsertDisplayName(ctx context.Context, id uuid.UUID, email, displayName string) (*model.Profile, error) {
	const q = `
INSERT INTO profiles (id, email, display_name)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name, updated_at = now()
RETURNING ` + profileColumns
	return scanProfile(r.db.Pool.QueryRow(ctx, q, id, email, nullIfEmpty(displayName)))
}
