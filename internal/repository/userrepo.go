// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/gamevault/internal/model"
)

// UserRepository provides access to auth accounts.
type UserRepository interface {
	// Create inserts a new user; ErrAlreadyExists when the email is taken.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByEmail loads a user by (lower-cased) email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// SessionRepository stores server-side auth sessions so tokens can be revoked.
type SessionRepository interface {
	Create(ctx context.Context, s *model.AuthSession) error
	Get(ctx context.Context, id uuid.UUID) (*model.AuthSession, error)
	Revoke(ctx context.Context, id uuid.UUID) error
}

// ProfileRepository provides access to per-identity profiles.
type ProfileRepository interface {
	// GetByID loads a profile; ErrNotFound when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	// Create inserts a profile; ErrAlreadyExists when one is already present.
	Create(ctx context.Context, p *model.Profile) error
	// UpsertDisplayName inserts or updates the display name and returns the stored row.
	UpsertDisplayName(ctx context.Context, id uuid.UUID, email, displayName string) (*model.Profile, error)
}
