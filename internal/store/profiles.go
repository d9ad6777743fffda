package store

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/gamevault/internal/model"
	"github.com/and161185/gamevault/internal/repository"
)

// Profiles maps profile repository errors the same way the game gateway does.
type Profiles struct{ repo repository.ProfileRepository }

// NewProfiles wraps a profile repository.
func NewProfiles(repo repository.ProfileRepository) *Profiles { return &Profiles{repo: repo} }

// Get loads the profile for id; ErrNotFound when absent.
func (p *Profiles) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	out, err := p.repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrap("get profile", err)
	}
	return out, nil
}

// Create inserts a profile; ErrAlreadyExists when one is present.
func (p *Profiles) Create(ctx context.Context, pr *model.Profile) error {
	if err := p.repo.Create(ctx, pr); err != nil {
		return wrap("create profile", err)
	}
	return nil
}

// SetDisplayName upserts the display name.
func (p *Profiles) SetDisplayName(ctx context.Context, id uuid.UUID, email, name string) (*model.Profile, error) {
	out, err := p.repo.UpsertDisplayName(ctx, id, email, name)
	if err != nil {
		return nil, wrap("update profile", err)
	}
	return out, nil
}
