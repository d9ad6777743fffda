package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/gamevault/internal/model"
)

// DuplicateQuery selects rows that would collide with (title, platform) in one partition.
type DuplicateQuery struct {
	Title      string    // compared case-insensitively
	Platform   string    // compared exactly
	IsWishlist bool      // partition
	ExcludeID  uuid.UUID // uuid.Nil excludes nothing
}

// GameRepository provides owner-scoped access to game records.
type GameRepository interface {
	// ListByOwner returns all games of the owner, newest created first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Game, error)

	// Insert stores g and fills its ID and timestamps from the store.
	Insert(ctx context.Context, g *model.Game) error

	// Update applies patch to the owner's game and returns the stored row.
	Update(ctx context.Context, ownerID, id uuid.UUID, patch model.GamePatch) (*model.Game, error)

	// Delete removes the owner's game.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	// ExistsDuplicate reports whether a row matching q exists for the owner.
	ExistsDuplicate(ctx context.Context, ownerID uuid.UUID, q DuplicateQuery) (bool, error)
}
