// Package store is the owner-scoped gateway between the collection manager and the
// record store. Every call resolves the signed-in identity first.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/gamevault/internal/errs"
	"github.com/and161185/gamevault/internal/model"
	"github.com/and161185/gamevault/internal/repository"
)

// Identities resolves the current identity. auth.Provider satisfies it.
type Identities interface {
	CurrentUser(ctx context.Context) (*model.Identity, error)
}

// Gateway defines owner-scoped game operations.
type Gateway interface {
	// ListByOwner returns the owner's games newest-created first.
	ListByOwner(ctx context.Context) ([]model.Game, error)
	// Insert stores g for the current owner and returns the stored row.
	Insert(ctx context.Context, g model.Game) (*model.Game, error)
	// UpdateByID patches an owned game and returns the stored row.
	UpdateByID(ctx context.Context, id uuid.UUID, patch model.GamePatch) (*model.Game, error)
	// DeleteByID removes an owned game.
	DeleteByID(ctx context.Context, id uuid.UUID) error
	// ExistsDuplicate reports whether (title, platform) is taken in the partition,
	// ignoring excludeID (uuid.Nil ignores nothing).
	ExistsDuplicate(ctx context.Context, title, platform string, isWishlist bool, excludeID uuid.UUID) (bool, error)
}

type GatewayImpl struct {
	ids   Identities
	games repository.GameRepository
	log   *zap.Logger
}

var _ Gateway = (*GatewayImpl)(nil)

// New constructs the gateway.
func New(ids Identities, games repository.GameRepository, log *zap.Logger) *GatewayImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &GatewayImpl{ids: ids, games: games, log: log}
}

func (g *GatewayImpl) owner(ctx context.Context) (uuid.UUID, error) {
	u, err := g.ids.CurrentUser(ctx)
	if err != nil {
		return uuid.Nil, wrap("resolve identity", err)
	}
	if u == nil || u.ID == uuid.Nil {
		return uuid.Nil, errs.ErrNotAuthenticated
	}
	return u.ID, nil
}

// ListByOwner returns all games of the current owner.
func (g *GatewayImpl) ListByOwner(ctx context.Context) ([]model.Game, error) {
	owner, err := g.owner(ctx)
	if err != nil {
		return nil, err
	}
	games, err := g.games.ListByOwner(ctx, owner)
	if err != nil {
		return nil, wrap("list games", err)
	}
	g.log.Debug("games listed", zap.String("owner", owner.String()), zap.Int("count", len(games)))
	return games, nil
}

// Insert stores a new game owned by the current identity.
func (g *GatewayImpl) Insert(ctx context.Context, game model.Game) (*model.Game, error) {
	owner, err := g.owner(ctx)
	if err != nil {
		return nil, err
	}
	game.ID = uuid.Nil
	game.OwnerID = owner
	if err := g.games.Insert(ctx, &game); err != nil {
		return nil, wrap("insert game", err)
	}
	return &game, nil
}

// UpdateByID patches a game owned by the current identity.
func (g *GatewayImpl) UpdateByID(ctx context.Context, id uuid.UUID, patch model.GamePatch) (*model.Game, error) {
	owner, err := g.owner(ctx)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, errs.Validation("", "nothing to update")
	}
	out, err := g.games.Update(ctx, owner, id, patch)
	if err != nil {
		return nil, wrap("update game", err)
	}
	return out, nil
}

// DeleteByID deletes a game owned by the current identity.
func (g *GatewayImpl) DeleteByID(ctx context.Context, id uuid.UUID) error {
	owner, err := g.owner(ctx)
	if err != nil {
		return err
	}
	if err := g.games.Delete(ctx, owner, id); err != nil {
		return wrap("delete game", err)
	}
	return nil
}

// ExistsDuplicate checks the uniqueness rule for the current owner.
func (g *GatewayImpl) ExistsDuplicate(ctx context.Context, title, platform string, isWishlist bool, excludeID uuid.UUID) (bool, error) {
	owner, err := g.owner(ctx)
	if err != nil {
		return false, err
	}
	ok, err := g.games.ExistsDuplicate(ctx, owner, repository.DuplicateQuery{
		Title:      title,
		Platform:   platform,
		IsWishlist: isWishlist,
		ExcludeID:  excludeID,
	})
	if err != nil {
		return false, wrap("duplicate check", err)
	}
	return ok, nil
}

// wrap passes domain errors through and marks everything else as a store outage.
func wrap(op string, err error) error {
	switch {
	case errors.Is(err, errs.ErrNotFound),
		errors.Is(err, errs.ErrNotAuthenticated),
		errors.Is(err, errs.ErrValidation),
		errors.Is(err, errs.ErrDuplicateGame),
		errors.Is(err, errs.ErrAlreadyExists),
		errors.Is(err, errs.ErrStoreUnavailable):
		return err
	}
	return fmt.Errorf("%w: %s: %w", errs.ErrStoreUnavailable, op, err)
}
