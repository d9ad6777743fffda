package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/and161185/gamevault/internal/errs"
	"github.com/and161185/gamevault/internal/model"
	"github.com/and161185/gamevault/internal/repository"
)

const gameColumns = `id, user_id, title, platform, cover_url, condition, purchase_price, current_value,
release_date, release_year, publisher, notes, is_favorite, is_wishlist, created_at, updated_at`

// GameRepo implements GameRepository using PostgreSQL.
type GameRepo struct{ db *DB }

var _ repository.GameRepository = (*GameRepo)(nil)

// NewGameRepo constructs a game repository.
func NewGameRepo(db *DB) *GameRepo { return &GameRepo{db: db} }

func scanGame(row pgx.Row) (*model.Game, error) {
	var (
		g    model.Game
		cond string
	)
	err := row.Scan(&g.ID, &g.OwnerID, &g.Title, &g.Platform, &g.CoverURL, &cond,
		&g.PurchasePrice, &g.CurrentValue, &g.ReleaseDate, &g.ReleaseYear,
		&g.Publisher, &g.Notes, &g.IsFavorite, &g.IsWishlist, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	g.Condition = model.Condition(cond)
	return &g, nil
}

// ListByOwner returns the owner's games, newest first.
func (r *GameRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Game, error) {
	const q = `SELECT ` + gameColumns + `
FROM games WHERE user_id=$1
ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Game, 0, 32)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

// Insert stores g. ID, CreatedAt and UpdatedAt are assigned by the database.
func (r *GameRepo) Insert(ctx context.Context, g *model.Game) error {
	const q = `
INSERT INTO games (user_id, title, platform, cover_url, condition, purchase_price, current_value,
release_date, release_year, publisher, notes, is_favorite, is_wishlist)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id, created_at, updated_at`
	row := r.db.Pool.QueryRow(ctx, q, g.OwnerID, g.Title, g.Platform, g.CoverURL, string(g.Condition),
		int64(g.PurchasePrice), int64(g.CurrentValue), g.ReleaseDate, g.ReleaseYear,
		g.Publisher, g.Notes, g.IsFavorite, g.IsWishlist)
	if err := row.Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return errs.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update applies the non-nil fields of patch and returns the stored row.
func (r *GameRepo) Update(ctx context.Context, ownerID, id uuid.UUID, p model.GamePatch) (*model.Game, error) {
	sets, args := patchSet(p)
	sets = append(sets, "updated_at=now()")
	q := `UPDATE games SET ` + strings.Join(sets, ", ") + `
WHERE id=$1 AND user_id=$2
RETURNING ` + gameColumns
	args = append([]any{id, ownerID}, args...)

	g, err := scanGame(r.db.Pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

// patchSet builds SET clauses numbered from $3; $1 and $2 are id and user_id.
func patchSet(p model.GamePatch) ([]string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s=$%d", col, len(args)+2))
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Platform != nil {
		add("platform", *p.Platform)
	}
	if p.CoverURL != nil {
		add("cover_url", *p.CoverURL)
	}
	if p.Condition != nil {
		add("condition", string(*p.Condition))
	}
	if p.PurchasePrice != nil {
		add("purchase_price", int64(*p.PurchasePrice))
	}
	if p.CurrentValue != nil {
		add("current_value", int64(*p.CurrentValue))
	}
	if p.ReleaseDate != nil {
		add("release_date", *p.ReleaseDate)
	}
	if p.ReleaseYear != nil {
		add("release_year", *p.ReleaseYear)
	}
	if p.Publisher != nil {
		add("publisher", *p.Publisher)
	}
	if p.Notes != nil {
		add("notes", *p.Notes)
	}
	if p.IsFavorite != nil {
		add("is_favorite", *p.IsFavorite)
	}
	if p.IsWishlist != nil {
		add("is_wishlist", *p.IsWishlist)
	}
	return sets, args
}

// Delete removes the owner's game.
func (r *GameRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	const q = `DELETE FROM games WHERE id=$1 AND user_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ExistsDuplicate reports whether another game with the same title (case-insensitive)
// and platform exists in the same partition.
func (r *GameRepo) ExistsDuplicate(ctx context.Context, ownerID uuid.UUID, d repository.DuplicateQuery) (bool, error) {
	const q = `
SELECT EXISTS (
  SELECT 1 FROM games
  WHERE user_id=$1 AND lower(title)=lower($2) AND platform=$3 AND is_wishlist=$4 AND id<>$5
)`
	var exists bool
	if err := r.db.Pool.QueryRow(ctx, q, ownerID, d.Title, d.Platform, d.IsWishlist, d.ExcludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
