package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/and161185/gamevault/internal/errs"
	"github.com/and161185/gamevault/internal/model"
)

var profileCols = []string{"id", "email", "display_name", "avatar_url", "created_at", "updated_at"}

func TestProfileRepo_GetByID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProfileRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())
	name := "Ann"
	now := time.Now()

	mock.ExpectQuery(`SELECT id, email, display_name, avatar_url, created_at, updated_at FROM profiles WHERE id=\$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(profileCols).AddRow(id, "a@b.io", &name, (*string)(nil), now, now))
	p, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Ann", *p.DisplayName)
	require.Nil(t, p.AvatarURL)

	mock.ExpectQuery(`SELECT .* FROM profiles WHERE id=\$1`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByID(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestProfileRepo_Create(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProfileRepo(db)
	ctx := context.Background()
	now := time.Now()
	p := &model.Profile{ID: uuid.Must(uuid.NewV4()), Email: "a@b.io"}

	mock.ExpectQuery(`INSERT INTO profiles \(id, email, display_name, avatar_url\) VALUES \(\$1, \$2, \$3, \$4\) RETURNING created_at, updated_at`).
		WithArgs(p.ID, p.Email, p.DisplayName, p.AvatarURL).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	require.NoError(t, r.Create(ctx, p))

	mock.ExpectQuery(`INSERT INTO profiles`).
		WithArgs(p.ID, p.Email, p.DisplayName, p.AvatarURL).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, r.Create(ctx, p), errs.ErrAlreadyExists)
}

func TestProfileRepo_UpsertDisplayName(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProfileRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())
	name := "Bob"
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO profiles \(id, email, display_name\) VALUES \(\$1, \$2, \$3\) ON CONFLICT \(id\) DO UPDATE`).
		WithArgs(id, "b@b.io", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(profileCols).AddRow(id, "b@b.io", &name, (*string)(nil), now, now))
	p, err := r.UpsertDisplayName(ctx, id, "b@b.io", name)
	require.NoError(t, err)
	require.Equal(t, "Bob", *p.DisplayName)
}

func TestNullIfEmpty(t *testing.T) {
	t.Parallel()

	require.Nil(t, nullIfEmpty(""))
	require.Equal(t, "x", *nullIfEmpty("x"))
}
