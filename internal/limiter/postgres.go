package limiter

import (
	"context"
	"crypto/sha256"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PG is a PostgreSQL-backed limiter with a sliding window and lockout.
type PG struct {
	pool     pgxQuerier
	window   time.Duration
	maxFails int
	blockFor time.Duration
	now      func() time.Time
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPG constructs a PostgreSQL-backed limiter over any pgx pool or connection.
func NewPG(q pgxQuerier, window time.Duration, maxFails int, blockFor time.Duration) *PG {
	return &PG{pool: q, window: window, maxFails: maxFails, blockFor: blockFor, now: time.Now}
}

// HashDevice returns a stable hash of a device identifier so raw host names are not stored.
func HashDevice(device string) []byte {
	h := sha256.Sum256([]byte(device))
	return h[:]
}

// Allow reports whether a sign-in is currently allowed and a retry-after duration.
func (l *PG) Allow(ctx context.Context, email string, deviceHash []byte) (bool, time.Duration, error) {
	const q = `SELECT blocked_until FROM signin_attempts WHERE email=$1 AND device_hash=$2`
	var blockedUntil time.Time
	err := l.pool.QueryRow(ctx, q, email, deviceHash).Scan(&blockedUntil)
	switch {
	case err == nil:
		if now := l.now(); blockedUntil.After(now) {
			return false, blockedUntil.Sub(now), nil
		}
		return true, 0, nil
	case errors.Is(err, pgx.ErrNoRows):
		return true, 0, nil
	default:
		return false, 0, err
	}
}

// Success resets counters for (email, device).
func (l *PG) Success(ctx context.Context, email string, deviceHash []byte) error {
	const q = `
INSERT INTO signin_attempts (email, device_hash, fail_count, blocked_until, updated_at)
VALUES ($1,$2,0,'epoch',now())
ON CONFLICT (email, device_hash)
DO UPDATE SET fail_count=0, blocked_until='epoch', updated_at=now()`
	_, err := l.pool.Exec(ctx, q, email, deviceHash)
	return err
}

// Failure records a failed attempt; may set a block until a future time.
func (l *PG) Failure(ctx context.Context, email string, deviceHash []byte) (bool, time.Duration, error) {
	const q = `
INSERT INTO signin_attempts (email, device_hash, fail_count, blocked_until, updated_at)
VALUES ($1,$2,1,'epoch',now())
ON CONFLICT (email, device_hash) DO UPDATE
SET
  fail_count = CASE WHEN EXCLUDED.updated_at - signin_attempts.updated_at > $3::interval THEN 1 ELSE signin_attempts.fail_count + 1 END,
  updated_at = now()
RETURNING fail_count`
	var fails int
	if err := l.pool.QueryRow(ctx, q, email, deviceHash, l.window).Scan(&fails); err != nil {
		return false, 0, err
	}
	if fails < l.maxFails {
		return false, 0, nil
	}
	blockUntil := l.now().Add(l.blockFor)
	const upd = `UPDATE signin_attempts SET blocked_until=$3 WHERE email=$1 AND device_hash=$2`
	if _, err := l.pool.Exec(ctx, upd, email, deviceHash, blockUntil); err != nil {
		return false, 0, err
	}
	return true, l.blockFor, nil
}
