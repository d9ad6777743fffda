// Package limiter throttles repeated failed sign-in attempts.
package limiter

import (
	"context"
	"time"
)

// Limiter controls sign-in attempts and temporary lockouts per (email, device).
type Limiter interface {
	// Allow reports whether a sign-in is currently allowed and, if not, the retry-after.
	Allow(ctx context.Context, email string, deviceHash []byte) (bool, time.Duration, error)
	// Success resets counters after a successful sign-in.
	Success(ctx context.Context, email string, deviceHash []byte) error
	// Failure records a failed attempt; may place a temporary block.
	Failure(ctx context.Context, email string, deviceHash []byte) (bool, time.Duration, error)
}

// Nop never blocks. Used when limiting is disabled.
type Nop struct{}

func (Nop) Allow(context.Context, string, []byte) (bool, time.Duration, error) { return true, 0, nil }
func (Nop) Success(context.Context, string, []byte) error                      { return nil }
func (Nop) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	return false, 0, nil
}
