// Package auth provides the authentication provider used by the session manager:
// account sign-up, password sign-in with rate limiting, persisted sessions and
// auth-state change notifications.
package auth

import (
	"context"

	"github.com/and161185/gamevault/internal/model"
)

// EventType classifies an auth-state change.
type EventType int

const (
	// EventSignedIn is emitted after a successful sign-in.
	EventSignedIn EventType = iota + 1
	// EventSignedOut is emitted after sign-out or when the active session expires.
	EventSignedOut
)

func (t EventType) String() string {
	switch t {
	case EventSignedIn:
		return "SIGNED_IN"
	case EventSignedOut:
		return "SIGNED_OUT"
	default:
		return "UNKNOWN"
	}
}

// Event is delivered to listeners. Session is nil when no session is active.
type Event struct {
	Type    EventType
	Session *model.Session
}

// Listener receives auth-state changes. Listeners are called synchronously,
// in subscription order, on the goroutine that caused the change.
type Listener func(ctx context.Context, ev Event)

// Provider is the auth collaborator contract.
type Provider interface {
	// SignUp creates an account. It never activates a session.
	SignUp(ctx context.Context, email, password string, metadata map[string]string) (*model.Identity, error)
	// SignIn authenticates and activates a session.
	SignIn(ctx context.Context, email, password string) (*model.Session, error)
	// SignOut ends the active session, if any.
	SignOut(ctx context.Context) error
	// CurrentUser returns the identity of the active session, or nil when there is none.
	CurrentUser(ctx context.Context) (*model.Identity, error)
	// Session returns the active session, or nil when there is none.
	Session(ctx context.Context) (*model.Session, error)
	// Subscribe registers l and returns a function that removes it.
	Subscribe(l Listener) (unsubscribe func())
}
