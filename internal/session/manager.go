// Package session owns the authentication lifecycle: restoring a session on start,
// sign-in/up/out, keeping a profile row for every signed-in identity and
// publishing the resolved SessionUser to subscribers.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/gamevault/internal/auth"
	"github.com/and161185/gamevault/internal/errs"
	"github.com/and161185/gamevault/internal/model"
)

// Profiles is the profile storage the manager needs. *store.Profiles satisfies it.
type Profiles interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	Create(ctx context.Context, p *model.Profile) error
	SetDisplayName(ctx context.Context, id uuid.UUID, email, name string) (*model.Profile, error)
}

// Listener receives the published user; nil means signed out.
type Listener func(ctx context.Context, u *model.SessionUser)

const maxDisplayName = 100

// Manager publishes the current SessionUser.
type Manager struct {
	auth     auth.Provider
	profiles Profiles
	log      *zap.Logger

	mu        sync.RWMutex
	user      *model.SessionUser
	ready     bool
	listeners []listener
	nextID    int

	unsubOnce sync.Once
	unsub     func()
}

type listener struct {
	id int
	fn Listener
}

// New constructs a manager and subscribes it to the provider for its lifetime.
// Call Close to release the subscription.
func New(p auth.Provider, profiles Profiles, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{auth: p, profiles: profiles, log: log}
	m.unsub = p.Subscribe(m.onAuthEvent)
	return m
}

// Initialize restores an existing session. Failures degrade to "no user".
// The manager is Ready afterwards in every case.
func (m *Manager) Initialize(ctx context.Context) *model.SessionUser {
	defer func() {
		m.mu.Lock()
		m.ready = true
		m.mu.Unlock()
	}()

	s, err := m.auth.Session(ctx)
	if err != nil {
		m.log.Warn("session check failed", zap.Error(err))
		m.publish(ctx, nil)
		return nil
	}
	if s == nil {
		m.publish(ctx, nil)
		return nil
	}
	u := m.resolve(ctx, s.User)
	m.publish(ctx, u)
	return copyUser(u)
}

// Ready reports whether Initialize has finished.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready
}

// Current returns the published user or nil.
func (m *Manager) Current() *model.SessionUser {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyUser(m.user)
}

// SignIn delegates to the provider. The user is published by the resulting auth event.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	_, err := m.auth.SignIn(ctx, email, password)
	return err
}

// SignUp creates an account; displayName is stored as identity metadata.
// The provider may not start a session.
func (m *Manager) SignUp(ctx context.Context, email, password, displayName string) (*model.Identity, error) {
	var meta map[string]string
	if name := strings.TrimSpace(displayName); name != "" {
		meta = map[string]string{"display_name": name}
	}
	return m.auth.SignUp(ctx, email, password, meta)
}

// SignOut delegates to the provider and clears the published user.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.auth.SignOut(ctx); err != nil {
		return err
	}
	m.publish(ctx, nil)
	return nil
}

// UpdateProfile sets the display name of the signed-in user.
func (m *Manager) UpdateProfile(ctx context.Context, displayName string) (*model.SessionUser, error) {
	cur := m.Current()
	if cur == nil {
		return nil, errs.ErrNotAuthenticated
	}
	name := strings.TrimSpace(displayName)
	if len([]rune(name)) > maxDisplayName {
		return nil, errs.Validation("display_name", "display_name must be at most 100 characters")
	}
	p, err := m.profiles.SetDisplayName(ctx, cur.ID, cur.Email, name)
	if err != nil {
		return nil, err
	}
	u := &model.SessionUser{Identity: cur.Identity, DisplayName: displayNameOf(p, cur.Identity)}
	m.publish(ctx, u)
	return copyUser(u), nil
}

// Subscribe registers fn for user changes and returns its remover.
func (m *Manager) Subscribe(fn Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.listeners = append(m.listeners, listener{id: id, fn: fn})
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, l := range m.listeners {
				if l.id == id {
					m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Close releases the provider subscription. Safe to call more than once.
func (m *Manager) Close() {
	m.unsubOnce.Do(func() {
		if m.unsub != nil {
			m.unsub()
		}
	})
}

func (m *Manager) onAuthEvent(ctx context.Context, ev auth.Event) {
	m.log.Debug("auth event", zap.Stringer("event", ev.Type))
	if ev.Session == nil {
		m.publish(ctx, nil)
		return
	}
	m.publish(ctx, m.resolve(ctx, ev.Session.User))
}

// resolve ensures the profile exists and builds the SessionUser. Profile failures
// are logged and the display name falls back to identity data.
func (m *Manager) resolve(ctx context.Context, id model.Identity) *model.SessionUser {
	p, err := m.ensureProfile(ctx, id)
	if err != nil {
		m.log.Warn("ensure profile failed", zap.String("user_id", id.ID.String()), zap.Error(err))
	}
	return &model.SessionUser{Identity: id, DisplayName: displayNameOf(p, id)}
}

// ensureProfile creates the profile if absent. A concurrent insert that wins the
// race surfaces as ErrAlreadyExists and counts as success.
func (m *Manager) ensureProfile(ctx context.Context, id model.Identity) (*model.Profile, error) {
	p, err := m.profiles.Get(ctx, id.ID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	p = &model.Profile{ID: id.ID, Email: id.Email}
	if name := id.Metadata["display_name"]; name != "" {
		p.DisplayName = &name
	}
	err = m.profiles.Create(ctx, p)
	switch {
	case err == nil:
		m.log.Info("profile created", zap.String("user_id", id.ID.String()))
		return p, nil
	case errors.Is(err, errs.ErrAlreadyExists):
		return m.profiles.Get(ctx, id.ID)
	default:
		return nil, err
	}
}

func (m *Manager) publish(ctx context.Context, u *model.SessionUser) {
	m.mu.Lock()
	m.user = copyUser(u)
	ls := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		ls = append(ls, l.fn)
	}
	m.mu.Unlock()

	for _, fn := range ls {
		fn(ctx, copyUser(u))
	}
}

// displayNameOf picks profile name, then identity metadata, then the email local part.
func displayNameOf(p *model.Profile, id model.Identity) string {
	if p != nil && p.DisplayName != nil && *p.DisplayName != "" {
		return *p.DisplayName
	}
	if name := id.Metadata["display_name"]; name != "" {
		return name
	}
	local, _, _ := strings.Cut(id.Email, "@")
	return local
}

func copyUser(u *model.SessionUser) *model.SessionUser {
	if u == nil {
		return nil
	}
	c := *u
	if u.Metadata != nil {
		c.Metadata = make(map[string]string, len(u.Metadata))
		for k, v := range u.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}
