package main

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/gamevault/internal/auth"
	"github.com/and161185/gamevault/internal/errs"
	"github.com/and161185/gamevault/internal/metadata"
	"github.com/and161185/gamevault/internal/model"
	"github.com/and161185/gamevault/internal/repository"
)

// fakeProvider signs anyone in with any password.
type fakeProvider struct {
	mu        sync.Mutex
	session   *model.Session
	listeners map[int]auth.Listener
	next      int
}

var _ auth.Provider = (*fakeProvider)(nil)

func newFakeProvider() *fakeProvider { return &fakeProvider{listeners: map[int]auth.Listener{}} }

func (f *fakeProvider) SignUp(_ context.Context, email, _ string, meta map[string]string) (*model.Identity, error) {
	return &model.Identity{ID: uuid.Must(uuid.NewV4()), Email: email, Metadata: meta}, nil
}

func (f *fakeProvider) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	if password == "wrong" {
		return nil, errs.ErrInvalidCredentials
	}
	s := &model.Session{
		AccessToken: "t",
		ExpiresAt:   time.Now().Add(time.Hour),
		User:        model.Identity{ID: uuid.Must(uuid.NewV4()), Email: email},
	}
	f.mu.Lock()
	f.session = s
	f.mu.Unlock()
	f.emit(ctx, auth.Event{Type: auth.EventSignedIn, Session: s})
	return s, nil
}

func (f *fakeProvider) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.session = nil
	f.mu.Unlock()
	f.emit(ctx, auth.Event{Type: auth.EventSignedOut})
	return nil
}

func (f *fakeProvider) CurrentUser(ctx context.Context) (*model.Identity, error) {
	s, _ := f.Session(ctx)
	if s == nil {
		return nil, nil
	}
	return &s.User, nil
}

func (f *fakeProvider) Session(context.Context) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, nil
}

func (f *fakeProvider) Subscribe(l auth.Listener) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	id := f.next
	f.listeners[id] = l
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, id)
	}
}

func (f *fakeProvider) emit(ctx context.Context, ev auth.Event) {
	f.mu.Lock()
	ls := make([]auth.Listener, 0, len(f.listeners))
	for _, l := range f.listeners {
		ls = append(ls, l)
	}
	f.mu.Unlock()
	for _, l := range ls {
		l(ctx, ev)
	}
}

type fakeProfileRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.Profile
}

var _ repository.ProfileRepository = (*fakeProfileRepo)(nil)

func (f *fakeProfileRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProfileRepo) Create(_ context.Context, p *model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[p.ID]; ok {
		return errs.ErrAlreadyExists
	}
	f.rows[p.ID] = *p
	return nil
}

func (f *fakeProfileRepo) UpsertDisplayName(_ context.Context, id uuid.UUID, email, name string) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.rows[id]
	p.ID, p.Email = id, email
	p.DisplayName = nil
	if name != "" {
		p.DisplayName = &name
	}
	f.rows[id] = p
	return &p, nil
}

type fakeGameRepo struct {
	mu   sync.Mutex
	rows []model.Game
}

var _ repository.GameRepository = (*fakeGameRepo)(nil)

func (f *fakeGameRepo) ListByOwner(_ context.Context, owner uuid.UUID) ([]model.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Game{}
	for _, g := range f.rows {
		if g.OwnerID == owner {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGameRepo) Insert(_ context.Context, g *model.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g.ID = uuid.Must(uuid.NewV4())
	g.CreatedAt = time.Now()
	g.UpdatedAt = g.CreatedAt
	f.rows = append([]model.Game{*g}, f.rows...)
	return nil
}

func (f *fakeGameRepo) Update(_ context.Context, owner, id uuid.UUID, p model.GamePatch) (*model.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, g := range f.rows {
		if g.ID == id && g.OwnerID == owner {
			f.rows[i] = p.Apply(g)
			out := f.rows[i]
			return &out, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeGameRepo) Delete(_ context.Context, owner, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, g := range f.rows {
		if g.ID == id && g.OwnerID == owner {
			f.rows = append(f.rows[:i:i], f.rows[i+1:]...)
			return nil
		}
	}
	return errs.ErrNotFound
}

func (f *fakeGameRepo) ExistsDuplicate(_ context.Context, owner uuid.UUID, q repository.DuplicateQuery) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.rows {
		if g.OwnerID == owner && g.ID != q.ExcludeID && strings.EqualFold(g.Title, q.Title) &&
			g.Platform == q.Platform && g.IsWishlist == q.IsWishlist {
			return true, nil
		}
	}
	return false, nil
}

type fakeLookup struct{}

var _ metadata.Lookup = fakeLookup{}

func (fakeLookup) Search(_ context.Context, q string) []metadata.Result {
	if len(q) < metadata.MinQueryLen {
		return []metadata.Result{}
	}
	return []metadata.Result{{ID: 5, Title: "Okami", ReleaseYear: 2006, Platforms: []string{"Wii", "PlayStation 2"}}}
}

func (fakeLookup) GetDetails(_ context.Context, id int) *metadata.Details {
	if id != 5 {
		return nil
	}
	return &metadata.Details{
		ID: "5",
		Draft: model.GameDraft{
			Title:       "Okami",
			Platform:    "Wii",
			CoverURL:    "https://img/okami.jpg",
			ReleaseYear: 2006,
			Publisher:   "Capcom",
			Condition:   model.ConditionOpened,
		},
		AvailablePlatforms: []string{"Wii", "PlayStation 2"},
	}
}
