package auth

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/gamevault/internal/errs"
	"github.com/and161185/gamevault/internal/limiter"
	"github.com/and161185/gamevault/internal/model"
	"github.com/and161185/gamevault/internal/repository"
)

type fakeUsers struct {
	mu   sync.Mutex
	byID map[uuid.UUID]model.User
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[uuid.UUID]model.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.byID {
		if x.Email == u.Email {
			return errs.ErrAlreadyExists
		}
	}
	u.CreatedAt = time.Now()
	f.byID[u.ID] = *u
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, errs.ErrNotFound
}

type fakeSessions struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.AuthSession
}

var _ repository.SessionRepository = (*fakeSessions)(nil)

func newFakeSessions() *fakeSessions { return &fakeSessions{rows: map[uuid.UUID]model.AuthSession{}} }

func (f *fakeSessions) Create(_ context.Context, s *model.AuthSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.CreatedAt = time.Now()
	f.rows[s.ID] = *s
	return nil
}

func (f *fakeSessions) Get(_ context.Context, id uuid.UUID) (*model.AuthSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &s, nil
}

func (f *fakeSessions) Revoke(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok {
		return errs.ErrNotFound
	}
	now := time.Now()
	s.RevokedAt = &now
	f.rows[id] = s
	return nil
}

func (f *fakeSessions) revoked() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.rows {
		if s.RevokedAt != nil {
			n++
		}
	}
	return n
}

// countingLimiter blocks after max failures.
type countingLimiter struct {
	mu    sync.Mutex
	fails map[string]int
	max   int
}

var _ limiter.Limiter = (*countingLimiter)(nil)

func (l *countingLimiter) Allow(_ context.Context, email string, _ []byte) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fails[email] >= l.max {
		return false, time.Minute, nil
	}
	return true, 0, nil
}

func (l *countingLimiter) Success(_ context.Context, email string, _ []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.fails, email)
	return nil
}

func (l *countingLimiter) Failure(_ context.Context, email string, _ []byte) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fails[email]++
	return l.fails[email] >= l.max, time.Minute, nil
}
