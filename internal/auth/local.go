package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/and161185/gamevault/internal/crypto"
	"github.com/and161185/gamevault/internal/errs"
	"github.com/and161185/gamevault/internal/limiter"
	"github.com/and161185/gamevault/internal/model"
	"github.com/and161185/gamevault/internal/repository"
	"github.com/and161185/gamevault/internal/validate"
)

// Options configure a LocalProvider.
type Options struct {
	SignKey    []byte        // HS256 key for access tokens
	SessionTTL time.Duration // access token lifetime
	Device     string        // identifies this client for rate limiting
	Hasher     *crypto.Hasher
	Limiter    limiter.Limiter
	Tokens     TokenStore
	Logger     *zap.Logger
}

// LocalProvider implements Provider on top of the record store's users and
// auth_sessions tables.
type LocalProvider struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	hasher   *crypto.Hasher
	lim      limiter.Limiter
	tokens   TokenStore
	signKey  []byte
	ttl      time.Duration
	device   []byte
	log      *zap.Logger
	now      func() time.Time

	mu        sync.Mutex
	cur       *model.Session
	listeners []subscription
	nextSub   int
}

type subscription struct {
	id int
	fn Listener
}

var _ Provider = (*LocalProvider)(nil)

// NewLocalProvider constructs a provider. Nil optional dependencies get defaults.
func NewLocalProvider(users repository.UserRepository, sessions repository.SessionRepository, o Options) (*LocalProvider, error) {
	if len(o.SignKey) == 0 {
		return nil, errors.New("auth: empty sign key")
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = 7 * 24 * time.Hour
	}
	if o.Hasher == nil {
		o.Hasher = crypto.NewHasher(crypto.DefaultParams)
	}
	if o.Limiter == nil {
		o.Limiter = limiter.Nop{}
	}
	if o.Tokens == nil {
		o.Tokens = &MemoryTokenStore{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return &LocalProvider{
		users:    users,
		sessions: sessions,
		hasher:   o.Hasher,
		lim:      o.Limiter,
		tokens:   o.Tokens,
		signKey:  o.SignKey,
		ttl:      o.SessionTTL,
		device:   limiter.HashDevice(o.Device),
		log:      o.Logger,
		now:      time.Now,
	}, nil
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// SignUp creates a new account with per-user salt. No session is started.
func (p *LocalProvider) SignUp(ctx context.Context, email, password string, metadata map[string]string) (*model.Identity, error) {
	email = normalizeEmail(email)
	if err := validate.Struct(validate.Credentials{Email: email, Password: password}); err != nil {
		return nil, err
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	salt, err := crypto.RandBytes(crypto.SaltLen)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		ID:       uid,
		Email:    email,
		PwdHash:  p.hasher.Hash([]byte(password), salt),
		SaltAuth: salt,
		Metadata: cleanMetadata(metadata),
	}
	if err := p.users.Create(ctx, u); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return nil, fmt.Errorf("email %s is already registered: %w", email, errs.ErrAlreadyExists)
		}
		return nil, err
	}
	p.log.Info("account created", zap.String("user_id", uid.String()))
	id := identityOf(u)
	return &id, nil
}

func cleanMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if v = strings.TrimSpace(v); v != "" {
			out[k] = v
		}
	}
	return out
}

// SignIn authenticates with rate limiting by (email, device) and persists the session.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	email = normalizeEmail(email)
	if err := validate.Struct(validate.Credentials{Email: email, Password: password}); err != nil {
		// Short passwords can't match any stored hash; report them as bad credentials.
		var ve *errs.ValidationError
		if errors.As(err, &ve) && ve.Field == "password" {
			return nil, errs.ErrInvalidCredentials
		}
		return nil, err
	}

	allowed, retry, err := p.lim.Allow(ctx, email, p.device)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: retry in %s", errs.ErrRateLimited, retry.Round(time.Second))
	}

	u, err := p.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}
	if err != nil || !p.hasher.Verify([]byte(password), u.SaltAuth, u.PwdHash) {
		if blocked, d, ferr := p.lim.Failure(ctx, email, p.device); ferr == nil && blocked {
			return nil, fmt.Errorf("%w: retry in %s", errs.ErrRateLimited, d.Round(time.Second))
		}
		return nil, errs.ErrInvalidCredentials
	}
	if err := p.lim.Success(ctx, email, p.device); err != nil {
		p.log.Warn("limiter reset failed", zap.Error(err))
	}

	s, err := p.startSession(ctx, u)
	if err != nil {
		return nil, err
	}
	p.log.Info("signed in", zap.String("user_id", u.ID.String()))
	p.emit(ctx, Event{Type: EventSignedIn, Session: copySession(s)})
	return copySession(s), nil
}

func (p *LocalProvider) startSession(ctx context.Context, u *model.User) (*model.Session, error) {
	jti, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	now := p.now()
	exp := now.Add(p.ttl)
	if err := p.sessions.Create(ctx, &model.AuthSession{ID: jti, UserID: u.ID, ExpiresAt: exp}); err != nil {
		return nil, err
	}
	tok, err := p.issueAccessToken(u.ID, jti, now, exp)
	if err != nil {
		return nil, err
	}
	if err := p.tokens.Save(StoredToken{AccessToken: tok, ExpiresAt: exp}); err != nil {
		p.log.Warn("persist session failed", zap.Error(err))
	}
	s := &model.Session{AccessToken: tok, ExpiresAt: exp, User: identityOf(u)}
	p.mu.Lock()
	p.cur = s
	p.mu.Unlock()
	return s, nil
}

// issueAccessToken creates a signed HS256 JWT for the given subject and session id.
func (p *LocalProvider) issueAccessToken(userID, jti uuid.UUID, now, exp time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        jti.String(),
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.signKey)
}

// parseAccessToken verifies the token and returns (subject, jti).
func (p *LocalProvider) parseAccessToken(tok string) (uuid.UUID, uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(tok, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return p.signKey, nil
	}, jwt.WithTimeFunc(p.now), jwt.WithLeeway(30*time.Second))
	if err != nil || !parsed.Valid {
		return uuid.Nil, uuid.Nil, errors.New("invalid token")
	}
	sub, err := uuid.FromString(claims.Subject)
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.New("bad subject")
	}
	jti, err := uuid.FromString(claims.ID)
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.New("bad token id")
	}
	return sub, jti, nil
}

// SignOut revokes the active session and forgets the stored token.
func (p *LocalProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	cur := p.cur
	p.cur = nil
	p.mu.Unlock()

	tok := ""
	if cur != nil {
		tok = cur.AccessToken
	} else if st, err := p.tokens.Load(); err == nil && st != nil {
		tok = st.AccessToken
	}
	if tok != "" {
		if _, jti, err := p.parseAccessToken(tok); err == nil {
			if err := p.sessions.Revoke(ctx, jti); err != nil && !errors.Is(err, errs.ErrNotFound) {
				return err
			}
		}
	}
	if err := p.tokens.Clear(); err != nil {
		return err
	}
	p.log.Info("signed out")
	p.emit(ctx, Event{Type: EventSignedOut})
	return nil
}

// Session returns the active session, restoring it from the token store if needed.
func (p *LocalProvider) Session(ctx context.Context) (*model.Session, error) {
	p.mu.Lock()
	cur := p.cur
	p.mu.Unlock()

	if cur != nil {
		if p.now().Before(cur.ExpiresAt) {
			return copySession(cur), nil
		}
		p.mu.Lock()
		p.cur = nil
		p.mu.Unlock()
		_ = p.tokens.Clear()
		p.emit(ctx, Event{Type: EventSignedOut})
		return nil, nil
	}
	return p.restore(ctx)
}

func (p *LocalProvider) restore(ctx context.Context) (*model.Session, error) {
	st, err := p.tokens.Load()
	if err != nil {
		p.log.Warn("stored session unreadable", zap.Error(err))
		_ = p.tokens.Clear()
		return nil, nil
	}
	if st == nil {
		return nil, nil
	}
	sub, jti, err := p.parseAccessToken(st.AccessToken)
	if err != nil {
		_ = p.tokens.Clear()
		return nil, nil
	}
	row, err := p.sessions.Get(ctx, jti)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		_ = p.tokens.Clear()
		return nil, nil
	case err != nil:
		return nil, err
	}
	if !row.Active(p.now()) || row.UserID != sub {
		_ = p.tokens.Clear()
		return nil, nil
	}
	u, err := p.users.GetByID(ctx, sub)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		_ = p.tokens.Clear()
		return nil, nil
	case err != nil:
		return nil, err
	}

	s := &model.Session{AccessToken: st.AccessToken, ExpiresAt: row.ExpiresAt, User: identityOf(u)}
	p.mu.Lock()
	p.cur = s
	p.mu.Unlock()
	p.log.Debug("session restored", zap.String("user_id", sub.String()))
	return copySession(s), nil
}

// CurrentUser returns the active session's identity, or nil.
func (p *LocalProvider) CurrentUser(ctx context.Context) (*model.Identity, error) {
	s, err := p.Session(ctx)
	if err != nil || s == nil {
		return nil, err
	}
	return &s.User, nil
}

// Subscribe registers l for auth-state changes.
func (p *LocalProvider) Subscribe(l Listener) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextSub++
	id := p.nextSub
	p.listeners = append(p.listeners, subscription{id: id, fn: l})

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			for i, s := range p.listeners {
				if s.id == id {
					p.listeners = append(p.listeners[:i:i], p.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Listeners reports the number of active subscriptions.
func (p *LocalProvider) Listeners() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners)
}

func (p *LocalProvider) emit(ctx context.Context, ev Event) {
	p.mu.Lock()
	ls := make([]Listener, 0, len(p.listeners))
	for _, s := range p.listeners {
		ls = append(ls, s.fn)
	}
	p.mu.Unlock()

	for _, fn := range ls {
		fn(ctx, ev)
	}
}

func identityOf(u *model.User) model.Identity {
	meta := make(map[string]string, len(u.Metadata))
	for k, v := range u.Metadata {
		meta[k] = v
	}
	return model.Identity{ID: u.ID, Email: u.Email, Metadata: meta, CreatedAt: u.CreatedAt}
}

func copySession(s *model.Session) *model.Session {
	c := *s
	meta := make(map[string]string, len(s.User.Metadata))
	for k, v := range s.User.Metadata {
		meta[k] = v
	}
	c.User.Metadata = meta
	return &c
}
