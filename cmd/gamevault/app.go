package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/and161185/gamevault/internal/auth"
	"github.com/and161185/gamevault/internal/collection"
	"github.com/and161185/gamevault/internal/config"
	"github.com/and161185/gamevault/internal/errs"
	"github.com/and161185/gamevault/internal/limiter"
	"github.com/and161185/gamevault/internal/metadata"
	"github.com/and161185/gamevault/internal/model"
	"github.com/and161185/gamevault/internal/notice"
	"github.com/and161185/gamevault/internal/repository/postgres"
	"github.com/and161185/gamevault/internal/session"
	"github.com/and161185/gamevault/internal/store"
)

// errReported marks an error whose notice has already been printed.
var errReported = errors.New("reported")

// app holds the wired managers for one process.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	out      io.Writer
	db       *postgres.DB
	sessions *session.Manager
	games    *collection.Manager
	lookup   metadata.Lookup
	password func(prompt string) (string, error)

	unsub       func()
	closeLookup func()
	loadErr     error
}

// newApp connects to the record store and wires the managers.
func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger, out io.Writer) (*app, error) {
	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	tokens, err := auth.NewFileTokenStore(cfg.StateDir, []byte(cfg.JWTSecret))
	if err != nil {
		db.Close()
		return nil, err
	}
	device, _ := os.Hostname()
	provider, err := auth.NewLocalProvider(postgres.NewUserRepo(db), postgres.NewSessionRepo(db), auth.Options{
		SignKey:    []byte(cfg.JWTSecret),
		SessionTTL: cfg.SessionTTL,
		Device:     device,
		Limiter:    limiter.NewPG(db.Pool, cfg.SignInWindow, cfg.SignInMaxFails, cfg.SignInBlock),
		Tokens:     tokens,
		Logger:     log.Named("auth"),
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	lookup, closeLookup := newLookup(cfg, log)
	profiles := store.NewProfiles(postgres.NewProfileRepo(db))
	gw := store.New(provider, postgres.NewGameRepo(db), log.Named("store"))

	a := wire(cfg, log, out, session.New(provider, profiles, log.Named("session")), collection.New(gw, log.Named("collection")), lookup)
	a.db = db
	a.closeLookup = closeLookup
	return a, nil
}

// wire connects session events to the collection.
func wire(cfg *config.Config, log *zap.Logger, out io.Writer, s *session.Manager, g *collection.Manager, l metadata.Lookup) *app {
	a := &app{cfg: cfg, log: log, out: out, sessions: s, games: g, lookup: l, password: promptPassword}
	a.unsub = s.Subscribe(a.onUser)
	return a
}

// newLookup builds the catalogue client, cached in Redis when configured.
func newLookup(cfg *config.Config, log *zap.Logger) (metadata.Lookup, func()) {
	client := metadata.NewClient(metadata.ClientConfig{
		BaseURL:  cfg.RAWGBaseURL,
		APIKey:   cfg.RAWGAPIKey,
		Timeout:  cfg.RAWGTimeout,
		RetryFor: cfg.RAWGRetryFor,
	}, log.Named("metadata"))
	if cfg.RedisAddr == "" {
		return client, func() {}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	cached := metadata.NewCached(client, metadata.NewRedisCache(rdb, "gamevault:rawg:"), cfg.CacheTTL, log.Named("metadata"))
	return cached, func() { _ = rdb.Close() }
}

// Close releases subscriptions and connections.
func (a *app) Close() {
	if a.unsub != nil {
		a.unsub()
	}
	if a.sessions != nil {
		a.sessions.Close()
	}
	if a.closeLookup != nil {
		a.closeLookup()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// onUser keeps the collection in step with the signed-in user.
func (a *app) onUser(ctx context.Context, u *model.SessionUser) {
	if u == nil {
		a.games.Reset()
		a.loadErr = nil
		return
	}
	a.loadErr = a.games.Load(ctx)
	if a.loadErr != nil {
		a.report(notice.OpLoad, a.loadErr)
	}
}

// ensureUser restores the session and makes sure the collection is loaded.
func (a *app) ensureUser(ctx context.Context) error {
	if !a.sessions.Ready() {
		a.sessions.Initialize(ctx)
		if a.loadErr != nil {
			return errReported
		}
	}
	if a.sessions.Current() == nil {
		return errs.ErrNotAuthenticated
	}
	if a.games.Loaded() {
		return nil
	}
	if a.loadErr = a.games.Load(ctx); a.loadErr != nil {
		a.report(notice.OpLoad, a.loadErr)
		return errReported
	}
	return nil
}

// command is one subcommand.
type command struct {
	op        notice.Op
	needsUser bool
	run       func(a *app, ctx context.Context, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"signup":  {op: notice.OpSignUp, run: (*app).cmdSignUp},
		"signin":  {op: notice.OpSignIn, run: (*app).cmdSignIn},
		"signout": {op: notice.OpSignOut, run: (*app).cmdSignOut},
		"whoami":  {run: (*app).cmdWhoAmI},
		"profile": {op: notice.OpProfile, needsUser: true, run: (*app).cmdProfile},
		"list":    {op: notice.OpLoad, needsUser: true, run: (*app).cmdList},
		"summary": {op: notice.OpLoad, needsUser: true, run: (*app).cmdSummary},
		"add":     {op: notice.OpAdd, needsUser: true, run: (*app).cmdAdd},
		"edit":    {op: notice.OpUpdate, needsUser: true, run: (*app).cmdEdit},
		"fav":     {op: notice.OpFavorite, needsUser: true, run: (*app).cmdFav},
		"move":    {op: notice.OpMove, needsUser: true, run: (*app).cmdMove},
		"rm":      {op: notice.OpDelete, needsUser: true, run: (*app).cmdRemove},
		"search":  {run: (*app).cmdSearch},
		"details": {run: (*app).cmdDetails},
	}
}

// dispatch runs one command and prints its failure as a notice.
func (a *app) dispatch(ctx context.Context, name string, args []string) error {
	c, ok := commands[name]
	if !ok {
		fmt.Fprintf(a.out, "unknown command %q\n", name)
		return errUsage
	}
	if c.needsUser {
		if err := a.ensureUser(ctx); err != nil {
			if !errors.Is(err, errReported) {
				a.report(c.op, err)
			}
			return errReported
		}
	}
	run := func(ctx context.Context, args []string) error { return c.run(a, ctx, args) }
	err := recovering(a.log, name, logging(a.log, name, run))(ctx, args)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errUsage), errors.Is(err, errReported):
		return err
	}
	a.report(c.op, err)
	return errReported
}

func (a *app) report(op notice.Op, err error) {
	printNotice(a.out, notice.For(op, err))
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		return string(b), err
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
