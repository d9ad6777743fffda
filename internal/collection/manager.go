// Package collection holds the signed-in user's games in memory and keeps them
// in step with the record store. Memory only changes after the store confirms a write.
package collection

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/gamevault/internal/errs"
	"github.com/and161185/gamevault/internal/model"
	"github.com/and161185/gamevault/internal/store"
	"github.com/and161185/gamevault/internal/validate"
)

// Manager owns the in-memory collection.
type Manager struct {
	gw  store.Gateway
	log *zap.Logger
	now func() time.Time

	mu      sync.RWMutex
	games   []model.Game // newest-created first
	loaded  bool
	loading int
}

// New constructs a manager over the owner-scoped gateway.
func New(gw store.Gateway, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{gw: gw, log: log, now: time.Now}
}

// Load replaces the state with the owner's games. On failure the previous
// state is kept.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	m.loading++
	m.mu.Unlock()

	games, err := m.gw.ListByOwner(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading--
	if err != nil {
		m.log.Warn("load games failed", zap.Error(err))
		return err
	}
	m.games = games
	m.loaded = true
	m.log.Debug("games loaded", zap.Int("count", len(games)))
	return nil
}

// Loading reports whether a Load is in flight.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading > 0
}

// Loaded reports whether a Load has succeeded since the last Reset.
func (m *Manager) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

// Reset drops all state, e.g. on sign-out.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games = nil
	m.loaded = false
}

// Add stores a new game in the collection or the wishlist.
func (m *Manager) Add(ctx context.Context, d model.GameDraft, toWishlist bool) (*model.Game, error) {
	d.Title = strings.TrimSpace(d.Title)
	if err := validate.Struct(d); err != nil {
		return nil, err
	}

	dup, err := m.gw.ExistsDuplicate(ctx, d.Title, d.Platform, toWishlist, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, &errs.DuplicateGameError{Title: d.Title, Platform: d.Platform, Wishlist: toWishlist}
	}

	saved, err := m.gw.Insert(ctx, m.fromDraft(d, toWishlist))
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.games = append([]model.Game{*saved}, m.games...)
	m.mu.Unlock()
	m.log.Info("game added",
		zap.String("id", saved.ID.String()),
		zap.Bool("wishlist", saved.IsWishlist))
	out := *saved
	return &out, nil
}

// fromDraft applies the insert defaults.
func (m *Manager) fromDraft(d model.GameDraft, toWishlist bool) model.Game {
	g := model.Game{
		Title:         d.Title,
		Platform:      d.Platform,
		CoverURL:      strings.TrimSpace(d.CoverURL),
		ReleaseYear:   d.ReleaseYear,
		ReleaseDate:   d.ReleaseDate,
		Publisher:     strings.TrimSpace(d.Publisher),
		Notes:         d.Notes,
		Condition:     d.Condition,
		PurchasePrice: d.PurchasePrice,
		CurrentValue:  d.CurrentValue,
		IsFavorite:    d.IsFavorite && !toWishlist,
		IsWishlist:    toWishlist,
	}
	if g.Condition == "" {
		g.Condition = model.ConditionCIB
		if toWishlist {
			g.Condition = model.ConditionOpened
		}
	}
	if g.ReleaseYear == 0 {
		g.ReleaseYear = m.now().Year()
	}
	if g.CoverURL == "" {
		g.CoverURL = model.PlaceholderCover
	}
	return g
}

// Update patches a loaded game. A patch touching title, platform or wishlist
// membership is checked for duplicates against the resulting tuple first.
func (m *Manager) Update(ctx context.Context, id uuid.UUID, patch model.GamePatch) (*model.Game, error) {
	cur, ok := m.Get(id)
	if !ok {
		return nil, errs.ErrNotFound
	}
	if patch.IsEmpty() {
		return cur, nil
	}
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		patch.Title = &t
	}

	next := patch.Apply(*cur)
	if err := validate.Struct(draftOf(next)); err != nil {
		return nil, err
	}
	if patch.TouchesIdentity() {
		if err := m.checkDuplicate(ctx, next); err != nil {
			return nil, err
		}
	}
	return m.write(ctx, id, patch)
}

// ToggleFavorite flips the favorite flag. Wishlist items are written too; the
// flag has no effect on how they are displayed.
func (m *Manager) ToggleFavorite(ctx context.Context, id uuid.UUID) (*model.Game, error) {
	cur, ok := m.Get(id)
	if !ok {
		return nil, errs.ErrNotFound
	}
	fav := !cur.IsFavorite
	return m.write(ctx, id, model.GamePatch{IsFavorite: &fav})
}

// MoveToCollection moves a wishlist item into the collection.
func (m *Manager) MoveToCollection(ctx context.Context, id uuid.UUID) (*model.Game, error) {
	cur, ok := m.Get(id)
	if !ok {
		return nil, errs.ErrNotFound
	}
	if !cur.IsWishlist {
		return nil, errs.Validation("is_wishlist", "game is already in the collection")
	}
	next := *cur
	next.IsWishlist = false
	if err := m.checkDuplicate(ctx, next); err != nil {
		return nil, err
	}
	owned := false
	return m.write(ctx, id, model.GamePatch{IsWishlist: &owned})
}

// Remove deletes a game and drops it from memory.
func (m *Manager) Remove(ctx context.Context, id uuid.UUID) error {
	if err := m.gw.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			m.drop(id)
		}
		return err
	}
	m.drop(id)
	m.log.Info("game removed", zap.String("id", id.String()))
	return nil
}

func (m *Manager) checkDuplicate(ctx context.Context, g model.Game) error {
	dup, err := m.gw.ExistsDuplicate(ctx, g.Title, g.Platform, g.IsWishlist, g.ID)
	if err != nil {
		return err
	}
	if dup {
		return &errs.DuplicateGameError{Title: g.Title, Platform: g.Platform, Wishlist: g.IsWishlist}
	}
	return nil
}

// write sends the patch and merges the stored row. A row the store no longer
// has is dropped from memory as well.
func (m *Manager) write(ctx context.Context, id uuid.UUID, patch model.GamePatch) (*model.Game, error) {
	saved, err := m.gw.UpdateByID(ctx, id, patch)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			m.drop(id)
		}
		return nil, err
	}

	m.mu.Lock()
	for i := range m.games {
		if m.games[i].ID == id {
			m.games[i] = *saved
			break
		}
	}
	m.mu.Unlock()
	out := *saved
	return &out, nil
}

func (m *Manager) drop(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.games {
		if m.games[i].ID == id {
			m.games = append(m.games[:i:i], m.games[i+1:]...)
			return
		}
	}
}

// Get returns a copy of the loaded game with id.
func (m *Manager) Get(id uuid.UUID) (*model.Game, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, g := range m.games {
		if g.ID == id {
			return &g, true
		}
	}
	return nil, false
}

// Games returns a snapshot of the state, newest-created first.
func (m *Manager) Games() []model.Game {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Game, len(m.games))
	copy(out, m.games)
	return out
}

// View derives a filtered, ordered view of the current state.
func (m *Manager) View(f Filter) []model.Game {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return View(m.games, f)
}

// Summary holds per-tab counts and the value of the owned collection.
type Summary struct {
	Collection    int
	Favorites     int
	Wishlist      int
	PurchaseTotal model.Money
	ValueTotal    model.Money
}

// Summary computes tab counts and collection totals.
func (m *Manager) Summary() Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var s Summary
	for _, g := range m.games {
		if g.IsWishlist {
			s.Wishlist++
			continue
		}
		s.Collection++
		if g.IsFavorite {
			s.Favorites++
		}
		s.PurchaseTotal += g.PurchasePrice
		s.ValueTotal += g.CurrentValue
	}
	return s
}

func draftOf(g model.Game) model.GameDraft {
	return model.GameDraft{
		Title:         g.Title,
		Platform:      g.Platform,
		CoverURL:      g.CoverURL,
		ReleaseYear:   g.ReleaseYear,
		ReleaseDate:   g.ReleaseDate,
		Publisher:     g.Publisher,
		Notes:         g.Notes,
		Condition:     g.Condition,
		PurchasePrice: g.PurchasePrice,
		CurrentValue:  g.CurrentValue,
		IsFavorite:    g.IsFavorite,
	}
}
