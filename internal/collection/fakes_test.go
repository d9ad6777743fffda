package collection

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/gamevault/internal/errs"
	"github.com/and161185/gamevault/internal/model"
	"github.com/and161185/gamevault/internal/store"
)

// fakeGateway is an in-memory owner-scoped record store.
type fakeGateway struct {
	mu      sync.Mutex
	rows    []model.Game // newest-created first
	clock   time.Time
	signed  bool
	failAll error
	calls   map[string]int
}

var _ store.Gateway = (*fakeGateway)(nil)

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		signed: true,
		clock:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		calls:  map[string]int{},
	}
}

func (f *fakeGateway) enter(op string) error {
	f.calls[op]++
	if !f.signed {
		return errs.ErrNotAuthenticated
	}
	return f.failAll
}

func (f *fakeGateway) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeGateway) ListByOwner(context.Context) ([]model.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("list"); err != nil {
		return nil, err
	}
	out := make([]model.Game, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeGateway) Insert(_ context.Context, g model.Game) (*model.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("insert"); err != nil {
		return nil, err
	}
	f.clock = f.clock.Add(time.Second)
	g.ID = uuid.Must(uuid.NewV4())
	g.CreatedAt, g.UpdatedAt = f.clock, f.clock
	f.rows = append([]model.Game{g}, f.rows...)
	return &g, nil
}

func (f *fakeGateway) UpdateByID(_ context.Context, id uuid.UUID, p model.GamePatch) (*model.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("update"); err != nil {
		return nil, err
	}
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.clock = f.clock.Add(time.Second)
			g := p.Apply(f.rows[i])
			g.UpdatedAt = f.clock
			f.rows[i] = g
			return &g, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeGateway) DeleteByID(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("delete"); err != nil {
		return err
	}
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = append(f.rows[:i:i], f.rows[i+1:]...)
			return nil
		}
	}
	return errs.ErrNotFound
}

func (f *fakeGateway) ExistsDuplicate(_ context.Context, title, platform string, wishlist bool, exclude uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("dup"); err != nil {
		return false, err
	}
	for _, g := range f.rows {
		if g.ID != exclude && strings.EqualFold(g.Title, title) && g.Platform == platform && g.IsWishlist == wishlist {
			return true, nil
		}
	}
	return false, nil
}

// deleteBehindBack removes a row without the manager noticing.
func (f *fakeGateway) deleteBehindBack(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = append(f.rows[:i:i], f.rows[i+1:]...)
			return
		}
	}
}
