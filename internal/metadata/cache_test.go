package metadata

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"
)

type mapCache struct {
	mu   sync.Mutex
	m    map[string][]byte
	ttl  time.Duration
	fail bool
}

var _ Cache = (*mapCache)(nil)

func (c *mapCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return nil, errors.New("down")
	}
	b, ok := c.m[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return b, nil
}

func (c *mapCache) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("down")
	}
	c.m[key] = val
	c.ttl = ttl
	return nil
}

type countingLookup struct {
	mu       sync.Mutex
	searches int
	queries  []string
	details  int
	results  []Result
	detail   *Details
}

func (l *countingLookup) Search(_ context.Context, query string) []Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.searches++
	l.queries = append(l.queries, query)
	return l.results
}

func (l *countingLookup) GetDetails(context.Context, int) *Details {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.details++
	return l.detail
}

func TestCached_Search(t *testing.T) {
	t.Parallel()
	next := &countingLookup{results: []Result{{ID: 1, Title: "Halo", Platforms: []string{"Xbox"}}}}
	cache := &mapCache{m: map[string][]byte{}}
	c := NewCached(next, cache, time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	a := c.Search(ctx, "Halo")
	b := c.Search(ctx, " halo ")
	if next.searches != 1 {
		t.Fatalf("second search must hit the cache, upstream=%d", next.searches)
	}
	if len(a) != 1 || len(b) != 1 || b[0].Title != "Halo" || cache.ttl != time.Minute {
		t.Fatalf("a=%v b=%v ttl=%v", a, b, cache.ttl)
	}
	if len(next.queries) != 1 || next.queries[0] != "halo" {
		t.Fatalf("upstream must see the cache key's query, got %q", next.queries)
	}
	if got := c.Search(ctx, "ab"); len(got) != 0 || next.searches != 1 {
		t.Fatalf("short query must bypass both cache and upstream")
	}
}

func TestCached_EmptyAndNilNotCached(t *testing.T) {
	t.Parallel()
	next := &countingLookup{}
	cache := &mapCache{m: map[string][]byte{}}
	c := NewCached(next, cache, 0, nil)
	ctx := context.Background()

	c.Search(ctx, "nothing")
	c.Search(ctx, "nothing")
	c.GetDetails(ctx, 5)
	c.GetDetails(ctx, 5)
	if next.searches != 2 || next.details != 2 || len(cache.m) != 0 {
		t.Fatalf("failures must not be cached: s=%d d=%d cache=%d", next.searches, next.details, len(cache.m))
	}
}

func TestCached_DetailsAndCacheOutage(t *testing.T) {
	t.Parallel()
	next := &countingLookup{detail: &Details{ID: "9", AvailablePlatforms: []string{"PC"}}}
	cache := &mapCache{m: map[string][]byte{}}
	c := NewCached(next, cache, time.Minute, nil)
	ctx := context.Background()

	if d := c.GetDetails(ctx, 9); d == nil || d.ID != "9" {
		t.Fatalf("details=%v", d)
	}
	if d := c.GetDetails(ctx, 9); d == nil || d.AvailablePlatforms[0] != "PC" || next.details != 1 {
		t.Fatalf("cached details=%v upstream=%d", d, next.details)
	}

	cache.fail = true
	if d := c.GetDetails(ctx, 9); d == nil || next.details != 2 {
		t.Fatalf("cache outage must fall through to upstream")
	}
}

func TestRedisCache_UnreachableIsError(t *testing.T) {
	t.Parallel()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	rc := NewRedisCache(client, "gamevault:")
	if _, err := rc.Get(context.Background(), "k"); err == nil || errors.Is(err, ErrCacheMiss) {
		t.Fatalf("want connection error, got %v", err)
	}

	c := NewCached(&countingLookup{results: []Result{{ID: 1}}}, rc, time.Minute, nil)
	if got := c.Search(context.Background(), "halo"); len(got) != 1 {
		t.Fatalf("unreachable redis must not break search: %v", got)
	}
}
