package metadata

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// LiveSearch debounces keystrokes into searches and drops results for
// queries that are no longer the latest one. In-flight requests are never cancelled.
type LiveSearch struct {
	lookup   Lookup
	delay    time.Duration
	onResult func(query string, results []Result)

	mu       sync.Mutex
	timer    *time.Timer
	latest   string
	inFlight int
	stopped  bool
}

// NewLiveSearch calls onResult with the results of the latest query only.
func NewLiveSearch(l Lookup, delay time.Duration, onResult func(query string, results []Result)) *LiveSearch {
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	return &LiveSearch{lookup: l, delay: delay, onResult: onResult}
}

// Input records the current query text and (re)starts the debounce timer.
// Queries below MinQueryLen resolve immediately to no results.
func (s *LiveSearch) Input(ctx context.Context, query string) {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.latest = query
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if utf8.RuneCountInString(query) < MinQueryLen {
		s.mu.Unlock()
		s.onResult(query, []Result{})
		return
	}
	s.timer = time.AfterFunc(s.delay, func() { s.run(ctx, query) })
	s.mu.Unlock()
}

func (s *LiveSearch) run(ctx context.Context, query string) {
	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()

	res := s.lookup.Search(ctx, query)

	s.mu.Lock()
	s.inFlight--
	current := !s.stopped && query == s.latest
	s.mu.Unlock()
	if current {
		s.onResult(query, res)
	}
}

// Searching reports whether a request is in flight.
func (s *LiveSearch) Searching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight > 0
}

// Stop cancels a pending debounce and suppresses further results.
func (s *LiveSearch) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
}
