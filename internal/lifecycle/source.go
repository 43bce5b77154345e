package lifecycle

import (
	"context"
	"sync"
	"time"
)

// source owns the last known value of one backend observation. Refresh
// triggers from any origin (poll tick, change-feed nudge, explicit force,
// dispatcher invalidation) funnel through the same value; whichever fetch
// completes last wins, which is fine because every fetch asks the backend
// for current truth.
type source[T any] struct {
	fetch     func(ctx context.Context) (*T, error)
	staleness time.Duration

	mu        sync.Mutex
	value     *T
	fetchedAt time.Time
	fetched   bool
}

func newSource[T any](staleness time.Duration, fetch func(ctx context.Context) (*T, error)) *source[T] {
	return &source[T]{fetch: fetch, staleness: staleness}
}

// refresh re-fetches the observation unless a fresh cached value can be
// reused. A fetch error keeps the previous value; the next cycle retries.
func (s *source[T]) refresh(ctx context.Context, force bool) (*T, error) {
	s.mu.Lock()
	if !force && s.fetched && time.Since(s.fetchedAt) < s.staleness {
		value := s.value
		s.mu.Unlock()
		return value, nil
	}
	s.mu.Unlock()

	value, err := s.fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return s.value, err
	}
	s.value = value
	s.fetchedAt = time.Now()
	s.fetched = true
	return value, nil
}

// get returns the cached value without touching the backend.
func (s *source[T]) get() *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// seed replaces the cached value with one obtained out of band, typically
// from a mutation response.
func (s *source[T]) seed(value *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
	s.fetchedAt = time.Now()
	s.fetched = true
}

// invalidate expires the validity window so the next refresh hits the
// backend.
func (s *source[T]) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchedAt = time.Time{}
}
