package ratelimit

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore is a sliding-window limiter held in process memory. It is not
// distributed; multi-instance deployments use RedisStore.
type InMemoryStore struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	now     func() time.Time
}

// NewInMemoryStore creates an in-memory limiter store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		windows: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (s *InMemoryStore) WithClock(now func() time.Time) *InMemoryStore {
	s.now = now
	return s
}

// Allow records one request for key and reports whether it fits the limit.
func (s *InMemoryStore) Allow(ctx context.Context, key string, limit Limit) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	window := s.prune(key, now.Add(-limit.Window))

	if len(window) >= limit.Requests {
		return Result{
			Allowed:   false,
			Limit:     limit.Requests,
			Remaining: 0,
			ResetAt:   window[0].Add(limit.Window),
		}, nil
	}

	window = append(window, now)
	s.windows[key] = window
	return Result{
		Allowed:   true,
		Limit:     limit.Requests,
		Remaining: limit.Requests - len(window),
		ResetAt:   window[0].Add(limit.Window),
	}, nil
}

// Reset clears the counter for a key.
func (s *InMemoryStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
	return nil
}

// prune drops timestamps at or before cutoff. Caller holds s.mu.
func (s *InMemoryStore) prune(key string, cutoff time.Time) []time.Time {
	window := s.windows[key]
	i := 0
	for ; i < len(window); i++ {
		if window[i].After(cutoff) {
			break
		}
	}
	window = window[i:]
	if len(window) == 0 {
		delete(s.windows, key)
	} else {
		s.windows[key] = window
	}
	return window
}
