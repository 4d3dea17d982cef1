// Package ratelimit provides keyed sliding-window request limiting with
// in-memory and Redis backends.
package ratelimit

import (
	"context"
	"time"
)

// Limit is a request budget over a rolling window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Result describes the outcome of one limiter check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetAt is when the oldest counted request slides out of the window.
	ResetAt time.Time
}

// Store counts requests per key over a sliding window.
type Store interface {
	// Allow records one request for key and reports whether it fits the limit.
	Allow(ctx context.Context, key string, limit Limit) (Result, error)
	// Reset clears the counter for a key.
	Reset(ctx context.Context, key string) error
}
