package port

import (
	"context"
	"time"
)

// RateLimitDecision is the outcome of one sliding-window check.
type RateLimitDecision struct {
	Allowed bool
	// Count is the number of attempts inside the window, including this one when allowed.
	Count int
	// Oldest is the earliest attempt still inside the window; zero when the window is empty.
	Oldest time.Time
}

// RateLimitStore persists attempts for sliding-window rate limiting.
type RateLimitStore interface {
	// Allow drops attempts older than window, and records an attempt at now only if fewer
	// than limit remain. The check and the record are atomic per identifier.
	Allow(ctx context.Context, identifier string, limit int, window time.Duration, now time.Time) (RateLimitDecision, error)
}
