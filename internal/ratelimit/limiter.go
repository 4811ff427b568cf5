// Package ratelimit throttles login attempts per key over a fixed window.
package ratelimit

import (
	"context"
	"time"
)

type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts hits against a key. Hit records one attempt and reports
// whether it fits in the current window; Reset forgets the key.
type Limiter interface {
	Hit(ctx context.Context, key string) (Decision, error)
	Reset(ctx context.Context, key string) error
}
