package loginflow

import (
	"sync"
	"time"
)

const (
	DefaultMaxFailures = 3
	DefaultCooldown    = 5 * time.Minute
)

// AttemptLimiter counts consecutive failed submissions. It is a UX hint; the
// server enforces its own throttle.
type AttemptLimiter struct {
	mu           sync.Mutex
	maxFailures  int
	cooldown     time.Duration
	failures     int
	blockedUntil time.Time
}

func NewAttemptLimiter(maxFailures int, cooldown time.Duration) *AttemptLimiter {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &AttemptLimiter{maxFailures: maxFailures, cooldown: cooldown}
}

// Blocked reports whether submissions are paused and for how long.
func (l *AttemptLimiter) Blocked(now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Before(l.blockedUntil) {
		return true, l.blockedUntil.Sub(now)
	}
	return false, 0
}

// RecordFailure counts one rejected attempt and returns the block deadline
// when this failure trips the cooldown, or the zero time otherwise.
func (l *AttemptLimiter) RecordFailure(now time.Time) time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.failures++
	if l.failures < l.maxFailures {
		return time.Time{}
	}
	l.failures = 0
	l.blockedUntil = now.Add(l.cooldown)
	return l.blockedUntil
}

// BlockFor pauses submissions for d, e.g. after a server-side 429. A zero
// or negative d falls back to the cooldown. An existing later deadline wins.
func (l *AttemptLimiter) BlockFor(now time.Time, d time.Duration) time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	if d <= 0 {
		d = l.cooldown
	}
	if until := now.Add(d); until.After(l.blockedUntil) {
		l.blockedUntil = until
	}
	return l.blockedUntil
}

func (l *AttemptLimiter) Reset() {
	l.mu.Lock()
	l.failures = 0
	l.blockedUntil = time.Time{}
	l.mu.Unlock()
}
