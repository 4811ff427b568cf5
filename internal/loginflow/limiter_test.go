package loginflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAttemptLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewAttemptLimiter(2, time.Minute)

	l.RecordFailure(now)
	blocked, _ := l.Blocked(now)
	require.False(t, blocked)

	l.RecordFailure(now)
	blocked, wait := l.Blocked(now.Add(10 * time.Second))
	require.True(t, blocked)
	require.Equal(t, 50*time.Second, wait)

	blocked, _ = l.Blocked(now.Add(time.Minute))
	require.False(t, blocked)

	// the counter restarts after a block
	l.RecordFailure(now.Add(time.Minute))
	blocked, _ = l.Blocked(now.Add(time.Minute))
	require.False(t, blocked)
}

func TestAttemptLimiter_ResetClearsBlock(t *testing.T) {
	now := time.Now()
	l := NewAttemptLimiter(1, time.Hour)

	l.RecordFailure(now)
	blocked, _ := l.Blocked(now)
	require.True(t, blocked)

	l.Reset()
	blocked, _ = l.Blocked(now)
	require.False(t, blocked)
}

func TestNewAttemptLimiter_Defaults(t *testing.T) {
	l := NewAttemptLimiter(0, 0)
	require.Equal(t, DefaultMaxFailures, l.maxFailures)
	require.Equal(t, DefaultCooldown, l.cooldown)
}

func TestAttemptLimiter_BlockFor(t *testing.T) {
	now := time.Now()
	l := NewAttemptLimiter(3, time.Minute)

	until := l.BlockFor(now, 10*time.Second)
	require.Equal(t, now.Add(10*time.Second), until)

	// a shorter block never shortens an existing one
	require.Equal(t, until, l.BlockFor(now, time.Second))

	// zero falls back to the cooldown
	require.Equal(t, now.Add(time.Minute), l.BlockFor(now, 0))

	blocked, _ := l.Blocked(now.Add(59 * time.Second))
	require.True(t, blocked)
}

func TestAttemptLimiter_RecordFailureReportsDeadline(t *testing.T) {
	now := time.Now()
	l := NewAttemptLimiter(2, time.Minute)

	require.True(t, l.RecordFailure(now).IsZero())
	require.Equal(t, now.Add(time.Minute), l.RecordFailure(now))
}

