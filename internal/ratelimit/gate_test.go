package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_CheckReportsRemaining(t *testing.T) {
	limiter := NewSlidingWindowLimiter(NewMemoryStore())
	gate := NewGate("escalate", testPolicy, limiter)
	ctx := context.Background()
	now := time.Now()

	for i := 1; i <= testPolicy.MaxAttempts-1; i++ {
		decision, err := gate.Check(ctx, "10.0.0.1", now)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, testPolicy.MaxAttempts-i, decision.Remaining)
		assert.LessOrEqual(t, decision.ResetInMs, testPolicy.Window.Milliseconds())
	}
}

func TestGate_LockoutSurfacesResetHint(t *testing.T) {
	limiter := NewSlidingWindowLimiter(NewMemoryStore())
	gate := NewGate("escalate", testPolicy, limiter)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < testPolicy.MaxAttempts; i++ {
		gate.Check(ctx, "10.0.0.1", now)
	}

	decision, err := gate.Check(ctx, "10.0.0.1", now.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
	// Lockout started at now, checked one second later
	assert.InDelta(t, (testPolicy.Lockout - time.Second).Milliseconds(), decision.ResetInMs, 1500)
}

func TestGate_LockedCheckDoesNotDoubleCount(t *testing.T) {
	store := NewMemoryStore()
	limiter := NewSlidingWindowLimiter(store)
	gate := NewGate("escalate", testPolicy, limiter)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < testPolicy.MaxAttempts; i++ {
		gate.Check(ctx, "10.0.0.1", now)
	}

	first, err := store.Mutate(ctx, "escalate:10.0.0.1", func(*Record) {})
	require.NoError(t, err)

	gate.Check(ctx, "10.0.0.1", now.Add(time.Second))
	gate.Check(ctx, "10.0.0.1", now.Add(2*time.Second))

	second, err := store.Mutate(ctx, "escalate:10.0.0.1", func(*Record) {})
	require.NoError(t, err)
	assert.Equal(t, first.AttemptCount, second.AttemptCount)
	assert.Equal(t, first.LockedUntil, second.LockedUntil)
}

func TestGate_RoutesShareLimiterButNotKeys(t *testing.T) {
	limiter := NewSlidingWindowLimiter(NewMemoryStore())
	escalateGate := NewGate("escalate", testPolicy, limiter)
	statsGate := NewGate("stats", testPolicy, limiter)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < testPolicy.MaxAttempts; i++ {
		escalateGate.Check(ctx, "10.0.0.1", now)
	}

	decision, err := statsGate.Check(ctx, "10.0.0.1", now)
	require.NoError(t, err)
	assert.True(t, decision.Allowed, "lockout on one route must not leak onto another")
}

func TestGate_ForgiveClearsState(t *testing.T) {
	limiter := NewSlidingWindowLimiter(NewMemoryStore())
	gate := NewGate("login", testPolicy, limiter)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < testPolicy.MaxAttempts; i++ {
		gate.Check(ctx, "10.0.0.1", now)
	}

	require.NoError(t, gate.Forgive(ctx, "10.0.0.1"))

	decision, err := gate.Check(ctx, "10.0.0.1", now.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, testPolicy.MaxAttempts-1, decision.Remaining)
}
