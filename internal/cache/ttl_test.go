package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCompute_CachesWithinTTL(t *testing.T) {
	c := NewTTL[int](30 * time.Second)
	ctx := context.Background()
	now := time.Now()

	calls := 0
	compute := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}

	v, status, err := c.GetOrCompute(ctx, now, compute)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, StatusMiss, status)

	v, status, err = c.GetOrCompute(ctx, now.Add(29*time.Second), compute)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, StatusHit, status)
	assert.Equal(t, 1, calls, "compute must run at most once within the TTL")
}

func TestGetOrCompute_RecomputesAfterExpiry(t *testing.T) {
	c := NewTTL[int](30 * time.Second)
	ctx := context.Background()
	now := time.Now()

	calls := 0
	compute := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	v, _, err := c.GetOrCompute(ctx, now, compute)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, status, err := c.GetOrCompute(ctx, now.Add(30*time.Second), compute)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, StatusMiss, status)
	assert.Equal(t, 2, calls)
}

func TestGetOrCompute_FailureWithoutPriorValue(t *testing.T) {
	c := NewTTL[int](time.Second)
	ctx := context.Background()

	boom := errors.New("store down")
	_, status, err := c.GetOrCompute(ctx, time.Now(), func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StatusMiss, status)
}

func TestGetOrCompute_ServesStaleOnFailedRecompute(t *testing.T) {
	c := NewTTL[int](time.Second)
	ctx := context.Background()
	now := time.Now()

	_, _, err := c.GetOrCompute(ctx, now, func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)

	boom := errors.New("store down")
	v, status, err := c.GetOrCompute(ctx, now.Add(2*time.Second), func(context.Context) (int, error) {
		return 0, boom
	})
	assert.Equal(t, 7, v, "last known value survives a failed recompute")
	assert.Equal(t, StatusStale, status)
	assert.ErrorIs(t, err, boom)
}

func TestInvalidate(t *testing.T) {
	c := NewTTL[string](time.Minute)
	ctx := context.Background()
	now := time.Now()

	_, _, err := c.GetOrCompute(ctx, now, func(context.Context) (string, error) {
		return "a", nil
	})
	require.NoError(t, err)

	c.Invalidate()

	v, status, err := c.GetOrCompute(ctx, now, func(context.Context) (string, error) {
		return "b", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "b", v)
	assert.Equal(t, StatusMiss, status)
}
