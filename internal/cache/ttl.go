package cache

import (
	"context"
	"sync"
	"time"
)

// Status reports how a value was served
type Status string

const (
	StatusHit   Status = "hit"
	StatusMiss  Status = "miss"
	StatusStale Status = "stale"
)

// TTL is a single-entry read-through cache: one value, one expiry. Only one
// aggregate snapshot exists at a time, so a keyed cache is not needed.
//
// The compute function runs outside the cache lock, so concurrent callers
// racing an expired entry may all recompute. The last writer wins; the cost
// is a handful of redundant recomputations, never a wrong result.
type TTL[T any] struct {
	ttl time.Duration

	mu        sync.Mutex
	value     T
	hasValue  bool
	expiresAt time.Time
}

// NewTTL creates an empty cache whose entries live for ttl
func NewTTL[T any](ttl time.Duration) *TTL[T] {
	return &TTL[T]{ttl: ttl}
}

// GetOrCompute returns the cached value if it has not expired, otherwise
// calls compute and stores the result with a fresh expiry.
//
// When compute fails and a previous value exists past its TTL, that value is
// returned with StatusStale alongside the compute error so the caller can
// degrade to "last known value" and log the failure.
func (c *TTL[T]) GetOrCompute(ctx context.Context, now time.Time, compute func(context.Context) (T, error)) (T, Status, error) {
	c.mu.Lock()
	if c.hasValue && now.Before(c.expiresAt) {
		v := c.value
		c.mu.Unlock()
		return v, StatusHit, nil
	}
	c.mu.Unlock()

	v, err := compute(ctx)
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.hasValue {
			return c.value, StatusStale, err
		}
		var zero T
		return zero, StatusMiss, err
	}

	c.mu.Lock()
	c.value = v
	c.hasValue = true
	c.expiresAt = now.Add(c.ttl)
	c.mu.Unlock()

	return v, StatusMiss, nil
}

// Invalidate drops the cached value
func (c *TTL[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.value = zero
	c.hasValue = false
	c.expiresAt = time.Time{}
}
