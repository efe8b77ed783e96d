package ratelimit

import (
	"context"
	"time"

	"support-be/internal/domain"
)

// Gate wraps a shared SlidingWindowLimiter with key derivation for one route
// and produces the uniform admission decision consumed by the HTTP layer.
// It is the only surface other components may use for admission control;
// limiter state is never read or written directly.
type Gate struct {
	route   string
	policy  Policy
	limiter *SlidingWindowLimiter
}

// NewGate creates a gate for route over the shared limiter
func NewGate(route string, policy Policy, limiter *SlidingWindowLimiter) *Gate {
	return &Gate{route: route, policy: policy, limiter: limiter}
}

// Route returns the route name this gate guards
func (g *Gate) Route() string {
	return g.route
}

// Check admits or rejects one attempt from clientAddr. A caller that is
// already locked out is reported but not double-counted.
func (g *Gate) Check(ctx context.Context, clientAddr string, now time.Time) (domain.RateDecision, error) {
	key := g.route + ":" + clientAddr

	lock, err := g.limiter.CheckLocked(ctx, key, now)
	if err != nil {
		return domain.RateDecision{}, err
	}
	if lock.Locked {
		return domain.RateDecision{
			Allowed:   false,
			Remaining: 0,
			ResetInMs: lock.Remaining.Milliseconds(),
		}, nil
	}

	allowed, rec, err := g.limiter.RecordAttempt(ctx, key, g.policy, now)
	if err != nil {
		return domain.RateDecision{}, err
	}

	remaining := g.policy.MaxAttempts - rec.AttemptCount
	if remaining < 0 {
		remaining = 0
	}

	var resetIn time.Duration
	if !rec.LockedUntil.IsZero() && rec.LockedUntil.After(now) {
		resetIn = rec.LockedUntil.Sub(now)
	} else if !rec.WindowStartedAt.IsZero() {
		resetIn = rec.WindowStartedAt.Add(g.policy.Window).Sub(now)
	}
	if resetIn < 0 {
		resetIn = 0
	}

	return domain.RateDecision{
		Allowed:   allowed,
		Remaining: remaining,
		ResetInMs: resetIn.Milliseconds(),
	}, nil
}

// Forgive clears limiter state for clientAddr after a verified success
func (g *Gate) Forgive(ctx context.Context, clientAddr string) error {
	return g.limiter.Reset(ctx, g.route+":"+clientAddr)
}
