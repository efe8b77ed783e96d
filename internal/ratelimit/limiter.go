package ratelimit

import (
	"context"
	"time"
)

// Policy is the immutable sliding-window configuration for one call site.
// Different routes (escalation, stats, login-shaped flows) carry distinct
// policies; selection is the caller's responsibility.
type Policy struct {
	MaxAttempts int
	Window      time.Duration
	Lockout     time.Duration
}

// LockState reports whether a key is currently locked out and for how long
type LockState struct {
	Locked    bool
	Remaining time.Duration
}

// SlidingWindowLimiter decides whether an attempt against a key is allowed
// under a sliding window with a lockout extension. It is a pure state machine
// over its Store: the same limiter serves process-local and shared backends.
type SlidingWindowLimiter struct {
	store Store
}

// NewSlidingWindowLimiter creates a limiter over the given storage backend
func NewSlidingWindowLimiter(store Store) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{store: store}
}

// CheckLocked reports whether key is locked out at now. A lockout that has
// already expired clears the whole record: expiry is a full pardon, not
// merely "unlocked but still counted".
func (l *SlidingWindowLimiter) CheckLocked(ctx context.Context, key string, now time.Time) (LockState, error) {
	var state LockState
	_, err := l.store.Mutate(ctx, key, func(rec *Record) {
		state = LockState{}
		if rec.LockedUntil.IsZero() {
			return
		}
		if rec.LockedUntil.After(now) {
			state = LockState{Locked: true, Remaining: rec.LockedUntil.Sub(now)}
			return
		}
		// Lockout just expired: full pardon
		*rec = Record{}
	})
	return state, err
}

// RecordAttempt registers an attempt against key and reports whether it is
// allowed. While locked, attempts are rejected without counting further.
// The window is half-open: an attempt landing exactly at start+window begins
// a fresh window. The attempt that reaches MaxAttempts is the one that trips
// the lockout and is itself rejected.
func (l *SlidingWindowLimiter) RecordAttempt(ctx context.Context, key string, policy Policy, now time.Time) (bool, Record, error) {
	var allowed bool
	rec, err := l.store.Mutate(ctx, key, func(rec *Record) {
		if !rec.LockedUntil.IsZero() && rec.LockedUntil.After(now) {
			allowed = false
			return
		}

		if rec.WindowStartedAt.IsZero() || now.Sub(rec.WindowStartedAt) >= policy.Window {
			*rec = Record{AttemptCount: 1, WindowStartedAt: now}
			allowed = true
			return
		}

		rec.AttemptCount++
		if rec.AttemptCount >= policy.MaxAttempts {
			rec.LockedUntil = now.Add(policy.Lockout)
			allowed = false
			return
		}
		allowed = true
	})
	return allowed, rec, err
}

// Reset unconditionally forgives all prior attempts for key. Called after a
// verified successful action, e.g. a successful login.
func (l *SlidingWindowLimiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, key)
}
