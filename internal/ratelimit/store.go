package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Record is the mutable per-key limiter state. Zero values mean "absent":
// a record with no window start and no lock is indistinguishable from a
// record that never existed.
type Record struct {
	AttemptCount    int       `json:"attempt_count"`
	WindowStartedAt time.Time `json:"window_started_at"`
	LockedUntil     time.Time `json:"locked_until"`
}

// IsZero reports whether the record carries no state
func (r Record) IsZero() bool {
	return r.AttemptCount == 0 && r.WindowStartedAt.IsZero() && r.LockedUntil.IsZero()
}

// Store persists limiter records. Mutate must apply fn to the record for key
// as a single atomic step with respect to other mutations of the same key, so
// two concurrent attempts can never both observe "below threshold" when only
// one should trip the lockout. fn may run more than once if the backend
// retries optimistically, so it must be side-effect free apart from the
// record itself.
type Store interface {
	Mutate(ctx context.Context, key string, fn func(*Record)) (Record, error)
	Reset(ctx context.Context, key string) error
}

// MemoryStore keeps limiter records in a process-local map. This is the
// server-side authoritative backend; records live for the lifetime of the
// process and are dropped as soon as they decay back to the zero state.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-process store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Mutate applies fn under the store lock. Records created lazily on first
// attempt; records that end up empty are evicted for memory hygiene.
func (s *MemoryStore) Mutate(_ context.Context, key string, fn func(*Record)) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.records[key]
	fn(&rec)

	if rec.IsZero() {
		delete(s.records, key)
	} else {
		s.records[key] = rec
	}
	return rec, nil
}

// Reset unconditionally clears the record for key
func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// Len returns the number of live records, for observability
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
