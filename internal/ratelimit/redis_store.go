package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"support-be/pkg/redis"
)

// Replica count is small, so a handful of optimistic retries is enough to
// ride out contention on a hot key.
const redisMutateRetries = 5

// RedisStore keeps limiter records in Redis so several replicas can share
// window and lockout state. Atomicity per key comes from an optimistic
// WATCH/MULTI transaction: the state machine itself stays in Go.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store backed by the given redis client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Mutate applies fn to the record under an optimistic transaction, retrying
// when a concurrent writer invalidates the watched key.
func (s *RedisStore) Mutate(ctx context.Context, key string, fn func(*Record)) (Record, error) {
	fullKey := s.client.KeyBuilder.KeyRateLimitRecord(key)

	var out Record
	txn := func(tx *goredis.Tx) error {
		var rec Record
		raw, err := tx.Get(ctx, fullKey).Result()
		if err != nil && err != goredis.Nil {
			return err
		}
		if err == nil {
			if unmarshalErr := json.Unmarshal([]byte(raw), &rec); unmarshalErr != nil {
				// Corrupt record: treat as absent rather than wedging the key
				rec = Record{}
			}
		}

		fn(&rec)
		out = rec

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			if rec.IsZero() {
				pipe.Del(ctx, fullKey)
				return nil
			}
			buf, marshalErr := json.Marshal(rec)
			if marshalErr != nil {
				return marshalErr
			}
			pipe.Set(ctx, fullKey, buf, redis.TTLRateLimitRecord)
			return nil
		})
		return err
	}

	for i := 0; i < redisMutateRetries; i++ {
		err := s.client.Watch(ctx, txn, fullKey)
		if err == nil {
			return out, nil
		}
		if err == goredis.TxFailedErr {
			continue
		}
		return Record{}, fmt.Errorf("redis limiter mutate: %w", err)
	}
	return Record{}, fmt.Errorf("redis limiter mutate: %w", goredis.TxFailedErr)
}

// Reset unconditionally clears the record for key
func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.client.Delete(ctx, s.client.KeyBuilder.KeyRateLimitRecord(key))
}
