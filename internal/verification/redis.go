package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "tdls:verify:"

	// Update gives up after this many optimistic lock conflicts in a row
	maxTxRetries = 50
)

var errTooManyConflicts = errors.New("too many concurrent updates")

// RedisStore shares entries between every process pointing at the same
// Redis instance. Expiry is left to Redis.
type RedisStore struct {
	c *redis.Client
}

func NewRedisStore(c *redis.Client) *RedisStore {
	return &RedisStore{c: c}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Entry, error) {
	return get(ctx, s.c, id)
}

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func get(ctx context.Context, c getter, id string) (*Entry, error) {
	raw, err := c.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoEntry
		}

		return nil, fmt.Errorf("failed to read entry from redis, %w", err)
	}

	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("failed to decode entry, %w", err)
	}

	return &e, nil
}

func (s *RedisStore) Put(ctx context.Context, id string, e Entry, ttl time.Duration) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode entry, %w", err)
	}

	if err := s.c.Set(ctx, redisKey(id), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store entry in redis, %w", err)
	}

	return nil
}

// Update watches the key so a concurrent write between the read and the
// write aborts the transaction, which is then retried with fresh data
func (s *RedisStore) Update(ctx context.Context, id string, fn UpdateFunc) error {
	key := redisKey(id)

	txf := func(tx *redis.Tx) error {
		e, err := get(ctx, tx, id)
		if err != nil && !errors.Is(err, ErrNoEntry) {
			return err
		}

		keep, ttl := fn(e)

		var raw []byte
		if keep && e != nil {
			if raw, err = json.Marshal(e); err != nil {
				return fmt.Errorf("failed to encode entry, %w", err)
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if raw != nil {
				pipe.Set(ctx, key, raw, ttl)
			} else {
				pipe.Del(ctx, key)
			}

			return nil
		})

		return err
	}

	for range maxTxRetries {
		err := s.c.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to update entry in redis, %w", err)
		}

		return nil
	}

	return errTooManyConflicts
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.c.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete entry from redis, %w", err)
	}

	return nil
}

func (s *RedisStore) Close() error {
	return s.c.Close()
}
