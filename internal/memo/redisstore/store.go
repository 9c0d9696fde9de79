// Package redisstore backs the memo layer with Redis, so several
// replicas of the service share one memo and one invalidation surface.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mateonav/geolayers/internal/memo"
)

type Option func(*redis.Options)

func WithPoolSize(n int) Option {
	return func(o *redis.Options) { o.PoolSize = n }
}

func WithDialTimeout(d time.Duration) Option {
	return func(o *redis.Options) { o.DialTimeout = d }
}

func WithReadTimeout(d time.Duration) Option {
	return func(o *redis.Options) { o.ReadTimeout = d }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(o *redis.Options) { o.WriteTimeout = d }
}

// Store implements memo.Store on a Redis client. Memo bodies live under
// their compose key; each dataset keeps a SET of the keys it fed, which
// invalidation walks and deletes.
type Store struct {
	rdb *redis.Client
}

var _ memo.Store = (*Store)(nil)

func New(ctx context.Context, addr string, opts ...Option) (*Store, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}

	ro := &redis.Options{
		Addr:         addr,
		PoolSize:     32,
		MinIdleConns: 2,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	}
	for _, f := range opts {
		f(ro)
	}

	rdb := redis.NewClient(ro)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Store{rdb: rdb}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis GET %q: %w", key, err)
	}
	return val, true, nil
}

func (s *Store) Set(ctx context.Context, key string, val []byte, ttl time.Duration, datasets []string) error {
	if err := s.rdb.Set(ctx, key, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET %q: %w", key, err)
	}
	for _, ds := range datasets {
		idx := memo.DatasetIndexKey(ds)
		if err := s.rdb.SAdd(ctx, idx, key).Err(); err != nil {
			return fmt.Errorf("redis SADD %q: %w", idx, err)
		}
		// Let the index outlive the bodies a little so a late
		// invalidation still finds expired keys to clean up.
		if ttl > 0 {
			_ = s.rdb.Expire(ctx, idx, ttl+time.Minute).Err()
		}
	}
	return nil
}

func (s *Store) InvalidateDataset(ctx context.Context, dataset string) (int, error) {
	idx := memo.DatasetIndexKey(dataset)
	keys, err := s.rdb.SMembers(ctx, idx).Result()
	if err != nil {
		return 0, fmt.Errorf("redis SMEMBERS %q: %w", idx, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := s.rdb.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis DEL %d keys: %w", len(keys), err)
	}
	if err := s.rdb.Del(ctx, idx).Err(); err != nil {
		return int(n), fmt.Errorf("redis DEL %q: %w", idx, err)
	}
	return int(n), nil
}

// Ping reports backend liveness for the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if err := s.rdb.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}
