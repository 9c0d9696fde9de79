package memo

import (
	"context"
	"time"

	"github.com/mateonav/geolayers/internal/core/observability"
)

// Store holds memoized composition bodies. Implementations: the in-proc
// LRU store and the redis store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores val under key and records key in the index of every named
	// dataset so InvalidateDataset can find it later.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration, datasets []string) error
	// InvalidateDataset drops every memo entry the dataset contributed to
	// and returns how many were evicted.
	InvalidateDataset(ctx context.Context, dataset string) (int, error)
}

// Memoizer wraps a Store with the lookup-or-compute flow and the hit/miss
// accounting. The composition core stays pure; this layer bolts caching on
// without affecting its results.
type Memoizer struct {
	store Store
	ttl   time.Duration
}

func New(store Store, ttl time.Duration) *Memoizer {
	return &Memoizer{store: store, ttl: ttl}
}

// GetOrCompute returns the memoized body for key, or runs compute and
// stores its result. Store errors degrade to a plain compute: a broken
// memo backend must never fail a composition.
func (m *Memoizer) GetOrCompute(ctx context.Context, key string, datasets []string, compute func() ([]byte, error)) ([]byte, bool, error) {
	if m == nil || m.store == nil {
		body, err := compute()
		return body, false, err
	}
	if body, ok, err := m.store.Get(ctx, key); err == nil && ok {
		observability.IncMemoHit()
		return body, true, nil
	}
	observability.IncMemoMiss()

	body, err := compute()
	if err != nil {
		return nil, false, err
	}
	_ = m.store.Set(ctx, key, body, m.ttl, datasets)
	return body, false, nil
}

// InvalidateDataset forwards to the store.
func (m *Memoizer) InvalidateDataset(ctx context.Context, dataset string) (int, error) {
	if m == nil || m.store == nil {
		return 0, nil
	}
	return m.store.InvalidateDataset(ctx, dataset)
}
