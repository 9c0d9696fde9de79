package memo

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type lruEntry struct {
	val     []byte
	expires time.Time
}

// LRUStore is the in-proc memo store: a bounded LRU of composition bodies
// plus a dataset-to-keys index for invalidation.
type LRUStore struct {
	mu    sync.Mutex
	cache *lru.Cache[string, lruEntry]
	index map[string]map[string]struct{}
	now   func() time.Time
}

func NewLRU(size int) *LRUStore {
	if size <= 0 {
		size = 256
	}
	c, _ := lru.New[string, lruEntry](size)
	return &LRUStore{
		cache: c,
		index: make(map[string]map[string]struct{}),
		now:   time.Now,
	}
}

func (s *LRUStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && s.now().After(e.expires) {
		s.cache.Remove(key)
		return nil, false, nil
	}
	return e.val, true, nil
}

func (s *LRUStore) Set(_ context.Context, key string, val []byte, ttl time.Duration, datasets []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := lruEntry{val: val}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.cache.Add(key, e)
	for _, ds := range datasets {
		set, ok := s.index[ds]
		if !ok {
			set = make(map[string]struct{})
			s.index[ds] = set
		}
		set[key] = struct{}{}
	}
	return nil
}

func (s *LRUStore) InvalidateDataset(_ context.Context, dataset string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.index[dataset]
	if !ok {
		return 0, nil
	}
	n := 0
	for key := range set {
		if s.cache.Remove(key) {
			n++
		}
	}
	delete(s.index, dataset)
	return n, nil
}
