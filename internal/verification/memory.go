package verification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v2"
)

// MemoryStore keeps entries in process memory. Entries are lost on restart
// and aren't shared between processes, use RedisStore for that.
type MemoryStore struct {
	// Serializes writers so Update sees no interleaved Put
	mu sync.Mutex
	c  *ttlcache.Cache
}

func NewMemoryStore() *MemoryStore {
	c := ttlcache.NewCache()
	// Reading a code must never keep it alive for longer
	c.SkipTTLExtensionOnHit(true)

	return &MemoryStore{c: c}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Entry, error) {
	v, err := s.c.Get(id)
	if err != nil {
		if errors.Is(err, ttlcache.ErrNotFound) {
			return nil, ErrNoEntry
		}

		return nil, fmt.Errorf("failed to read entry, %w", err)
	}

	e, ok := v.(Entry)
	if !ok {
		return nil, fmt.Errorf("unexpected entry type %T", v)
	}

	return &e, nil
}

func (s *MemoryStore) Put(_ context.Context, id string, e Entry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.put(id, e, ttl)
}

func (s *MemoryStore) put(id string, e Entry, ttl time.Duration) error {
	if err := s.c.SetWithTTL(id, e, ttl); err != nil {
		return fmt.Errorf("failed to store entry, %w", err)
	}

	return nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.Get(ctx, id)
	if err != nil && !errors.Is(err, ErrNoEntry) {
		return err
	}

	keep, ttl := fn(e)
	if keep && e != nil {
		return s.put(id, *e, ttl)
	}

	return s.remove(id)
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.remove(id)
}

func (s *MemoryStore) remove(id string) error {
	err := s.c.Remove(id)
	if err != nil && !errors.Is(err, ttlcache.ErrNotFound) {
		return fmt.Errorf("failed to delete entry, %w", err)
	}

	return nil
}

func (s *MemoryStore) Close() error {
	return s.c.Close()
}
