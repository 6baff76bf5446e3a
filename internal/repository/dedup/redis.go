package dedup

import (
	"context"
	"fmt"
	"sync"

	"github.com/skytagbot/skytag/internal/db"
)

const processedSetKey = "skytag:processed"

// store is the consumer interface for the redis backend (ISP).
type store interface {
	db.Pinger
	db.SetStore
}

// RedisStore keeps processed ids in a redis set. Load snapshots the set into
// memory; Record writes through.
type RedisStore struct {
	store store

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewRedisStore creates a redis-backed store.
func NewRedisStore(s store) *RedisStore {
	return &RedisStore{store: s, seen: make(map[string]struct{})}
}

// Load snapshots all recorded ids into memory.
func (s *RedisStore) Load(ctx context.Context) (int, error) {
	members, err := s.store.SMembers(ctx, processedSetKey)
	if err != nil {
		return 0, fmt.Errorf("load processed set: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range members {
		s.seen[id] = struct{}{}
	}
	return len(s.seen), nil
}

// Contains reports whether the post id was already processed.
func (s *RedisStore) Contains(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[id]
	return ok, nil
}

// Record durably adds one id to the processed set.
func (s *RedisStore) Record(ctx context.Context, id string) error {
	if err := s.store.SAdd(ctx, processedSetKey, id); err != nil {
		return fmt.Errorf("record %s: %w", id, err)
	}

	s.mu.Lock()
	s.seen[id] = struct{}{}
	s.mu.Unlock()
	return nil
}

// Ping checks backend connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
