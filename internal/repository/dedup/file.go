// Package dedup persists the set of already-processed post identifiers.
// Membership is monotonic: once a post id is recorded it stays recorded for
// the lifetime of the store.
package dedup

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// FileStore keeps processed ids in a newline-delimited, append-only file.
// The on-disk format is shared with earlier deployments and must not change.
type FileStore struct {
	path string

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewFileStore creates a file-backed store. The file is not created until
// the first Record.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, seen: make(map[string]struct{})}
}

// Load reads all previously recorded ids into memory. A missing file is an
// empty store, not an error.
func (s *FileStore) Load(_ context.Context) (int, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("open dedup file %s: %w", s.path, err)
	}
	defer f.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id == "" {
			continue
		}
		s.seen[id] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read dedup file %s: %w", s.path, err)
	}
	return len(s.seen), nil
}

// Contains reports whether the post id was already processed.
func (s *FileStore) Contains(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[id]
	return ok, nil
}

// Record durably appends one id. The file is append-only; callers are
// expected to check Contains first, a duplicate append is harmless.
func (s *FileStore) Record(_ context.Context, id string) error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open dedup file %s: %w", s.path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s\n", id); err != nil {
		return fmt.Errorf("append %s: %w", id, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync dedup file %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.seen[id] = struct{}{}
	s.mu.Unlock()
	return nil
}

// Ping reports whether the backing directory is reachable.
func (s *FileStore) Ping(_ context.Context) error {
	if _, err := os.Stat(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat dedup file %s: %w", s.path, err)
	}
	return nil
}
