package dedup

import (
	"context"
	"testing"
)

type fakeSetStore struct {
	members map[string]struct{}
	pingErr error
}

func newFakeSetStore() *fakeSetStore {
	return &fakeSetStore{members: make(map[string]struct{})}
}

func (f *fakeSetStore) Ping(_ context.Context) error { return f.pingErr }

func (f *fakeSetStore) SAdd(_ context.Context, _ string, members ...string) error {
	for _, m := range members {
		f.members[m] = struct{}{}
	}
	return nil
}

func (f *fakeSetStore) SIsMember(_ context.Context, _ string, member string) (bool, error) {
	_, ok := f.members[member]
	return ok, nil
}

func (f *fakeSetStore) SMembers(_ context.Context, _ string) ([]string, error) {
	out := make([]string, 0, len(f.members))
	for m := range f.members {
		out = append(out, m)
	}
	return out, nil
}

func TestRedisStore_RecordThenContains(t *testing.T) {
	ctx := context.Background()
	s := NewRedisStore(newFakeSetStore())

	if _, err := s.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := s.Record(ctx, "xyz"); err != nil {
		t.Fatalf("record: %v", err)
	}

	ok, err := s.Contains(ctx, "xyz")
	if err != nil || !ok {
		t.Errorf("expected contained, ok=%v err=%v", ok, err)
	}
}

func TestRedisStore_LoadSnapshotsExistingMembers(t *testing.T) {
	ctx := context.Background()
	backend := newFakeSetStore()
	backend.members["old1"] = struct{}{}
	backend.members["old2"] = struct{}{}

	s := NewRedisStore(backend)
	n, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 ids, got %d", n)
	}
	ok, _ := s.Contains(ctx, "old1")
	if !ok {
		t.Error("expected old1 contained after load")
	}
}
