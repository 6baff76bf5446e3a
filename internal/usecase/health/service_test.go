package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockDedupPinger struct {
	err error
}

func (m *mockDedupPinger) Ping(_ context.Context) error { return m.err }

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockDedupPinger{}, &mockDBPinger{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["dedup"] != CheckOK {
		t.Errorf("expected dedup %q, got %q", CheckOK, r.Checks["dedup"])
	}
	if r.Checks["database"] != CheckOK {
		t.Errorf("expected database %q, got %q", CheckOK, r.Checks["database"])
	}
}

func TestCheck_DedupError(t *testing.T) {
	svc := New(&mockDedupPinger{err: errors.New("disk gone")}, &mockDBPinger{})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["dedup"] != CheckError {
		t.Errorf("expected dedup %q, got %q", CheckError, r.Checks["dedup"])
	}
	if r.Checks["database"] != CheckOK {
		t.Errorf("expected database %q, got %q", CheckOK, r.Checks["database"])
	}
}

func TestCheck_DBError(t *testing.T) {
	svc := New(&mockDedupPinger{}, &mockDBPinger{err: errors.New("conn refused")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks["database"])
	}
}

func TestCheck_NoDB(t *testing.T) {
	svc := New(&mockDedupPinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["database"]; ok {
		t.Error("database check should be absent when db is nil")
	}
}

func TestCheck_NoDB_DedupError(t *testing.T) {
	svc := New(&mockDedupPinger{err: errors.New("fail")}, nil)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["dedup"] != CheckError {
		t.Error("expected dedup error")
	}
}
