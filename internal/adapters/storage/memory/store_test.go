package memory

import (
	"context"
	"errors"
	"testing"
)

func TestSetGetRoundTrip(t *testing.T) {
	s := NewStore(0)
	ctx := context.Background()
	if err := s.Set(ctx, "k", map[string]int{"n": 7}); err != nil {
		t.Fatalf("set: %v", err)
	}
	var out map[string]int
	found, err := s.Get(ctx, "k", &out)
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if out["n"] != 7 {
		t.Fatalf("unexpected value: %v", out)
	}
}

func TestGetAbsentKey(t *testing.T) {
	s := NewStore(0)
	var out string
	found, err := s.Get(context.Background(), "missing", &out)
	if err != nil || found {
		t.Fatalf("absent key: found=%v err=%v", found, err)
	}
	if out != "" {
		t.Fatalf("out must be untouched, got %q", out)
	}
}

func TestQuotaRejectsWrite(t *testing.T) {
	s := NewStore(10)
	ctx := context.Background()
	err := s.Set(ctx, "key", "a long enough value to blow the budget")
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	// the rejected write must not leak into the accounting
	bytes, _ := s.BytesInUse(ctx)
	if bytes != 0 {
		t.Fatalf("expected 0 bytes after rejected write, got %d", bytes)
	}
}

func TestOverwriteAdjustsAccounting(t *testing.T) {
	s := NewStore(0)
	ctx := context.Background()
	if err := s.Set(ctx, "k", "aaaaaaaaaa"); err != nil {
		t.Fatalf("set: %v", err)
	}
	first, _ := s.BytesInUse(ctx)
	if err := s.Set(ctx, "k", "a"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	second, _ := s.BytesInUse(ctx)
	if second >= first {
		t.Fatalf("shrinking a value must shrink accounting: %d -> %d", first, second)
	}
}

func TestRemoveAndClear(t *testing.T) {
	s := NewStore(0)
	ctx := context.Background()
	_ = s.Set(ctx, "a", 1)
	_ = s.Set(ctx, "b", 2)
	if err := s.Remove(ctx, "a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove(ctx, "never-existed"); err != nil {
		t.Fatalf("removing an absent key must be a no-op: %v", err)
	}
	var n int
	if found, _ := s.Get(ctx, "a", &n); found {
		t.Fatalf("removed key still present")
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	bytes, _ := s.BytesInUse(ctx)
	if bytes != 0 {
		t.Fatalf("expected empty store, %d bytes in use", bytes)
	}
}
