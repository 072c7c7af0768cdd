package kv

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Save(ctx, ScopeSession, "partner", []byte(`{"id":"x"}`)); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	value, err := store.Load(ctx, ScopeSession, "partner")
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if string(value) != `{"id":"x"}` {
		t.Fatalf("unexpected value %q", value)
	}
}

func TestMemoryStoreScopesArePartitioned(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Save(ctx, ScopeDurable, "delivery", []byte("true")); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	if _, err := store.Load(ctx, ScopeSession, "delivery"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound across scopes, got %v", err)
	}
}

func TestMemoryStoreRemove(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Save(ctx, ScopeDurable, "cart", []byte("[]")); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	if err := store.Remove(ctx, ScopeDurable, "cart"); err != nil {
		t.Fatalf("unexpected remove error: %v", err)
	}
	if _, err := store.Load(ctx, ScopeDurable, "cart"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
	// second remove is a no-op
	if err := store.Remove(ctx, ScopeDurable, "cart"); err != nil {
		t.Fatalf("unexpected error on repeat remove: %v", err)
	}
}
