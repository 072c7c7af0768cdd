package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pousadahub/ordering-backend/pkg/kv"
)

func TestScopedSaveLoadRemove(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock, sessionTTL: time.Hour}

	if err := client.Save(ctx, kv.ScopeSession, "guest-1:partner", []byte(`{"id":"a"}`)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	value, err := client.Load(ctx, kv.ScopeSession, "guest-1:partner")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if string(value) != `{"id":"a"}` {
		t.Fatalf("unexpected value %q", value)
	}

	if err := client.Remove(ctx, kv.ScopeSession, "guest-1:partner"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := client.Load(ctx, kv.ScopeSession, "guest-1:partner"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected kv.ErrNotFound after remove, got %v", err)
	}
}

func TestScopeTTLs(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock, sessionTTL: 4 * time.Hour, durableTTL: 0}

	if err := client.Save(ctx, kv.ScopeSession, "guest-1:partner", []byte("x")); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := client.Save(ctx, kv.ScopeDurable, "device-1:cart", []byte("y")); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if got := mock.ttls["po:session:guest-1:partner"]; got != 4*time.Hour {
		t.Fatalf("expected session TTL 4h, got %v", got)
	}
	if got := mock.ttls["po:durable:device-1:cart"]; got != 0 {
		t.Fatalf("expected no TTL on durable scope, got %v", got)
	}
}

func TestBuildKeyNamespacesScope(t *testing.T) {
	client := &Client{}
	if got := client.buildKey(kv.ScopeSession, "guest-1:partner"); got != "po:session:guest-1:partner" {
		t.Fatalf("unexpected key %s", got)
	}
	if got := client.buildKey(kv.ScopeDurable, "device-1:delivery"); got != "po:durable:device-1:delivery" {
		t.Fatalf("unexpected key %s", got)
	}
}

type mockCmdable struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	default:
		m.data[key] = fmt.Sprint(v)
	}
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	value, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}
