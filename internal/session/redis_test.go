package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore_SetPop(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)

	if err := store.Set(ctx, "U1", "2024-01-15"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := mr.Get(KeyPrefix + "U1")
	if err != nil || got != "2024-01-15" {
		t.Errorf("stored value = (%q, %v), want 2024-01-15", got, err)
	}
	if ttl := mr.TTL(KeyPrefix + "U1"); ttl != 0 {
		t.Errorf("TTL = %v, want none", ttl)
	}

	date, ok, err := store.Pop(ctx, "U1")
	if err != nil || !ok || date != "2024-01-15" {
		t.Errorf("Pop() = (%q, %v, %v), want (2024-01-15, true, nil)", date, ok, err)
	}
	if mr.Exists(KeyPrefix + "U1") {
		t.Error("key should be removed after Pop")
	}
}

func TestRedisStore_PopMissing(t *testing.T) {
	store, _ := newTestRedisStore(t)

	date, ok, err := store.Pop(context.Background(), "nobody")
	if err != nil || ok || date != "" {
		t.Errorf("Pop() = (%q, %v, %v), want absent without error", date, ok, err)
	}
}

func TestRedisStore_SetOverwrites(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)

	store.Set(ctx, "U1", "2024-01-15")
	store.Set(ctx, "U1", "2024-01-19")

	if got, _ := mr.Get(KeyPrefix + "U1"); got != "2024-01-19" {
		t.Errorf("stored value = %q, want 2024-01-19", got)
	}
}

func TestRedisStore_ServerDown(t *testing.T) {
	store, mr := newTestRedisStore(t)
	mr.Close()

	if err := store.Set(context.Background(), "U1", "2024-01-15"); err == nil {
		t.Error("Set() expected error with server down")
	}
	if _, _, err := store.Pop(context.Background(), "U1"); err == nil {
		t.Error("Pop() expected error with server down")
	}
}

func TestDialRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := DialRedis(context.Background(), "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("DialRedis() error = %v", err)
	}
	defer store.Close()

	if _, err := DialRedis(context.Background(), "not a url"); err == nil {
		t.Error("DialRedis() expected error for bad URL")
	}
}
