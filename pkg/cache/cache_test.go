package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vancetran/medisupply-backend/pkg/config"
)

type stubRedisStore struct {
	values map[string]string
	sets   map[string]map[string]struct{}
	fail   bool
}

var errRedisDown = errors.New("connection refused")

func newStubRedisStore() *stubRedisStore {
	return &stubRedisStore{
		values: map[string]string{},
		sets:   map[string]map[string]struct{}{},
	}
}

func (s *stubRedisStore) Get(ctx context.Context, key string) (string, error) {
	if s.fail {
		return "", errRedisDown
	}
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return "", errors.New("redis: nil")
}

func (s *stubRedisStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if s.fail {
		return errRedisDown
	}
	s.values[key] = value.(string)
	return nil
}

func (s *stubRedisStore) Del(ctx context.Context, keys ...string) error {
	if s.fail {
		return errRedisDown
	}
	for _, key := range keys {
		delete(s.values, key)
		delete(s.sets, key)
	}
	return nil
}

func (s *stubRedisStore) SAdd(ctx context.Context, key string, members ...any) error {
	if s.fail {
		return errRedisDown
	}
	set, ok := s.sets[key]
	if !ok {
		set = map[string]struct{}{}
		s.sets[key] = set
	}
	for _, member := range members {
		set[member.(string)] = struct{}{}
	}
	return nil
}

func (s *stubRedisStore) SMembers(ctx context.Context, key string) ([]string, error) {
	if s.fail {
		return nil, errRedisDown
	}
	members := make([]string, 0, len(s.sets[key]))
	for member := range s.sets[key] {
		members = append(members, member)
	}
	return members, nil
}

func (s *stubRedisStore) CacheKey(parts ...string) string {
	key := "cache"
	for _, part := range parts {
		key += ":" + part
	}
	return key
}

func (s *stubRedisStore) TagKey(tag string) string {
	return "cache:tag:" + tag
}

func stubIsNil(err error) bool {
	return err != nil && err.Error() == "redis: nil"
}

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{DefaultTTL: time.Minute, SweepInterval: time.Minute}
}

func TestRedisRoundTrip(t *testing.T) {
	store := newStubRedisStore()
	c := New(store, stubIsNil, testCacheConfig(), nil)
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "products:list", `["a"]`, 0)

	value, ok := c.Get(ctx, "products:list")
	if !ok || value != `["a"]` {
		t.Fatalf("expected cached value, got %q ok=%v", value, ok)
	}
	if store.values["cache:products:list"] != `["a"]` {
		t.Fatal("expected value stored under namespaced key")
	}
}

func TestGetMissReturnsNotFound(t *testing.T) {
	c := New(newStubRedisStore(), stubIsNil, testCacheConfig(), nil)
	defer c.Close()

	if _, ok := c.Get(context.Background(), "missing"); ok {
		t.Fatal("expected cache miss")
	}
}

func TestTagInvalidationDropsTaggedKeys(t *testing.T) {
	store := newStubRedisStore()
	c := New(store, stubIsNil, testCacheConfig(), nil)
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "products:1", "one", 0, "products")
	c.Set(ctx, "products:2", "two", 0, "products")
	c.Set(ctx, "categories:tree", "tree", 0, "categories")

	c.InvalidateByTags(ctx, "products")

	if _, ok := c.Get(ctx, "products:1"); ok {
		t.Fatal("expected products:1 invalidated")
	}
	if _, ok := c.Get(ctx, "products:2"); ok {
		t.Fatal("expected products:2 invalidated")
	}
	if _, ok := c.Get(ctx, "categories:tree"); !ok {
		t.Fatal("untagged entries must survive")
	}
}

func TestDegradesToMemoryOnRedisFailure(t *testing.T) {
	store := newStubRedisStore()
	store.fail = true
	c := New(store, stubIsNil, testCacheConfig(), nil)
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "key", "value", time.Minute)

	value, ok := c.Get(ctx, "key")
	if !ok || value != "value" {
		t.Fatalf("expected in-process fallback to serve value, got %q ok=%v", value, ok)
	}
}

func TestMemoryFallbackHonorsTTL(t *testing.T) {
	store := newStubRedisStore()
	store.fail = true
	c := New(store, stubIsNil, testCacheConfig(), nil)
	defer c.Close()

	c.Set(context.Background(), "short", "lived", time.Minute)

	if _, ok := c.memory.get("short", time.Now().Add(2*time.Minute)); ok {
		t.Fatal("expected entry expired past its ttl")
	}
}

func TestDeleteRemovesKeys(t *testing.T) {
	store := newStubRedisStore()
	c := New(store, stubIsNil, testCacheConfig(), nil)
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "a", "1", 0)
	c.Set(ctx, "b", "2", 0)

	c.Delete(ctx, "a")

	if _, ok := c.Get(ctx, "a"); ok {
		t.Fatal("expected a deleted")
	}
	if _, ok := c.Get(ctx, "b"); !ok {
		t.Fatal("expected b retained")
	}
}
