package session

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type stubSessionStore struct {
	values map[string]string
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{values: map[string]string{}}
}

func (s *stubSessionStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.values[key] = value.(string)
	return nil
}

func (s *stubSessionStore) Get(ctx context.Context, key string) (string, error) {
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (s *stubSessionStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

type stubKeyer struct{}

func (stubKeyer) AccessSessionKey(accessID string) string {
	return "session:access:" + accessID
}

func newTestManager(store *stubSessionStore) *Manager {
	return &Manager{store: store, keyer: stubKeyer{}, ttl: time.Hour}
}

func TestGenerateStoresRefreshToken(t *testing.T) {
	store := newStubSessionStore()
	m := newTestManager(store)

	token, err := m.Generate(context.Background(), "jti-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty refresh token")
	}
	if store.values["session:access:jti-1"] != token {
		t.Fatal("expected token stored under access id")
	}
}

func TestRotateReplacesSession(t *testing.T) {
	store := newStubSessionStore()
	m := newTestManager(store)

	token, err := m.Generate(context.Background(), "jti-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	newAccessID, newToken, err := m.Rotate(context.Background(), "jti-1", token)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if newAccessID == "jti-1" {
		t.Fatal("expected fresh access id")
	}
	if newToken == token {
		t.Fatal("expected fresh refresh token")
	}
	if _, ok := store.values["session:access:jti-1"]; ok {
		t.Fatal("old session must be removed")
	}
	if store.values["session:access:"+newAccessID] != newToken {
		t.Fatal("new session must be stored")
	}
}

func TestRotateRejectsWrongToken(t *testing.T) {
	store := newStubSessionStore()
	m := newTestManager(store)

	if _, err := m.Generate(context.Background(), "jti-1"); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	_, _, err := m.Rotate(context.Background(), "jti-1", "forged-token")
	if err != ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken got %v", err)
	}
}

func TestRotateRejectsUnknownSession(t *testing.T) {
	m := newTestManager(newStubSessionStore())

	_, _, err := m.Rotate(context.Background(), "missing", "whatever")
	if err != ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken got %v", err)
	}
}

func TestRevokeDropsSession(t *testing.T) {
	store := newStubSessionStore()
	m := newTestManager(store)

	if _, err := m.Generate(context.Background(), "jti-1"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := m.Revoke(context.Background(), "jti-1"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	ok, err := m.HasSession(context.Background(), "jti-1")
	if err != nil {
		t.Fatalf("HasSession: %v", err)
	}
	if ok {
		t.Fatal("expected session gone after revoke")
	}
}

func TestHasSessionEmptyAccessID(t *testing.T) {
	m := newTestManager(newStubSessionStore())

	ok, err := m.HasSession(context.Background(), "  ")
	if err != nil {
		t.Fatalf("HasSession: %v", err)
	}
	if ok {
		t.Fatal("blank access id must not match a session")
	}
}
