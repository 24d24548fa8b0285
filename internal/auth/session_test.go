package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// newTestSessionStore spins up an in-memory Redis and returns a store plus
// the miniredis handle for clock manipulation.
func newTestSessionStore(t *testing.T, ttl time.Duration) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewSessionStore(rdb, ttl), mr
}

func TestSessionCreateAndGet(t *testing.T) {
	store, _ := newTestSessionStore(t, time.Hour)
	ctx := context.Background()

	id, err := store.Create(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// 32 random bytes hex-encoded.
	if len(id) != 64 {
		t.Errorf("expected 64-char session id, got %d chars", len(id))
	}

	email, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if email != "alice@example.com" {
		t.Errorf("expected alice@example.com, got %s", email)
	}
}

func TestSessionGet_Unknown(t *testing.T) {
	store, _ := newTestSessionStore(t, time.Hour)

	_, err := store.Get(context.Background(), "no-such-session")
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got: %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	store, mr := newTestSessionStore(t, time.Minute)
	ctx := context.Background()

	id, err := store.Create(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, id); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession after TTL elapsed, got: %v", err)
	}
}

func TestSessionRefresh_ResetsTTL(t *testing.T) {
	store, mr := newTestSessionStore(t, time.Minute)
	ctx := context.Background()

	id, err := store.Create(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Halfway to expiry, refresh. The entry should then survive past the
	// original deadline.
	mr.FastForward(30 * time.Second)
	if err := store.Refresh(ctx, id, "alice@example.com"); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	mr.FastForward(45 * time.Second)
	email, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("expected session alive after refresh, got: %v", err)
	}
	if email != "alice@example.com" {
		t.Errorf("expected alice@example.com, got %s", email)
	}
}

func TestSessionDestroy(t *testing.T) {
	store, _ := newTestSessionStore(t, time.Hour)
	ctx := context.Background()

	id, err := store.Create(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Destroy(ctx, id); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}
	if _, err := store.Get(ctx, id); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession after destroy, got: %v", err)
	}

	// Destroying an already-gone session is not an error.
	if err := store.Destroy(ctx, id); err != nil {
		t.Errorf("expected idempotent destroy, got: %v", err)
	}
}

func TestSessionIDs_Unique(t *testing.T) {
	store, _ := newTestSessionStore(t, time.Hour)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id, err := store.Create(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if seen[id] {
			t.Fatalf("session id collision after %d iterations", i)
		}
		seen[id] = true
	}
}
