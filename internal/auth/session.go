package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// sessionKeyPrefix is the Redis key prefix for session references.
const sessionKeyPrefix = "session:"

// sessionIDBytes is the number of random bytes in a session id.
// 32 bytes = 256 bits of entropy, hex-encoded to 64 characters.
const sessionIDBytes = 32

// ErrNoSession is returned when a session id is unknown or has expired.
var ErrNoSession = errors.New("session not found")

// SessionStore caches the email of an already-verified identity in Redis,
// keyed by an opaque random session id held in a cookie. It exists so
// clients that cannot resupply the token on every call keep working; it
// re-trusts the verification performed when the entry was written and
// performs no cryptographic check of its own.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionStore creates a session store with the given TTL.
func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

// Create generates a fresh session id and caches the email under it.
func (s *SessionStore) Create(ctx context.Context, email string) (string, error) {
	id, err := generateSessionID()
	if err != nil {
		return "", fmt.Errorf("generating session id: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKeyPrefix+id, email, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("storing session in redis: %w", err)
	}
	return id, nil
}

// Refresh re-caches the email under an existing session id, resetting the
// TTL. Called after every successful token verification so the cache never
// outlives the trust that populated it by more than one TTL.
func (s *SessionStore) Refresh(ctx context.Context, id, email string) error {
	if err := s.rdb.Set(ctx, sessionKeyPrefix+id, email, s.ttl).Err(); err != nil {
		return fmt.Errorf("refreshing session in redis: %w", err)
	}
	return nil
}

// Get returns the cached email for a session id, or ErrNoSession.
func (s *SessionStore) Get(ctx context.Context, id string) (string, error) {
	email, err := s.rdb.Get(ctx, sessionKeyPrefix+id).Result()
	if err == redis.Nil {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("reading session from redis: %w", err)
	}
	return email, nil
}

// Destroy removes a session reference. Logout only clears this client-held
// session state; an already-issued token stays valid until its expiry.
func (s *SessionStore) Destroy(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("deleting session from redis: %w", err)
	}
	return nil
}

// generateSessionID creates a cryptographically random hex-encoded id.
func generateSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
