package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/invoicedash/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const defaultRevocationKeyPrefix = "session:revoked:"

// RedisSessionRevocation implements shared.SessionRevocation using Redis keys
// that expire with the session they revoke
type RedisSessionRevocation struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisSessionRevocation creates a revocation list on an existing Redis client
func NewRedisSessionRevocation(client *redis.Client) *RedisSessionRevocation {
	return &RedisSessionRevocation{
		client:    client,
		keyPrefix: defaultRevocationKeyPrefix,
	}
}

// Revoke marks a session id as ended until ttl elapses
func (r *RedisSessionRevocation) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.keyPrefix+sessionID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// IsRevoked reports whether the session id was revoked
func (r *RedisSessionRevocation) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	exists, err := r.client.Exists(ctx, r.keyPrefix+sessionID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session revocation: %w", err)
	}
	return exists > 0, nil
}

// Close is a no-op; the shared client is closed by its owner
func (r *RedisSessionRevocation) Close() error {
	return nil
}

// Ensure RedisSessionRevocation implements SessionRevocation
var _ shared.SessionRevocation = (*RedisSessionRevocation)(nil)

// InMemorySessionRevocation keeps revoked session ids in process memory.
// Revocations are not shared between instances.
type InMemorySessionRevocation struct {
	mu      sync.Mutex
	revoked map[string]time.Time // session id -> expiry
}

// NewInMemorySessionRevocation creates an empty in-memory revocation list
func NewInMemorySessionRevocation() *InMemorySessionRevocation {
	return &InMemorySessionRevocation{
		revoked: make(map[string]time.Time),
	}
}

// Revoke marks a session id as ended until ttl elapses
func (r *InMemorySessionRevocation) Revoke(_ context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for id, expiresAt := range r.revoked {
		if now.After(expiresAt) {
			delete(r.revoked, id)
		}
	}
	r.revoked[sessionID] = now.Add(ttl)
	return nil
}

// IsRevoked reports whether the session id was revoked and has not yet expired
func (r *InMemorySessionRevocation) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	expiresAt, ok := r.revoked[sessionID]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiresAt) {
		delete(r.revoked, sessionID)
		return false, nil
	}
	return true, nil
}

// Close releases nothing; present to satisfy the interface
func (r *InMemorySessionRevocation) Close() error {
	return nil
}

// Ensure InMemorySessionRevocation implements SessionRevocation
var _ shared.SessionRevocation = (*InMemorySessionRevocation)(nil)
