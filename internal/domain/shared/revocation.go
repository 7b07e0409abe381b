package shared

import (
	"context"
	"time"
)

// SessionRevocation records session identifiers that were ended before their
// natural expiry (logout). Entries only need to live until the session would
// have expired on its own.
type SessionRevocation interface {
	// Revoke marks a session id as ended until ttl elapses
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error

	// IsRevoked reports whether the session id was revoked
	IsRevoked(ctx context.Context, sessionID string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}
