package identity

import (
	"errors"
	"time"
)

// ErrSessionCheckUnavailable means a session could not be checked right now,
// as opposed to being invalid. The session may still be good on a later request.
var ErrSessionCheckUnavailable = errors.New("session check unavailable")

// Session is an authenticated dashboard session carried in a signed cookie
type Session struct {
	ID        string
	UserID    string
	Email     string
	Name      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TTL returns how long the session remains valid from now
func (s *Session) TTL(now time.Time) time.Duration {
	if now.After(s.ExpiresAt) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}
