package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/invoicedash/backend/internal/domain/identity"
	"github.com/invoicedash/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrSessionRevoked is returned for a session that was signed out
var ErrSessionRevoked = errors.New("session has been revoked")

// SessionVerifier checks a session token and returns the session it carries
type SessionVerifier interface {
	Verify(token string) (*identity.Session, error)
}

// SessionService resolves the session of a request and ends sessions on sign-out
type SessionService struct {
	verifier   SessionVerifier
	revocation shared.SessionRevocation
	logger     *zap.Logger
	now        func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(verifier SessionVerifier, revocation shared.SessionRevocation, logger *zap.Logger) *SessionService {
	return &SessionService{
		verifier:   verifier,
		revocation: revocation,
		logger:     logger,
		now:        time.Now,
	}
}

// Resolve returns the live session for token. A revocation list that cannot
// be read counts as a failure wrapping identity.ErrSessionCheckUnavailable,
// so the request is treated as signed out without discarding the session.
func (s *SessionService) Resolve(ctx context.Context, token string) (*identity.Session, error) {
	session, err := s.verifier.Verify(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revocation.IsRevoked(ctx, session.ID)
	if err != nil {
		s.logger.Warn("Failed to check session revocation",
			zap.String("session_id", session.ID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: check session revocation: %w", identity.ErrSessionCheckUnavailable, err)
	}
	if revoked {
		return nil, ErrSessionRevoked
	}
	return session, nil
}

// SignOut revokes the session for the rest of its lifetime
func (s *SessionService) SignOut(ctx context.Context, session *identity.Session) error {
	if err := s.revocation.Revoke(ctx, session.ID, session.TTL(s.now())); err != nil {
		s.logger.Error("Failed to revoke session",
			zap.String("session_id", session.ID),
			zap.Error(err))
		return err
	}
	s.logger.Info("User signed out",
		zap.String("user_id", session.UserID),
		zap.String("session_id", session.ID))
	return nil
}
