package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/invoicedash/backend/internal/domain/identity"
	"github.com/invoicedash/backend/internal/infrastructure/config"
	"github.com/invoicedash/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// SessionKey is the gin context key holding the resolved *identity.Session
const SessionKey = "session"

// SessionResolver returns the live session carried by a token
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*identity.Session, error)
}

// SessionCookie reads and writes the session cookie
type SessionCookie struct {
	cfg config.CookieConfig
}

// NewSessionCookie creates a session cookie helper from cookie settings
func NewSessionCookie(cfg config.CookieConfig) *SessionCookie {
	return &SessionCookie{cfg: cfg}
}

// Token returns the session token sent by the client, if any
func (s *SessionCookie) Token(c *gin.Context) string {
	token, err := c.Cookie(s.cfg.Name)
	if err != nil {
		return ""
	}
	return token
}

// Writer returns a writer that stores issued sessions on c's response
func (s *SessionCookie) Writer(c *gin.Context) *CookieSessionWriter {
	return &CookieSessionWriter{cookie: s, c: c}
}

// Clear expires the session cookie
func (s *SessionCookie) Clear(c *gin.Context) {
	s.set(c, "", -1)
}

func (s *SessionCookie) set(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(sameSiteMode(s.cfg.SameSite))
	c.SetCookie(s.cfg.Name, value, maxAge, s.cfg.Path, s.cfg.Domain, s.cfg.Secure, true)
}

func sameSiteMode(policy string) http.SameSite {
	switch strings.ToLower(policy) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// CookieSessionWriter writes a session cookie for one response
type CookieSessionWriter struct {
	cookie *SessionCookie
	c      *gin.Context
}

// WriteSession sets the session cookie to expire with the session
func (w *CookieSessionWriter) WriteSession(session *identity.Session, token string) {
	maxAge := int(session.ExpiresAt.Sub(session.IssuedAt).Seconds())
	w.cookie.set(w.c, token, maxAge)
}

// Session resolves the session cookie of every request. A missing, invalid
// or revoked session leaves the request anonymous and an unusable cookie is
// cleared. When the session cannot be checked right now the request is
// anonymous but the cookie is kept for later requests.
func Session(cookie *SessionCookie, resolver SessionResolver, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookie.Token(c)
		if token == "" {
			c.Next()
			return
		}

		session, err := resolver.Resolve(c.Request.Context(), token)
		if errors.Is(err, identity.ErrSessionCheckUnavailable) {
			log.Warn("Session check unavailable, serving request as anonymous",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err))
			c.Next()
			return
		}
		if err != nil {
			log.Debug("Ignoring session cookie",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err))
			cookie.Clear(c)
			c.Next()
			return
		}

		c.Set(SessionKey, session)
		ctx, _ := logger.WithUserID(c.Request.Context(), logger.FromContext(c.Request.Context()), session.UserID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetSession returns the session of the request, or nil when signed out
func GetSession(c *gin.Context) *identity.Session {
	if v, ok := c.Get(SessionKey); ok {
		if session, ok := v.(*identity.Session); ok {
			return session
		}
	}
	return nil
}
