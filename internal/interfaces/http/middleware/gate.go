package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/invoicedash/backend/internal/domain/identity"
	"github.com/invoicedash/backend/internal/interfaces/http/dto"
)

// CallbackURLParam names the query parameter that carries the page a denied
// visitor asked for, so sign-in can send them back
const CallbackURLParam = "callbackUrl"

// GateConfig configures the authorization gate
type GateConfig struct {
	Policy identity.AccessPolicy
	// SkipPaths are paths the gate never evaluates
	SkipPaths []string
	// SkipPathPrefixes are path prefixes the gate never evaluates
	SkipPathPrefixes []string
}

// DefaultGateConfig gates every page except health checks and static assets
func DefaultGateConfig(policy identity.AccessPolicy) GateConfig {
	return GateConfig{
		Policy:           policy,
		SkipPaths:        []string{"/health"},
		SkipPathPrefixes: []string{"/static/"},
	}
}

// AuthorizationGate applies the access policy before any handler runs.
// Denied visitors are sent to the login page with a callbackUrl; signed-in
// visitors of public pages are sent to the landing page. JSON clients get a
// 401 instead of the login redirect.
func AuthorizationGate(cfg GateConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if cfg.skips(path) {
			c.Next()
			return
		}

		switch cfg.Policy.Authorize(GetSession(c) != nil, path) {
		case identity.Allow:
			c.Next()
		case identity.Deny:
			if WantsJSON(c) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
					dto.ErrCodeUnauthorized, "Sign in to continue", GetRequestID(c)))
				return
			}
			c.Redirect(http.StatusSeeOther, cfg.loginURL(c.Request.URL.RequestURI()))
			c.Abort()
		case identity.Redirect:
			c.Redirect(http.StatusSeeOther, cfg.Policy.LandingPath)
			c.Abort()
		}
	}
}

func (cfg GateConfig) skips(path string) bool {
	for _, p := range cfg.SkipPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range cfg.SkipPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (cfg GateConfig) loginURL(callback string) string {
	q := url.Values{}
	q.Set(CallbackURLParam, callback)
	return cfg.Policy.LoginPath + "?" + q.Encode()
}

// WantsJSON reports whether the client asked for a JSON response
func WantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), gin.MIMEJSON)
}
