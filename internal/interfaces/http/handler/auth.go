package handler

import (
	"github.com/gin-gonic/gin"
	appidentity "github.com/invoicedash/backend/internal/application/identity"
	"github.com/invoicedash/backend/internal/domain/identity"
	"github.com/invoicedash/backend/internal/interfaces/http/dto"
	"github.com/invoicedash/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles sign-in and sign-out
type AuthHandler struct {
	BaseHandler
	check    *appidentity.CredentialCheck
	sessions *appidentity.SessionService
	cookie   *middleware.SessionCookie
	policy   identity.AccessPolicy
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	check *appidentity.CredentialCheck,
	sessions *appidentity.SessionService,
	cookie *middleware.SessionCookie,
	policy identity.AccessPolicy,
) *AuthHandler {
	return &AuthHandler{
		check:    check,
		sessions: sessions,
		cookie:   cookie,
		policy:   policy,
	}
}

// LoginPageResponse is the data behind the login page
type LoginPageResponse struct {
	CallbackURL string `json:"callback_url"`
}

// LoginResponse is returned when a sign-in is rejected
type LoginResponse struct {
	Message string `json:"message"`
}

// LoginPage returns where a successful sign-in will go
// GET /login
func (h *AuthHandler) LoginPage(c *gin.Context) {
	h.Success(c, LoginPageResponse{CallbackURL: h.callbackURL(c.Query(middleware.CallbackURLParam))})
}

// Login checks the submitted credentials. On success the session cookie is
// set and the client is sent to the callback page; a rejected sign-in answers
// with the message for the form. Unexpected failures go to the error boundary.
// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	values, ok := h.PostValues(c)
	if !ok {
		return
	}

	message, err := h.check.Authenticate(c.Request.Context(), h.cookie.Writer(c), values.Get("message"), values)
	if err != nil {
		h.Propagate(c, err)
		return
	}
	if message != "" {
		code := dto.ErrCodeSignInFailed
		if message == appidentity.MsgInvalidCredentials {
			code = dto.ErrCodeInvalidCredentials
		}
		resp := dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c))
		resp.Data = LoginResponse{Message: message}
		c.JSON(dto.GetHTTPStatus(code), resp)
		return
	}

	callback := values.Get(appidentity.FieldCallbackURL)
	if callback == "" {
		callback = c.Query(middleware.CallbackURLParam)
	}
	h.SeeOther(c, h.callbackURL(callback))
}

// Logout ends the current session and sends the client to the login page
// POST /dashboard/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookie.Clear(c)

	if session := middleware.GetSession(c); session != nil {
		if err := h.sessions.SignOut(c.Request.Context(), session); err != nil {
			h.Propagate(c, err)
			return
		}
	}
	h.SeeOther(c, h.policy.LoginPath)
}

// callbackURL returns target when it is a safe local page, else the landing page
func (h *AuthHandler) callbackURL(target string) string {
	if h.policy.IsSafeCallback(target) {
		return target
	}
	return h.policy.LandingPath
}
