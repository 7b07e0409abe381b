package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/invoicedash/backend/internal/interfaces/http/middleware"
)

// DashboardHandler serves the dashboard landing page
type DashboardHandler struct {
	BaseHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// CurrentUserResponse is the signed-in user shown on the dashboard
type CurrentUserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Home returns the signed-in user
// GET /dashboard
func (h *DashboardHandler) Home(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		h.Unauthorized(c, "Sign in to continue")
		return
	}
	h.Success(c, CurrentUserResponse{
		ID:        session.UserID,
		Name:      session.Name,
		Email:     session.Email,
		ExpiresAt: session.ExpiresAt,
	})
}
