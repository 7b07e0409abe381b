package router

import (
	"github.com/invoicedash/backend/internal/interfaces/http/handler"
)

// Handlers are the page and action handlers of the dashboard
type Handlers struct {
	Health    *handler.HealthHandler
	Auth      *handler.AuthHandler
	Dashboard *handler.DashboardHandler
	Invoice   *handler.InvoiceHandler
}

// Paths locate the pages the routes hang off
type Paths struct {
	Login     string // public sign-in page
	Dashboard string // protected prefix and landing page
	Invoices  string // invoice listing page
}

// DashboardRoutes returns the route groups of the dashboard
func DashboardRoutes(h Handlers, paths Paths) []RouteRegistrar {
	public := NewDomainGroup("public", "/").
		GET("/health", h.Health.Health).
		GET(paths.Login, h.Auth.LoginPage).
		POST(paths.Login, h.Auth.Login)

	dashboard := NewDomainGroup("dashboard", paths.Dashboard).
		GET("", h.Dashboard.Home).
		POST("/logout", h.Auth.Logout)

	invoices := NewDomainGroup("invoices", paths.Invoices).
		GET("", h.Invoice.List).
		POST("", h.Invoice.Create).
		GET("/create", h.Invoice.CreateForm).
		GET("/:id/edit", h.Invoice.EditForm).
		POST("/:id/edit", h.Invoice.Update).
		PUT("/:id", h.Invoice.Update).
		POST("/:id/delete", h.Invoice.Delete).
		DELETE("/:id", h.Invoice.Delete)

	return []RouteRegistrar{public, dashboard, invoices}
}
