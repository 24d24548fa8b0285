package auth

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/andela/bucketlist/internal/middleware"
)

// RegisterRoutes sets up all auth routes on the given Echo instance.
// Register/login/reset are public; the gate middleware is exported
// separately for other packages to place in front of their route groups.
//
// POST endpoints are rate-limited to slow down brute-force and credential
// stuffing: 10 attempts per IP per minute for login, 5 for register and
// reset.
func RegisterRoutes(e *echo.Echo, h *Handler, service AuthService) {
	// Public routes -- no credentials required.
	e.POST("/auth/register", h.Register, middleware.RateLimit(5, time.Minute))
	e.POST("/auth/login", h.Login, middleware.RateLimit(10, time.Minute))
	e.POST("/auth/reset-password", h.ResetPassword, middleware.RateLimit(5, time.Minute))

	// Logout needs no valid credentials either: it only clears client state.
	e.POST("/auth/logout", h.Logout)

	// Sensitive mutations: authenticated AND token-verified on this request.
	sensitive := e.Group("/auth", RequireAuth(service), RequireTokenAuth())
	sensitive.PUT("/password", h.ChangePassword)
	sensitive.DELETE("/account", h.DeleteAccount)

	// Authenticated probe.
	probe := e.Group("/api/v1/callback", RequireAuth(service))
	probe.GET("", h.Callback)
	probe.POST("", h.Callback)
}
