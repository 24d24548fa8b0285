package search

import (
	"github.com/labstack/echo/v4"

	"github.com/andela/bucketlist/internal/auth"
)

// RegisterRoutes sets up the search route behind the authorization gate.
func RegisterRoutes(e *echo.Echo, h *Handler, authService auth.AuthService) {
	e.GET("/api/v1/search", h.Search, auth.RequireAuth(authService))
}
