package buckets

import (
	"github.com/labstack/echo/v4"

	"github.com/andela/bucketlist/internal/auth"
)

// RegisterRoutes sets up all bucket and activity routes behind the
// authorization gate.
func RegisterRoutes(e *echo.Echo, h *Handler, authService auth.AuthService) {
	g := e.Group("/api/v1/bucketlists", auth.RequireAuth(authService))

	g.GET("", h.ListBuckets)
	g.POST("", h.CreateBucket)
	g.GET("/:id", h.GetBucket)
	g.PUT("/:id", h.UpdateBucket)
	g.DELETE("/:id", h.DeleteBucket)

	g.GET("/:id/items", h.ListActivities)
	g.POST("/:id/items", h.CreateActivity)
	g.GET("/:id/items/:itemID", h.GetActivity)
	g.PUT("/:id/items/:itemID", h.UpdateActivity)
	g.DELETE("/:id/items/:itemID", h.DeleteActivity)
}
