package search

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/andela/bucketlist/internal/apperror"
	"github.com/andela/bucketlist/internal/auth"
)

// Handler handles GET /api/v1/search.
type Handler struct {
	service SearchService
}

// NewHandler creates a new search handler.
func NewHandler(service SearchService) *Handler {
	return &Handler{service: service}
}

// Search runs an owner-scoped query from the ?q= parameter.
func (h *Handler) Search(c echo.Context) error {
	user := auth.GetIdentity(c)
	if user == nil {
		return apperror.NewUnauthorized("Unauthorised. Please login")
	}

	result, err := h.service.Search(c.Request().Context(), user.ID, c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
