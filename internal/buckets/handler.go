package buckets

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/andela/bucketlist/internal/apperror"
	"github.com/andela/bucketlist/internal/auth"
)

// Handler handles HTTP requests for buckets and activities. Handlers bind
// the request, pull the resolved identity set by the authorization gate,
// and pass its id explicitly to the service.
type Handler struct {
	service BucketService
}

// NewHandler creates a new bucket handler with the given service.
func NewHandler(service BucketService) *Handler {
	return &Handler{service: service}
}

// ListBuckets handles GET /api/v1/bucketlists.
func (h *Handler) ListBuckets(c echo.Context) error {
	user := auth.GetIdentity(c)
	if user == nil {
		return apperror.NewUnauthorized("Unauthorised. Please login")
	}

	page, limit, err := pagingParams(c)
	if err != nil {
		return err
	}

	result, err := h.service.ListBuckets(c.Request().Context(), user.ID, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// GetBucket handles GET /api/v1/bucketlists/:id.
func (h *Handler) GetBucket(c echo.Context) error {
	user := auth.GetIdentity(c)
	if user == nil {
		return apperror.NewUnauthorized("Unauthorised. Please login")
	}

	bucketID, err := pathID(c, "id", "Please specify the bucket id")
	if err != nil {
		return err
	}

	bucket, err := h.service.GetBucket(c.Request().Context(), user.ID, bucketID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"bucket": bucket})
}

// CreateBucket handles POST /api/v1/bucketlists.
func (h *Handler) CreateBucket(c echo.Context) error {
	user := auth.GetIdentity(c)
	if user == nil {
		return apperror.NewUnauthorized("Unauthorised. Please login")
	}

	var req BucketRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("Bad request. Please enter some data")
	}

	bucket, err := h.service.CreateBucket(c.Request().Context(), user.ID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{"bucket": bucket})
}

// UpdateBucket handles PUT /api/v1/bucketlists/:id.
func (h *Handler) UpdateBucket(c echo.Context) error {
	user := auth.GetIdentity(c)
	if user == nil {
		return apperror.NewUnauthorized("Unauthorised. Please login")
	}

	bucketID, err := pathID(c, "id", "Please specify the bucket id")
	if err != nil {
		return err
	}

	var req BucketRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("Bad request. Please enter some data")
	}

	bucket, err := h.service.UpdateBucket(c.Request().Context(), user.ID, bucketID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"bucket": bucket})
}

// DeleteBucket handles DELETE /api/v1/bucketlists/:id. Responds with the
// remaining buckets.
func (h *Handler) DeleteBucket(c echo.Context) error {
	user := auth.GetIdentity(c)
	if user == nil {
		return apperror.NewUnauthorized("Unauthorised. Please login")
	}

	bucketID, err := pathID(c, "id", "Please specify the bucket id")
	if err != nil {
		return err
	}

	remaining, err := h.service.DeleteBucket(c.Request().Context(), user.ID, bucketID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"buckets": remaining})
}

// ListActivities handles GET /api/v1/bucketlists/:id/items.
func (h *Handler) ListActivities(c echo.Context) error {
	user := auth.GetIdentity(c)
	if user == nil {
		return apperror.NewUnauthorized("Unauthorised. Please login")
	}

	bucketID, err := pathID(c, "id", "Please specify the bucket id")
	if err != nil {
		return err
	}

	page, limit, err := pagingParams(c)
	if err != nil {
		return err
	}

	result, err := h.service.ListActivities(c.Request().Context(), user.ID, bucketID, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// GetActivity handles GET /api/v1/bucketlists/:id/items/:itemID.
func (h *Handler) GetActivity(c echo.Context) error {
	user := auth.GetIdentity(c)
	if user == nil {
		return apperror.NewUnauthorized("Unauthorised. Please login")
	}

	bucketID, err := pathID(c, "id", "Please specify the bucket id")
	if err != nil {
		return err
	}
	activityID, err := pathID(c, "itemID", "Please specify your item id")
	if err != nil {
		return err
	}

	activity, err := h.service.GetActivity(c.Request().Context(), user.ID, bucketID, activityID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"activity": activity})
}

// CreateActivity handles POST /api/v1/bucketlists/:id/items.
func (h *Handler) CreateActivity(c echo.Context) error {
	user := auth.GetIdentity(c)
	if user == nil {
		return apperror.NewUnauthorized("Unauthorised. Please login")
	}

	bucketID, err := pathID(c, "id", "Please specify the bucket id")
	if err != nil {
		return err
	}

	var req ActivityRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("Bad request. Please enter some data")
	}

	activity, err := h.service.CreateActivity(c.Request().Context(), user.ID, bucketID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{"item": activity})
}

// UpdateActivity handles PUT /api/v1/bucketlists/:id/items/:itemID.
func (h *Handler) UpdateActivity(c echo.Context) error {
	user := auth.GetIdentity(c)
	if user == nil {
		return apperror.NewUnauthorized("Unauthorised. Please login")
	}

	bucketID, err := pathID(c, "id", "Please specify the bucket id")
	if err != nil {
		return err
	}
	activityID, err := pathID(c, "itemID", "Please specify your item id")
	if err != nil {
		return err
	}

	var req ActivityRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("Bad request. Please enter some data")
	}

	activity, err := h.service.UpdateActivity(c.Request().Context(), user.ID, bucketID, activityID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"item": activity})
}

// DeleteActivity handles DELETE /api/v1/bucketlists/:id/items/:itemID.
// Responds with the bucket's remaining activities.
func (h *Handler) DeleteActivity(c echo.Context) error {
	user := auth.GetIdentity(c)
	if user == nil {
		return apperror.NewUnauthorized("Unauthorised. Please login")
	}

	bucketID, err := pathID(c, "id", "Please specify the bucket id")
	if err != nil {
		return err
	}
	activityID, err := pathID(c, "itemID", "Please specify your item id")
	if err != nil {
		return err
	}

	remaining, err := h.service.DeleteActivity(c.Request().Context(), user.ID, bucketID, activityID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"items": remaining})
}

// --- Param helpers ---

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name, message string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewValidation(message)
	}
	return id, nil
}

// pagingParams parses optional page/limit query parameters. Absent limit
// means "no pagination"; non-numeric values are a validation failure.
func pagingParams(c echo.Context) (page, limit int, err error) {
	page = 1
	if raw := c.QueryParam("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, apperror.NewValidation("Please enter valid page or limit numbers")
		}
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, apperror.NewValidation("Please enter valid page or limit numbers")
		}
	}
	return page, limit, nil
}
