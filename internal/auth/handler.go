package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/andela/bucketlist/internal/apperror"
)

// Handler handles HTTP requests for authentication. Handlers are thin:
// they bind the request, call the service, and shape the response. No
// business logic lives here.
type Handler struct {
	service AuthService
}

// NewHandler creates a new auth handler with the given service.
func NewHandler(service AuthService) *Handler {
	return &Handler{service: service}
}

// Register creates a new account (POST /auth/register). Responds 201 with
// the new user and a signed token; the session cookie is set alongside so
// cookie-only clients work immediately.
func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("Bad request. Please enter some data")
	}

	result, err := h.service.Register(c.Request().Context(), Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	setSessionCookie(c, result.SessionID)
	return c.JSON(http.StatusCreated, map[string]any{
		"user":  result.User,
		"token": result.Token,
	})
}

// Login authenticates an existing account (POST /auth/login).
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("Bad request. Please enter some data")
	}

	result, err := h.service.Login(c.Request().Context(), Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	setSessionCookie(c, result.SessionID)
	return c.JSON(http.StatusOK, map[string]any{
		"user":  result.User,
		"token": result.Token,
	})
}

// Logout destroys the session reference and clears the cookie
// (POST /auth/logout). Outstanding tokens remain valid until expiry;
// logout only clears client-held session state.
func (h *Handler) Logout(c echo.Context) error {
	if sessionID := getSessionID(c); sessionID != "" {
		// Ignore errors -- the cookie is cleared regardless.
		_ = h.service.Logout(c.Request().Context(), sessionID)
	}
	clearSessionCookie(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

// ResetPassword emails a replacement password (POST /auth/reset-password).
func (h *Handler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("Bad request. Please enter some data")
	}

	if err := h.service.ResetPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "A new password has been sent to your email address",
	})
}

// ChangePassword replaces the caller's password (PUT /auth/password).
// Routed behind RequireTokenAuth: a session reference alone cannot reach it.
func (h *Handler) ChangePassword(c echo.Context) error {
	user := GetIdentity(c)
	if user == nil {
		return apperror.NewUnauthorized("Unauthorised. Please login")
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewValidation("Bad request. Please enter some data")
	}

	if err := h.service.ChangePassword(c.Request().Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Password updated"})
}

// DeleteAccount removes the caller's identity and everything it owns
// (DELETE /auth/account). Routed behind RequireTokenAuth.
func (h *Handler) DeleteAccount(c echo.Context) error {
	user := GetIdentity(c)
	if user == nil {
		return apperror.NewUnauthorized("Unauthorised. Please login")
	}

	if err := h.service.DeleteAccount(c.Request().Context(), user.ID, getSessionID(c)); err != nil {
		return err
	}

	clearSessionCookie(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "Account deleted"})
}

// Callback is an authenticated probe (GET|POST /api/v1/callback): external
// agents use it to confirm their credentials still resolve.
func (h *Handler) Callback(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"success": "Authorized"})
}
