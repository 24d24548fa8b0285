package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/andela/bucketlist/internal/apperror"
)

// TokenHeader is the request header carrying the bearer token. The token
// service itself is transport-agnostic; this is the boundary's choice of
// transport for calls after login.
const TokenHeader = "token"

// SessionCookieName is the HTTP cookie holding the session reference id.
// Exported because the CSRF guard keys off its presence: only requests the
// browser authenticates automatically need cross-site protection.
const SessionCookieName = "bucketlist_session"

// contextKeyResolution is the Echo context key for the request's resolution.
const contextKeyResolution = "auth_resolution"

// RequireAuth returns the authorization gate: middleware that resolves the
// request's credentials and injects the resolved identity into the request
// context. On failure it short-circuits with a 401 before the wrapped
// handler runs -- no side effects, no partial execution. The only side
// effect of success is the session cache refresh inside Resolve.
func RequireAuth(service AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.Request().Header.Get(TokenHeader)
			sessionID := getSessionID(c)

			resolution, err := service.Resolve(c.Request().Context(), token, sessionID)
			if err != nil {
				// A dead session cookie is worthless to the client; drop it.
				if sessionID != "" {
					clearSessionCookie(c)
				}
				return err
			}

			c.Set(contextKeyResolution, resolution)
			return next(c)
		}
	}
}

// RequireTokenAuth returns middleware for sensitive mutations (password
// change, account deletion). It runs after RequireAuth and refuses
// resolutions that did not come from a verified token: the session
// reference re-trusts an old verification and is not strong enough here.
func RequireTokenAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res := GetResolution(c)
			if res == nil {
				return apperror.NewUnauthorized("Unauthorised. Please login")
			}
			if !res.ViaToken {
				return apperror.NewForbidden("This operation requires your token. Please supply it and retry")
			}
			return next(c)
		}
	}
}

// --- Exported getters for handlers in other packages ---

// GetResolution retrieves the request's resolution from the Echo context.
// Returns nil if the request did not pass through RequireAuth.
func GetResolution(c echo.Context) *Resolution {
	res, ok := c.Get(contextKeyResolution).(*Resolution)
	if !ok {
		return nil
	}
	return res
}

// GetIdentity retrieves the authenticated user from the Echo context.
// Returns nil if the request is not authenticated.
func GetIdentity(c echo.Context) *User {
	res := GetResolution(c)
	if res == nil {
		return nil
	}
	return res.User
}

// --- Session cookie plumbing ---

// getSessionID reads the session reference id from the request cookie.
func getSessionID(c echo.Context) string {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// setSessionCookie writes the session cookie on a successful login or
// registration.
func setSessionCookie(c echo.Context, sessionID string) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie.
func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	})
}
