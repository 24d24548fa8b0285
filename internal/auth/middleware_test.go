package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/andela/bucketlist/internal/apperror"
)

// mockAuthService implements AuthService for middleware testing.
type mockAuthService struct {
	resolveFn func(ctx context.Context, token, sessionID string) (*Resolution, error)
}

func (m *mockAuthService) Register(ctx context.Context, creds Credentials) (*LoginResult, error) {
	return nil, nil
}

func (m *mockAuthService) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	return nil, nil
}

func (m *mockAuthService) Resolve(ctx context.Context, token, sessionID string) (*Resolution, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, token, sessionID)
	}
	return nil, apperror.NewUnauthorized("Unauthorised. Please login")
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error { return nil }

func (m *mockAuthService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	return nil
}

func (m *mockAuthService) ResetPassword(ctx context.Context, email string) error { return nil }

func (m *mockAuthService) DeleteAccount(ctx context.Context, userID int64, sessionID string) error {
	return nil
}

// runGate sends a request through RequireAuth (and optionally
// RequireTokenAuth) into a probe handler, returning the recorder, the
// middleware error, and whether the probe handler ran.
func runGate(t *testing.T, svc AuthService, tokenGate bool, prep func(*http.Request)) (*httptest.ResponseRecorder, error, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if prep != nil {
		prep(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var handlerRan bool
	probe := func(c echo.Context) error {
		handlerRan = true
		return c.NoContent(http.StatusOK)
	}

	h := probe
	if tokenGate {
		h = RequireTokenAuth()(h)
	}
	h = RequireAuth(svc)(h)

	return rec, h(c), handlerRan
}

func TestRequireAuth_PassesCredentialsToResolver(t *testing.T) {
	var gotToken, gotSession string
	svc := &mockAuthService{
		resolveFn: func(ctx context.Context, token, sessionID string) (*Resolution, error) {
			gotToken = token
			gotSession = sessionID
			return &Resolution{User: &User{ID: 7, Email: "alice@example.com"}, ViaToken: true}, nil
		},
	}

	_, err, ran := runGate(t, svc, false, func(req *http.Request) {
		req.Header.Set(TokenHeader, "the-token")
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "the-session"})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Fatal("expected wrapped handler to run")
	}
	if gotToken != "the-token" {
		t.Errorf("expected token header forwarded, got %q", gotToken)
	}
	if gotSession != "the-session" {
		t.Errorf("expected session cookie forwarded, got %q", gotSession)
	}
}

func TestRequireAuth_ShortCircuitsOnFailure(t *testing.T) {
	svc := &mockAuthService{} // Resolve defaults to unauthorized.

	_, err, ran := runGate(t, svc, false, nil)
	assertAppError(t, err, 401)
	if ran {
		t.Error("rejected request must not reach the wrapped handler")
	}
}

func TestRequireAuth_ClearsDeadSessionCookie(t *testing.T) {
	svc := &mockAuthService{}

	rec, err, _ := runGate(t, svc, false, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale-session"})
	})
	assertAppError(t, err, 401)

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected stale session cookie to be expired on rejection")
	}
}

func TestRequireAuth_InjectsIdentity(t *testing.T) {
	svc := &mockAuthService{
		resolveFn: func(ctx context.Context, token, sessionID string) (*Resolution, error) {
			return &Resolution{User: &User{ID: 7, Email: "alice@example.com"}, ViaToken: true}, nil
		},
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequireAuth(svc)(func(c echo.Context) error {
		user := GetIdentity(c)
		if user == nil {
			t.Fatal("expected identity in context")
		}
		if user.ID != 7 {
			t.Errorf("expected user id 7, got %d", user.ID)
		}
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireTokenAuth_RefusesSessionOnly(t *testing.T) {
	svc := &mockAuthService{
		resolveFn: func(ctx context.Context, token, sessionID string) (*Resolution, error) {
			return &Resolution{User: &User{ID: 7, Email: "alice@example.com"}, ViaToken: false}, nil
		},
	}

	_, err, ran := runGate(t, svc, true, nil)
	assertAppError(t, err, 403)
	if ran {
		t.Error("session-only caller must not reach a token-required handler")
	}
}

func TestRequireTokenAuth_AllowsTokenResolution(t *testing.T) {
	svc := &mockAuthService{
		resolveFn: func(ctx context.Context, token, sessionID string) (*Resolution, error) {
			return &Resolution{User: &User{ID: 7, Email: "alice@example.com"}, ViaToken: true}, nil
		},
	}

	_, err, ran := runGate(t, svc, true, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Error("expected token-bearing caller to pass the gate")
	}
}

func TestGetIdentity_Unauthenticated(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	if GetIdentity(c) != nil {
		t.Error("expected nil identity without RequireAuth")
	}
	if GetResolution(c) != nil {
		t.Error("expected nil resolution without RequireAuth")
	}
}
