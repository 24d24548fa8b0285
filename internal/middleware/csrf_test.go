package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

const (
	testSessionCookie = "bucketlist_session"
	testTokenHeader   = "token"
)

// runCSRF sends one request through the CSRF guard into a probe handler,
// returning the recorder and whether the handler ran.
func runCSRF(t *testing.T, method string, prep func(*http.Request)) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/api/v1/bucketlists", nil)
	if prep != nil {
		prep(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var handlerRan bool
	h := CSRF(testSessionCookie, testTokenHeader)(func(c echo.Context) error {
		handlerRan = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return rec, handlerRan
}

func TestCSRF_SafeMethodSetsCookie(t *testing.T) {
	rec, ran := runCSRF(t, http.MethodGet, nil)
	if !ran {
		t.Fatal("expected safe method to pass")
	}

	var issued *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == csrfCookieName {
			issued = c
		}
	}
	if issued == nil {
		t.Fatal("expected a CSRF cookie to be issued")
	}
	if len(issued.Value) != 64 {
		t.Errorf("expected 64-char token, got %d chars", len(issued.Value))
	}
	if issued.HttpOnly {
		t.Error("CSRF cookie must be readable by the client")
	}
}

func TestCSRF_SessionMutationWithoutHeader(t *testing.T) {
	rec, ran := runCSRF(t, http.MethodDelete, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: testSessionCookie, Value: "live-session"})
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "known-token"})
	})
	if ran {
		t.Error("session-cookie mutation without the CSRF header must be refused")
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestCSRF_SessionMutationWithMatchingHeader(t *testing.T) {
	_, ran := runCSRF(t, http.MethodPost, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: testSessionCookie, Value: "live-session"})
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "known-token"})
		req.Header.Set(CSRFHeader, "known-token")
	})
	if !ran {
		t.Error("expected matching cookie and header to pass")
	}
}

func TestCSRF_SessionMutationWithMismatchedHeader(t *testing.T) {
	rec, ran := runCSRF(t, http.MethodPut, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: testSessionCookie, Value: "live-session"})
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "known-token"})
		req.Header.Set(CSRFHeader, "guessed-token")
	})
	if ran {
		t.Error("mismatched CSRF header must be refused")
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestCSRF_TokenHeaderCallerExempt(t *testing.T) {
	// A bearer token is supplied explicitly per request; the browser never
	// attaches it on its own, so cross-site riding cannot use it.
	_, ran := runCSRF(t, http.MethodDelete, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: testSessionCookie, Value: "live-session"})
		req.Header.Set(testTokenHeader, "signed-token")
	})
	if !ran {
		t.Error("expected token-header caller to bypass CSRF validation")
	}
}

func TestCSRF_NoSessionCookieExempt(t *testing.T) {
	// No ambient credential, nothing to ride: login/register style calls
	// from non-browser clients must not need a CSRF handshake.
	_, ran := runCSRF(t, http.MethodPost, nil)
	if !ran {
		t.Error("expected request without a session cookie to pass")
	}
}
