package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/starterpack/webapp/internal/api/web"
)

func newErrorContext(t *testing.T, method, path string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	renderer, err := web.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e := echo.New()
	e.Renderer = renderer
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(method, path, nil), rec), rec
}

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		name     string
		method   string
		path     string
		err      error
		wantCode int
		wantType string
		wantBody string
	}{
		{"page not found", http.MethodGet, "/nope", echo.ErrNotFound, http.StatusNotFound, "text/html", "Page Not Found"},
		{"api not found is html", http.MethodGet, "/api/nope", echo.ErrNotFound, http.StatusNotFound, "text/html", "Page Not Found"},
		{"unexpected error", http.MethodGet, "/", errors.New("db exploded"), http.StatusInternalServerError, "text/html", "Internal Server Error"},
		{"page client error", http.MethodPost, "/auth/login", echo.NewHTTPError(http.StatusForbidden, "invalid csrf token"), http.StatusForbidden, "text/html", "invalid csrf token"},
		{"api client error", http.MethodPost, "/api/echo", echo.ErrStatusRequestEntityTooLarge, http.StatusRequestEntityTooLarge, "application/json", `"status":"error"`},
		{"head request", http.MethodHead, "/nope", echo.ErrNotFound, http.StatusNotFound, "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newErrorContext(t, tc.method, tc.path)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			if !strings.Contains(rec.Header().Get(echo.HeaderContentType), tc.wantType) {
				t.Fatalf("expected content type %q, got %q", tc.wantType, rec.Header().Get(echo.HeaderContentType))
			}
			if !strings.Contains(rec.Body.String(), tc.wantBody) {
				t.Fatalf("expected %q in body: %s", tc.wantBody, rec.Body.String())
			}
		})
	}
}

func TestHTTPErrorHandler_DoesNotLeakCause(t *testing.T) {
	c, rec := newErrorContext(t, http.MethodGet, "/")

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("password=hunter2"), c)

	if strings.Contains(rec.Body.String(), "hunter2") {
		t.Fatalf("internal error leaked into the page")
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	c, rec := newErrorContext(t, http.MethodGet, "/")
	_ = c.String(http.StatusOK, "partial")

	NewHTTPErrorHandler(zerolog.Nop())(echo.ErrNotFound, c)

	if rec.Code != http.StatusOK || rec.Body.String() != "partial" {
		t.Fatalf("committed response must be left alone")
	}
}
