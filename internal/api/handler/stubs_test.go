package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/starterpack/webapp/internal/api/middleware"
	"github.com/starterpack/webapp/internal/api/web"
	"github.com/starterpack/webapp/internal/core/domain"
	"github.com/starterpack/webapp/internal/core/ports"
)

var errBoom = errors.New("boom")

type stubAuthService struct {
	registerFn       func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	authenticateFn   func(ctx context.Context, username, password string) (*domain.User, error)
	createTestUserFn func(ctx context.Context) (*domain.User, error)
	registerCalls    int
	authCalls        int
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	s.registerCalls++
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	s.authCalls++
	return s.authenticateFn(ctx, username, password)
}

func (s *stubAuthService) CreateTestUser(ctx context.Context) (*domain.User, error) {
	return s.createTestUserFn(ctx)
}

type stubUserService struct {
	listFn func(ctx context.Context) ([]domain.User, error)
}

func (s *stubUserService) List(ctx context.Context) ([]domain.User, error) {
	return s.listFn(ctx)
}

type stubSessionService struct {
	issueFn  func(user *domain.User, remember bool) (*domain.Session, error)
	revoked  []string
	revokeFn func(token string) error
}

func (s *stubSessionService) Issue(user *domain.User, remember bool) (*domain.Session, error) {
	return s.issueFn(user, remember)
}

func (s *stubSessionService) ResolveCurrentUser(context.Context, string) (*domain.User, bool) {
	return nil, false
}

func (s *stubSessionService) Revoke(_ context.Context, token string) error {
	s.revoked = append(s.revoked, token)
	if s.revokeFn != nil {
		return s.revokeFn(token)
	}
	return nil
}

// newTestEcho wires the renderer, validator and flash store the handlers
// expect from the router.
func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()

	renderer, err := web.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e := echo.New()
	e.Renderer = renderer
	e.Validator = NewValidator()
	e.Use(session.Middleware(sessions.NewCookieStore([]byte("test-secret"))))
	return e
}

// asUser marks every request as signed in.
func asUser(user *domain.User) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			middleware.SetCurrentUser(c, user)
			return next(c)
		}
	}
}

func postForm(e *echo.Echo, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func get(e *echo.Echo, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}
