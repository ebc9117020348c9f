package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/starterpack/webapp/internal/api/flash"
	"github.com/starterpack/webapp/internal/api/metrics"
	"github.com/starterpack/webapp/internal/api/middleware"
	"github.com/starterpack/webapp/internal/core/domain"
	"github.com/starterpack/webapp/internal/core/ports"
)

const (
	loginPage     = "auth/login.html"
	registerPage  = "auth/register.html"
	loginTitle    = "Sign In"
	registerTitle = "Register"
)

type AuthHandler struct {
	auth          ports.AuthService
	sessions      ports.SessionService
	metrics       *metrics.Metrics
	secureCookies bool
	log           zerolog.Logger
}

func NewAuthHandler(auth ports.AuthService, sessions ports.SessionService, m *metrics.Metrics, secureCookies bool, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, metrics: m, secureCookies: secureCookies, log: log}
}

// LoginForm renders the sign-in page.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	if _, ok := middleware.CurrentUser(c); ok {
		return c.Redirect(http.StatusFound, "/")
	}
	p := newPage(c, loginTitle)
	p.Next = c.QueryParam("next")
	return c.Render(http.StatusOK, loginPage, p)
}

// Login verifies credentials and starts a session.
func (h *AuthHandler) Login(c echo.Context) error {
	if _, ok := middleware.CurrentUser(c); ok {
		return c.Redirect(http.StatusFound, "/")
	}
	next := c.QueryParam("next")

	var form loginForm
	if err := c.Bind(&form); err != nil {
		return renderWithError(c, loginPage, loginTitle, msgFillAllFields, next)
	}
	if err := c.Validate(&form); err != nil {
		h.metrics.LoginsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return renderWithError(c, loginPage, loginTitle, msgFillAllFields, next)
	}

	user, err := h.auth.Authenticate(c.Request().Context(), form.Username, form.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		h.metrics.LoginsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return renderWithError(c, loginPage, loginTitle, msgInvalidCredentials, next)
	}
	if err != nil {
		h.metrics.LoginsTotal.WithLabelValues(metrics.ResultError).Inc()
		return err
	}

	sess, err := h.sessions.Issue(user, form.remember())
	if err != nil {
		h.metrics.LoginsTotal.WithLabelValues(metrics.ResultError).Inc()
		return err
	}
	h.setSessionCookie(c, sess)
	h.metrics.LoginsTotal.WithLabelValues(metrics.ResultSuccess).Inc()

	if err := flash.Add(c, flash.Success, "Welcome back, "+user.Username+"!"); err != nil {
		h.log.Warn().Err(err).Msg("welcome notice not queued")
	}
	return c.Redirect(http.StatusFound, safeNext(next))
}

// RegisterForm renders the registration page.
func (h *AuthHandler) RegisterForm(c echo.Context) error {
	if _, ok := middleware.CurrentUser(c); ok {
		return c.Redirect(http.StatusFound, "/")
	}
	return c.Render(http.StatusOK, registerPage, newPage(c, registerTitle))
}

// Register validates the form fully before creating the account.
func (h *AuthHandler) Register(c echo.Context) error {
	if _, ok := middleware.CurrentUser(c); ok {
		return c.Redirect(http.StatusFound, "/")
	}

	var form registerForm
	if err := c.Bind(&form); err != nil {
		return renderWithError(c, registerPage, registerTitle, msgFillAllFields, "")
	}
	if err := c.Validate(&form); err != nil {
		h.metrics.RegistrationsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return renderWithError(c, registerPage, registerTitle, registerMessage(err), "")
	}

	_, err := h.auth.Register(c.Request().Context(), ports.RegisterInput{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
	})
	switch {
	case errors.Is(err, domain.ErrUsernameTaken), errors.Is(err, domain.ErrUserExists):
		h.metrics.RegistrationsTotal.WithLabelValues(metrics.ResultConflict).Inc()
		return renderWithError(c, registerPage, registerTitle, msgUsernameExists, "")
	case errors.Is(err, domain.ErrEmailTaken):
		h.metrics.RegistrationsTotal.WithLabelValues(metrics.ResultConflict).Inc()
		return renderWithError(c, registerPage, registerTitle, msgEmailRegistered, "")
	case err != nil:
		h.metrics.RegistrationsTotal.WithLabelValues(metrics.ResultError).Inc()
		return err
	}

	h.metrics.RegistrationsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	if err := flash.Add(c, flash.Success, msgRegistered); err != nil {
		h.log.Warn().Err(err).Msg("registration notice not queued")
	}
	return c.Redirect(http.StatusFound, "/auth/login")
}

// Logout ends the session. Routed behind middleware.LoginRequired.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil {
		if err := h.sessions.Revoke(c.Request().Context(), cookie.Value); err != nil {
			h.log.Warn().Err(err).Msg("session not revoked, clearing cookie only")
		}
	}
	h.clearSessionCookie(c)
	h.metrics.LogoutsTotal.Inc()

	if err := flash.Add(c, flash.Info, msgLoggedOut); err != nil {
		h.log.Warn().Err(err).Msg("logout notice not queued")
	}
	return c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) setSessionCookie(c echo.Context, sess *domain.Session) {
	cookie := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	// Without remember-me the cookie dies with the browser; the token still expires.
	if sess.Remember {
		cookie.Expires = sess.ExpiresAt
	}
	c.SetCookie(cookie)
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
