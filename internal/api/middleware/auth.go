package middleware

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/starterpack/webapp/internal/api/flash"
	"github.com/starterpack/webapp/internal/core/domain"
	"github.com/starterpack/webapp/internal/core/ports"
)

// SessionCookieName carries the signed session token.
const SessionCookieName = "session"

const userContextKey = "current_user"

// LoginMessage is flashed when an anonymous visitor hits a protected page.
const LoginMessage = "Please log in to access this page."

// LoadCurrentUser resolves the session cookie and stores the user in the
// request context. Anonymous requests pass through untouched.
func LoadCurrentUser(sessions ports.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err == nil && cookie.Value != "" {
				if user, ok := sessions.ResolveCurrentUser(c.Request().Context(), cookie.Value); ok {
					SetCurrentUser(c, user)
				}
			}
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user, if any.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(userContextKey).(*domain.User)
	return user, ok && user != nil
}

// SetCurrentUser stores user as the authenticated user for this request.
func SetCurrentUser(c echo.Context, user *domain.User) {
	c.Set(userContextKey, user)
}

// LoginRequired redirects anonymous visitors to loginPath, remembering where
// they were headed in the next query parameter.
func LoginRequired(loginPath string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := CurrentUser(c); ok {
				return next(c)
			}
			if err := flash.Add(c, flash.Info, LoginMessage); err != nil {
				log.Warn().Err(err).Msg("login notice not queued")
			}
			target := loginPath + "?next=" + url.QueryEscape(c.Request().URL.RequestURI())
			return c.Redirect(http.StatusFound, target)
		}
	}
}
