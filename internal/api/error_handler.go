package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/starterpack/webapp/internal/api/middleware"
	"github.com/starterpack/webapp/internal/api/web"
)

// errorResponse is the JSON error envelope used under /api.
type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders errors/404.html for unknown routes and errors/500.html for
//     anything unexpected, logging the cause without leaking it.
//   - Renders other HTTP errors (CSRF, method not allowed) as a generic page,
//     or as {"status":"error","message":...} under /api.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)

		var renderErr error
		switch {
		case c.Request().Method == http.MethodHead:
			renderErr = c.NoContent(code)
		case code == http.StatusNotFound:
			renderErr = c.Render(code, "errors/404.html", errorPage(c, code, "Page Not Found", msg))
		case code >= http.StatusInternalServerError:
			renderErr = c.Render(code, "errors/500.html", errorPage(c, code, "Internal Server Error", msg))
		case strings.HasPrefix(c.Request().URL.Path, "/api"):
			renderErr = c.JSON(code, errorResponse{Status: "error", Message: msg})
		default:
			renderErr = c.Render(code, "errors/error.html", errorPage(c, code, http.StatusText(code), msg))
		}

		if renderErr != nil {
			log.Error().Err(renderErr).Int("status", code).Msg("error page not rendered")
			_ = c.String(code, http.StatusText(code))
		}
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (router 404/405, CSRF, bind failures).
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}

func errorPage(c echo.Context, code int, title, msg string) web.Page {
	p := web.Page{Title: title, Code: code, Message: msg}
	if user, ok := middleware.CurrentUser(c); ok {
		p.CurrentUser = user
	}
	return p
}
