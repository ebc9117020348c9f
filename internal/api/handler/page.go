package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/starterpack/webapp/internal/api/flash"
	"github.com/starterpack/webapp/internal/api/middleware"
	"github.com/starterpack/webapp/internal/api/web"
)

// newPage collects the per-request template data. Pending flashes are
// consumed here, so call it before anything is written to the response.
func newPage(c echo.Context, title string) web.Page {
	p := web.Page{Title: title, Flashes: flash.Pop(c)}
	if tok, ok := c.Get(echomiddleware.DefaultCSRFConfig.ContextKey).(string); ok {
		p.CSRFToken = tok
	}
	if user, ok := middleware.CurrentUser(c); ok {
		p.CurrentUser = user
	}
	return p
}

// renderWithError re-renders a form page with an inline error, status 200.
func renderWithError(c echo.Context, name, title, msg, next string) error {
	p := newPage(c, title)
	p.Next = next
	p.Flashes = append(p.Flashes, flash.Message{Category: flash.Error, Text: msg})
	return c.Render(http.StatusOK, name, p)
}
