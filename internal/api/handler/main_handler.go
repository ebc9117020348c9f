package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// MainHandler serves the static marketing pages.
type MainHandler struct{}

func NewMainHandler() *MainHandler {
	return &MainHandler{}
}

func (h *MainHandler) Index(c echo.Context) error {
	return c.Render(http.StatusOK, "main/index.html", newPage(c, "Home"))
}

func (h *MainHandler) About(c echo.Context) error {
	return c.Render(http.StatusOK, "main/about.html", newPage(c, "About"))
}
