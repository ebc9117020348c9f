// Package web holds the embedded HTML templates and the echo renderer for them.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/starterpack/webapp/internal/api/flash"
	"github.com/starterpack/webapp/internal/core/domain"
)

//go:embed templates
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Page is the data every template receives.
type Page struct {
	Title       string
	Flashes     []flash.Message
	CSRFToken   string
	CurrentUser *domain.User
	// Next is the post-login destination carried through the login form.
	Next string
	// Code and Message are set on error pages only.
	Code    int
	Message string
}

// Renderer renders pages by name, e.g. "auth/login.html", inside the layout.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every embedded page together with the shared layout.
func NewRenderer() (*Renderer, error) {
	pages := make(map[string]*template.Template)
	err := fs.WalkDir(templateFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path == layoutFile {
			return nil
		}
		name := strings.TrimPrefix(path, "templates/")
		t, err := template.ParseFS(templateFS, layoutFile, path)
		if err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Renderer{pages: pages}, nil
}

// Render satisfies echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
