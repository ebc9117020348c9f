package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/starterpack/webapp/docs"
	"github.com/starterpack/webapp/internal/api/handler"
	"github.com/starterpack/webapp/internal/api/metrics"
	"github.com/starterpack/webapp/internal/api/middleware"
	"github.com/starterpack/webapp/internal/api/web"
	"github.com/starterpack/webapp/internal/core/ports"
	"github.com/starterpack/webapp/internal/core/service"
	"github.com/starterpack/webapp/internal/infrastructure/cache"
	"github.com/starterpack/webapp/internal/infrastructure/config"
	"github.com/starterpack/webapp/internal/infrastructure/mail"
)

const loginPath = "/auth/login"

// Deps is the application context: every long-lived collaborator the routes
// need, built once at startup.
type Deps struct {
	Users ports.UserRepository
	// Optional; zero values fall back to no-op or in-process defaults.
	Cache    ports.Cache
	Revoker  ports.TokenRevoker
	Mailer   ports.Mailer
	Checks   map[string]handler.Pinger
	Registry *prometheus.Registry
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, d Deps) (*echo.Echo, error) {
	if d.Cache == nil {
		d.Cache = cache.Nop{}
	}
	if d.Mailer == nil {
		d.Mailer = mail.NewLogMailer(d.Log)
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Services ---
	authService := service.NewAuthService(d.Users, d.Cache, d.Mailer, d.Log)
	userService := service.NewUserService(d.Users, d.Cache, cfg.Cache.DefaultTimeout, d.Log)
	sessionService := service.NewSessionService(service.SessionConfig{
		Secret:      cfg.SecretKey,
		TTL:         cfg.SessionTTL,
		RememberTTL: cfg.RememberCookieDuration,
	}, d.Users, d.Revoker, d.Log)
	m := metrics.New(d.Registry)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	if cfg.MetricsEnabled {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "starterpack",
			Registerer: d.Registry,
			Skipper:    func(c echo.Context) bool { return c.Path() == "/metrics" },
		}))
	}
	e.Use(session.Middleware(newFlashStore(cfg)))
	if cfg.CSRFEnabled {
		e.Use(echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
			Skipper:        skipCSRF,
			TokenLookup:    "form:csrf_token",
			CookieName:     "_csrf",
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSecure:   cfg.IsProduction(),
			CookieSameSite: http.SameSiteLaxMode,
		}))
	}
	e.Use(middleware.LoadCurrentUser(sessionService))

	// --- Pages ---
	mainHandler := handler.NewMainHandler()
	e.GET("/", mainHandler.Index)
	e.GET("/index", mainHandler.Index)
	e.GET("/about", mainHandler.About)

	// --- Auth ---
	authHandler := handler.NewAuthHandler(authService, sessionService, m, cfg.IsProduction(), d.Log)
	authGroup := e.Group("/auth")
	authGroup.GET("/login", authHandler.LoginForm)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/register", authHandler.RegisterForm)
	authGroup.POST("/register", authHandler.Register)
	authGroup.GET("/logout", authHandler.Logout, middleware.LoginRequired(loginPath, d.Log))

	// --- JSON API ---
	apiHandler := handler.NewAPIHandler(authService, userService)
	apiGroup := e.Group("/api", echomiddleware.BodyLimit("1M"))
	apiGroup.GET("/health", apiHandler.Health)
	apiGroup.GET("/version", apiHandler.Version)
	apiGroup.POST("/test-user", apiHandler.CreateTestUser)
	apiGroup.GET("/users", apiHandler.ListUsers)
	apiGroup.POST("/echo", apiHandler.Echo)

	// --- Probes, metrics and docs (no auth required) ---
	checks := map[string]handler.Pinger{"database": d.Users}
	for name, p := range d.Checks {
		checks[name] = p
	}
	healthHandler := handler.NewHealthHandler(checks)
	e.GET("/health/live", healthHandler.Liveness)   // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?

	if cfg.MetricsEnabled {
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Registry}))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}

func newFlashStore(cfg *config.Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.SecretKey))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// skipCSRF exempts JSON and machine endpoints; browsers only post forms to
// the page and auth routes.
func skipCSRF(c echo.Context) bool {
	p := c.Request().URL.Path
	return strings.HasPrefix(p, "/api/") ||
		strings.HasPrefix(p, "/health/") ||
		strings.HasPrefix(p, "/swagger/") ||
		p == "/metrics"
}
