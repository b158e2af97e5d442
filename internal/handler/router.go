package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tasklist/tasklist/internal/metrics"
	"github.com/tasklist/tasklist/internal/middleware"
)

// RouterConfig holds the cross-cutting pieces of the router.
type RouterConfig struct {
	Logger             *slog.Logger
	Metrics            metrics.Recorder
	Sessions           middleware.SessionLoader
	RateLimit          middleware.RateLimitConfig
	IsDevelopment      bool
	MaxRequestBodySize int64
}

// NewRouter builds the chi router with the global middleware chain and the
// validated route table.
func NewRouter(hs Handlers, cfg RouterConfig) (*chi.Mux, error) {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger, cfg.Metrics))
	r.Use(middleware.Recoverer(cfg.Logger, http.HandlerFunc(hs.Pages.InternalError)))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
	}
	r.Use(middleware.LoadSession(cfg.Sessions, cfg.Logger))

	opts := MountOptions{
		RequireAuth: middleware.RequireUser(pathLogin),
		RateLimit:   middleware.RateLimitAuth(cfg.RateLimit),
	}
	if err := Mount(r, hs.Routes(), opts); err != nil {
		return nil, err
	}

	r.NotFound(hs.Pages.NotFound)
	r.MethodNotAllowed(hs.Pages.MethodNotAllowed)

	return r, nil
}
