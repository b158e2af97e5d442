// Package main is the entrypoint for the tasklist web server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/tasklist/tasklist/internal/cache"
	"github.com/tasklist/tasklist/internal/config"
	"github.com/tasklist/tasklist/internal/handler"
	"github.com/tasklist/tasklist/internal/metrics"
	"github.com/tasklist/tasklist/internal/middleware"
	"github.com/tasklist/tasklist/internal/migrations"
	"github.com/tasklist/tasklist/internal/repository"
	"github.com/tasklist/tasklist/internal/server"
	"github.com/tasklist/tasklist/internal/service"
	"github.com/tasklist/tasklist/internal/session"
	"github.com/tasklist/tasklist/internal/view"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, closeLog := initLogger(cfg)
	defer closeLog()

	if cfg.MigrateOnStart {
		if err := migrations.Up(ctx, cfg.DatabaseURL); err != nil {
			logger.Error("failed to run migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		logger.Info("database migrations applied")
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		logger.Error("failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		repo.Close()
		logger.Error("failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	var (
		recorder       metrics.Recorder = metrics.NewNoop()
		metricsHandler http.Handler
	)
	if cfg.MetricsEnabled {
		prom := metrics.NewPrometheus()
		recorder = prom
		metricsHandler = prom.Handler()
	}

	sessions := session.NewManager(newSessionStore(cfg, cacheClient), session.Config{
		CookieName: cfg.SessionCookieName,
		TTL:        cfg.SessionTTL,
		Secure:     !cfg.IsDevelopment(),
	})

	accountService := service.NewAccountService(repo, recorder, logger)
	todoService := service.NewTodoService(repo, recorder)

	templates, err := view.New()
	if err != nil {
		logger.Error("failed to parse templates", slog.String("error", err.Error()))
		os.Exit(1)
	}

	pages := handler.New(templates, logger, !cfg.IsDevelopment())
	handlers := handler.Handlers{
		Pages:    pages,
		Accounts: handler.NewAccountHandler(pages, accountService, sessions, recorder, logger),
		Todos:    handler.NewTodoHandler(pages, todoService, logger),
		Health:   handler.NewHealthHandler(repo, cacheClient, logger),
		Metrics:  metricsHandler,
	}

	router, err := handler.NewRouter(handlers, handler.RouterConfig{
		Logger:   logger,
		Metrics:  recorder,
		Sessions: sessions,
		RateLimit: middleware.RateLimitConfig{
			Logger:    logger,
			Limiter:   cacheClient,
			Enabled:   cfg.RateLimitAuthEnabled,
			PerMinute: cfg.RateLimitAuthPerMinute,
			Burst:     cfg.RateLimitAuthBurst,
		},
		IsDevelopment:      cfg.IsDevelopment(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})
	if err != nil {
		logger.Error("invalid route table", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := server.New(
		router,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// LIFO: Redis closes before the pool.
	srv.OnShutdown("postgres", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(ctx context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"session_backend", cfg.SessionBackend,
		"metrics_enabled", cfg.MetricsEnabled,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		closeLog()
		os.Exit(1)
	}
}

// newSessionStore picks the session backend. Config.Validate has already
// rejected unknown backends and short secrets.
func newSessionStore(cfg *config.Config, cacheClient *cache.Cache) session.Store {
	if cfg.SessionBackend == config.SessionBackendCookie {
		return session.NewCookieStore([]byte(cfg.SessionSecret), cfg.SessionTTL)
	}
	return session.NewRedisStore(cacheClient, cfg.SessionTTL)
}
