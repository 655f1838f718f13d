package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/boddenberg/licenciamento-bfa-go/internal/config"
	"github.com/boddenberg/licenciamento-bfa-go/internal/handler"
	"github.com/boddenberg/licenciamento-bfa-go/internal/infra/cache"
	"github.com/boddenberg/licenciamento-bfa-go/internal/infra/client"
	"github.com/boddenberg/licenciamento-bfa-go/internal/infra/observability"
	"github.com/boddenberg/licenciamento-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/licenciamento-bfa-go/internal/service"
	"github.com/boddenberg/licenciamento-bfa-go/internal/session"
)

func main() {
	// --- Config ---
	cfg, err := config.Load(".")
	if err != nil {
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("backend_url", cfg.BackendURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Bool("auth_required", cfg.AuthRequired),
		zap.Bool("jwt_verification", cfg.JWTSecret != ""),
		zap.Strings("cors_origins", cfg.CORSOrigins),
		zap.Int("rate_limit", cfg.RateLimit),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "licenciamento-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Sessions ---
	sessions := cache.New[*session.Session](cfg.SessionTTL)
	defer sessions.Close()

	// --- Backend client ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	backend := client.New(
		httpClient,
		cfg.BackendURL,
		resilience.NewBulkhead(cfg.MaxConcurrency),
		logger,
		client.WithMetrics(metrics),
	)

	// --- Services ---
	svc := handler.Services{
		Companies:  service.NewCompanyService(backend, metrics, logger),
		Licenses:   service.NewLicenseService(backend, metrics, logger),
		Compliance: service.NewComplianceService(backend, backend, metrics, logger),
		Dashboard:  service.NewDashboardService(backend, backend, metrics, logger),
		Auth:       service.NewAuthService(backend, sessions, cfg.JWTSecret, cfg.SessionTTL, metrics, logger),
		Backend:    backend,
	}
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set: backend tokens are decoded without signature verification")
	}

	// --- Router ---
	router := handler.NewRouter(svc, metrics, handler.RouterConfig{
		AuthRequired: cfg.AuthRequired,
		CORSOrigins:  cfg.CORSOrigins,
		RateLimit:    cfg.RateLimit,
	}, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
