// Package main is the entrypoint for the vibecheck API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sgoulden/vibecheck/internal/ai"
	"github.com/sgoulden/vibecheck/internal/analysis"
	"github.com/sgoulden/vibecheck/internal/api"
	"github.com/sgoulden/vibecheck/internal/api/handler"
	mw "github.com/sgoulden/vibecheck/internal/api/middleware"
	"github.com/sgoulden/vibecheck/internal/api/response"
	"github.com/sgoulden/vibecheck/internal/auth"
	"github.com/sgoulden/vibecheck/internal/cache"
	"github.com/sgoulden/vibecheck/internal/config"
	"github.com/sgoulden/vibecheck/internal/spotify"
	"github.com/sgoulden/vibecheck/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// 1. Load config; .env is optional, real env vars win
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create AI provider
	aiProvider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	slog.Info("AI provider initialized", "provider", aiProvider.Name())

	// 6. Build services
	pgStore := store.NewPostgresStore(pool)
	spotifyClient := spotify.NewHTTPClient(cfg.Spotify)

	authService := auth.NewService(pgStore, redisCache, spotifyClient, cfg.Auth, logger)
	tokenService := analysis.NewTokenService(pgStore, spotifyClient, logger)
	collector := analysis.NewCollector(spotifyClient, logger)
	shareTokens := analysis.NewShareTokenIssuer(pgStore)
	analysisService := analysis.NewService(
		pgStore, redisCache, tokenService, collector, shareTokens,
		aiProvider, cfg.AI.InferenceTimeout, logger,
	)

	// 7. Build router with dependencies
	deps := api.Dependencies{
		Auth:        mw.NewAuth(authService),
		RateLimit:   mw.NewRateLimit(redisCache, cfg.Server.RateLimitPerMin),
		CORSOrigins: cfg.Server.CORSOrigins,

		HealthHandler:   healthHandler(pgStore, redisCache),
		LoginHandler:    handler.NewLoginHandler(authService),
		CallbackHandler: handler.NewCallbackHandler(authService, cfg.Server.FrontendURL),
		MeHandler:       handler.NewMeHandler(pgStore),

		BeginAnalysisHandler:  handler.NewBeginAnalysisHandler(analysisService),
		AnalysisStatusHandler: handler.NewAnalysisStatusHandler(analysisService),
		AnalysisResultHandler: handler.NewAnalysisResultHandler(analysisService),

		SharedResultHandler: handler.NewSharedResultHandler(analysisService),
	}

	router := api.NewRouter(deps)

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
