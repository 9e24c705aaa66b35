package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/HammerMeetNail/butterfly/internal/database"
	"github.com/HammerMeetNail/butterfly/internal/handlers"
	"github.com/HammerMeetNail/butterfly/internal/middleware"
	"github.com/HammerMeetNail/butterfly/migrations"
)

func newServeCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply migrations and run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(*envFile)
		},
	}
}

func runServe(envFile string) error {
	cfg, logger, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	logger.Info("Starting butterfly server...")

	if err := migrateUp(cfg.Database.DSN()); err != nil {
		return err
	}
	logger.Info("Migrations completed")

	a, err := newApp(cfg, logger, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, a.db); err != nil {
		logger.Warn("Pool metrics not registered", map[string]interface{}{"error": err.Error()})
	}

	handler := newRouter(routerDeps{
		Health:         handlers.NewHealthHandler(a.db, a.redis),
		Auth:           handlers.NewAuthHandler(a.users, a.auth, a.tokens),
		Friends:        handlers.NewFriendHandler(a.friends),
		Users:          handlers.NewUserHandler(a.directory),
		AuthMiddleware: middleware.NewAuthMiddleware(a.tokens),
		AuthLimiter:    middleware.NewAuthRateLimiter(middleware.NewRedisRateStore(a.redis.Client), cfg.Auth.RateLimit),
		Security:       middleware.NewSecurityHeaders(cfg.Server.Secure),
		RequestLogger:  middleware.NewRequestLogger(logger),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        promhttp.Handler(),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", map[string]interface{}{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", map[string]interface{}{"addr": addr})
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}

func migrateUp(dsn string) error {
	migrator, err := database.NewMigrator(dsn, migrations.FS)
	if err != nil {
		return err
	}
	defer func() { _ = migrator.Close() }()
	return migrator.Up()
}
