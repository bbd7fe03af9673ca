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

	"github.com/timmy/musicmatch/internal/api"
	"github.com/timmy/musicmatch/internal/app"
	"github.com/timmy/musicmatch/internal/config"
	"github.com/timmy/musicmatch/internal/logger"
)

func main() {
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// CONFIG_PATH overrides the default search locations in production
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize application")
	}
	defer a.Close()

	// Serve the last completed model right away; an empty database just means untrained.
	restored, err := a.Training.Restore(ctx)
	switch {
	case err != nil:
		appLogger.WithError(err).Warn("Failed to restore snapshot, starting untrained")
	case restored:
		appLogger.WithField(logger.FieldSnapshot, a.Snapshots.Load().Version()).Info("Restored snapshot")
	default:
		appLogger.Info("No trained snapshot found, POST /api/v1/admin/train to build one")
	}

	router := api.SetupRouter(api.Services{
		Snapshots:       a.Snapshots,
		Recommendations: a.Recommendations,
		Training:        a.Training,
	}, cfg.Server, appLogger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
