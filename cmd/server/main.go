package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/parley/server/internal/config"
	"codeberg.org/parley/server/internal/logger"
)

// how often expired, never-activated license keys are dropped
const licenseCleanupInterval = 1 * time.Hour

func main() {
	logger.Info("starting parley server")

	// load configuration from environment
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	// create server with all dependencies
	srv, err := NewServer(cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      srv.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// start server in goroutine
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	// start websocket hub
	go srv.hub.Run()

	// start chat eviction sweeper with cancellable context
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	go srv.sweeper.Start(sweepCtx)

	// periodically drop expired license keys
	go func() {
		ticker := time.NewTicker(licenseCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if removed := srv.licenses.CleanupExpired(); removed > 0 {
					logger.Info("expired license keys removed", "count", removed)
				}
			case <-sweepCtx.Done():
				return
			}
		}
	}()

	// wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// stop background sweeps
	sweepCancel()

	logger.Info("shutting down server")

	// notify websocket clients and close connections first
	srv.hub.Shutdown()

	// graceful shutdown with 10 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}
