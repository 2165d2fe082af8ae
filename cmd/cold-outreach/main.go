package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/api"
	"github.com/mikey/cold-outreach/internal/config"
	"github.com/mikey/cold-outreach/internal/core"
	"github.com/mikey/cold-outreach/internal/di"
	"github.com/mikey/cold-outreach/internal/scheduler"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	server *api.Server,
	sched *scheduler.Scheduler,
	jobStore core.JobStore,
	leadStore core.LeadStore,
) error {
	defer logger.Sync()

	// Recover persisted jobs before accepting traffic
	if err := sched.Start(context.Background()); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
		return err
	}

	addr := cfg.GetString("server.listen_address")
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("address", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down HTTP server", zap.Error(err))
	}

	sched.Stop()

	if err := leadStore.Persist(); err != nil {
		logger.Error("Failed to persist lead store", zap.Error(err))
	}
	if err := jobStore.Close(); err != nil {
		logger.Error("Failed to close job store", zap.Error(err))
	}

	logger.Info("Shutdown complete")
	return nil
}
