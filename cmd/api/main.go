package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Owhab/nexacms-sub003/internal/app"
	"github.com/Owhab/nexacms-sub003/internal/config"
	"github.com/Owhab/nexacms-sub003/pkg/logger"
	"github.com/Owhab/nexacms-sub003/pkg/validator"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to read .env file", map[string]interface{}{"error": err.Error()})
	}
	logger.Init()

	if err := run(); err != nil {
		logger.Error(err, "Section service stopped with an error", nil)
		os.Exit(1)
	}
	logger.Info("Section service exited gracefully", nil)
}

func run() error {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		return err
	}
	validator.Init()

	logger.Info("Starting NexaCMS section service", map[string]interface{}{
		"environment":          cfg.Environment,
		"redis":                cfg.EnableRedis,
		"runtime_registration": cfg.EnableRuntimeRegistration,
		"catalog":              cfg.SectionCatalogFile,
	})

	application, err := app.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		if err := application.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received", nil)
	case runErr = <-serverErr:
		logger.Error(runErr, "Server error occurred, initiating shutdown", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return runErr
}
