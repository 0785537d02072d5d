package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maati-dev/maati/internal/server"
	"github.com/maati-dev/maati/internal/server/config"
	"github.com/maati-dev/maati/internal/server/handlers"
	"github.com/maati-dev/maati/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("starting maati server",
		slog.String("version", Version),
		slog.String("listen_addr", cfg.ListenAddr),
		slog.String("db_path", cfg.DatabasePath))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	jwtConfig := handlers.JWTConfig{
		Secret:          []byte(cfg.JWTSecret),
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	}

	router := server.NewRouter(logger, server.Storages{
		Users:         store,
		Tokens:        store,
		Villages:      store,
		Families:      store,
		Meetings:      store,
		Buildings:     store,
		Feedback:      store,
		Verifications: store,
		Materials:     store,
		Logs:          store,
		Analytics:     store,
		Health:        store,
	}, jwtConfig, Version)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go maintenanceLoop(ctx, logger, store, cfg.LogRetention)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}

// maintenanceLoop periodically removes expired refresh tokens and old
// activity-log entries.
func maintenanceLoop(ctx context.Context, logger *slog.Logger, store *sqlite.Storage, logRetention time.Duration) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if deleted, err := store.DeleteExpiredTokens(ctx); err != nil {
				logger.Warn("failed to delete expired tokens", slog.Any("error", err))
			} else if deleted > 0 {
				logger.Info("deleted expired refresh tokens", slog.Int("count", deleted))
			}

			cutoff := time.Now().Add(-logRetention)
			if pruned, err := store.PruneLogs(ctx, cutoff); err != nil {
				logger.Warn("failed to prune activity logs", slog.Any("error", err))
			} else if pruned > 0 {
				logger.Info("pruned activity logs", slog.Int("count", pruned))
			}
		}
	}
}

func newLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func printVersion() {
	fmt.Printf("MAATI Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
