package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/casedesk/internal/config"
	"github.com/JonMunkholm/casedesk/internal/core"
	"github.com/JonMunkholm/casedesk/internal/logging"
	"github.com/JonMunkholm/casedesk/internal/tracker"
	"github.com/JonMunkholm/casedesk/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded", "config", cfg.String())

	client, err := tracker.New(cfg.Tracker.BaseURL, tracker.WithTimeout(cfg.Tracker.Timeout))
	if err != nil {
		slog.Error("failed to create tracker client", "error", err)
		os.Exit(1)
	}

	workspaces, err := core.NewWorkspaceStore(cfg.Import.WorkspaceCacheSize)
	if err != nil {
		slog.Error("failed to create workspace store", "error", err)
		os.Exit(1)
	}

	service := core.NewService(client, nil)
	server := web.NewServer(cfg, service, workspaces)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let a running evidence upload finish before closing connections
		guard := service.Guard()
		if guard.Active() {
			slog.Info("waiting for evidence processing to complete", "file", guard.Status().File)
			if err := guard.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("evidence processing did not complete in time", "error", err)
			} else {
				slog.Info("evidence processing completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
