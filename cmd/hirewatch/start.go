package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hirewatch-dev/hirewatch/internal/monitor"
	"github.com/hirewatch-dev/hirewatch/internal/server"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the monitoring daemon",
	Long:  "Start the poll loop and the HTTP API; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"interval", cfg.PollInterval.String(),
		"sources", len(cfg.Sources),
		"persistence", cfg.Persistence.Enabled,
		"notification", cfg.Notification.Type,
	)

	handle, cleanup := monitor.Build(cfg, logger)
	defer cleanup()

	if m, ok := handle.Monitor(); ok {
		m.Start()
	} else {
		// Serve the API anyway so /api/health can report what went wrong.
		logger.Error("monitor degraded", "reason", handle.Reason())
	}

	srv := server.New(server.Options{
		Handle:  handle,
		Addr:    cfg.Server.Addr(),
		Logger:  logger,
		Version: version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}

	logger.Info("goodbye")
	return nil
}
