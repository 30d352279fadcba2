package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hirewatch-dev/hirewatch/internal/config"
	"github.com/hirewatch-dev/hirewatch/internal/monitor"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Poll once, print results, exit",
	Long:  "One-shot cycle: fetches every enabled source, prints what was found, exits. Nothing is persisted.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("check mode: nothing will be persisted")
	cfg.Persistence = config.PersistenceConfig{}

	handle, cleanup := monitor.Build(cfg, logger)
	defer cleanup()

	m, ok := handle.Monitor()
	if !ok {
		logger.Error("monitor degraded", "reason", handle.Reason())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out, err := m.RunOnce(ctx)
	if err != nil {
		logger.Error("cycle failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("fetched %d candidates, %d new\n", out.TotalFetched, out.NewCount)
	for _, se := range out.PerSourceErrors {
		fmt.Printf("source %s failed: %v\n", se.Source, se.Err)
	}
	for _, p := range m.Postings(0) {
		fmt.Printf("  %s — %s\n    %s\n", p.Title, p.Location, p.URL)
	}

	logger.Info("check complete")
	return nil
}
