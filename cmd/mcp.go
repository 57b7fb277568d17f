package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	service "github.com/okian/matchload/internal/app"
	"github.com/okian/matchload/internal/config"
	"github.com/okian/matchload/internal/mcp"
	"github.com/okian/matchload/pkg/logger"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server",
		Long: `Start the Model Context Protocol (MCP) server on stdin/stdout. Logs go to
stderr. Datasets are read from data_dir as for serve.

CLIENT CONFIGURATION:

  {
    "mcpServers": {
      "matchload": { "command": "matchload", "args": ["mcp"] }
    }
  }

AVAILABLE TOOLS:

  cycle_durations   Seasons and cycle lengths present in the data
  cycle_averages    Average load per day of the match cycle
  last_match        Last match KPIs and change from the previous match
  recovery_summary  Green, white and red recovery days`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMCP(cmd.Context())
		},
	}
}

func runMCP(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	// stdout carries the protocol.
	if err := logger.InitWithWriter(os.Stderr); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	_ = logger.SetLevelString(cfg.LogLevel)
	configureMetrics(cfg)

	svc := service.New(
		service.WithLogger(logger.Get()),
		service.WithDataDir(cfg.DataDir),
		service.WithCache(cfg.CacheTTL, cfg.CacheMaxEntries),
		service.WithMaxCycleLength(cfg.MaxCycleLength),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	return mcp.NewServer(svc, version).Serve(ctx)
}
