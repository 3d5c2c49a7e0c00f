package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/pydeps/internal/mcp"
	"github.com/Sumatoshi-tech/pydeps/internal/observability"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes pydeps as tools that AI agents can discover and invoke:
  - pydeps_scan: list the third-party packages a project directory imports
  - pydeps_classify: classify the imports of an inline Python source`,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cobraCmd)
			if err != nil {
				return err
			}

			obsCfg := observabilityConfig(cfg, observability.ModeMCP, false, false)
			obsCfg.LogJSON = true

			if debug {
				obsCfg.LogLevel = slog.LevelDebug
			}

			providers, err := observability.InitWithWriter(obsCfg, cobraCmd.ErrOrStderr())
			if err != nil {
				return err
			}

			defer func() {
				shutdownErr := providers.Shutdown(context.Background())
				if shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			red, err := observability.NewREDMetrics(providers.Meter)
			if err != nil {
				return err
			}

			recorder, err := observability.NewScanMetrics(providers.Meter)
			if err != nil {
				return err
			}

			scanOpts, err := cfg.ScanOptions()
			if err != nil {
				return err
			}

			scanOpts.Recorder = recorder

			srv, err := mcp.NewServer(mcp.ServerDeps{
				Logger:      providers.Logger,
				Metrics:     red,
				Tracer:      providers.Tracer,
				ScanOptions: scanOpts,
			})
			if err != nil {
				return err
			}

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")

	return cmd
}
