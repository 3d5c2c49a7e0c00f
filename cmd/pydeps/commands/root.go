// Package commands implements the pydeps CLI subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/pydeps/internal/config"
	"github.com/Sumatoshi-tech/pydeps/internal/observability"
	"github.com/Sumatoshi-tech/pydeps/pkg/version"
)

// Persistent flag names shared by all subcommands.
const (
	flagConfig  = "config"
	flagVerbose = "verbose"
	flagQuiet   = "quiet"
)

// Standard OTel exporter environment variables.
const (
	envOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOTLPHeaders  = "OTEL_EXPORTER_OTLP_HEADERS"
	envOTLPInsecure = "OTEL_EXPORTER_OTLP_INSECURE"
)

// NewRootCommand creates the pydeps root command with all subcommands
// except version, which the binary adds itself.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pydeps",
		Short: "pydeps - list the third-party packages a Python project imports",
		Long: `pydeps walks a Python project, parses every .py and .pyi file and reports
the third-party packages it imports. Standard library modules and modules
that belong to the project itself are left out.

Commands:
  scan      Scan a project and report its third-party imports
  stdlib    List or query the standard library module registry
  validate  Validate a JSON scan report against the report schema
  mcp       Start the MCP server on stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String(flagConfig, "", "config file path (default .pydeps.yaml in . or $HOME)")
	rootCmd.PersistentFlags().BoolP(flagVerbose, "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP(flagQuiet, "q", false, "suppress output")

	rootCmd.AddCommand(NewScanCommand())
	rootCmd.AddCommand(NewStdlibCommand())
	rootCmd.AddCommand(NewValidateCommand())
	rootCmd.AddCommand(NewMCPCommand())

	return rootCmd
}

// loadConfig reads the configuration named by the inherited --config flag.
// Commands run without the root command fall back to the default search.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString(flagConfig) //nolint:errcheck // flag is absent when run standalone

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

func boolFlag(cmd *cobra.Command, name string) bool {
	value, _ := cmd.Flags().GetBool(name) //nolint:errcheck // flag is absent when run standalone

	return value
}

// observabilityConfig maps the loaded configuration onto observability
// settings. OTEL_EXPORTER_OTLP_* variables fill in what the file leaves unset.
func observabilityConfig(cfg *config.Config, mode observability.AppMode, verbose, quiet bool) observability.Config {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.LogLevel = observability.ParseLevel(cfg.Logging.Level)
	obsCfg.LogJSON = strings.EqualFold(cfg.Logging.Format, "json")
	obsCfg.OTLPEndpoint = cfg.Observability.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Observability.OTLPInsecure
	obsCfg.MetricsTextfile = cfg.Observability.MetricsTextfile

	if obsCfg.OTLPEndpoint == "" {
		obsCfg.OTLPEndpoint = os.Getenv(envOTLPEndpoint)
		obsCfg.OTLPInsecure = obsCfg.OTLPInsecure || os.Getenv(envOTLPInsecure) == "true"
	}

	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv(envOTLPHeaders))

	switch {
	case verbose:
		obsCfg.LogLevel = slog.LevelDebug
	case quiet:
		obsCfg.LogLevel = slog.LevelError
	}

	return obsCfg
}
