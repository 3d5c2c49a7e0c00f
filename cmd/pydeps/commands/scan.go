package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/pydeps/internal/config"
	"github.com/Sumatoshi-tech/pydeps/internal/observability"
	"github.com/Sumatoshi-tech/pydeps/pkg/baseline"
	"github.com/Sumatoshi-tech/pydeps/pkg/report"
	"github.com/Sumatoshi-tech/pydeps/pkg/scan"
)

// ErrDependencyDrift is returned by scan --fail-on-change when the package
// set differs from the baseline.
var ErrDependencyDrift = errors.New("third-party packages differ from baseline")

// ErrUnknownFormat is returned for an unsupported --format value.
var ErrUnknownFormat = errors.New("unknown output format")

const jsonExt = ".json"

type scanFlags struct {
	format          string
	baseline        string
	metricsTextfile string
	exclude         []string
	workers         int
	skipVendor      bool
	noHiddenSkip    bool
	failOnChange    bool
	noColor         bool
}

// NewScanCommand creates the scan command.
func NewScanCommand() *cobra.Command {
	flags := &scanFlags{}

	cmd := &cobra.Command{
		Use:   "scan <project_root>",
		Short: "Scan a Python project and list its third-party imports",
		Long: `Scan walks project_root, parses every .py and .pyi file, and prints the
sorted set of third-party packages imported anywhere in the project.

Files that cannot be read or parsed are skipped. With --baseline the result
is compared against a previous package list (one name per line, or a JSON
report) and the drift is printed; --fail-on-change turns drift into a
non-zero exit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "output format: text, table, json, yaml")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "parallel parse workers (0 = CPU count)")
	cmd.Flags().StringSliceVarP(&flags.exclude, "exclude", "e", nil, "glob patterns of paths to skip (repeatable)")
	cmd.Flags().BoolVar(&flags.skipVendor, "skip-vendor", false, "skip virtualenvs, site-packages and other vendored directories")
	cmd.Flags().BoolVar(&flags.noHiddenSkip, "no-hidden-skip", false, "also scan hidden files and directories")
	cmd.Flags().StringVar(&flags.baseline, "baseline", "", "package list or JSON report to compare against")
	cmd.Flags().BoolVar(&flags.failOnChange, "fail-on-change", false, "exit non-zero when packages differ from --baseline")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")
	cmd.Flags().StringVar(&flags.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file on exit")

	return cmd
}

func runScan(cmd *cobra.Command, root string, flags *scanFlags) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	err = applyScanFlags(cmd, cfg, flags)
	if err != nil {
		return err
	}

	obsCfg := observabilityConfig(cfg, observability.ModeCLI, boolFlag(cmd, flagVerbose), boolFlag(cmd, flagQuiet))

	providers, err := observability.InitWithWriter(obsCfg, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	recorder, err := observability.NewScanMetrics(providers.Meter)
	if err != nil {
		return err
	}

	opts, err := cfg.ScanOptions()
	if err != nil {
		return err
	}

	opts.Logger = providers.Logger
	opts.Tracer = providers.Tracer
	opts.Recorder = recorder

	scanner, err := scan.New(opts)
	if err != nil {
		return err
	}

	result, err := scanner.Run(cmd.Context(), root)
	if err != nil {
		return err
	}

	rep := report.New(root, result)

	if flags.baseline != "" {
		names, loadErr := loadBaseline(flags.baseline)
		if loadErr != nil {
			return loadErr
		}

		rep.WithDrift(baseline.Compare(names, rep.Packages))
	}

	if !boolFlag(cmd, flagQuiet) {
		err = render(cmd.OutOrStdout(), cfg.Output.Format, rep, flags.noColor)
		if err != nil {
			return err
		}
	}

	if flags.failOnChange && rep.Drift != nil && rep.Drift.Changed() {
		return fmt.Errorf("%w: %d added, %d removed", ErrDependencyDrift, len(rep.Drift.Added), len(rep.Drift.Removed))
	}

	return nil
}

// applyScanFlags layers explicitly set flags over the loaded configuration.
func applyScanFlags(cmd *cobra.Command, cfg *config.Config, flags *scanFlags) error {
	if cmd.Flags().Changed("format") {
		format := strings.ToLower(flags.format)
		if !slices.Contains(config.Formats, format) {
			return fmt.Errorf("%w: %q", ErrUnknownFormat, flags.format)
		}

		cfg.Output.Format = format
	}

	if cmd.Flags().Changed("workers") {
		if flags.workers < 0 {
			return config.ErrInvalidWorkers
		}

		cfg.Scan.Workers = flags.workers
	}

	cfg.Scan.Exclude = append(cfg.Scan.Exclude, flags.exclude...)

	if flags.skipVendor {
		cfg.Scan.SkipVendor = true
	}

	if flags.noHiddenSkip {
		cfg.Scan.SkipHidden = false
	}

	if flags.metricsTextfile != "" {
		cfg.Observability.MetricsTextfile = flags.metricsTextfile
	}

	return nil
}

// loadBaseline reads a package list. Files ending in .json are read as
// scan reports and contribute their packages.
func loadBaseline(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open baseline: %w", err)
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(path), jsonExt) {
		rep, readErr := report.Read(file)
		if readErr != nil {
			return nil, fmt.Errorf("read baseline %s: %w", path, readErr)
		}

		return rep.Packages, nil
	}

	names, err := baseline.Load(file)
	if err != nil {
		return nil, fmt.Errorf("read baseline %s: %w", path, err)
	}

	return names, nil
}
