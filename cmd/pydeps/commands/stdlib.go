package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/pydeps/pkg/imports"
)

// NewStdlibCommand creates the stdlib command.
func NewStdlibCommand() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "stdlib [module...]",
		Short: "List the standard library registry or check module names against it",
		Long: `Without arguments, stdlib prints every top-level module name the registry
treats as standard library, including classify.extra_stdlib entries from the
config. With arguments, each dotted module name is reduced to its base and
reported as stdlib or not.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdlib(cmd, args, noColor)
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	return cmd
}

func runStdlib(cmd *cobra.Command, args []string, noColor bool) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts, err := cfg.ScanOptions()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if len(args) == 0 {
		for _, name := range opts.Registry.Names() {
			fmt.Fprintln(out, name)
		}

		return nil
	}

	colors := newPalette(noColor)

	for _, module := range args {
		base := imports.ModuleBase(module)

		if opts.Registry.Contains(base) {
			colors.added.Fprintf(out, "%s: stdlib\n", module)
		} else {
			colors.warn.Fprintf(out, "%s: not stdlib\n", module)
		}
	}

	return nil
}
