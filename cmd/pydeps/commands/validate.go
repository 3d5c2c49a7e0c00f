package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/pydeps/pkg/report"
)

// ErrReportInvalid is returned when a report violates the schema.
var ErrReportInvalid = errors.New("report does not match schema")

const stdinPath = "-"

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	var (
		noColor     bool
		printSchema bool
	)

	cmd := &cobra.Command{
		Use:   "validate [report.json|-]",
		Short: "Validate a JSON scan report against the report schema",
		Long: `Validate checks a report produced by 'pydeps scan --format json' against the
embedded JSON schema. Use '-' to read the report from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if printSchema {
				_, err := cmd.OutOrStdout().Write(report.Schema())

				return err
			}

			if len(args) == 0 {
				return cmd.Help()
			}

			return runValidate(cmd, args[0], noColor)
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVar(&printSchema, "print-schema", false, "print the report JSON schema and exit")

	return cmd
}

func runValidate(cmd *cobra.Command, inputPath string, noColor bool) error {
	doc, label, err := readInput(cmd.InOrStdin(), inputPath)
	if err != nil {
		return err
	}

	problems, err := report.Validate(doc)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}

	out := cmd.OutOrStdout()
	colors := newPalette(noColor)

	if len(problems) == 0 {
		colors.added.Fprintf(out, "Report is valid (%s)\n", label)

		return nil
	}

	colors.removed.Fprintf(out, "Report validation failed (%s)\n", label)

	for _, problem := range problems {
		colors.removed.Fprintf(out, "  - %s\n", problem)
	}

	return fmt.Errorf("%w: %d problems", ErrReportInvalid, len(problems))
}

func readInput(stdin io.Reader, path string) (data []byte, label string, err error) {
	if path == stdinPath {
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}

		return data, "stdin", nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read report: %w", err)
	}

	return data, path, nil
}
