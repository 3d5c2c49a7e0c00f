package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/pydeps/internal/config"
	"github.com/Sumatoshi-tech/pydeps/pkg/report"
)

// palette holds the colors used by text output. Colors are created per
// render so --no-color never touches the fatih/color global.
type palette struct {
	header  *color.Color
	added   *color.Color
	removed *color.Color
	warn    *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		header:  color.New(color.Bold),
		added:   color.New(color.FgGreen),
		removed: color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
	}

	if noColor {
		p.header.DisableColor()
		p.added.DisableColor()
		p.removed.DisableColor()
		p.warn.DisableColor()
	}

	return p
}

func render(writer io.Writer, format string, rep *report.Report, noColor bool) error {
	switch strings.ToLower(format) {
	case config.FormatJSON:
		return rep.WriteJSON(writer)
	case config.FormatYAML:
		return rep.WriteYAML(writer)
	case config.FormatTable:
		renderTable(writer, rep, newPalette(noColor))

		return nil
	case config.FormatText, "":
		renderText(writer, rep, newPalette(noColor))

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func elapsed(rep *report.Report) time.Duration {
	return time.Duration(rep.ElapsedMS * float64(time.Millisecond)).Round(time.Microsecond)
}

func renderText(writer io.Writer, rep *report.Report, colors palette) {
	colors.header.Fprintf(writer, "Found '%d' third-party package imports in '%d' files. (Took %s)\n",
		len(rep.Packages), rep.Files, elapsed(rep))

	for _, name := range rep.Packages {
		fmt.Fprintln(writer, name)
	}

	renderDrift(writer, rep, colors)
}

func renderTable(writer io.Writer, rep *report.Report, colors palette) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(writer)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"#", "Package"})

	for i, name := range rep.Packages {
		tbl.AppendRow(table.Row{i + 1, name})
	}

	tbl.AppendFooter(table.Row{
		"",
		fmt.Sprintf("%s packages, %s files, %s skipped, %s",
			humanize.Comma(int64(len(rep.Packages))),
			humanize.Comma(int64(rep.Files)),
			humanize.Comma(int64(rep.Failed)),
			elapsed(rep)),
	})

	tbl.Render()

	renderDrift(writer, rep, colors)
}

func renderDrift(writer io.Writer, rep *report.Report, colors palette) {
	if rep.Drift == nil {
		return
	}

	if !rep.Drift.Changed() {
		fmt.Fprintln(writer, "\nNo changes since baseline.")

		return
	}

	colors.warn.Fprintf(writer, "\nChanges since baseline (%d added, %d removed):\n",
		len(rep.Drift.Added), len(rep.Drift.Removed))

	for line := range strings.SplitSeq(strings.TrimSuffix(rep.Drift.Unified(), "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			colors.added.Fprintln(writer, line)
		case strings.HasPrefix(line, "-"):
			colors.removed.Fprintln(writer, line)
		default:
			fmt.Fprintln(writer, line)
		}
	}
}
