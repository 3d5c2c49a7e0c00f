// Package baseline compares the third-party packages of a scan against a
// previously recorded package list.
package baseline

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const commentPrefix = "#"

// Diff is the drift between a baseline and a current package list.
type Diff struct {
	Added   []string `json:"added"   yaml:"added"`
	Removed []string `json:"removed" yaml:"removed"`

	baseline []string
	current  []string
}

// Load reads a package list with one name per line. Blank lines and lines
// starting with '#' are ignored. Surrounding whitespace is trimmed.
func Load(reader io.Reader) ([]string, error) {
	var names []string

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}

		names = append(names, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read baseline: %w", err)
	}

	return normalize(names), nil
}

// Compare computes the packages added to and removed from baseline.
func Compare(baseline, current []string) Diff {
	base := normalize(baseline)
	cur := normalize(current)

	diff := Diff{baseline: base, current: cur}

	for _, name := range cur {
		if _, found := slices.BinarySearch(base, name); !found {
			diff.Added = append(diff.Added, name)
		}
	}

	for _, name := range base {
		if _, found := slices.BinarySearch(cur, name); !found {
			diff.Removed = append(diff.Removed, name)
		}
	}

	return diff
}

// Changed reports whether any package was added or removed.
func (d Diff) Changed() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0
}

// Unified renders the baseline and current lists as a line diff where
// removed names are prefixed with '-', added names with '+' and unchanged
// names with a space.
func (d Diff) Unified() string {
	dmp := diffmatchpatch.New()

	from, to, lines := dmp.DiffLinesToChars(joinLines(d.baseline), joinLines(d.current))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(from, to, false), lines)

	var out strings.Builder

	for _, chunk := range diffs {
		prefix := " "

		switch chunk.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffEqual:
		}

		for line := range strings.SplitSeq(strings.TrimSuffix(chunk.Text, "\n"), "\n") {
			out.WriteString(prefix)
			out.WriteString(line)
			out.WriteByte('\n')
		}
	}

	return out.String()
}

func joinLines(names []string) string {
	if len(names) == 0 {
		return ""
	}

	return strings.Join(names, "\n") + "\n"
}

func normalize(names []string) []string {
	out := slices.Clone(names)
	slices.Sort(out)

	return slices.Compact(out)
}
