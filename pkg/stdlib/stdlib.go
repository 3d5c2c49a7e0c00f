// Package stdlib holds the set of Python standard library module names.
package stdlib

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"
)

//go:embed stdlib_modules.txt
var stdlibModulesData string

// Registry is an immutable set of top-level standard library module names.
// A Registry is safe for concurrent use.
type Registry struct {
	names map[string]struct{}
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	names, err := Parse(strings.NewReader(stdlibModulesData))
	if err != nil {
		panic(fmt.Sprintf("stdlib: embedded module list: %v", err))
	}

	return NewRegistry(names...)
})

// Default returns the registry built from the embedded CPython 3.11 module list.
func Default() *Registry {
	return defaultRegistry()
}

// NewRegistry creates a registry containing the given names.
func NewRegistry(names ...string) *Registry {
	set := make(map[string]struct{}, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name != "" {
			set[name] = struct{}{}
		}
	}

	return &Registry{names: set}
}

// With returns a new registry holding the receiver's names plus extra.
// The receiver is left unchanged.
func (r *Registry) With(extra ...string) *Registry {
	merged := slices.Concat(r.Names(), extra)

	return NewRegistry(merged...)
}

// Contains reports whether base is a standard library module.
func (r *Registry) Contains(base string) bool {
	_, ok := r.names[base]

	return ok
}

// Names returns the sorted module names.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.names))
}

// Len returns the number of module names.
func (r *Registry) Len() int {
	return len(r.names)
}

// Parse reads one module name per line. Blank lines and lines starting with '#' are ignored.
func Parse(reader io.Reader) ([]string, error) {
	var names []string

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		names = append(names, line)
	}

	err := scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("read module list: %w", err)
	}

	return names, nil
}
