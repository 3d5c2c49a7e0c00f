package scan

import (
	"maps"
	"slices"
)

// Set is a deduplicated set of package names.
type Set map[string]struct{}

// NewSet creates a Set holding items.
func NewSet(items ...string) Set {
	s := make(Set, len(items))

	for _, item := range items {
		s.Add(item)
	}

	return s
}

// Add inserts item.
func (s Set) Add(item string) {
	s[item] = struct{}{}
}

// Union inserts every item of other into s.
func (s Set) Union(other Set) {
	for item := range other {
		s[item] = struct{}{}
	}
}

// Has reports whether item is in s.
func (s Set) Has(item string) bool {
	_, ok := s[item]

	return ok
}

// Len returns the number of items.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the items in lexical order.
func (s Set) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}
