// Package classify labels imported module bases as standard library, local
// or third-party.
package classify

import (
	"github.com/Sumatoshi-tech/pydeps/pkg/resolve"
	"github.com/Sumatoshi-tech/pydeps/pkg/stdlib"
)

// Kind is the category of a module base.
type Kind int

// Kind values.
const (
	StandardLibrary Kind = iota
	Local
	ThirdParty
)

func (k Kind) String() string {
	switch k {
	case StandardLibrary:
		return "stdlib"
	case Local:
		return "local"
	case ThirdParty:
		return "third-party"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Classification is the result of classifying one module base.
type Classification struct {
	Base string `json:"base" yaml:"base"`
	Kind Kind   `json:"kind" yaml:"kind"`
}

// IsThirdParty reports whether the classification is ThirdParty.
func (c Classification) IsThirdParty() bool {
	return c.Kind == ThirdParty
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithKnownLocal makes names always classify as Local unless they are
// standard library modules.
func WithKnownLocal(names ...string) Option {
	return func(c *Classifier) {
		for _, name := range names {
			c.knownLocal[name] = struct{}{}
		}
	}
}

// Classifier combines the standard library registry and the local-import
// resolver. It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	registry   *stdlib.Registry
	resolver   *resolve.Resolver
	knownLocal map[string]struct{}
}

// New creates a Classifier. A nil registry means stdlib.Default().
func New(registry *stdlib.Registry, resolver *resolve.Resolver, opts ...Option) *Classifier {
	if registry == nil {
		registry = stdlib.Default()
	}

	c := &Classifier{
		registry:   registry,
		resolver:   resolver,
		knownLocal: make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Classify labels base as imported from filePath.
func (c *Classifier) Classify(filePath, base string) Classification {
	switch {
	case c.registry.Contains(base):
		return Classification{Base: base, Kind: StandardLibrary}
	case c.isKnownLocal(base):
		return Classification{Base: base, Kind: Local}
	case c.resolver != nil && c.resolver.IsLocal(filePath, base):
		return Classification{Base: base, Kind: Local}
	default:
		return Classification{Base: base, Kind: ThirdParty}
	}
}

func (c *Classifier) isKnownLocal(base string) bool {
	_, ok := c.knownLocal[base]

	return ok
}
