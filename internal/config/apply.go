package config

import (
	"github.com/Sumatoshi-tech/pydeps/pkg/scan"
	"github.com/Sumatoshi-tech/pydeps/pkg/stdlib"
)

// ScanOptions converts the scan and classify sections into scanner options.
// Runtime collaborators such as the logger and tracer are left unset.
func (c *Config) ScanOptions() (scan.Options, error) {
	maxSize, err := c.Scan.MaxFileSizeBytes()
	if err != nil {
		return scan.Options{}, err
	}

	registry := stdlib.Default()
	if len(c.Classify.ExtraStdlib) > 0 {
		registry = registry.With(c.Classify.ExtraStdlib...)
	}

	return scan.Options{
		Registry:      registry,
		Extensions:    c.Scan.Extensions,
		Exclude:       c.Scan.Exclude,
		KnownLocal:    c.Classify.KnownLocal,
		MaxFileSize:   maxSize,
		Workers:       c.Scan.Workers,
		IncludeHidden: !c.Scan.SkipHidden,
		SkipVendor:    c.Scan.SkipVendor,
	}, nil
}
