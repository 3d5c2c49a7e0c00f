package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/pydeps/pkg/scan"
)

const (
	metricScansTotal    = "pydeps.scans.total"
	metricFilesTotal    = "pydeps.scan.files.total"
	metricFailuresTotal = "pydeps.scan.failures.total"
	metricPackages      = "pydeps.scan.packages"
	metricScanDuration  = "pydeps.scan.duration.seconds"
)

// ScanMetrics holds OTel instruments for scan runs. It implements
// scan.Recorder.
type ScanMetrics struct {
	scansTotal    metric.Int64Counter
	filesTotal    metric.Int64Counter
	failuresTotal metric.Int64Counter
	packages      metric.Int64Gauge
	scanDuration  metric.Float64Histogram
}

var _ scan.Recorder = (*ScanMetrics)(nil)

// NewScanMetrics creates scan metric instruments from the given meter.
func NewScanMetrics(mt metric.Meter) (*ScanMetrics, error) {
	scans, err := mt.Int64Counter(metricScansTotal,
		metric.WithDescription("Total completed scans"),
		metric.WithUnit("{scan}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricScansTotal, err)
	}

	files, err := mt.Int64Counter(metricFilesTotal,
		metric.WithDescription("Total source files dispatched to workers"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFilesTotal, err)
	}

	failures, err := mt.Int64Counter(metricFailuresTotal,
		metric.WithDescription("Total source files that could not be read or parsed"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFailuresTotal, err)
	}

	packages, err := mt.Int64Gauge(metricPackages,
		metric.WithDescription("Distinct third-party packages found by the last scan"),
		metric.WithUnit("{package}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricPackages, err)
	}

	duration, err := mt.Float64Histogram(metricScanDuration,
		metric.WithDescription("Scan wall-clock duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricScanDuration, err)
	}

	return &ScanMetrics{
		scansTotal:    scans,
		filesTotal:    files,
		failuresTotal: failures,
		packages:      packages,
		scanDuration:  duration,
	}, nil
}

// RecordScan records the statistics of one completed scan.
func (sm *ScanMetrics) RecordScan(ctx context.Context, stats scan.Stats) {
	sm.scansTotal.Add(ctx, 1)
	sm.filesTotal.Add(ctx, int64(stats.Files))
	sm.failuresTotal.Add(ctx, int64(stats.Failed))
	sm.packages.Record(ctx, int64(stats.Packages))
	sm.scanDuration.Record(ctx, stats.Duration.Seconds())
}
