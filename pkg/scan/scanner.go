// Package scan discovers Python files under a project root and reports the
// third-party packages they import.
package scan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"
	"unicode/utf8"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/pydeps/pkg/classify"
	"github.com/Sumatoshi-tech/pydeps/pkg/imports"
	"github.com/Sumatoshi-tech/pydeps/pkg/pyast"
	"github.com/Sumatoshi-tech/pydeps/pkg/resolve"
	"github.com/Sumatoshi-tech/pydeps/pkg/stdlib"
)

// Sentinel errors.
var (
	// ErrInvalidRoot is returned when the project root does not exist or is not a directory.
	ErrInvalidRoot = errors.New("invalid project root")
	// ErrFileTooLarge marks a file skipped because it exceeds MaxFileSize.
	ErrFileTooLarge = errors.New("file exceeds maximum size")
	// ErrInvalidEncoding marks a file skipped because it is not valid UTF-8.
	ErrInvalidEncoding = errors.New("file is not valid utf-8")
)

const tracerName = "pydeps/scan"

var utf8BOM = []byte("\xef\xbb\xbf")

// Stats summarizes one run for metrics recording.
type Stats struct {
	Files    int
	Failed   int
	Packages int
	Duration time.Duration
}

// Recorder receives run statistics.
type Recorder interface {
	RecordScan(ctx context.Context, stats Stats)
}

// Options configures a Scanner. The zero value scans .py and .pyi files on
// the OS filesystem with one worker per CPU.
type Options struct {
	Fs       afero.Fs
	Registry *stdlib.Registry
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Recorder Recorder

	Extensions []string
	Exclude    []string
	KnownLocal []string

	// MaxFileSize skips larger files when positive.
	MaxFileSize int64
	Workers     int

	IncludeHidden bool
	SkipVendor    bool
}

// Result is the outcome of one run.
type Result struct {
	Packages Set
	Elapsed  time.Duration

	// Files counts every dispatched file, including failed ones.
	Files  int
	Failed int
}

// Finding is one classified import of a single file.
type Finding struct {
	Module string        `json:"module"`
	Base   string        `json:"base"`
	Kind   classify.Kind `json:"kind"`
	Line   int           `json:"line"`
}

// Scanner runs the read, parse, extract and classify pipeline over a project.
// A Scanner may be reused for several runs and is safe for concurrent use.
type Scanner struct {
	fs         afero.Fs
	parser     *pyast.Parser
	registry   *stdlib.Registry
	logger     *slog.Logger
	tracer     trace.Tracer
	recorder   Recorder
	walker     Walker
	knownLocal []string
	maxSize    int64
	workers    int
}

type fileOutcome struct {
	err      error
	packages Set
	path     string
}

// New creates a Scanner.
func New(opts Options) (*Scanner, error) {
	parser, err := pyast.NewParser()
	if err != nil {
		return nil, fmt.Errorf("create parser: %w", err)
	}

	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	if opts.Registry == nil {
		opts.Registry = stdlib.Default()
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Tracer == nil {
		opts.Tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}

	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	return &Scanner{
		fs:       opts.Fs,
		parser:   parser,
		registry: opts.Registry,
		logger:   opts.Logger,
		tracer:   opts.Tracer,
		recorder: opts.Recorder,
		walker: Walker{
			Fs:            opts.Fs,
			Extensions:    opts.Extensions,
			Exclude:       opts.Exclude,
			IncludeHidden: opts.IncludeHidden,
			SkipVendor:    opts.SkipVendor,
			Logger:        opts.Logger,
		},
		knownLocal: opts.KnownLocal,
		maxSize:    opts.MaxFileSize,
		workers:    opts.Workers,
	}, nil
}

// Run scans every candidate file under root. Only an invalid root or a
// failed directory walk fails the run; unreadable or unparsable files are
// counted in Result.Failed and otherwise ignored.
func (s *Scanner) Run(ctx context.Context, root string) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "pydeps.scan",
		trace.WithAttributes(attribute.String("scan.root", root)),
	)
	defer span.End()

	start := time.Now()

	err := s.validateRoot(root)
	if err == nil {
		var files []string

		files, err = s.walker.Files(root)
		if err == nil {
			result := s.process(ctx, root, files)
			result.Elapsed = time.Since(start)

			s.finish(ctx, span, root, result)

			return result, nil
		}
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	return Result{}, err
}

func (s *Scanner) validateRoot(root string) error {
	info, err := s.fs.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidRoot, root, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, root)
	}

	return nil
}

// process fans files out to a fixed pool of workers and unions their
// per-file sets. The calling goroutine is the only writer of the result.
func (s *Scanner) process(ctx context.Context, root string, files []string) Result {
	result := Result{Files: len(files), Packages: NewSet()}
	if len(files) == 0 {
		return result
	}

	classifier := classify.New(
		s.registry,
		resolve.New(s.fs, root),
		classify.WithKnownLocal(s.knownLocal...),
	)

	workers := min(s.workers, len(files))
	paths := make(chan string, workers)
	outcomes := make(chan fileOutcome, workers)

	var group errgroup.Group

	group.Go(func() error {
		defer close(paths)

		for _, path := range files {
			paths <- path
		}

		return nil
	})

	for range workers {
		group.Go(func() error {
			for path := range paths {
				outcomes <- s.scanFile(ctx, classifier, path)
			}

			return nil
		})
	}

	go func() {
		_ = group.Wait() //nolint:errcheck // workers never return errors
		close(outcomes)
	}()

	for outcome := range outcomes {
		if outcome.err != nil {
			result.Failed++

			s.logger.DebugContext(ctx, "skipping file", "path", outcome.path, "error", outcome.err)

			continue
		}

		result.Packages.Union(outcome.packages)
	}

	return result
}

func (s *Scanner) scanFile(ctx context.Context, classifier *classify.Classifier, path string) fileOutcome {
	content, err := s.readSource(path)
	if err != nil {
		return fileOutcome{path: path, err: err}
	}

	mod, err := s.parser.Parse(ctx, path, content)
	if err != nil {
		return fileOutcome{path: path, err: err}
	}

	packages := NewSet()

	for _, base := range imports.Extract(mod) {
		if classifier.Classify(path, base).IsThirdParty() {
			packages.Add(base)
		}
	}

	return fileOutcome{path: path, packages: packages}
}

func (s *Scanner) readSource(path string) ([]byte, error) {
	if s.maxSize > 0 {
		info, err := s.fs.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}

		if info.Size() > s.maxSize {
			return nil, fmt.Errorf("%w: %s is %d bytes", ErrFileTooLarge, path, info.Size())
		}
	}

	content, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEncoding, path)
	}

	return bytes.TrimPrefix(content, utf8BOM), nil
}

func (s *Scanner) finish(ctx context.Context, span trace.Span, root string, result Result) {
	span.SetAttributes(
		attribute.Int("scan.files", result.Files),
		attribute.Int("scan.failed", result.Failed),
		attribute.Int("scan.packages", result.Packages.Len()),
	)

	s.logger.DebugContext(ctx, "scan finished",
		"root", root,
		"files", result.Files,
		"failed", result.Failed,
		"packages", result.Packages.Len(),
		"elapsed", result.Elapsed,
	)

	if s.recorder != nil {
		s.recorder.RecordScan(ctx, Stats{
			Files:    result.Files,
			Failed:   result.Failed,
			Packages: result.Packages.Len(),
			Duration: result.Elapsed,
		})
	}
}

// ScanSource classifies every absolute import of one in-memory file as if it
// were located at filePath. An empty root disables filesystem checks, so
// only standard library and known-local names are recognized.
func (s *Scanner) ScanSource(ctx context.Context, root, filePath string, content []byte) ([]Finding, error) {
	mod, err := s.parser.Parse(ctx, filePath, bytes.TrimPrefix(content, utf8BOM))
	if err != nil {
		return nil, err
	}

	var resolver *resolve.Resolver
	if root != "" {
		resolver = resolve.New(s.fs, root)
	}

	classifier := classify.New(s.registry, resolver, classify.WithKnownLocal(s.knownLocal...))

	refs := imports.References(mod)
	findings := make([]Finding, 0, len(refs))

	for _, ref := range refs {
		findings = append(findings, Finding{
			Module: ref.Module,
			Base:   ref.Base,
			Kind:   classifier.Classify(filePath, ref.Base).Kind,
			Line:   ref.Line,
		})
	}

	return findings, nil
}
