// Package report builds the machine-readable scan report and validates it
// against the embedded JSON schema.
package report

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/pydeps/pkg/baseline"
	"github.com/Sumatoshi-tech/pydeps/pkg/scan"
)

//go:embed report-schema.json
var schema []byte

// ErrInvalidReport is returned when a document does not parse as a report.
var ErrInvalidReport = errors.New("invalid report")

// Report is the serialized outcome of one scan.
type Report struct {
	Drift     *baseline.Diff `json:"drift,omitempty" yaml:"drift,omitempty"`
	Root      string         `json:"root" yaml:"root"`
	Packages  []string       `json:"packages" yaml:"packages"`
	Files     int            `json:"files" yaml:"files"`
	Failed    int            `json:"failed" yaml:"failed"`
	ElapsedMS float64        `json:"elapsed_ms" yaml:"elapsed_ms"`
}

// New builds a Report from a scan result. Packages are sorted and never nil.
func New(root string, result scan.Result) *Report {
	packages := result.Packages.Sorted()
	if packages == nil {
		packages = []string{}
	}

	return &Report{
		Root:      root,
		Files:     result.Files,
		Failed:    result.Failed,
		Packages:  packages,
		ElapsedMS: float64(result.Elapsed) / float64(time.Millisecond),
	}
}

// WithDrift attaches a baseline comparison.
func (r *Report) WithDrift(diff baseline.Diff) *Report {
	r.Drift = &diff

	return r
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}

	return nil
}

// WriteYAML writes the report as YAML.
func (r *Report) WriteYAML(writer io.Writer) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}

	if _, err = writer.Write(data); err != nil {
		return fmt.Errorf("write yaml report: %w", err)
	}

	return nil
}

// Read decodes a JSON report.
func Read(reader io.Reader) (*Report, error) {
	var r Report

	if err := json.NewDecoder(reader).Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidReport, err)
	}

	return &r, nil
}

// Schema returns the JSON schema reports conform to.
func Schema() []byte {
	return schema
}

// Validate checks a JSON document against the report schema and returns one
// message per violation. An error means the document could not be checked.
func Validate(doc []byte) ([]string, error) {
	var data any

	if err := json.Unmarshal(doc, &data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidReport, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewGoLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("validate report: %w", err)
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return problems, nil
}
