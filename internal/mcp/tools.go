package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/pydeps/pkg/classify"
	"github.com/Sumatoshi-tech/pydeps/pkg/report"
	"github.com/Sumatoshi-tech/pydeps/pkg/scan"
)

// Tool name constants.
const (
	ToolNameScan     = "pydeps_scan"
	ToolNameClassify = "pydeps_classify"
)

// Input size limits.
const (
	// MaxCodeInputBytes is the maximum allowed size for inline code input (1 MB).
	MaxCodeInputBytes = 1 << 20
)

// defaultFilename is used when a classify call names no file.
const defaultFilename = "main.py"

// Sentinel errors for tool input validation.
var (
	// ErrEmptyCode indicates the code parameter is empty.
	ErrEmptyCode = errors.New("code parameter is required and must not be empty")
	// ErrCodeTooLarge indicates the code input exceeds the size limit.
	ErrCodeTooLarge = errors.New("code input exceeds maximum size")
	// ErrEmptyRoot indicates the root parameter is empty.
	ErrEmptyRoot = errors.New("root parameter is required and must not be empty")
	// ErrRootNotAbsolute indicates the root is not an absolute path.
	ErrRootNotAbsolute = errors.New("root must be an absolute path")
)

// Input types (auto-generate JSON schemas via struct tags).

// ScanInput is the input schema for the pydeps_scan tool.
type ScanInput struct {
	Root       string   `json:"root"                  jsonschema:"absolute path to the Python project root"`
	Exclude    []string `json:"exclude,omitempty"     jsonschema:"optional glob patterns of files or directories to skip"`
	SkipVendor bool     `json:"skip_vendor,omitempty" jsonschema:"skip virtualenvs and other vendored directories"`
}

// ClassifyInput is the input schema for the pydeps_classify tool.
type ClassifyInput struct {
	Code     string `json:"code"               jsonschema:"Python source code whose imports are classified"`
	Filename string `json:"filename,omitempty" jsonschema:"path of the source relative to root (default main.py)"`
	Root     string `json:"root,omitempty"     jsonschema:"optional absolute project root used to detect local imports"`
}

// ClassifyResult is the data returned by pydeps_classify.
type ClassifyResult struct {
	Imports    []scan.Finding `json:"imports"`
	ThirdParty []string       `json:"third_party"`
}

// Output type (used as structured output for generic AddTool).

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// handleScan processes pydeps_scan tool calls.
func (s *Server) handleScan(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input ScanInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateRoot(input.Root, true)
	if err != nil {
		return errorResult(err)
	}

	scanner := s.scanner

	if len(input.Exclude) > 0 || input.SkipVendor {
		opts := s.scanOpts
		opts.Exclude = append(append([]string{}, opts.Exclude...), input.Exclude...)
		opts.SkipVendor = opts.SkipVendor || input.SkipVendor

		scanner, err = scan.New(opts)
		if err != nil {
			return errorResult(fmt.Errorf("create scanner: %w", err))
		}
	}

	result, err := scanner.Run(ctx, input.Root)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(report.New(input.Root, result))
}

// handleClassify processes pydeps_classify tool calls.
func (s *Server) handleClassify(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input ClassifyInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateCodeInput(input.Code)
	if err != nil {
		return errorResult(err)
	}

	err = validateRoot(input.Root, false)
	if err != nil {
		return errorResult(err)
	}

	filename := input.Filename
	if filename == "" {
		filename = defaultFilename
	}

	if input.Root != "" && !filepath.IsAbs(filename) {
		filename = filepath.Join(input.Root, filename)
	}

	findings, err := s.scanner.ScanSource(ctx, input.Root, filename, []byte(input.Code))
	if err != nil {
		return errorResult(fmt.Errorf("parse code: %w", err))
	}

	thirdParty := scan.NewSet()

	for _, finding := range findings {
		if finding.Kind == classify.ThirdParty {
			thirdParty.Add(finding.Base)
		}
	}

	packages := thirdParty.Sorted()
	if packages == nil {
		packages = []string{}
	}

	return jsonResult(ClassifyResult{Imports: findings, ThirdParty: packages})
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// validateCodeInput checks inline code constraints.
func validateCodeInput(code string) error {
	if code == "" {
		return ErrEmptyCode
	}

	if len(code) > MaxCodeInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrCodeTooLarge, len(code), MaxCodeInputBytes)
	}

	return nil
}

// validateRoot checks a root path argument. An empty root is accepted
// unless required.
func validateRoot(root string, required bool) error {
	if root == "" {
		if required {
			return ErrEmptyRoot
		}

		return nil
	}

	if !filepath.IsAbs(root) {
		return fmt.Errorf("%w: %s", ErrRootNotAbsolute, root)
	}

	return nil
}
