package pyast

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/alexaandru/go-sitter-forest/python"

	"github.com/Sumatoshi-tech/pydeps/pkg/safeconv"
)

// Sentinel errors for parser operations.
var (
	// ErrSyntax is matched by every *SyntaxError.
	ErrSyntax = errors.New("invalid python syntax")

	errLanguageNotAvailable = errors.New("tree-sitter python language not available")
	errNoRootNode           = errors.New("pyast: no root node")
	errPoolType             = errors.New("pyast: pool returned unexpected type")
)

// SyntaxError reports the first construct that makes a file invalid
// Python 3. Reason is one of the Reason* constants.
type SyntaxError struct {
	Filename string
	Reason   string
	Line     int
	Column   int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Line, e.Column, e.Reason)
}

// Is makes errors.Is(err, ErrSyntax) hold for any *SyntaxError.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// Parser turns Python source into a Module. It is safe for concurrent use;
// tree-sitter parsers are pooled because a single one is not.
type Parser struct {
	language *sitter.Language
	pool     sync.Pool
}

// NewParser creates a Parser for the Python grammar.
func NewParser() (*Parser, error) {
	var lang *sitter.Language

	func() {
		defer func() {
			_ = recover() //nolint:errcheck // recover() returns any, not error
		}()

		lang = sitter.NewLanguage(python.GetLanguage())
	}()

	if lang == nil {
		return nil, errLanguageNotAvailable
	}

	parser := &Parser{language: lang}
	parser.pool = sync.Pool{
		New: func() any {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(lang)

			return tsParser
		},
	}

	return parser, nil
}

// Parse parses content. The filename is only used in error messages.
// Source that tree-sitter had to recover from is rejected with a *SyntaxError.
func (p *Parser) Parse(ctx context.Context, filename string, content []byte) (*Module, error) {
	tsParser, ok := p.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer p.pool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, errNoRootNode
	}

	if bad, reason, found := (checker{source: content}).firstInvalid(root, true); found {
		pos := bad.StartPoint()

		return nil, &SyntaxError{
			Filename: filename,
			Reason:   reason,
			Line:     safeconv.MustUintToInt(pos.Row) + 1,
			Column:   safeconv.MustUintToInt(pos.Column) + 1,
		}
	}

	b := builder{source: content}

	return &Module{Body: b.statements(root)}, nil
}
