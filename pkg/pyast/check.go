package pyast

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/pydeps/pkg/safeconv"
)

// Reasons reported by SyntaxError.
const (
	ReasonSyntax      = "syntax error"
	ReasonMissing     = "missing token"
	ReasonPrint       = "print statement is not valid python 3"
	ReasonExec        = "exec statement is not valid python 3"
	ReasonExceptComma = "'except X, name' is not valid python 3"
	ReasonIndent      = "unexpected indent"
)

const (
	typeError          = "ERROR"
	typeModule         = "module"
	typePrintStatement = "print_statement"
	typeExecStatement  = "exec_statement"
	tokenAs            = "as"
	tokenComma         = ","
)

// checker rejects trees that tree-sitter accepted but Python 3 does not.
type checker struct {
	source []byte
}

// firstInvalid returns the first offending node in pre-order.
func (c checker) firstInvalid(n sitter.Node, isRoot bool) (sitter.Node, string, bool) {
	switch n.Type() {
	case typeError:
		return n, ReasonSyntax, true
	case typePrintStatement:
		return n, ReasonPrint, true
	case typeExecStatement:
		return n, ReasonExec, true
	case typeExceptClause:
		if commaAlias(n) {
			return n, ReasonExceptComma, true
		}
	case typeModule, typeBlock:
		if bad, found := c.misindented(n); found {
			return bad, ReasonIndent, true
		}
	}

	childCount := n.ChildCount()
	if childCount == 0 && !isRoot && n.StartByte() == n.EndByte() {
		return n, ReasonMissing, true
	}

	for idx := range childCount {
		if bad, reason, found := c.firstInvalid(n.Child(idx), false); found {
			return bad, reason, true
		}
	}

	return sitter.Node{}, "", false
}

// commaAlias reports an except clause that binds its alias with ','.
// A parenthesized tuple of exceptions keeps its commas in a child node.
func commaAlias(n sitter.Node) bool {
	hasAs := false

	for idx := range n.ChildCount() {
		switch n.Child(idx).Type() {
		case tokenComma:
			return true
		case tokenAs:
			hasAs = true
		}
	}

	return !hasAs && !n.ChildByFieldName(fieldAlias).IsNull()
}

// misindented returns the first statement of a module or block that starts
// its own line at a different column than the first such statement.
// Module statements must start at column 0.
func (c checker) misindented(n sitter.Node) (sitter.Node, bool) {
	want := -1
	if n.Type() == typeModule {
		want = 0
	}

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)
		if child.Type() == typeComment || !c.startsLine(child) {
			continue
		}

		column := safeconv.MustUintToInt(child.StartPoint().Column)

		switch {
		case want < 0:
			want = column
		case column != want:
			return child, true
		}
	}

	return sitter.Node{}, false
}

// startsLine reports whether only whitespace precedes n on its line.
// Statements after ';' or on the line of a compound header do not.
func (c checker) startsLine(n sitter.Node) bool {
	start, column := n.StartByte(), n.StartPoint().Column
	if column > start || start > uint(len(c.source)) {
		return false
	}

	for _, ch := range c.source[start-column : start] {
		if ch != ' ' && ch != '\t' && ch != '\f' {
			return false
		}
	}

	return true
}
