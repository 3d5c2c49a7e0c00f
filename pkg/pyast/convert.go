package pyast

import (
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/pydeps/pkg/safeconv"
)

// Grammar node types used by the builder.
const (
	typeBlock              = "block"
	typeComment            = "comment"
	typeDottedName         = "dotted_name"
	typeAliasedImport      = "aliased_import"
	typeRelativeImport     = "relative_import"
	typeImportPrefix       = "import_prefix"
	typeWildcardImport     = "wildcard_import"
	typeIdentifier         = "identifier"
	typeElifClause         = "elif_clause"
	typeElseClause         = "else_clause"
	typeExceptClause       = "except_clause"
	typeExceptGroupClause  = "except_group_clause"
	typeFinallyClause      = "finally_clause"
	typeCaseClause         = "case_clause"
	typeAsyncKeyword       = "async"
	futureModule           = "__future__"
	wildcardName           = "*"
	fieldBody              = "body"
	fieldConsequence       = "consequence"
	fieldDefinition        = "definition"
	fieldModuleName        = "module_name"
	fieldName              = "name"
	fieldAlias             = "alias"
	fieldAlternative       = "alternative"
	typeDecoratedDef       = "decorated_definition"
	typeFunctionDefinition = "function_definition"
	typeClassDefinition    = "class_definition"
)

// builder converts tree-sitter nodes into statements. It is used for a
// single parse and holds a view of that file's source.
type builder struct {
	source []byte
}

func (b *builder) text(n sitter.Node) string {
	start, end := n.StartByte(), n.EndByte()
	if end > uint(len(b.source)) || start > end {
		return ""
	}

	return string(b.source[start:end])
}

// statements converts the named children of a module or block.
func (b *builder) statements(n sitter.Node) []Stmt {
	if n.IsNull() {
		return nil
	}

	count := n.NamedChildCount()
	body := make([]Stmt, 0, count)

	for idx := range count {
		child := n.NamedChild(idx)
		if child.Type() == typeComment {
			continue
		}

		body = append(body, b.statement(child))
	}

	return body
}

func (b *builder) statement(n sitter.Node) Stmt {
	switch n.Type() {
	case "import_statement":
		return &Import{Names: b.aliases(n, sitter.Node{}), Line: line(n)}
	case "import_from_statement":
		return b.importFrom(n)
	case "future_import_statement":
		return &ImportFrom{Module: futureModule, Names: b.aliases(n, sitter.Node{}), Line: line(n)}
	case typeFunctionDefinition:
		return &FunctionDef{
			Name:  b.text(n.ChildByFieldName(fieldName)),
			Body:  b.suite(n),
			Async: isAsync(n),
		}
	case typeClassDefinition:
		return &ClassDef{Name: b.text(n.ChildByFieldName(fieldName)), Body: b.suite(n)}
	case typeDecoratedDef:
		def := n.ChildByFieldName(fieldDefinition)
		if def.IsNull() {
			return &Other{Kind: typeDecoratedDef}
		}

		return b.statement(def)
	case "with_statement":
		return &With{Body: b.suite(n), Async: isAsync(n)}
	case "for_statement":
		return &For{Body: b.suite(n), Orelse: b.elseBody(n), Async: isAsync(n)}
	case "while_statement":
		return &While{Body: b.suite(n), Orelse: b.elseBody(n)}
	case "if_statement":
		return b.ifStatement(n)
	case "try_statement":
		return b.tryStatement(n)
	case "match_statement":
		return b.matchStatement(n)
	default:
		return &Other{Kind: n.Type()}
	}
}

// suite returns the statements of a clause's block: the body or consequence
// field when present, otherwise the first block child.
func (b *builder) suite(n sitter.Node) []Stmt {
	for _, field := range []string{fieldBody, fieldConsequence} {
		child := n.ChildByFieldName(field)
		if !child.IsNull() && child.Type() == typeBlock {
			return b.statements(child)
		}
	}

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)
		if child.Type() == typeBlock {
			return b.statements(child)
		}
	}

	return nil
}

func (b *builder) elseBody(n sitter.Node) []Stmt {
	alt := n.ChildByFieldName(fieldAlternative)
	if alt.IsNull() || alt.Type() != typeElseClause {
		return nil
	}

	return b.suite(alt)
}

func (b *builder) ifStatement(n sitter.Node) Stmt {
	var (
		elifs  []sitter.Node
		orelse []Stmt
	)

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)

		switch child.Type() {
		case typeElifClause:
			elifs = append(elifs, child)
		case typeElseClause:
			orelse = b.suite(child)
		}
	}

	for i := len(elifs) - 1; i >= 0; i-- {
		orelse = []Stmt{&If{Body: b.suite(elifs[i]), Orelse: orelse}}
	}

	return &If{Body: b.suite(n), Orelse: orelse}
}

func (b *builder) tryStatement(n sitter.Node) Stmt {
	stmt := &Try{Body: b.suite(n)}

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)

		switch child.Type() {
		case typeExceptClause, typeExceptGroupClause:
			stmt.Handlers = append(stmt.Handlers, ExceptHandler{Body: b.suite(child)})
		case typeElseClause:
			stmt.Orelse = b.suite(child)
		case typeFinallyClause:
			stmt.Finalbody = b.suite(child)
		}
	}

	return stmt
}

func (b *builder) matchStatement(n sitter.Node) Stmt {
	stmt := &Match{}

	var collect func(parent sitter.Node)

	collect = func(parent sitter.Node) {
		for idx := range parent.NamedChildCount() {
			child := parent.NamedChild(idx)

			switch child.Type() {
			case typeCaseClause:
				stmt.Cases = append(stmt.Cases, b.suite(child))
			case typeBlock:
				collect(child)
			}
		}
	}

	collect(n)

	return stmt
}

func (b *builder) importFrom(n sitter.Node) Stmt {
	stmt := &ImportFrom{Line: line(n)}

	moduleNode := n.ChildByFieldName(fieldModuleName)
	if !moduleNode.IsNull() {
		switch moduleNode.Type() {
		case typeDottedName:
			stmt.Module = b.dottedName(moduleNode)
		case typeRelativeImport:
			stmt.Module, stmt.Level = b.relativeImport(moduleNode)
		}
	}

	stmt.Names = b.aliases(n, moduleNode)

	return stmt
}

func (b *builder) relativeImport(n sitter.Node) (string, int) {
	var (
		module string
		level  int
	)

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)

		switch child.Type() {
		case typeImportPrefix:
			level = strings.Count(b.text(child), ".")
		case typeDottedName:
			module = b.dottedName(child)
		}
	}

	return module, level
}

// aliases collects the imported names of an import statement, skipping the
// module_name node of a from-import.
func (b *builder) aliases(n, moduleNode sitter.Node) []Alias {
	var names []Alias

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)
		if !moduleNode.IsNull() && child.StartByte() == moduleNode.StartByte() {
			continue
		}

		switch child.Type() {
		case typeDottedName:
			names = append(names, Alias{Name: b.dottedName(child)})
		case typeAliasedImport:
			names = append(names, Alias{
				Name:   b.dottedName(child.ChildByFieldName(fieldName)),
				AsName: b.text(child.ChildByFieldName(fieldAlias)),
			})
		case typeWildcardImport:
			names = append(names, Alias{Name: wildcardName})
		}
	}

	return names
}

// dottedName joins identifier parts, dropping any whitespace or line
// continuations written between them.
func (b *builder) dottedName(n sitter.Node) string {
	if n.IsNull() {
		return ""
	}

	if n.Type() == typeIdentifier {
		return b.text(n)
	}

	parts := make([]string, 0, n.NamedChildCount())

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)
		if child.Type() == typeIdentifier {
			parts = append(parts, b.text(child))
		}
	}

	if len(parts) == 0 {
		return strings.TrimSpace(b.text(n))
	}

	return strings.Join(parts, ".")
}

func isAsync(n sitter.Node) bool {
	return n.ChildCount() > 0 && n.Child(0).Type() == typeAsyncKeyword
}

func line(n sitter.Node) int {
	return safeconv.MustUintToInt(n.StartPoint().Row) + 1
}
