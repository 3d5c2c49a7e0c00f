// Package imports extracts absolute module references from parsed Python files.
package imports

import (
	"strings"

	"github.com/Sumatoshi-tech/pydeps/pkg/pyast"
)

// Reference is one absolute module named by an import statement.
type Reference struct {
	Module string
	Base   string
	Line   int
}

// ModuleBase returns the segment of a dotted module name before the first dot.
func ModuleBase(dotted string) string {
	base, _, _ := strings.Cut(dotted, ".")

	return base
}

// Extract returns the module base of every absolute import in mod, at any
// nesting depth. The result may contain duplicates.
func Extract(mod *pyast.Module) []string {
	refs := References(mod)
	bases := make([]string, 0, len(refs))

	for _, ref := range refs {
		bases = append(bases, ref.Base)
	}

	return bases
}

// References returns every absolute import reference in mod. Relative
// imports and "from . import x" never produce a reference.
func References(mod *pyast.Module) []Reference {
	if mod == nil {
		return nil
	}

	var refs []Reference

	Walk(mod.Body, func(stmt pyast.Stmt) {
		switch s := stmt.(type) {
		case *pyast.Import:
			for _, alias := range s.Names {
				if alias.Name == "" {
					continue
				}

				refs = append(refs, Reference{Module: alias.Name, Base: ModuleBase(alias.Name), Line: s.Line})
			}
		case *pyast.ImportFrom:
			if s.Level != 0 || s.Module == "" {
				return
			}

			refs = append(refs, Reference{Module: s.Module, Base: ModuleBase(s.Module), Line: s.Line})
		}
	})

	return refs
}

// Walk calls visit for every statement in body and, recursively, for every
// statement nested in compound statements: definition bodies, with bodies,
// loop and if bodies with their else branches, all four parts of a try, and
// match case bodies.
func Walk(body []pyast.Stmt, visit func(pyast.Stmt)) {
	for _, stmt := range body {
		visit(stmt)

		switch s := stmt.(type) {
		case *pyast.FunctionDef:
			Walk(s.Body, visit)
		case *pyast.ClassDef:
			Walk(s.Body, visit)
		case *pyast.With:
			Walk(s.Body, visit)
		case *pyast.For:
			Walk(s.Body, visit)
			Walk(s.Orelse, visit)
		case *pyast.While:
			Walk(s.Body, visit)
			Walk(s.Orelse, visit)
		case *pyast.If:
			Walk(s.Body, visit)
			Walk(s.Orelse, visit)
		case *pyast.Try:
			Walk(s.Body, visit)

			for _, handler := range s.Handlers {
				Walk(handler.Body, visit)
			}

			Walk(s.Orelse, visit)
			Walk(s.Finalbody, visit)
		case *pyast.Match:
			for _, body := range s.Cases {
				Walk(body, visit)
			}
		}
	}
}
