package pyast_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/pydeps/pkg/pyast"
)

func parse(t *testing.T, src string) *pyast.Module {
	t.Helper()

	parser, err := pyast.NewParser()
	require.NoError(t, err)

	mod, err := parser.Parse(context.Background(), "test.py", []byte(src))
	require.NoError(t, err)

	return mod
}

func TestParse_Imports(t *testing.T) {
	t.Parallel()

	mod := parse(t, `import os, sys
import numpy.linalg as la
from django.http import Http404, JsonResponse as JR
from . import sibling
from ..pkg.mod import thing
from .mod import *
from __future__ import annotations
`)

	require.Len(t, mod.Body, 7)

	imp, ok := mod.Body[0].(*pyast.Import)
	require.True(t, ok)
	assert.Equal(t, []pyast.Alias{{Name: "os"}, {Name: "sys"}}, imp.Names)
	assert.Equal(t, 1, imp.Line)

	imp, ok = mod.Body[1].(*pyast.Import)
	require.True(t, ok)
	assert.Equal(t, []pyast.Alias{{Name: "numpy.linalg", AsName: "la"}}, imp.Names)

	from, ok := mod.Body[2].(*pyast.ImportFrom)
	require.True(t, ok)
	assert.Equal(t, "django.http", from.Module)
	assert.Equal(t, 0, from.Level)
	assert.Equal(t, []pyast.Alias{{Name: "Http404"}, {Name: "JsonResponse", AsName: "JR"}}, from.Names)
	assert.Equal(t, 3, from.Line)

	from, ok = mod.Body[3].(*pyast.ImportFrom)
	require.True(t, ok)
	assert.Empty(t, from.Module)
	assert.Equal(t, 1, from.Level)

	from, ok = mod.Body[4].(*pyast.ImportFrom)
	require.True(t, ok)
	assert.Equal(t, "pkg.mod", from.Module)
	assert.Equal(t, 2, from.Level)

	from, ok = mod.Body[5].(*pyast.ImportFrom)
	require.True(t, ok)
	assert.Equal(t, "mod", from.Module)
	assert.Equal(t, 1, from.Level)
	assert.Equal(t, []pyast.Alias{{Name: "*"}}, from.Names)

	from, ok = mod.Body[6].(*pyast.ImportFrom)
	require.True(t, ok)
	assert.Equal(t, "__future__", from.Module)
	assert.Equal(t, 0, from.Level)
}

func TestParse_CompoundStatements(t *testing.T) {
	t.Parallel()

	mod := parse(t, `@decorator
async def handler():
    import a

class C:
    import b

if x:
    import c
elif y:
    import d
else:
    import e

try:
    import f
except ImportError:
    import g
else:
    import h
finally:
    import i

for _ in range(3):
    import j
else:
    import k

while False:
    import l
else:
    import m

with open("f") as fh:
    import n
`)

	require.Len(t, mod.Body, 7)

	fn, ok := mod.Body[0].(*pyast.FunctionDef)
	require.True(t, ok)
	assert.Equal(t, "handler", fn.Name)
	assert.True(t, fn.Async)
	require.Len(t, fn.Body, 1)

	cls, ok := mod.Body[1].(*pyast.ClassDef)
	require.True(t, ok)
	assert.Equal(t, "C", cls.Name)
	require.Len(t, cls.Body, 1)

	ifStmt, ok := mod.Body[2].(*pyast.If)
	require.True(t, ok)
	require.Len(t, ifStmt.Body, 1)
	require.Len(t, ifStmt.Orelse, 1)
	elif, ok := ifStmt.Orelse[0].(*pyast.If)
	require.True(t, ok)
	require.Len(t, elif.Body, 1)
	require.Len(t, elif.Orelse, 1)

	try, ok := mod.Body[3].(*pyast.Try)
	require.True(t, ok)
	assert.Len(t, try.Body, 1)
	require.Len(t, try.Handlers, 1)
	assert.Len(t, try.Handlers[0].Body, 1)
	assert.Len(t, try.Orelse, 1)
	assert.Len(t, try.Finalbody, 1)

	loop, ok := mod.Body[4].(*pyast.For)
	require.True(t, ok)
	assert.False(t, loop.Async)
	assert.Len(t, loop.Body, 1)
	assert.Len(t, loop.Orelse, 1)

	while, ok := mod.Body[5].(*pyast.While)
	require.True(t, ok)
	assert.Len(t, while.Body, 1)
	assert.Len(t, while.Orelse, 1)

	with, ok := mod.Body[6].(*pyast.With)
	require.True(t, ok)
	assert.Len(t, with.Body, 1)
}

func TestParse_MatchCases(t *testing.T) {
	t.Parallel()

	mod := parse(t, `match command:
    case "a":
        import alpha
    case _:
        import beta
`)

	require.Len(t, mod.Body, 1)

	match, ok := mod.Body[0].(*pyast.Match)
	require.True(t, ok)
	require.Len(t, match.Cases, 2)
	assert.Len(t, match.Cases[0], 1)
	assert.Len(t, match.Cases[1], 1)
}

func TestParse_CommentsAndOtherStatements(t *testing.T) {
	t.Parallel()

	mod := parse(t, "# header\nx = 1\nprint(x)\n")

	require.Len(t, mod.Body, 2)

	other, ok := mod.Body[0].(*pyast.Other)
	require.True(t, ok)
	assert.Equal(t, "expression_statement", other.Kind)
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	mod := parse(t, "")

	assert.Empty(t, mod.Body)
}

func TestParse_SyntaxError(t *testing.T) {
	t.Parallel()

	parser, err := pyast.NewParser()
	require.NoError(t, err)

	_, err = parser.Parse(context.Background(), "broken.py", []byte("import os\ndef broken(:\n    pass\n"))
	require.Error(t, err)
	require.ErrorIs(t, err, pyast.ErrSyntax)

	var syntaxErr *pyast.SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, "broken.py", syntaxErr.Filename)
	assert.Equal(t, 2, syntaxErr.Line)
}

func TestParse_RejectsInvalidPython3(t *testing.T) {
	t.Parallel()

	parser, err := pyast.NewParser()
	require.NoError(t, err)

	tests := []struct {
		name   string
		src    string
		reason string
		line   int
		column int
	}{
		{
			name:   "print_statement",
			src:    "import urllib2\nprint 'hi'\n",
			reason: pyast.ReasonPrint,
			line:   2,
			column: 1,
		},
		{
			name:   "exec_statement",
			src:    "exec 'x = 1'\n",
			reason: pyast.ReasonExec,
			line:   1,
			column: 1,
		},
		{
			name:   "except_comma",
			src:    "try:\n    import a\nexcept ImportError, e:\n    pass\n",
			reason: pyast.ReasonExceptComma,
			line:   3,
			column: 1,
		},
		{
			name:   "indented_module_statement",
			src:    "import scipy\n    import flask\n",
			reason: pyast.ReasonIndent,
			line:   2,
			column: 5,
		},
		{
			name:   "indented_first_statement",
			src:    "  import scipy\n",
		},
		{
			name:   "inconsistent_block",
			src:    "def f():\n    import a\n        import b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, parseErr := parser.Parse(context.Background(), "legacy.py", []byte(tt.src))
			require.ErrorIs(t, parseErr, pyast.ErrSyntax)

			var syntaxErr *pyast.SyntaxError
			require.True(t, errors.As(parseErr, &syntaxErr))
			assert.Equal(t, "legacy.py", syntaxErr.Filename)

			// Cases without a reason may surface as a recovered ERROR node.
			if tt.reason != "" {
				assert.Equal(t, tt.reason, syntaxErr.Reason)
				assert.Equal(t, tt.line, syntaxErr.Line)
				assert.Equal(t, tt.column, syntaxErr.Column)
			}
		})
	}
}

func TestParse_AcceptsValidLayouts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		body int
	}{
		{name: "semicolons", src: "import a; import b\n", body: 2},
		{name: "inline_block", src: "if x: import a\n", body: 1},
		{name: "tab_block", src: "if x:\n\timport a\n\timport b\n", body: 1},
		{name: "except_as", src: "try:\n    pass\nexcept (A, B) as e:\n    pass\n", body: 1},
		{name: "print_call", src: "print('hi')\n", body: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mod := parse(t, tt.src)
			assert.Len(t, mod.Body, tt.body)
		})
	}
}

func TestParser_ConcurrentUse(t *testing.T) {
	t.Parallel()

	parser, err := pyast.NewParser()
	require.NoError(t, err)

	var wg sync.WaitGroup

	errs := make(chan error, 16)

	for range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, parseErr := parser.Parse(context.Background(), "c.py", []byte("import os\nimport requests\n"))
			errs <- parseErr
		}()
	}

	wg.Wait()
	close(errs)

	for parseErr := range errs {
		assert.NoError(t, parseErr)
	}
}
