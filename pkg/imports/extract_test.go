package imports_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/pydeps/pkg/imports"
	"github.com/Sumatoshi-tech/pydeps/pkg/pyast"
)

func TestModuleBase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"django.http", "django"},
		{"os", "os"},
		{"a.b.c", "a"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, imports.ModuleBase(tt.in), tt.in)
	}
}

func TestExtract_HandBuiltTree(t *testing.T) {
	t.Parallel()

	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.Import{Names: []pyast.Alias{{Name: "os.path"}, {Name: "requests", AsName: "r"}}},
		&pyast.ImportFrom{Module: "uuid", Names: []pyast.Alias{{Name: "UUID"}}},
		&pyast.ImportFrom{Level: 1, Names: []pyast.Alias{{Name: "another"}}},
		&pyast.ImportFrom{Module: "pkg", Level: 2},
		&pyast.Other{Kind: "expression_statement"},
		&pyast.Try{
			Body:      []pyast.Stmt{&pyast.Import{Names: []pyast.Alias{{Name: "try_pkg"}}}},
			Handlers:  []pyast.ExceptHandler{{Body: []pyast.Stmt{&pyast.Import{Names: []pyast.Alias{{Name: "except_pkg"}}}}}},
			Orelse:    []pyast.Stmt{&pyast.Import{Names: []pyast.Alias{{Name: "else_pkg"}}}},
			Finalbody: []pyast.Stmt{&pyast.Import{Names: []pyast.Alias{{Name: "finally_pkg"}}}},
		},
		&pyast.Match{Cases: [][]pyast.Stmt{{&pyast.Import{Names: []pyast.Alias{{Name: "case_pkg"}}}}}},
	}}

	assert.ElementsMatch(t, []string{
		"os", "requests", "uuid", "try_pkg", "except_pkg", "else_pkg", "finally_pkg", "case_pkg",
	}, imports.Extract(mod))
}

func TestExtract_Nil(t *testing.T) {
	t.Parallel()

	assert.Empty(t, imports.Extract(nil))
}

func TestExtract_EveryNestingDepth(t *testing.T) {
	t.Parallel()

	src := `import top_package

def f():
    import f_package
    class Inner:
        def m(self):
            if cond:
                import m_if_package
                if other:
                    import nested_m_if_package

class C:
    import c_package

if a:
    import if_package
elif b:
    import elif_package
elif c:
    import elif2_package
else:
    import else_package

for i in items:
    import for_package
else:
    import for_else_package

while running:
    import while_package

try:
    import try_package
except ValueError:
    if deep:
        import nested_if_except_package
except Exception:
    import except_package
else:
    import try_else_package
finally:
    import try_finally_package

with ctx():
    import with_package

async def g():
    async with lock:
        import async_with_package
    async for x in stream:
        import async_for_package

x = __import__("dynamic_package")
`

	parser, err := pyast.NewParser()
	require.NoError(t, err)

	mod, err := parser.Parse(context.Background(), "nested.py", []byte(src))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"top_package", "f_package", "m_if_package", "nested_m_if_package", "c_package",
		"if_package", "elif_package", "elif2_package", "else_package",
		"for_package", "for_else_package", "while_package",
		"try_package", "nested_if_except_package", "except_package", "try_else_package", "try_finally_package",
		"with_package", "async_with_package", "async_for_package",
	}, imports.Extract(mod))
}

func TestReferences_KeepsModuleAndLine(t *testing.T) {
	t.Parallel()

	parser, err := pyast.NewParser()
	require.NoError(t, err)

	mod, err := parser.Parse(context.Background(), "refs.py", []byte("import os\n\nfrom django.http import Http404\n"))
	require.NoError(t, err)

	assert.Equal(t, []imports.Reference{
		{Module: "os", Base: "os", Line: 1},
		{Module: "django.http", Base: "django", Line: 3},
	}, imports.References(mod))
}

func TestWalk_VisitsEveryStatement(t *testing.T) {
	t.Parallel()

	body := []pyast.Stmt{
		&pyast.If{
			Body:   []pyast.Stmt{&pyast.Other{Kind: "pass_statement"}},
			Orelse: []pyast.Stmt{&pyast.While{Body: []pyast.Stmt{&pyast.Other{Kind: "pass_statement"}}}},
		},
	}

	var visited int

	imports.Walk(body, func(pyast.Stmt) { visited++ })

	assert.Equal(t, 4, visited)
}
