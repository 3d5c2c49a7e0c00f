// Package pyast parses Python source into a small statement tree that keeps
// only what import analysis needs: import statements and the nested bodies of
// compound statements.
package pyast

// Module is the parsed form of one Python file.
type Module struct {
	Body []Stmt
}

// Stmt is a Python statement. The set of implementations is closed.
type Stmt interface {
	stmt()
}

// Alias is one imported name with its optional "as" binding.
type Alias struct {
	Name   string
	AsName string
}

// Import is "import a.b.c [as x], d".
type Import struct {
	Names []Alias
	Line  int
}

// ImportFrom is "from [dots]module import names".
// Level counts the leading dots; zero means an absolute import.
// Module is empty for "from . import x".
type ImportFrom struct {
	Module string
	Names  []Alias
	Level  int
	Line   int
}

// FunctionDef is a def or async def.
type FunctionDef struct {
	Name  string
	Body  []Stmt
	Async bool
}

// ClassDef is a class definition.
type ClassDef struct {
	Name string
	Body []Stmt
}

// With is a with or async with block.
type With struct {
	Body  []Stmt
	Async bool
}

// For is a for or async for loop; Orelse holds the else clause.
type For struct {
	Body   []Stmt
	Orelse []Stmt
	Async  bool
}

// While is a while loop; Orelse holds the else clause.
type While struct {
	Body   []Stmt
	Orelse []Stmt
}

// If is an if statement. An elif chain is a single nested If in Orelse.
type If struct {
	Body   []Stmt
	Orelse []Stmt
}

// ExceptHandler is one except or except* clause.
type ExceptHandler struct {
	Body []Stmt
}

// Try is a try statement with all four parts.
type Try struct {
	Body      []Stmt
	Handlers  []ExceptHandler
	Orelse    []Stmt
	Finalbody []Stmt
}

// Match is a match statement; each case body is one entry of Cases.
type Match struct {
	Cases [][]Stmt
}

// Other is any statement that carries no imports and no nested statements
// of interest. Kind is the grammar node type.
type Other struct {
	Kind string
}

func (*Import) stmt()      {}
func (*ImportFrom) stmt()  {}
func (*FunctionDef) stmt() {}
func (*ClassDef) stmt()    {}
func (*With) stmt()        {}
func (*For) stmt()         {}
func (*While) stmt()       {}
func (*If) stmt()          {}
func (*Try) stmt()         {}
func (*Match) stmt()       {}
func (*Other) stmt()       {}
