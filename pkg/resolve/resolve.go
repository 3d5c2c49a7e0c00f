// Package resolve decides whether an imported module base lives inside the
// project being scanned.
package resolve

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// SourceExtensions are the file suffixes that make a module file importable.
var SourceExtensions = []string{".py", ".pyi"}

// Resolver answers local-import questions for one project root.
// It only reads the filesystem and is safe for concurrent use.
type Resolver struct {
	fsys     afero.Fs
	root     string
	rootName string
}

// New creates a Resolver for root. The root's name is computed once, with
// symlinks resolved on the OS filesystem; if root cannot be found on fsys the
// name check is skipped.
func New(fsys afero.Fs, root string) *Resolver {
	return &Resolver{
		fsys:     fsys,
		root:     root,
		rootName: rootName(fsys, root),
	}
}

// NewOS creates a Resolver backed by the operating system filesystem.
func NewOS(root string) *Resolver {
	return New(afero.NewOsFs(), root)
}

// WithRootName returns a copy of r that uses name for the root name check.
// It exists for filesystems where the root cannot be canonicalized.
func (r *Resolver) WithRootName(name string) *Resolver {
	cp := *r
	cp.rootName = name

	return &cp
}

// Root returns the project root the resolver was created with.
func (r *Resolver) Root() string {
	return r.root
}

// IsLocal reports whether base refers to a module present in the project:
// the project root itself is named base, or base exists as a package
// directory or module file next to the project root or next to filePath.
func (r *Resolver) IsLocal(filePath, base string) bool {
	if base == "" {
		return false
	}

	if r.rootName != "" && r.rootName == base {
		return true
	}

	if r.moduleExists(r.root, base) {
		return true
	}

	return r.moduleExists(filepath.Dir(filePath), base)
}

func (r *Resolver) moduleExists(dir, base string) bool {
	if r.isDir(filepath.Join(dir, base)) {
		return true
	}

	for _, ext := range SourceExtensions {
		if r.isFile(filepath.Join(dir, base+ext)) {
			return true
		}
	}

	return false
}

func (r *Resolver) isDir(path string) bool {
	info, err := r.fsys.Stat(path)

	return err == nil && info.IsDir()
}

func (r *Resolver) isFile(path string) bool {
	info, err := r.fsys.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

// rootName only consults the host filesystem when fsys is the host
// filesystem, so every check of a Resolver sees the same tree.
func rootName(fsys afero.Fs, root string) string {
	if _, isOS := fsys.(*afero.OsFs); isOS {
		return canonicalName(root)
	}

	if _, err := fsys.Stat(root); err != nil {
		return ""
	}

	return baseName(filepath.Clean(root))
}

func canonicalName(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		return ""
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return ""
	}

	return baseName(resolved)
}

func baseName(path string) string {
	name := filepath.Base(path)
	if name == string(filepath.Separator) || name == "." {
		return ""
	}

	return name
}
