package scan

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"github.com/src-d/enry/v2"
)

// DefaultExtensions are the Python source and stub suffixes.
var DefaultExtensions = []string{".py", ".pyi"}

const gitDir = ".git"

// Walker discovers candidate source files under a project root.
type Walker struct {
	Fs afero.Fs

	// Extensions are the accepted file suffixes, including the dot.
	// Empty means DefaultExtensions.
	Extensions []string

	// Exclude holds glob patterns matched against entry names and
	// root-relative slash paths.
	Exclude []string

	// IncludeHidden descends into entries whose name starts with a dot.
	// ".git" is skipped regardless.
	IncludeHidden bool

	// SkipVendor skips paths enry recognizes as vendored code, such as
	// virtualenvs, site-packages and node_modules.
	SkipVendor bool

	// Logger receives skipped-entry diagnostics. Nil uses slog default.
	Logger *slog.Logger
}

// Files returns the sorted paths of candidate files under root.
// Entries below root that cannot be read are skipped; only an unreadable
// root fails the walk.
func (w *Walker) Files(root string) ([]string, error) {
	fsys := w.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	extensions := w.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	var files []string

	err := afero.Walk(fsys, root, func(path string, info os.FileInfo, walkErr error) error {
		skip, err := w.shouldSkip(root, path, info, walkErr)
		if skip || err != nil {
			return err
		}

		if slices.Contains(extensions, filepath.Ext(path)) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	slices.Sort(files)

	return files, nil
}

// shouldSkip decides whether a walk entry is skipped. Directories are never
// candidates themselves; skipped directories are pruned with filepath.SkipDir.
func (w *Walker) shouldSkip(root, path string, info os.FileInfo, walkErr error) (bool, error) {
	isDir := info != nil && info.IsDir()

	if walkErr != nil {
		if path == root {
			return false, walkErr
		}

		w.logger().Debug("skipping unreadable entry", "path", path, "error", walkErr)

		if isDir {
			return true, filepath.SkipDir
		}

		return true, nil
	}

	if info == nil {
		return true, nil
	}

	if path == root {
		return true, nil
	}

	if w.excluded(root, path, info) {
		if isDir {
			return true, filepath.SkipDir
		}

		return true, nil
	}

	return isDir, nil
}

func (w *Walker) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}

	return slog.Default()
}

func (w *Walker) excluded(root, path string, info os.FileInfo) bool {
	name := info.Name()

	if name == gitDir {
		return true
	}

	if !w.IncludeHidden && strings.HasPrefix(name, ".") {
		return true
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}

	rel = filepath.ToSlash(rel)

	if w.SkipVendor {
		vendorPath := rel
		if info.IsDir() {
			vendorPath += "/"
		}

		if enry.IsVendor(vendorPath) {
			return true
		}
	}

	for _, pattern := range w.Exclude {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}

		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
	}

	return false
}
