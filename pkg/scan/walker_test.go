package scan_test

import (
	"context"
	"io/fs"
	"syscall"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/pydeps/pkg/scan"
)

func walkerFs(t *testing.T) afero.Fs {
	t.Helper()

	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, map[string]string{
		"/proj/main.py":                               "",
		"/proj/stubs/api.pyi":                         "",
		"/proj/notes.txt":                             "",
		"/proj/.hidden/secret.py":                     "",
		"/proj/.git/hooks/pre-commit.py":              "",
		"/proj/.venv/lib/site.py":                     "",
		"/proj/node_modules/pkg/x.py":                 "",
		"/proj/build/generated_pb2.py":                "",
		"/proj/tests/test_main.py":                    "",
		"/proj/src/app/views.py":                      "",
		"/proj/src/app/.cache.py":                     "",
		"/proj/vendor/lib/third.py":                   "",
		"/proj/env/lib/python3.11/site-packages/a.py": "",
	})

	return fsys
}

func TestWalker_Defaults(t *testing.T) {
	t.Parallel()

	w := scan.Walker{Fs: walkerFs(t)}

	files, err := w.Files("/proj")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/proj/build/generated_pb2.py",
		"/proj/env/lib/python3.11/site-packages/a.py",
		"/proj/main.py",
		"/proj/node_modules/pkg/x.py",
		"/proj/src/app/views.py",
		"/proj/stubs/api.pyi",
		"/proj/tests/test_main.py",
		"/proj/vendor/lib/third.py",
	}, files)
}

func TestWalker_IncludeHidden(t *testing.T) {
	t.Parallel()

	w := scan.Walker{Fs: walkerFs(t), IncludeHidden: true}

	files, err := w.Files("/proj")
	require.NoError(t, err)

	assert.Contains(t, files, "/proj/.hidden/secret.py")
	assert.Contains(t, files, "/proj/.venv/lib/site.py")
	assert.Contains(t, files, "/proj/src/app/.cache.py")
	assert.NotContains(t, files, "/proj/.git/hooks/pre-commit.py")
}

func TestWalker_SkipVendor(t *testing.T) {
	t.Parallel()

	w := scan.Walker{Fs: walkerFs(t), SkipVendor: true}

	files, err := w.Files("/proj")
	require.NoError(t, err)

	assert.NotContains(t, files, "/proj/node_modules/pkg/x.py")
	assert.NotContains(t, files, "/proj/vendor/lib/third.py")
	assert.Contains(t, files, "/proj/main.py")
	assert.Contains(t, files, "/proj/src/app/views.py")
}

func TestWalker_Exclude(t *testing.T) {
	t.Parallel()

	w := scan.Walker{Fs: walkerFs(t), Exclude: []string{"tests", "*_pb2.py", "src/app/*"}}

	files, err := w.Files("/proj")
	require.NoError(t, err)

	assert.NotContains(t, files, "/proj/tests/test_main.py")
	assert.NotContains(t, files, "/proj/build/generated_pb2.py")
	assert.NotContains(t, files, "/proj/src/app/views.py")
	assert.Contains(t, files, "/proj/main.py")
}

func TestWalker_Extensions(t *testing.T) {
	t.Parallel()

	w := scan.Walker{Fs: walkerFs(t), Extensions: []string{".pyi"}}

	files, err := w.Files("/proj")
	require.NoError(t, err)

	assert.Equal(t, []string{"/proj/stubs/api.pyi"}, files)
}

func TestWalker_HiddenRootIsScanned(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, map[string]string{"/.proj/main.py": ""})

	files, err := (&scan.Walker{Fs: fsys}).Files("/.proj")
	require.NoError(t, err)

	assert.Equal(t, []string{"/.proj/main.py"}, files)
}

// failingOpenFs fails Open for one directory with an I/O error.
type failingOpenFs struct {
	afero.Fs

	dir string
}

func (f failingOpenFs) Open(name string) (afero.File, error) {
	if name == f.dir {
		return nil, &fs.PathError{Op: "open", Path: name, Err: syscall.EIO}
	}

	return f.Fs.Open(name)
}

func unreadableDirFs(t *testing.T, dir string) afero.Fs {
	t.Helper()

	fsys := afero.NewMemMapFs()
	writeFiles(t, fsys, map[string]string{
		"/proj/ok.py":       "import numpy\n",
		"/proj/bad/lost.py": "import flask\n",
		"/proj/good/x.py":   "import attrs\n",
	})

	return failingOpenFs{Fs: fsys, dir: dir}
}

func TestWalker_UnreadableSubdirectorySkipped(t *testing.T) {
	t.Parallel()

	w := scan.Walker{Fs: unreadableDirFs(t, "/proj/bad")}

	files, err := w.Files("/proj")
	require.NoError(t, err)
	assert.Equal(t, []string{"/proj/good/x.py", "/proj/ok.py"}, files)
}

func TestWalker_UnreadableRootFails(t *testing.T) {
	t.Parallel()

	w := scan.Walker{Fs: unreadableDirFs(t, "/proj")}

	_, err := w.Files("/proj")
	require.ErrorIs(t, err, syscall.EIO)
}

func TestRun_UnreadableSubdirectoryDoesNotAbort(t *testing.T) {
	t.Parallel()

	s := newScanner(t, scan.Options{Fs: unreadableDirFs(t, "/proj/bad")})

	result, err := s.Run(context.Background(), "/proj")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Files)
	assert.Equal(t, []string{"attrs", "numpy"}, result.Packages.Sorted())
}
