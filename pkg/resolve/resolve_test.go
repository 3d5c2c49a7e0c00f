package resolve_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/pydeps/pkg/resolve"
)

func memProject(t *testing.T) afero.Fs {
	t.Helper()

	fsys := afero.NewMemMapFs()

	require.NoError(t, fsys.MkdirAll("/proj/mypkg", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/proj/mypkg/__init__.py", nil, 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/proj/settings.py", nil, 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/proj/typed.pyi", nil, 0o644))
	require.NoError(t, fsys.MkdirAll("/proj/app/sub/helpers", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/proj/app/sub/sibling.py", nil, 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/proj/app/sub/views.py", nil, 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/proj/app/uncle.py", nil, 0o644))

	return fsys
}

func TestIsLocal(t *testing.T) {
	t.Parallel()

	res := resolve.New(memProject(t), "/proj").WithRootName("proj")

	tests := []struct {
		name string
		file string
		base string
		want bool
	}{
		{"root package dir", "/proj/main.py", "mypkg", true},
		{"root module file", "/proj/app/sub/views.py", "settings", true},
		{"root stub file", "/proj/main.py", "typed", true},
		{"sibling module", "/proj/app/sub/views.py", "sibling", true},
		{"sibling package", "/proj/app/sub/views.py", "helpers", true},
		{"root name", "/proj/main.py", "proj", true},
		{"third party", "/proj/main.py", "requests", false},
		{"ancestor between root and file is not consulted", "/proj/app/sub/views.py", "uncle", false},
		{"empty base", "/proj/main.py", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, res.IsLocal(tt.file, tt.base))
		})
	}
}

func TestIsLocal_Idempotent(t *testing.T) {
	t.Parallel()

	res := resolve.New(memProject(t), "/proj")

	first := res.IsLocal("/proj/main.py", "mypkg")
	second := res.IsLocal("/proj/main.py", "mypkg")

	assert.Equal(t, first, second)
}

func TestIsLocal_CanonicalRootName(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	target := filepath.Join(parent, "acme")
	require.NoError(t, os.Mkdir(target, 0o755))

	link := filepath.Join(parent, "link")
	require.NoError(t, os.Symlink(target, link))

	res := resolve.NewOS(link)

	assert.True(t, res.IsLocal(filepath.Join(link, "x.py"), "acme"))
	assert.False(t, res.IsLocal(filepath.Join(link, "x.py"), "link"))
}

func TestIsLocal_MissingRootDegrades(t *testing.T) {
	t.Parallel()

	res := resolve.NewOS(filepath.Join(t.TempDir(), "does-not-exist"))

	assert.False(t, res.IsLocal("/nowhere/x.py", "does-not-exist"))
	assert.False(t, res.IsLocal("/nowhere/x.py", "requests"))
}

func TestIsLocal_RootNameFromVirtualFs(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/srv/acme", 0o755))

	res := resolve.New(fsys, "/srv/acme/")

	assert.True(t, res.IsLocal("/srv/acme/x.py", "acme"))
	assert.False(t, res.IsLocal("/srv/acme/x.py", "srv"))
}

func TestIsLocal_RootNameIgnoresHostFs(t *testing.T) {
	t.Parallel()

	// The root exists on the host but not on the virtual filesystem.
	hostRoot := t.TempDir()

	res := resolve.New(afero.NewMemMapFs(), hostRoot)

	assert.False(t, res.IsLocal(filepath.Join(hostRoot, "x.py"), filepath.Base(hostRoot)))
}

func TestRoot(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/proj", resolve.New(afero.NewMemMapFs(), "/proj").Root())
}
