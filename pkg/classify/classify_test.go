package classify_test

import (
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/pydeps/pkg/classify"
	"github.com/Sumatoshi-tech/pydeps/pkg/resolve"
	"github.com/Sumatoshi-tech/pydeps/pkg/stdlib"
)

func newClassifier(t *testing.T, opts ...classify.Option) *classify.Classifier {
	t.Helper()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/proj/mypkg", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/proj/mypkg/__init__.py", nil, 0o644))
	// A local directory shadowing a stdlib name is still stdlib.
	require.NoError(t, fsys.MkdirAll("/proj/json", 0o755))

	return classify.New(stdlib.Default(), resolve.New(fsys, "/proj"), opts...)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	c := newClassifier(t)

	tests := []struct {
		base string
		want classify.Kind
	}{
		{"os", classify.StandardLibrary},
		{"json", classify.StandardLibrary},
		{"mypkg", classify.Local},
		{"requests", classify.ThirdParty},
	}

	for _, tt := range tests {
		got := c.Classify("/proj/main.py", tt.base)
		assert.Equal(t, classify.Classification{Base: tt.base, Kind: tt.want}, got, tt.base)
	}
}

func TestClassify_StdlibRegardlessOfLocation(t *testing.T) {
	t.Parallel()

	c := newClassifier(t)

	for _, name := range stdlib.Default().Names() {
		for _, file := range []string{"/proj/main.py", "/proj/mypkg/deep/x.py", "/elsewhere/y.py"} {
			assert.Equal(t, classify.StandardLibrary, c.Classify(file, name).Kind, name)
		}
	}
}

func TestClassify_Idempotent(t *testing.T) {
	t.Parallel()

	c := newClassifier(t)

	for _, base := range []string{"os", "mypkg", "requests"} {
		assert.Equal(t, c.Classify("/proj/main.py", base), c.Classify("/proj/main.py", base))
	}
}

func TestClassify_KnownLocal(t *testing.T) {
	t.Parallel()

	c := newClassifier(t, classify.WithKnownLocal("company_shared", "os"))

	assert.Equal(t, classify.Local, c.Classify("/proj/main.py", "company_shared").Kind)
	assert.Equal(t, classify.StandardLibrary, c.Classify("/proj/main.py", "os").Kind)
}

func TestClassify_NilResolverAndRegistry(t *testing.T) {
	t.Parallel()

	c := classify.New(nil, nil)

	assert.Equal(t, classify.StandardLibrary, c.Classify("x.py", "sys").Kind)
	assert.True(t, c.Classify("x.py", "numpy").IsThirdParty())
}

func TestKind_StringAndJSON(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "stdlib", classify.StandardLibrary.String())
	assert.Equal(t, "local", classify.Local.String())
	assert.Equal(t, "third-party", classify.ThirdParty.String())
	assert.Equal(t, "unknown", classify.Kind(42).String())

	data, err := json.Marshal(classify.Classification{Base: "requests", Kind: classify.ThirdParty})
	require.NoError(t, err)
	assert.JSONEq(t, `{"base":"requests","kind":"third-party"}`, string(data))
}
