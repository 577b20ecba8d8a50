package pipeline

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemap/internal/association"
	"schemap/internal/discover"
	"schemap/internal/fsys"
	"schemap/internal/settings"
)

func compiled(t *testing.T) settings.Compiled {
	t.Helper()
	cfg, err := settings.Default().Compile()
	require.NoError(t, err)
	return cfg
}

func seed(t *testing.T, files map[string]string, dirs ...string) *fsys.Memory {
	t.Helper()
	fs := fsys.NewMemory()
	for _, d := range dirs {
		require.NoError(t, fs.MkdirAll(d))
	}
	for path, content := range files {
		require.NoError(t, fs.WriteFile(path, []byte(content)))
	}
	return fs
}

func TestResolve_AcrossAncestorChain(t *testing.T) {
	fs := seed(t, map[string]string{
		"/home/user/proj/.schemap/json.patterns": `(schema-patterns
  ("/proj/.*\\.json$" "/schemas/proj.json"))`,
		"/home/.schemap/json.patterns": `(schema-patterns
  ("\\.json$" "/schemas/any-json.json"))`,
		"/home/user/proj/data.json": `{}`,
	})

	p := New(fs, compiled(t))
	res, err := p.Resolve("/home/user/proj/data.json")
	require.NoError(t, err)
	assert.Empty(t, res.Problems)

	// Nearest config directory contributes first.
	assert.Equal(t, []string{"/schemas/proj.json", "/schemas/any-json.json"}, res.Schemas)
	assert.Equal(t, []string{
		"/home/user/proj/.schemap/json.patterns",
		"/home/.schemap/json.patterns",
	}, res.ConfigFiles)
}

func TestResolve_NoMatchIsSilent(t *testing.T) {
	fs := seed(t, map[string]string{
		"/home/user/.schemap/json.patterns": `(schema-patterns ("\\.json$" "/schemas/j.json"))`,
		"/home/user/notes.txt":              "text",
	})

	res, err := New(fs, compiled(t)).Resolve("/home/user/notes.txt")
	require.NoError(t, err)
	assert.Empty(t, res.Schemas)
	assert.Empty(t, res.Problems)
}

func TestResolve_NoConfigDirsAtAll(t *testing.T) {
	fs := seed(t, map[string]string{"/home/user/data.json": "{}"})

	res, err := New(fs, compiled(t)).Resolve("/home/user/data.json")
	require.NoError(t, err)
	assert.Empty(t, res.Schemas)
	assert.Empty(t, res.ConfigFiles)
}

// A malformed config file is collected as a problem while valid config
// files elsewhere in the chain still contribute.
func TestResolve_MalformedFileIsIsolated(t *testing.T) {
	fs := seed(t, map[string]string{
		"/home/user/proj/.schemap/broken.patterns": `(schema-patterns ("\\.json$"`,
		"/home/.schemap/good.patterns":             `(schema-patterns ("\\.json$" "/schemas/j.json"))`,
		"/home/user/proj/data.json":                "{}",
	})

	res, err := New(fs, compiled(t)).Resolve("/home/user/proj/data.json")
	require.NoError(t, err)

	assert.Equal(t, []string{"/schemas/j.json"}, res.Schemas)

	require.Len(t, res.Problems, 1)
	var malformed *association.MalformedConfigError
	require.True(t, errors.As(res.Problems[0], &malformed))
	assert.Equal(t, "/home/user/proj/.schemap/broken.patterns", malformed.Path)
}

// Files matching the config filename pattern but carrying a different tag
// are skipped without a problem entry.
func TestResolve_UnrelatedTaggedFileSkipped(t *testing.T) {
	fs := seed(t, map[string]string{
		"/home/.schemap/other.patterns": `(editor-settings ("x" "y"))`,
		"/home/.schemap/json.patterns":  `(schema-patterns ("\\.json$" "/schemas/j.json"))`,
		"/home/data.json":               "{}",
	})

	res, err := New(fs, compiled(t)).Resolve("/home/data.json")
	require.NoError(t, err)
	assert.Empty(t, res.Problems)
	assert.Equal(t, []string{"/schemas/j.json"}, res.Schemas)
}

func TestResolve_DuplicateSchemasKept(t *testing.T) {
	fs := seed(t, map[string]string{
		"/home/.schemap/json.patterns": `(schema-patterns
  ("\\.json$" "/schemas/j.json")
  ("data" "/schemas/j.json"))`,
		"/home/data.json": "{}",
	})

	res, err := New(fs, compiled(t)).Resolve("/home/data.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"/schemas/j.json", "/schemas/j.json"}, res.Schemas)
}

func TestResolve_InvalidStart(t *testing.T) {
	fs := seed(t, nil, "/home")

	_, err := New(fs, compiled(t)).Resolve("/nonexistent/dir/data.json")
	require.Error(t, err)

	var invalid *discover.InvalidStartError
	assert.True(t, errors.As(err, &invalid))
}

// Two passes with no filesystem change in between produce identical results
// in identical order.
func TestResolve_Idempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	genDoc := gen.RegexMatch(`[a-z]{1,8}\.(json|yaml|txt)`)

	fs := seed(t, map[string]string{
		"/home/user/.schemap/json.patterns": `(schema-patterns
  ("\\.json$" "/schemas/j.json")
  ("\\.yaml$" "/schemas/y.json")
  ("a" "/schemas/a.json"))`,
	}, "/home/user")
	p := New(fs, compiled(t))

	properties.Property("repeated resolution is stable", prop.ForAll(
		func(name string) bool {
			doc := "/home/user/" + name
			first, err1 := p.Resolve(doc)
			second, err2 := p.Resolve(doc)
			if err1 != nil || err2 != nil {
				return false
			}
			return reflect.DeepEqual(first, second)
		},
		genDoc,
	))

	properties.TestingRun(t)
}

// Associations accumulate across many config files without caching between
// calls; adding a file between calls changes the next result.
func TestResolve_FreshWalkEachCall(t *testing.T) {
	fs := seed(t, map[string]string{
		"/home/.schemap/a.patterns": `(schema-patterns ("\\.json$" "/schemas/a.json"))`,
		"/home/data.json":           "{}",
	})
	p := New(fs, compiled(t))

	res, err := p.Resolve("/home/data.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"/schemas/a.json"}, res.Schemas)

	require.NoError(t, fs.WriteFile("/home/.schemap/b.patterns",
		[]byte(`(schema-patterns ("data" "/schemas/b.json"))`)))

	res, err = p.Resolve("/home/data.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"/schemas/a.json", "/schemas/b.json"}, res.Schemas,
		"a config file added after the first call is picked up by the next")
}

func TestResolve_ManyDocumentsIndependent(t *testing.T) {
	fs := seed(t, map[string]string{
		"/home/.schemap/json.patterns": `(schema-patterns ("\\.json$" "/schemas/j.json"))`,
	}, "/home/a", "/home/b")
	p := New(fs, compiled(t))

	for i := 0; i < 4; i++ {
		doc := fmt.Sprintf("/home/%c/f%d.json", 'a'+byte(i%2), i)
		res, err := p.Resolve(doc)
		require.NoError(t, err)
		assert.Equal(t, []string{"/schemas/j.json"}, res.Schemas, "doc %s", doc)
	}
}
