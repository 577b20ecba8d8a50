package discover

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemap/internal/fsys"
)

var (
	dirPattern  = regexp.MustCompile(`/\.schemap$`)
	filePattern = regexp.MustCompile(`\.patterns$`)
)

func seed(t *testing.T, paths map[string]string, dirs ...string) *fsys.Memory {
	t.Helper()
	fs := fsys.NewMemory()
	for _, d := range dirs {
		require.NoError(t, fs.MkdirAll(d))
	}
	for path, content := range paths {
		require.NoError(t, fs.WriteFile(path, []byte(content)))
	}
	return fs
}

func TestLocate_NearestFirst(t *testing.T) {
	fs := seed(t, nil,
		"/home/user/proj/sub/.schemap",
		"/home/user/proj/.schemap",
		"/home/.schemap",
		"/.schemap",
	)

	dirs, problems, err := Locate(fs, "/home/user/proj/sub", dirPattern)
	require.NoError(t, err)
	assert.Empty(t, problems)

	want := []string{
		"/home/user/proj/sub/.schemap",
		"/home/user/proj/.schemap",
		"/home/.schemap",
		"/.schemap",
	}
	assert.Equal(t, want, dirs)
}

func TestLocate_DoesNotDescendIntoSiblings(t *testing.T) {
	// A matching directory buried in a sibling subtree must not be found:
	// the walk inspects only each ancestor's direct children.
	fs := seed(t, nil,
		"/home/user/proj",
		"/home/user/other/deep/.schemap",
	)

	dirs, problems, err := Locate(fs, "/home/user/proj", dirPattern)
	require.NoError(t, err)
	assert.Empty(t, problems)
	assert.Empty(t, dirs)
}

func TestLocate_SkipsNonDirectoryMatches(t *testing.T) {
	fs := seed(t, map[string]string{
		"/home/user/.schemap": "a plain file, not a config directory",
	}, "/home/user/proj")

	dirs, _, err := Locate(fs, "/home/user/proj", dirPattern)
	require.NoError(t, err)
	assert.Empty(t, dirs)
}

func TestLocate_InvalidStart(t *testing.T) {
	fs := seed(t, map[string]string{"/home/user/data.json": "{}"})

	for _, start := range []string{"/nonexistent", "/home/user/data.json"} {
		dirs, problems, err := Locate(fs, start, dirPattern)
		require.Error(t, err, "start=%s", start)

		var invalid *InvalidStartError
		require.True(t, errors.As(err, &invalid), "start=%s: error is %T", start, err)
		assert.Empty(t, dirs)
		assert.Empty(t, problems)
	}
}

func TestLocate_VisitsEachLevelOnce(t *testing.T) {
	fs := seed(t, nil, "/a/b/c/.schemap")

	dirs, _, err := Locate(fs, "/a/b/c", dirPattern)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a/b/c/.schemap"}, dirs, "a single config dir appears exactly once")
}

func TestFindFiles_MatchesRegularFilesOnly(t *testing.T) {
	fs := seed(t, map[string]string{
		"/proj/.schemap/json.patterns":       `(schema-patterns)`,
		"/proj/.schemap/yaml.patterns":       `(schema-patterns)`,
		"/proj/.schemap/README.md":           "docs",
		"/proj/.schemap/nested/sub.patterns": `(schema-patterns)`,
	})

	files, problems := FindFiles(fs, []string{"/proj/.schemap"}, filePattern)
	assert.Empty(t, problems)
	assert.Equal(t, []string{
		"/proj/.schemap/json.patterns",
		"/proj/.schemap/yaml.patterns",
	}, files, "subdirectories are not recursed into")
}

func TestFindFiles_PreservesDirectoryOrder(t *testing.T) {
	fs := seed(t, map[string]string{
		"/near/.schemap/a.patterns": "",
		"/far/.schemap/b.patterns":  "",
	})

	files, problems := FindFiles(fs, []string{"/near/.schemap", "/far/.schemap"}, filePattern)
	assert.Empty(t, problems)
	assert.Equal(t, []string{"/near/.schemap/a.patterns", "/far/.schemap/b.patterns"}, files)
}

func TestFindFiles_UnreadableDirIsAProblemNotFatal(t *testing.T) {
	fs := seed(t, map[string]string{
		"/ok/.schemap/a.patterns": "",
	})

	files, problems := FindFiles(fs, []string{"/gone/.schemap", "/ok/.schemap"}, filePattern)
	assert.Equal(t, []string{"/ok/.schemap/a.patterns"}, files)

	require.Len(t, problems, 1)
	var unreadable *UnreadableEntryError
	require.True(t, errors.As(problems[0], &unreadable))
	assert.Equal(t, "/gone/.schemap", unreadable.Path)
}

func TestFindFiles_EmptyDirContributesNothing(t *testing.T) {
	fs := seed(t, nil, "/proj/.schemap")

	files, problems := FindFiles(fs, []string{"/proj/.schemap"}, filePattern)
	assert.Empty(t, problems)
	assert.Empty(t, files)
}
